package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"oneof":    "must be one of [%s]",
	"password": "must be at least 8 characters long, contain at least one special character, and one uppercase letter",
	"role":     "must be either 'patient' or 'doctor'",
	"slot":     "must be one of the bookable slots",
	"iso_date": "must be a date in YYYY-MM-DD format",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"gte":   true,
	"lte":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientInvalidEmailOrPassword        = "invalid email or password"
	ErrClientEmailAlreadyExists            = "email already used"
	ErrClientInvalidImageFormat            = "invalid image format"
	ErrClientResourceNotFound              = "the requested resource was not found"
	ErrClientSlotAlreadyBooked             = "slot already booked"
	ErrClientSlotBeingBooked               = "slot is being booked, please pick another slot"
	ErrClientBookOnlyForYourself           = "you can only book for your own account"
	ErrClientCancelTooLate                 = "cannot cancel less than 1 hour before appointment"
	ErrClientReservationNotActive          = "reservation is not active"
	ErrClientDoctorNotFound                = "doctor not found"
	ErrClientPatientNotFound               = "patient not found"
	ErrClientServiceUnavailable            = "service temporarily unavailable, please try again"
	ErrClientTooManyBookingAttempts        = "too many booking attempts, please wait a moment"
	ErrClientTooManyRequests               = "too many requests, please slow down"
	ErrClientInvalidSubscriptionFilter     = "invalid appointment filter"
	ErrClientStreamingNotSupported         = "streaming is not supported by this connection"
)

// Error messages for developers
const (
	ErrDevInvalidInput                = "invalid input"
	ErrDevValidationFailed            = "validation failed"
	ErrDevCannotParseJSON             = "cannot parse JSON"
	ErrDevCannotMarshalJSON           = "cannot marshal JSON"
	ErrDevCannotParseDate             = "cannot parse date"
	ErrDevInvalidSlot                 = "slot is not one of the bookable slots"
	ErrDevImageValidationFailed       = "image validation failed"
	ErrDevURLParamIDValidationFailed  = "url param %s validation failed"
	ErrDevServerDeadlineExceeded      = "server deadline exceeded"
	ErrDevHTTPRateLimited             = "http request rate limited"
	ErrDevFailedToHashPassword        = "failed to hash password"
	ErrDevInvalidCredentials          = "invalid credentials"
	ErrDevEmailAlreadyExists          = "email already exists"
	ErrDevUserNotExists               = "user not exists"
	ErrDevInvalidRoleType             = "invalid role type"
	ErrDevAuthTokenMissing            = "auth token missing"
	ErrDevAuthTokenInvalidOrExpired   = "auth token invalid or expired"
	ErrDevAuthGenerateToken           = "failed to generate auth token"
	ErrDevAuthSigningMethod           = "unexpected jwt signing method"
	ErrDevSessionNotFound             = "session not found"
	ErrDevRoleNotAllowed              = "role is not allowed to perform this action"
	ErrDevBookForOtherPatient         = "patient tried to book for another patient"
	ErrDevReservationNotParticipant   = "caller is neither the patient nor the doctor of the reservation"
	ErrDevReservationNotFound         = "reservation not found"
	ErrDevReservationAlreadyExists    = "reservation key already exists"
	ErrDevReservationLocked           = "reservation key locked by another request"
	ErrDevReservationNotActive        = "reservation is not in booked status"
	ErrDevCancelWindowClosed          = "cancellation window closed"
	ErrDevDoctorNotFound              = "doctor profile not found"
	ErrDevPatientNotFound             = "patient profile not found"
	ErrDevBookingRateLimited          = "booking attempts rate limited"
	ErrDevInvalidSubscriptionFilter   = "subscription filter must be patient, doctor, or doctor+date+booked"
	ErrDevSubscriptionNotAllowed      = "caller cannot subscribe to this filter"
	ErrDevStreamingNotSupported       = "response writer does not implement http.Flusher"
	ErrDevStoreUnavailable            = "document store unavailable"
	ErrDevMongoDBFindDocument         = "failed to find mongodb document"
	ErrDevMongoDBFindManyDocuments    = "failed to find mongodb documents"
	ErrDevMongoDBInsertDocument       = "failed to insert mongodb document"
	ErrDevMongoDBUpdateDocument       = "failed to update mongodb document"
	ErrDevMongoDBDecodeDocument       = "failed to decode mongodb document"
	ErrDevMongoDBTransaction          = "mongodb transaction failed"
	ErrDevMongoDBWatch                = "failed to open mongodb change stream"
	ErrDevRedisSet                    = "failed to set redis value"
	ErrDevRedisGet                    = "failed to get redis value"
	ErrDevRedisDelete                 = "failed to delete redis key"
	ErrDevRedisIncrement              = "failed to increment redis key"
	ErrDevRedisExpire                 = "failed to set redis key expiry"
	ErrDevRedisPushToList             = "failed to push to redis list"
	ErrDevRedisGetList                = "failed to get redis list"
	ErrDevRedisUnlock                 = "failed to release redis lock"
	ErrDevRabbitMQOpenChannel         = "failed to open rabbitmq channel"
	ErrDevRabbitMQDeclareTopology     = "failed to declare rabbitmq topology"
	ErrDevRabbitMQPublishMessage      = "failed to publish rabbitmq message"
	ErrDevRabbitMQConsumeMessage      = "failed to consume rabbitmq message"
	ErrDevMinioCreateObject           = "failed to create minio object in bucket %s"
	ErrDevMinioPresignObject          = "failed to presign minio object in bucket %s"
	ErrDevMinioBucketNotAvailable     = "minio bucket %s is not available"
)
