package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingSessionIDKey      = "session_id"
	LoggingUserIDKey         = "uid"
	LoggingRoleKey           = "role"
	LoggingEmailKey          = "email"
	LoggingDoctorIDKey       = "doctor_id"
	LoggingPatientIDKey      = "patient_id"
	LoggingReservationIDKey  = "reservation_id"
	LoggingDateKey           = "date"
	LoggingSlotKey           = "slot"
	LoggingFilterKey         = "filter"
	LoggingSnapshotSizeKey   = "snapshot_size"
	LoggingResponseCountKey  = "response_count"
	LoggingRedisKey          = "redis_key"
	LoggingLockValueKey      = "lock_value"
	LoggingLockExpirationKey = "lock_expiration"
	LoggingOpenStreamsKey    = "open_streams"
	LoggingRoutingKey        = "routing_key"
	LoggingQueueKey          = "queue"
	LoggingBucketKey         = "bucket"
	LoggingObjectKey         = "object"
	LoggingErrorTypeKey      = "error_type"
	LoggingCronSpecKey       = "cron_spec"

	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingQueryKey      = "query"
	LoggingStatusCodeKey = "status_code"
	LoggingDurationKey   = "duration"
	LoggingSuccessKey    = "success"
)
