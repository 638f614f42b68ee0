package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_SESSION_KEY              ContextKey = "session"
)

const (
	ResourceAuth         = "auth"
	ResourceUsers        = "users"
	ResourceDoctors      = "doctors"
	ResourcePatients     = "patients"
	ResourceAppointments = "appointments"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

const (
	ReservationStatusBooked    = "booked"
	ReservationStatusCancelled = "cancelled"
)

const (
	MongoCollectionAccounts     = "accounts"
	MongoCollectionUsers        = "users"
	MongoCollectionDoctors      = "doctors"
	MongoCollectionAppointments = "appointments"
)

// Redis key prefixes.
const (
	RedisKeySessionPrefix       = "session:"
	RedisKeyLockPrefix          = "lock:appointment:"
	RedisKeyBookingRatePrefix   = "ratelimit:booking:"
	RedisKeyNotificationsPrefix = "notifications:"
	RedisKeyReminderPrefix      = "reminder:sent:"
	RedisKeyReminderLeader      = "reminder:leader"
)

const (
	DateLayout = "2006-01-02"
	SlotLayout = "15:04"
)

// BookableSlots are the fixed daily slots. 12:00-14:00 is the lunch gap.
var BookableSlots = []string{
	"09:00",
	"09:30",
	"10:00",
	"10:30",
	"11:00",
	"11:30",
	"14:00",
	"14:30",
	"15:00",
}

const (
	EventExchangeName         = "docbook.events"
	EventNotificationQueue    = "docbook.notifications"
	EventRoutingKeyCreated    = "booking.created"
	EventRoutingKeyCancelled  = "booking.cancelled"
	EventRoutingKeyAllBooking = "booking.*"
)

const ProfilePictureObjectPrefix = "profile"

var ImageAllowedProfilePictureFormats = []string{".jpg", ".jpeg", ".png"}

const SSEEventSnapshot = "snapshot"
