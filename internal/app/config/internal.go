package config

type InternalConfig struct {
	App       App
	JWT       AppJWT
	Minio     AppMinio
	Booking   AppBooking
	Projector AppProjector
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Timezone                   string
	EndpointPrefix             string
	AllowedOrigins             []string
	MaxRequests                int
	ShutdownTimeout            int
	MaxTimeRequestsPerSeconds  int
	RequestBodyLimitInMegabyte int
	RequestTimeoutInSeconds    int
}

type AppJWT struct {
	Secret        string
	ExpTimeInHour int
}

type AppMinio struct {
	BucketName                      string
	ProfilePictureMaxUploadSizeInMB int
	PreSignedUrlObjectExpiryInHours int
}

type AppBooking struct {
	LockTTLInSeconds        int
	MaxAttemptsPerMinute    int
	NotificationListMaxSize int
	ReminderCronSpec        string
	ReminderLeadInMinutes   int
}

// AppProjector tunes how often a subscription may reload its snapshot.
type AppProjector struct {
	ReloadsPerSecond        float64
	ReloadBurst             int
	HeartbeatIntervalInSecs int
}
