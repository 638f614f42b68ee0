package constvars

const (
	RegisterSuccessMessage          = "account created successfully"
	LoginSuccessMessage             = "login successful"
	LogoutSuccessMessage            = "logout successful"
	GetIdentitySuccessMessage       = "identity retrieved successfully"
	GetProfileSuccessMessage        = "profile retrieved successfully"
	UpdateProfileSuccessMessage     = "profile updated successfully"
	GetNotificationsSuccessMessage  = "notifications retrieved successfully"
	GetDoctorsSuccessMessage        = "doctors retrieved successfully"
	GetPatientsSuccessMessage       = "patients retrieved successfully"
	GetAvailabilitySuccessMessage   = "availability retrieved successfully"
	BookAppointmentSuccessMessage   = "appointment booked successfully"
	GetAppointmentSuccessMessage    = "appointment retrieved successfully"
	CancelAppointmentSuccessMessage = "appointment cancelled successfully"
)

const ResponseUnknown = "unknown"
