package requests

type BookAppointment struct {
	DoctorID  string `json:"doctorId" validate:"required"`
	PatientID string `json:"patientId" validate:"required"`
	Date      string `json:"date" validate:"required,iso_date"`
	Slot      string `json:"slot" validate:"required,slot"`
}

type AppointmentStreamQuery struct {
	PatientID string `validate:"omitempty"`
	DoctorID  string `validate:"omitempty"`
	Date      string `validate:"omitempty,iso_date"`
	Status    string `validate:"omitempty,oneof=booked"`
}

type AvailabilityQuery struct {
	DoctorID string `validate:"required"`
	Date     string `validate:"required,iso_date"`
}
