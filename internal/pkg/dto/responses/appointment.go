package responses

import "time"

type Appointment struct {
	ID            string     `json:"id"`
	DoctorID      string     `json:"doctorId"`
	DoctorName    string     `json:"doctorName"`
	PatientID     string     `json:"patientId,omitempty"`
	PatientName   string     `json:"patientName,omitempty"`
	Date          string     `json:"date"`
	Slot          string     `json:"slot"`
	Status        string     `json:"status"`
	AppointmentTs time.Time  `json:"appointmentTs"`
	CreatedAt     time.Time  `json:"createdAt"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
}

type Availability struct {
	DoctorID string         `json:"doctorId"`
	Date     string         `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}

type SlotResponse struct {
	Slot  string `json:"slot"`
	Taken bool   `json:"taken"`
}
