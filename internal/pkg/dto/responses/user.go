package responses

import "time"

type PatientDetails struct {
	Gender  string `json:"gender"`
	Age     int    `json:"age"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type DoctorDetails struct {
	Specialization  string `json:"specialization"`
	Qualification   string `json:"qualification"`
	YearsExperience int    `json:"yearsExperience"`
	Clinic          string `json:"clinic"`
	Phone           string `json:"phone"`
}

type UserProfile struct {
	UID               string          `json:"uid"`
	DisplayName       string          `json:"displayName"`
	Email             string          `json:"email,omitempty"`
	Role              string          `json:"role"`
	ProfilePictureURL string          `json:"profilePictureUrl,omitempty"`
	Patient           *PatientDetails `json:"patient,omitempty"`
	Doctor            *DoctorDetails  `json:"doctor,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type Doctor struct {
	UID               string `json:"uid"`
	DisplayName       string `json:"displayName"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	DoctorDetails
}

type Notification struct {
	ReservationID string    `json:"reservationId"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"createdAt"`
}
