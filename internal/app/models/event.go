package models

import "time"

type BookingEventType string

const (
	BookingCreated   BookingEventType = "booking.created"
	BookingCancelled BookingEventType = "booking.cancelled"
	BookingReminder  BookingEventType = "booking.reminder"
)

type BookingEvent struct {
	Type          BookingEventType  `json:"type"`
	ReservationID string            `json:"reservationId"`
	DoctorID      string            `json:"doctorId"`
	DoctorName    string            `json:"doctorName"`
	PatientID     string            `json:"patientId"`
	PatientName   string            `json:"patientName"`
	Date          string            `json:"date"`
	Slot          string            `json:"slot"`
	Status        ReservationStatus `json:"status"`
	ActorID       string            `json:"actorId"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

func NewBookingEvent(eventType BookingEventType, r *Reservation, actorID string, at time.Time) *BookingEvent {
	return &BookingEvent{
		Type:          eventType,
		ReservationID: r.ID,
		DoctorID:      r.DoctorID,
		DoctorName:    r.DoctorName,
		PatientID:     r.PatientID,
		PatientName:   r.PatientName,
		Date:          r.Date,
		Slot:          r.Slot,
		Status:        r.Status,
		ActorID:       actorID,
		OccurredAt:    at,
	}
}

type Notification struct {
	ReservationID string           `json:"reservationId"`
	Type          BookingEventType `json:"type"`
	Message       string           `json:"message"`
	CreatedAt     time.Time        `json:"createdAt"`
}
