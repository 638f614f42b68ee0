package models

import (
	"docbook-service/internal/pkg/constvars"
	"errors"
	"fmt"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = constvars.ReservationStatusBooked
	ReservationCancelled ReservationStatus = constvars.ReservationStatusCancelled
)

// CancellationNotice is how long before the appointment a reservation can
// still be cancelled.
const CancellationNotice = time.Hour

type Reservation struct {
	ID            string            `json:"id" bson:"_id"`
	DoctorID      string            `json:"doctorId" bson:"doctorId"`
	DoctorName    string            `json:"doctorName" bson:"doctorName"`
	PatientID     string            `json:"patientId" bson:"patientId"`
	PatientName   string            `json:"patientName" bson:"patientName"`
	Date          string            `json:"date" bson:"date"`
	Slot          string            `json:"slot" bson:"slot"`
	Status        ReservationStatus `json:"status" bson:"status"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdAt"`
	AppointmentTs time.Time         `json:"appointmentTs" bson:"appointmentTs"`
	CancelledAt   *time.Time        `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	CancelledBy   string            `json:"cancelledBy,omitempty" bson:"cancelledBy,omitempty"`
}

func (r *Reservation) IsBooked() bool {
	return r.Status == ReservationBooked
}

// IsParticipant reports whether uid is the patient or the doctor.
func (r *Reservation) IsParticipant(uid string) bool {
	return uid != "" && (r.DoctorID == uid || r.PatientID == uid)
}

// CanCancelAt is true iff now < appointment - CancellationNotice.
func (r *Reservation) CanCancelAt(now time.Time) bool {
	return now.Before(r.AppointmentTs.Add(-CancellationNotice))
}

// ReservationKey is the deterministic document id for a bookable unit.
func ReservationKey(doctorID, date, slot string) string {
	return fmt.Sprintf("%s_%s_%s", doctorID, date, strings.Replace(slot, ":", "-", 1))
}

var (
	ErrUnknownSlot = errors.New("unknown slot")
	ErrBadDate     = errors.New("date must be YYYY-MM-DD")
)

func IsBookableSlot(slot string) bool {
	for _, s := range constvars.BookableSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// AppointmentInstant combines date and slot into a point in time in loc.
func AppointmentInstant(date, slot string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(constvars.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrBadDate, err.Error())
	}
	if !IsBookableSlot(slot) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	clock, err := time.Parse(constvars.SlotLayout, slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// ReservationFilter selects reservations for a snapshot. Valid shapes are
// {PatientID}, {DoctorID} and {DoctorID, Date, Status=booked}.
type ReservationFilter struct {
	PatientID string            `json:"patientId,omitempty"`
	DoctorID  string            `json:"doctorId,omitempty"`
	Date      string            `json:"date,omitempty"`
	Status    ReservationStatus `json:"status,omitempty"`
}

var ErrInvalidFilter = errors.New("invalid reservation filter")

func (f ReservationFilter) Validate() error {
	switch {
	case f.PatientID != "" && f.DoctorID == "" && f.Date == "" && f.Status == "":
		return nil
	case f.DoctorID != "" && f.PatientID == "" && f.Date == "" && f.Status == "":
		return nil
	case f.DoctorID != "" && f.PatientID == "" && f.Date != "" && f.Status == ReservationBooked:
		if _, err := time.Parse(constvars.DateLayout, f.Date); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidFilter, err.Error())
		}
		return nil
	}
	return ErrInvalidFilter
}

// IsAvailabilityView is the doctor+date+booked shape used by the booking page.
func (f ReservationFilter) IsAvailabilityView() bool {
	return f.DoctorID != "" && f.Date != "" && f.Status == ReservationBooked
}

// Matches reports whether r belongs to the filter's result set.
func (f ReservationFilter) Matches(r *Reservation) bool {
	if f.PatientID != "" && r.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && r.DoctorID != f.DoctorID {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

func (f ReservationFilter) String() string {
	return fmt.Sprintf("patient=%s doctor=%s date=%s status=%s", f.PatientID, f.DoctorID, f.Date, f.Status)
}

type SlotAvailability struct {
	Slot  string `json:"slot"`
	Taken bool   `json:"taken"`
}

// BookRequest is the input of a booking attempt.
type BookRequest struct {
	DoctorID  string `json:"doctorId" validate:"required"`
	PatientID string `json:"patientId" validate:"required"`
	Date      string `json:"date" validate:"required,iso_date"`
	Slot      string `json:"slot" validate:"required,slot"`
}

func (b BookRequest) Key() string {
	return ReservationKey(b.DoctorID, b.Date, b.Slot)
}
