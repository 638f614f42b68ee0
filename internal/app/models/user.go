package models

import (
	"docbook-service/internal/pkg/constvars"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

type TimeModel struct {
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Account holds credentials only, the public part of a user lives in Profile.
type Account struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type Role string

const (
	RolePatient Role = constvars.RolePatient
	RoleDoctor  Role = constvars.RoleDoctor
)

func (r Role) IsValid() bool {
	return r == RolePatient || r == RoleDoctor
}

type ProfileBase struct {
	UID            string `json:"uid" bson:"_id"`
	DisplayName    string `json:"displayName" bson:"displayName"`
	Email          string `json:"email" bson:"email"`
	Role           Role   `json:"role" bson:"role"`
	ProfilePicture string `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	TimeModel      `bson:",inline"`
}

type PatientDetails struct {
	Gender  string `json:"gender" bson:"gender"`
	Age     int    `json:"age" bson:"age"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
}

type DoctorDetails struct {
	Specialization  string `json:"specialization" bson:"specialization"`
	Qualification   string `json:"qualification" bson:"qualification"`
	YearsExperience int    `json:"yearsExperience" bson:"yearsExperience"`
	Clinic          string `json:"clinic" bson:"clinic"`
	Phone           string `json:"phone" bson:"phone"`
}

// Profile is a tagged union over the patient and doctor variants. Exactly one
// of Patient or Doctor is set, matching Role.
type Profile struct {
	ProfileBase `bson:",inline"`
	Patient     *PatientDetails `json:"patient,omitempty" bson:"patient,omitempty"`
	Doctor      *DoctorDetails  `json:"doctor,omitempty" bson:"doctor,omitempty"`
}

func NewPatientProfile(base ProfileBase, details PatientDetails) *Profile {
	base.Role = RolePatient
	return &Profile{ProfileBase: base, Patient: &details}
}

func NewDoctorProfile(base ProfileBase, details DoctorDetails) *Profile {
	base.Role = RoleDoctor
	return &Profile{ProfileBase: base, Doctor: &details}
}

func (p *Profile) IsDoctor() bool {
	return p != nil && p.Role == RoleDoctor && p.Doctor != nil
}

func (p *Profile) IsPatient() bool {
	return p != nil && p.Role == RolePatient && p.Patient != nil
}

// Phone is shared by both variants.
func (p *Profile) Phone() string {
	switch {
	case p.IsDoctor():
		return p.Doctor.Phone
	case p.IsPatient():
		return p.Patient.Phone
	}
	return ""
}

// ConvertToBsonM builds the $set document for an update, only the variant
// matching the role is written.
func (p *Profile) ConvertToBsonM() bson.M {
	set := bson.M{
		"displayName": p.DisplayName,
		"updatedAt":   p.UpdatedAt,
	}
	if p.ProfilePicture != "" {
		set["profilePicture"] = p.ProfilePicture
	}
	if p.IsPatient() {
		set["patient"] = p.Patient
	}
	if p.IsDoctor() {
		set["doctor"] = p.Doctor
	}
	return set
}

// DoctorListing mirrors a doctor profile into the doctors collection.
type DoctorListing struct {
	UID            string `json:"uid" bson:"_id"`
	DisplayName    string `json:"displayName" bson:"displayName"`
	ProfilePicture string `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	DoctorDetails  `bson:",inline"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

func NewDoctorListing(profile *Profile) *DoctorListing {
	listing := &DoctorListing{
		UID:            profile.UID,
		DisplayName:    profile.DisplayName,
		ProfilePicture: profile.ProfilePicture,
		CreatedAt:      profile.CreatedAt,
	}
	if profile.Doctor != nil {
		listing.DoctorDetails = *profile.Doctor
	}
	return listing
}
