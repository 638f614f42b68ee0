package utils

import (
	"docbook-service/internal/pkg/dto/requests"
	"strings"
)

func trimStringPointer(input *string) *string {
	if input == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*input)
	return &trimmed
}

func SanitizeRegisterAccountRequest(input *requests.RegisterAccount) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Role = strings.TrimSpace(strings.ToLower(input.Role))
	input.Gender = strings.TrimSpace(input.Gender)
	input.Address = strings.TrimSpace(input.Address)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Specialization = strings.TrimSpace(input.Specialization)
	input.Qualification = strings.TrimSpace(input.Qualification)
	input.Clinic = strings.TrimSpace(input.Clinic)
	input.DoctorPhone = strings.TrimSpace(input.DoctorPhone)
}

func SanitizeLoginRequest(input *requests.Login) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
}

func SanitizeUpdateProfileRequest(input *requests.UpdateProfile) {
	input.DisplayName = trimStringPointer(input.DisplayName)
	input.Phone = trimStringPointer(input.Phone)
	input.Address = trimStringPointer(input.Address)
	input.Gender = trimStringPointer(input.Gender)
	input.Specialization = trimStringPointer(input.Specialization)
	input.Qualification = trimStringPointer(input.Qualification)
	input.Clinic = trimStringPointer(input.Clinic)
	input.ProfilePicture = strings.TrimSpace(input.ProfilePicture)
}

func SanitizeBookAppointmentRequest(input *requests.BookAppointment) {
	input.DoctorID = strings.TrimSpace(input.DoctorID)
	input.PatientID = strings.TrimSpace(input.PatientID)
	input.Date = strings.TrimSpace(input.Date)
	input.Slot = strings.TrimSpace(input.Slot)
}
