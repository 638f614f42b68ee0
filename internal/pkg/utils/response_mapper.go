package utils

import (
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/dto/responses"
)

func BuildIdentityResponse(session *models.Session) responses.Identity {
	return responses.Identity{
		UID:         session.UID,
		Email:       session.Email,
		Role:        string(session.Role),
		DisplayName: session.DisplayName,
	}
}

func BuildLoginResponse(result *models.AuthResult) *responses.Login {
	return &responses.Login{
		Token:    result.Token,
		Identity: BuildIdentityResponse(result.Session),
	}
}

// BuildUserProfileResponse maps a profile, pictureURL is the presigned link
// for the stored picture if any.
func BuildUserProfileResponse(profile *models.Profile, pictureURL string) *responses.UserProfile {
	response := &responses.UserProfile{
		UID:               profile.UID,
		DisplayName:       profile.DisplayName,
		Email:             profile.Email,
		Role:              string(profile.Role),
		ProfilePictureURL: pictureURL,
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         profile.UpdatedAt,
	}
	if profile.IsPatient() {
		response.Patient = &responses.PatientDetails{
			Gender:  profile.Patient.Gender,
			Age:     profile.Patient.Age,
			Phone:   profile.Patient.Phone,
			Address: profile.Patient.Address,
		}
	}
	if profile.IsDoctor() {
		response.Doctor = buildDoctorDetails(profile.Doctor)
	}
	return response
}

func buildDoctorDetails(details *models.DoctorDetails) *responses.DoctorDetails {
	return &responses.DoctorDetails{
		Specialization:  details.Specialization,
		Qualification:   details.Qualification,
		YearsExperience: details.YearsExperience,
		Clinic:          details.Clinic,
		Phone:           details.Phone,
	}
}

func BuildDoctorResponse(listing *models.DoctorListing, pictureURL string) responses.Doctor {
	return responses.Doctor{
		UID:               listing.UID,
		DisplayName:       listing.DisplayName,
		ProfilePictureURL: pictureURL,
		DoctorDetails:     *buildDoctorDetails(&listing.DoctorDetails),
	}
}

func BuildAppointmentResponse(reservation *models.Reservation) responses.Appointment {
	return responses.Appointment{
		ID:            reservation.ID,
		DoctorID:      reservation.DoctorID,
		DoctorName:    reservation.DoctorName,
		PatientID:     reservation.PatientID,
		PatientName:   reservation.PatientName,
		Date:          reservation.Date,
		Slot:          reservation.Slot,
		Status:        string(reservation.Status),
		AppointmentTs: reservation.AppointmentTs,
		CreatedAt:     reservation.CreatedAt,
		CancelledAt:   reservation.CancelledAt,
	}
}

func BuildAppointmentsResponse(reservations []models.Reservation) []responses.Appointment {
	result := make([]responses.Appointment, 0, len(reservations))
	for i := range reservations {
		result = append(result, BuildAppointmentResponse(&reservations[i]))
	}
	return result
}

func BuildAvailabilityResponse(doctorID, date string, slots []models.SlotAvailability) *responses.Availability {
	response := &responses.Availability{
		DoctorID: doctorID,
		Date:     date,
		Slots:    make([]responses.SlotResponse, 0, len(slots)),
	}
	for _, slot := range slots {
		response.Slots = append(response.Slots, responses.SlotResponse{Slot: slot.Slot, Taken: slot.Taken})
	}
	return response
}

func BuildNotificationsResponse(notifications []models.Notification) []responses.Notification {
	result := make([]responses.Notification, 0, len(notifications))
	for _, notification := range notifications {
		result = append(result, responses.Notification{
			ReservationID: notification.ReservationID,
			Type:          string(notification.Type),
			Message:       notification.Message,
			CreatedAt:     notification.CreatedAt,
		})
	}
	return result
}
