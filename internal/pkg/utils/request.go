package utils

import (
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/dto/requests"
	"net/http"
	"strings"
)

func BuildAppointmentStreamQuery(r *http.Request) *requests.AppointmentStreamQuery {
	query := r.URL.Query()
	return &requests.AppointmentStreamQuery{
		PatientID: strings.TrimSpace(query.Get("patientId")),
		DoctorID:  strings.TrimSpace(query.Get("doctorId")),
		Date:      strings.TrimSpace(query.Get("date")),
		Status:    strings.TrimSpace(query.Get("status")),
	}
}

func BuildReservationFilter(query *requests.AppointmentStreamQuery) models.ReservationFilter {
	return models.ReservationFilter{
		PatientID: query.PatientID,
		DoctorID:  query.DoctorID,
		Date:      query.Date,
		Status:    models.ReservationStatus(query.Status),
	}
}

func BuildCreateAccountInput(request *requests.RegisterAccount) *models.CreateAccountInput {
	role := models.Role(request.Role)
	if role == "" {
		role = models.RolePatient
	}

	input := &models.CreateAccountInput{
		Email:       request.Email,
		Password:    request.Password,
		DisplayName: request.DisplayName,
		Role:        role,
	}

	switch role {
	case models.RoleDoctor:
		phone := request.DoctorPhone
		if phone == "" {
			phone = request.Phone
		}
		input.Doctor = &models.DoctorDetails{
			Specialization:  request.Specialization,
			Qualification:   request.Qualification,
			YearsExperience: request.YearsExperience,
			Clinic:          request.Clinic,
			Phone:           phone,
		}
	default:
		input.Patient = &models.PatientDetails{
			Gender:  request.Gender,
			Age:     request.Age,
			Phone:   request.Phone,
			Address: request.Address,
		}
	}

	return input
}

func BuildBookRequest(request *requests.BookAppointment) models.BookRequest {
	return models.BookRequest{
		DoctorID:  request.DoctorID,
		PatientID: request.PatientID,
		Date:      request.Date,
		Slot:      request.Slot,
	}
}
