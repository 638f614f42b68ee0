package routers

import (
	"docbook-service/internal/app/delivery/http/controllers"
	"docbook-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, appointmentController *controllers.AppointmentController) {
	router.Use(middlewares.Authenticate)
	router.Post("/", appointmentController.Book)
	router.Get("/stream", appointmentController.Stream)
	router.Get("/{appointmentId}", appointmentController.FindByID)
	router.Post("/{appointmentId}/cancel", appointmentController.Cancel)
}
