package routers

import (
	"docbook-service/internal/app/delivery/http/controllers"
	"docbook-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachDoctorRoutes(router chi.Router, middlewares *middlewares.Middlewares, doctorController *controllers.DoctorController) {
	router.With(middlewares.Authenticate).Get("/", doctorController.ListDoctors)
	router.With(middlewares.Authenticate).Get("/{doctorId}/availability", doctorController.GetAvailability)
}
