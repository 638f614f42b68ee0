package routers

import (
	"docbook-service/internal/app/delivery/http/controllers"
	"docbook-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachUserRoutes(router chi.Router, middlewares *middlewares.Middlewares, userController *controllers.UserController) {
	router.With(middlewares.Authenticate).Get("/me", userController.GetProfile)
	router.With(middlewares.Authenticate).Put("/me", userController.UpdateProfile)
	router.With(middlewares.Authenticate).Get("/me/stream", userController.StreamProfile)
	router.With(middlewares.Authenticate).Get("/me/notifications", userController.GetNotifications)
}
