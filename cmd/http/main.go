package main

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/delivery/http/controllers"
	"docbook-service/internal/app/delivery/http/middlewares"
	"docbook-service/internal/app/delivery/http/routers"
	"docbook-service/internal/app/drivers/database"
	"docbook-service/internal/app/drivers/logger"
	"docbook-service/internal/app/drivers/messaging"
	"docbook-service/internal/app/drivers/storage"
	"docbook-service/internal/app/services/core/identity"
	"docbook-service/internal/app/services/core/profiles"
	"docbook-service/internal/app/services/core/projector"
	"docbook-service/internal/app/services/core/reminders"
	"docbook-service/internal/app/services/core/reservations"
	"docbook-service/internal/app/services/shared/events"
	"docbook-service/internal/app/services/shared/locker"
	"docbook-service/internal/app/services/shared/ratelimiter"
	"docbook-service/internal/app/services/shared/redis"
	"docbook-service/internal/app/services/shared/session"
	minioStorage "docbook-service/internal/app/services/shared/storage"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	logger := logger.NewZapLogger(driverConfig, internalConfig)
	logger.Info("Starting docbook-service",
		zap.String("version", Version),
		zap.String("tag", Tag),
		zap.String("env", internalConfig.App.Env),
	)

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		MongoDB:        database.NewMongoDB(driverConfig),
		Redis:          database.NewRedisClient(driverConfig),
		Logger:         logger,
		RabbitMQ:       messaging.NewRabbitMQ(driverConfig),
		Minio:          storage.NewMinio(driverConfig, internalConfig),
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	if err := bootstrapingTheApp(bootstrap); err != nil {
		logger.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", internalConfig.App.Port),
		Handler:           bootstrap.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	logger.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	// open streams never finish on their own, close them before draining
	if bootstrap.ProjectorStop != nil {
		bootstrap.ProjectorStop()
		bootstrap.ProjectorStop = nil
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error while releasing resources: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	// Redis backed shared services
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	sessionService := session.NewSessionService(redisRepository)
	lockService := locker.NewLockService(redisRepository, bootstrap.Logger)
	bookingLimiter := ratelimiter.NewResourceLimiter(redisRepository, bootstrap.Logger)
	notificationService := events.NewNotificationService(
		redisRepository,
		bootstrap.InternalConfig.Booking.NotificationListMaxSize,
		bootstrap.Logger,
	)

	// Storage
	objectStorage := minioStorage.NewMinioStorage(bootstrap.Minio)

	// Messaging
	eventPublisher, err := events.NewBookingEventPublisher(bootstrap.RabbitMQ, bootstrap.Logger)
	if err != nil {
		return err
	}
	consumer := events.NewNotificationConsumer(bootstrap.RabbitMQ, notificationService, bootstrap.Logger)
	consumer.Start(context.Background())

	dbName := bootstrap.DriverConfig.MongoDB.DbName

	// Profiles
	profileRepository := profiles.NewProfileMongoRepository(bootstrap.MongoDB, dbName)
	profileChangeFeed := profiles.NewProfileChangeFeed(bootstrap.MongoDB, dbName, bootstrap.Logger)
	profileUsecase := profiles.NewProfileUsecase(
		profileRepository,
		profileChangeFeed,
		objectStorage,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	// Identity
	accountRepository := identity.NewAccountMongoRepository(bootstrap.MongoDB, dbName)
	identityUsecase := identity.NewIdentityUsecase(
		accountRepository,
		profileRepository,
		sessionService,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	// Reservations
	reservationRepository := reservations.NewReservationMongoRepository(bootstrap.MongoDB, dbName)
	reservationChangeFeed := reservations.NewReservationChangeFeed(bootstrap.MongoDB, dbName, bootstrap.Logger)
	reservationUsecase := reservations.NewReservationUsecase(
		reservationRepository,
		profileRepository,
		lockService,
		bookingLimiter,
		eventPublisher,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	reminderWorker := reminders.NewWorker(
		bootstrap.Logger,
		bootstrap.InternalConfig,
		lockService,
		redisRepository,
		reservationRepository,
		eventPublisher,
	)
	reminderWorker.Start(context.Background())
	bootstrap.WorkerStop = func() {
		reminderWorker.Stop()
		consumer.Stop()
	}

	// Projector
	appointmentProjector := projector.NewAppointmentProjector(
		reservationRepository,
		reservationChangeFeed,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	// sign-out closes every stream the session opened
	identityUsecase.OnIdentityChange(appointmentProjector.HandleIdentityChange)
	identityUsecase.OnIdentityChange(profileUsecase.HandleIdentityChange)
	bootstrap.ProjectorStop = func() {
		appointmentProjector.CloseAll()
		profileUsecase.CloseAll()
	}

	// Delivery
	middlewares := middlewares.NewMiddlewares(bootstrap.Logger, identityUsecase, bootstrap.InternalConfig)
	authController := controllers.NewAuthController(bootstrap.Logger, identityUsecase, bootstrap.InternalConfig)
	userController := controllers.NewUserController(bootstrap.Logger, profileUsecase, notificationService, bootstrap.InternalConfig)
	doctorController := controllers.NewDoctorController(bootstrap.Logger, profileUsecase, reservationUsecase, bootstrap.InternalConfig)
	patientController := controllers.NewPatientController(bootstrap.Logger, profileUsecase, bootstrap.InternalConfig)
	appointmentController := controllers.NewAppointmentController(bootstrap.Logger, reservationUsecase, appointmentProjector, bootstrap.InternalConfig)

	routers.SetupRoutes(
		bootstrap.Router,
		bootstrap.InternalConfig,
		middlewares,
		authController,
		userController,
		doctorController,
		patientController,
		appointmentController,
	)
	return nil
}
