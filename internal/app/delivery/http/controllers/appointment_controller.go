package controllers

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/dto/requests"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type AppointmentController struct {
	Log                  *zap.Logger
	ReservationUsecase   contracts.ReservationUsecase
	AppointmentProjector contracts.AppointmentProjector
	InternalConfig       *config.InternalConfig
}

func NewAppointmentController(
	logger *zap.Logger,
	reservationUsecase contracts.ReservationUsecase,
	appointmentProjector contracts.AppointmentProjector,
	internalConfig *config.InternalConfig,
) *AppointmentController {
	return &AppointmentController{
		Log:                  logger,
		ReservationUsecase:   reservationUsecase,
		AppointmentProjector: appointmentProjector,
		InternalConfig:       internalConfig,
	}
}

func (ctrl *AppointmentController) Book(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	session, ok := sessionFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrTokenMissing(nil))
		return
	}
	ctrl.Log.Info("AppointmentController.Book called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, session.UID),
	)

	request := new(requests.BookAppointment)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	utils.SanitizeBookAppointmentRequest(request)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	reservation, err := ctrl.ReservationUsecase.Book(ctx, session, utils.BuildBookRequest(request))
	if err != nil {
		ctrl.Log.Error("AppointmentController.Book error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("AppointmentController.Book succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReservationIDKey, reservation.ID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.BookAppointmentSuccessMessage, utils.BuildAppointmentResponse(reservation))
}

func (ctrl *AppointmentController) FindByID(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	session, ok := sessionFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrTokenMissing(nil))
		return
	}

	appointmentID, err := appointmentIDFromRequest(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("AppointmentController.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReservationIDKey, appointmentID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	reservation, err := ctrl.ReservationUsecase.FindByID(ctx, session, appointmentID)
	if err != nil {
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAppointmentSuccessMessage, utils.BuildAppointmentResponse(reservation))
}

func (ctrl *AppointmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	session, ok := sessionFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrTokenMissing(nil))
		return
	}

	appointmentID, err := appointmentIDFromRequest(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("AppointmentController.Cancel called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReservationIDKey, appointmentID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	reservation, err := ctrl.ReservationUsecase.Cancel(ctx, session, appointmentID)
	if err != nil {
		ctrl.Log.Error("AppointmentController.Cancel error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("AppointmentController.Cancel succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CancelAppointmentSuccessMessage, utils.BuildAppointmentResponse(reservation))
}

// Stream pushes appointment snapshots for the filter in the query string as
// server-sent events.
func (ctrl *AppointmentController) Stream(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	session, ok := sessionFromRequest(r)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrTokenMissing(nil))
		return
	}

	query := utils.BuildAppointmentStreamQuery(r)
	if err := utils.ValidateStruct(query); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}
	filter := utils.BuildReservationFilter(query)
	ctrl.Log.Info("AppointmentController.Stream called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Stringer(constvars.LoggingFilterKey, filter),
	)

	sub, err := ctrl.AppointmentProjector.Subscribe(r.Context(), session, filter)
	if err != nil {
		ctrl.Log.Error("AppointmentController.Stream error from projector",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}
	defer sub.Close()

	sse, err := utils.NewSSEWriter(w)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	streamSnapshots(r.Context(), ctrl.Log, sse, sub, heartbeatInterval(ctrl.InternalConfig), func(reservations []models.Reservation) interface{} {
		return utils.BuildAppointmentsResponse(reservations)
	})

	ctrl.Log.Info("AppointmentController.Stream closed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
}

func appointmentIDFromRequest(r *http.Request) (string, error) {
	appointmentID := strings.TrimSpace(chi.URLParam(r, constvars.URLParamAppointmentID))
	if appointmentID == "" {
		return "", exceptions.ErrURLParamIDValidation(errors.New("empty"), constvars.URLParamAppointmentID)
	}
	return appointmentID, nil
}
