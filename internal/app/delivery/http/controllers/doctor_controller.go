package controllers

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/dto/requests"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/utils"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DoctorController struct {
	Log                *zap.Logger
	ProfileUsecase     contracts.ProfileUsecase
	ReservationUsecase contracts.ReservationUsecase
	InternalConfig     *config.InternalConfig
}

func NewDoctorController(
	logger *zap.Logger,
	profileUsecase contracts.ProfileUsecase,
	reservationUsecase contracts.ReservationUsecase,
	internalConfig *config.InternalConfig,
) *DoctorController {
	return &DoctorController{
		Log:                logger,
		ProfileUsecase:     profileUsecase,
		ReservationUsecase: reservationUsecase,
		InternalConfig:     internalConfig,
	}
}

func (ctrl *DoctorController) ListDoctors(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	ctrl.Log.Info("DoctorController.ListDoctors called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	doctors, err := ctrl.ProfileUsecase.ListDoctors(ctx)
	if err != nil {
		ctrl.Log.Error("DoctorController.ListDoctors error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("DoctorController.ListDoctors succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseCountKey, len(doctors)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetDoctorsSuccessMessage, doctors)
}

func (ctrl *DoctorController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	query := &requests.AvailabilityQuery{
		DoctorID: chi.URLParam(r, constvars.URLParamDoctorID),
		Date:     r.URL.Query().Get("date"),
	}
	ctrl.Log.Info("DoctorController.GetAvailability called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, query.DoctorID),
		zap.String(constvars.LoggingDateKey, query.Date),
	)

	if err := utils.ValidateStruct(query); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout(ctrl.InternalConfig))
	defer cancel()

	slots, err := ctrl.ReservationUsecase.Availability(ctx, query.DoctorID, query.Date)
	if err != nil {
		ctrl.Log.Error("DoctorController.GetAvailability error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		buildUsecaseErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAvailabilitySuccessMessage,
		utils.BuildAvailabilityResponse(query.DoctorID, query.Date, slots))
}
