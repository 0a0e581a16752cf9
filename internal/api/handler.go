package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yakoovad/planner/internal/model"
	"github.com/yakoovad/planner/internal/service"
	"github.com/yakoovad/planner/pkg/logger"
	"go.uber.org/zap"
	"net/http"
)

type Handler struct {
	trips         *service.TripService
	confirmations *service.ConfirmationService

	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithTripService(trips *service.TripService) *Handler {
	h.trips = trips
	return h
}

func (h *Handler) WithConfirmationService(confirmations *service.ConfirmationService) *Handler {
	h.confirmations = confirmations
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	e.POST("/trips", h.CreateTrip)
	e.GET("/trips/:tripId", h.GetTrip)
	e.GET("/trips/:tripId/confirm", h.ConfirmTrip)
}

type createTripRequest struct {
	Destination    string   `json:"destination" validate:"required,min=4"`
	StartsAt       DateTime `json:"starts_at" validate:"required"`
	EndsAt         DateTime `json:"ends_at" validate:"required"`
	OwnerName      string   `json:"owner_name" validate:"required"`
	OwnerEmail     string   `json:"owner_email" validate:"required,email"`
	EmailsToInvite []string `json:"emails_to_invite" validate:"required,dive,email"`
}

func (r *createTripRequest) toModel() *model.NewTrip {
	return &model.NewTrip{
		Destination:    r.Destination,
		StartsAt:       r.StartsAt.Time,
		EndsAt:         r.EndsAt.Time,
		OwnerName:      r.OwnerName,
		OwnerEmail:     r.OwnerEmail,
		EmailsToInvite: r.EmailsToInvite,
	}
}

type createTripResponse struct {
	TripID uuid.UUID `json:"tripId"`
}

func (h *Handler) CreateTrip(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	req := &createTripRequest{}

	if err := decodeRequest(e, req); err != nil {
		l.Info("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating trip",
		zap.String("destination", req.Destination),
		zap.Time("starts_at", req.StartsAt.Time),
		zap.Time("ends_at", req.EndsAt.Time),
		zap.Int("invites", len(req.EmailsToInvite)))

	tripID, err := h.trips.CreateTrip(e.Request().Context(), req.toModel())
	if err != nil {
		l.Warn("failed to create trip", zap.String("destination", req.Destination), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, createTripResponse{TripID: tripID})
}

func (h *Handler) GetTrip(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	tripID, err := tripIDParam(e)
	if err != nil {
		return h.transportError(e, err)
	}

	details, err := h.trips.GetTrip(e.Request().Context(), tripID)
	if err != nil {
		l.Warn("failed to get trip", zap.Stringer("trip_id", tripID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, details)
}

// ConfirmTrip is opened from the owner's email, so it answers with a
// redirect instead of a JSON body.
func (h *Handler) ConfirmTrip(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	tripID, err := tripIDParam(e)
	if err != nil {
		return h.transportError(e, err)
	}

	l.Info("confirming trip", zap.Stringer("trip_id", tripID))

	confirmation, err := h.confirmations.ConfirmTrip(e.Request().Context(), tripID)
	if err != nil {
		l.Warn("failed to confirm trip", zap.Stringer("trip_id", tripID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("trip confirmation handled",
		zap.Stringer("trip_id", tripID),
		zap.Bool("already_confirmed", confirmation.AlreadyConfirmed),
		zap.Any("report", confirmation.Report))

	return e.Redirect(http.StatusFound, confirmation.RedirectURL)
}

func tripIDParam(e echo.Context) (uuid.UUID, *service.Error) {
	id, err := uuid.Parse(e.Param("tripId"))
	if err != nil {
		return uuid.Nil, service.NewError(service.ErrorCodeInvalidID, "trip id must be a uuid")
	}
	return id, nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeInvalidBody, service.ErrorCodeInvalidID,
		service.ErrorCodeInvalidStartDate, service.ErrorCodeInvalidEndDate:
		return e.JSON(http.StatusBadRequest, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}
