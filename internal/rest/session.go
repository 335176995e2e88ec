package rest

import (
	"context"
	"net/http"
	"time"

	"skinTrack/domain"
	"skinTrack/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TrackingService interface {
	CreateSession(ctx context.Context, userID uint, startDate time.Time, targetProducts []string) (domain.TrackingSession, error)
	GetSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error)
	ListSessions(ctx context.Context, userID uint) ([]domain.TrackingSession, error)
	AddCheckIn(ctx context.Context, userID uint, sessionID uuid.UUID, checkIn domain.CheckIn) (domain.CheckIn, error)
	RecordAnalysis(ctx context.Context, userID uint, analysis domain.SkinAnalysis) (domain.SkinAnalysis, error)
	LinkAnalysis(ctx context.Context, userID uint, sessionID, checkInID, analysisID uuid.UUID) (domain.CheckIn, error)
	CompleteSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error)
	AbandonSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error)
}

type ReportService interface {
	GetReport(ctx context.Context, userID uint, sessionID uuid.UUID) (*domain.TrackingReport, error)
	GetReliability(ctx context.Context, userID uint, sessionID uuid.UUID) (map[uuid.UUID]domain.ReliabilityMetadata, error)
}

type SessionHandler struct {
	trackingService TrackingService
	reportService   ReportService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewSessionHandler(trackingService TrackingService, reportService ReportService) *SessionHandler {
	return &SessionHandler{
		trackingService: trackingService,
		reportService:   reportService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type CreateSessionRequest struct {
	StartDate      *time.Time `json:"start_date,omitempty"`
	TargetProducts []string   `json:"target_products" validate:"max=20,dive,required,max=100"`
}

type AddCheckInRequest struct {
	Day                  *int                                 `json:"day" validate:"required"`
	CaptureDate          *time.Time                           `json:"capture_date,omitempty"`
	PhotoPath            *string                              `json:"photo_path,omitempty" validate:"omitempty,max=512"`
	AnalysisID           *uuid.UUID                           `json:"analysis_id,omitempty"`
	UsedProducts         []string                             `json:"used_products" validate:"max=20,dive,required,max=100"`
	Notes                *string                              `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Feeling              *domain.Feeling                      `json:"feeling,omitempty" validate:"omitempty,oneof=better same worse"`
	PhotoStandardization *domain.PhotoStandardizationMetadata `json:"photo_standardization,omitempty"`
	Lifestyle            *domain.LifestyleFactors             `json:"lifestyle,omitempty"`
}

type LinkAnalysisRequest struct {
	AnalysisID string `json:"analysis_id" validate:"required,uuid"`
}

type RecordAnalysisRequest struct {
	OverallScore    *int               `json:"overall_score" validate:"required,gte=0,lte=100"`
	SkinAge         *int               `json:"skin_age" validate:"required,gt=0,lte=120"`
	IssueScores     domain.IssueScores `json:"issue_scores"`
	ConfidenceScore int                `json:"confidence_score" validate:"gte=0,lte=100"`
	AnalyzedAt      *time.Time         `json:"analyzed_at,omitempty"`
}

func (h *SessionHandler) CreateSession(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var start time.Time
	if req.StartDate != nil {
		start = *req.StartDate
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.trackingService.CreateSession(ctx, userID, start, req.TargetProducts)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(session))
}

func (h *SessionHandler) ListSessions(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	sessions, err := h.trackingService.ListSessions(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sessions))
}

func (h *SessionHandler) GetSession(c echo.Context) error {
	userID, sessionID, err := h.sessionScope(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.trackingService.GetSession(ctx, userID, sessionID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(session))
}

func (h *SessionHandler) CompleteSession(c echo.Context) error {
	return h.close(c, h.trackingService.CompleteSession)
}

func (h *SessionHandler) AbandonSession(c echo.Context) error {
	return h.close(c, h.trackingService.AbandonSession)
}

func (h *SessionHandler) close(c echo.Context, op func(context.Context, uint, uuid.UUID) (domain.TrackingSession, error)) error {
	userID, sessionID, err := h.sessionScope(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := op(ctx, userID, sessionID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(session))
}

func (h *SessionHandler) AddCheckIn(c echo.Context) error {
	userID, sessionID, err := h.sessionScope(c)
	if err != nil {
		return err
	}

	var req AddCheckInRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	checkIn := domain.CheckIn{
		Day:                  *req.Day,
		PhotoPath:            req.PhotoPath,
		AnalysisID:           req.AnalysisID,
		UsedProducts:         req.UsedProducts,
		Notes:                req.Notes,
		Feeling:              req.Feeling,
		PhotoStandardization: req.PhotoStandardization,
		Lifestyle:            req.Lifestyle,
	}
	if req.CaptureDate != nil {
		checkIn.CaptureDate = *req.CaptureDate
	}
	if checkIn.UsedProducts == nil {
		checkIn.UsedProducts = []string{}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.trackingService.AddCheckIn(ctx, userID, sessionID, checkIn)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *SessionHandler) LinkAnalysis(c echo.Context) error {
	userID, sessionID, err := h.sessionScope(c)
	if err != nil {
		return err
	}

	checkInID, err := uuidParam(c, "checkInId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid check-in ID")
	}

	var req LinkAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	linked, err := h.trackingService.LinkAnalysis(ctx, userID, sessionID, checkInID, uuid.MustParse(req.AnalysisID))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(linked))
}

func (h *SessionHandler) RecordAnalysis(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req RecordAnalysisRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	analysis := domain.SkinAnalysis{
		OverallScore:    *req.OverallScore,
		SkinAge:         *req.SkinAge,
		IssueScores:     req.IssueScores,
		ConfidenceScore: req.ConfidenceScore,
	}
	if req.AnalyzedAt != nil {
		analysis.AnalyzedAt = *req.AnalyzedAt
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recorded, err := h.trackingService.RecordAnalysis(ctx, userID, analysis)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(recorded))
}

func (h *SessionHandler) GetReport(c echo.Context) error {
	userID, sessionID, err := h.sessionScope(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	report, err := h.reportService.GetReport(ctx, userID, sessionID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}

func (h *SessionHandler) GetReliability(c echo.Context) error {
	userID, sessionID, err := h.sessionScope(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reliability, err := h.reportService.GetReliability(ctx, userID, sessionID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reliability))
}

// sessionScope resolves the caller and the :id session parameter.
func (h *SessionHandler) sessionScope(c echo.Context) (uint, uuid.UUID, error) {
	userID, ok := currentUserID(c)
	if !ok {
		return 0, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	sessionID, err := uuidParam(c, "id")
	if err != nil {
		return 0, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid session ID")
	}

	return userID, sessionID, nil
}
