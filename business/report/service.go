package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skinTrack/domain"
	"skinTrack/pkg/logger"
	"skinTrack/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.TrackingSession, error)
}

type CheckInRepository interface {
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CheckIn, error)
}

type AnalysisRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.SkinAnalysis, error)
}

// ReportCache holds generated reports until a check-in changes the session.
type ReportCache interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.TrackingReport, error)
	Set(ctx context.Context, report *domain.TrackingReport, ttl time.Duration) error
	Invalidate(ctx context.Context, sessionID uuid.UUID) error
}

type reportService struct {
	sessionRepo  SessionRepository
	checkInRepo  CheckInRepository
	analysisRepo AnalysisRepository
	cache        ReportCache
	generator    *Generator
	ttl          time.Duration
	now          func() time.Time
}

func NewReportService(
	sessionRepo SessionRepository,
	checkInRepo CheckInRepository,
	analysisRepo AnalysisRepository,
	cache ReportCache,
	generator *Generator,
	ttl time.Duration,
) *reportService {
	return &reportService{
		sessionRepo:  sessionRepo,
		checkInRepo:  checkInRepo,
		analysisRepo: analysisRepo,
		cache:        cache,
		generator:    generator,
		ttl:          ttl,
		now:          time.Now,
	}
}

// GetReport serves the session report from cache, generating and caching it
// on a miss. Cache failures degrade to regeneration.
func (s *reportService) GetReport(ctx context.Context, userID uint, sessionID uuid.UUID) (*domain.TrackingReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, sessionID)
	switch {
	case err == nil:
		metrics.ReportCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, domain.ErrReportNotCached):
		metrics.ReportCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.ReportCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("Report cache unavailable, regenerating", "session_id", sessionID.String(), err)
	}

	report, err := s.generate(ctx, session)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, report, s.ttl); err != nil {
		logger.Warn("Failed to cache report", "session_id", sessionID.String(), err)
	}

	return report, nil
}

// GetReliability scores every check-in of the session without building a full report.
func (s *reportService) GetReliability(ctx context.Context, userID uint, sessionID uuid.UUID) (map[uuid.UUID]domain.ReliabilityMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	checkIns, analyses, err := s.load(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	return s.generator.Reliability(session, checkIns, analyses, s.now()), nil
}

func (s *reportService) generate(ctx context.Context, session domain.TrackingSession) (*domain.TrackingReport, error) {
	checkIns, analyses, err := s.load(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(metrics.ReportGenerationDuration)
	report := s.generator.Generate(session, checkIns, analyses, s.now())
	timer.ObserveDuration()

	for _, a := range report.Anomalies {
		metrics.AnomaliesDetected.WithLabelValues(a.Metric, string(a.Severity)).Inc()
	}
	for _, f := range report.Forecasts {
		if f.Alert != nil {
			metrics.PredictiveAlerts.WithLabelValues(f.Alert.Metric, string(f.Alert.Severity)).Inc()
		}
	}

	logger.Debug("Generated tracking report",
		"session_id", session.ID.String(),
		"check_ins", report.CheckInCount,
		"anomalies", len(report.Anomalies),
	)

	return &report, nil
}

func (s *reportService) load(ctx context.Context, sessionID uuid.UUID) ([]domain.CheckIn, map[uuid.UUID]domain.SkinAnalysis, error) {
	checkIns, err := s.checkInRepo.FindBySession(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to load check-ins", err)
		return nil, nil, err
	}

	var ids []uuid.UUID
	for _, ci := range checkIns {
		if ci.AnalysisID != nil {
			ids = append(ids, *ci.AnalysisID)
		}
	}

	analyses := map[uuid.UUID]domain.SkinAnalysis{}
	if len(ids) > 0 {
		analyses, err = s.analysisRepo.FindByIDs(ctx, ids)
		if err != nil {
			logger.Error("Failed to load skin analyses", err)
			return nil, nil, err
		}
	}

	return checkIns, analyses, nil
}

func (s *reportService) ownedSession(ctx context.Context, userID uint, sessionID uuid.UUID) (domain.TrackingSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Error("Failed to load tracking session", err)
		}
		return domain.TrackingSession{}, err
	}

	if session.UserID != userID {
		logger.Warn("Session access denied", "session_id", sessionID.String(), "user_id", userID)
		return domain.TrackingSession{}, domain.ErrForbidden
	}

	return session, nil
}
