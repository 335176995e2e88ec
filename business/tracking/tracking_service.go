package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skinTrack/business/reliability"
	"skinTrack/domain"
	"skinTrack/pkg/logger"
	"skinTrack/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.TrackingSession) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.TrackingSession, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.TrackingSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error
}

type CheckInRepository interface {
	Create(ctx context.Context, checkIn *domain.CheckIn) error
	Save(ctx context.Context, checkIn *domain.CheckIn) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.CheckIn, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CheckIn, error)
}

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.SkinAnalysis) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.SkinAnalysis, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.SkinAnalysis, error)
}

// ReportInvalidator drops a cached report once its session changes.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, sessionID uuid.UUID) error
}

type trackingService struct {
	sessionRepo  SessionRepository
	checkInRepo  CheckInRepository
	analysisRepo AnalysisRepository
	reports      ReportInvalidator
	scorer       *reliability.Scorer
	validate     *validator.Validate
	noteKey      string
	now          func() time.Time
}

func NewTrackingService(
	sessionRepo SessionRepository,
	checkInRepo CheckInRepository,
	analysisRepo AnalysisRepository,
	reports ReportInvalidator,
	validate *validator.Validate,
	noteKey string,
) *trackingService {
	return &trackingService{
		sessionRepo:  sessionRepo,
		checkInRepo:  checkInRepo,
		analysisRepo: analysisRepo,
		reports:      reports,
		scorer:       reliability.NewScorer(),
		validate:     validate,
		noteKey:      noteKey,
		now:          time.Now,
	}
}

func (s *trackingService) CreateSession(ctx context.Context, userID uint, startDate time.Time, targetProducts []string) (domain.TrackingSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.TrackingSession{}, fmt.Errorf("context error: %w", err)
	}

	if startDate.IsZero() {
		startDate = s.now()
	}

	products := make([]string, 0, len(targetProducts))
	for _, p := range targetProducts {
		if p = strings.TrimSpace(p); p != "" {
			products = append(products, p)
		}
	}

	session := domain.TrackingSession{
		ID:             uuid.New(),
		UserID:         userID,
		StartDate:      startDate.UTC(),
		TargetProducts: products,
		Status:         domain.SessionActive,
	}

	if err := s.sessionRepo.Create(ctx, &session); err != nil {
		logger.Error("Failed to create tracking session", err)
		return domain.TrackingSession{}, err
	}

	logger.Info("Tracking session started", "session_id", session.ID.String(), "user_id", userID)
	return session, nil
}

// GetSession returns the session with its check-ins, notes decrypted.
func (s *trackingService) GetSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.TrackingSession{}, fmt.Errorf("context error: %w", err)
	}

	session, err := s.ownedSession(ctx, userID, id)
	if err != nil {
		return domain.TrackingSession{}, err
	}

	checkIns, err := s.checkInRepo.FindBySession(ctx, id)
	if err != nil {
		logger.Error("Failed to load check-ins", err)
		return domain.TrackingSession{}, err
	}

	for i := range checkIns {
		s.revealNote(&checkIns[i])
	}
	session.CheckIns = checkIns

	return session, nil
}

func (s *trackingService) ListSessions(ctx context.Context, userID uint) ([]domain.TrackingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	sessions, err := s.sessionRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list tracking sessions", err)
		return nil, err
	}

	return sessions, nil
}

// AddCheckIn records a check-in on an active session, then rescores the
// reliability of every check-in in the session.
func (s *trackingService) AddCheckIn(ctx context.Context, userID uint, sessionID uuid.UUID, checkIn domain.CheckIn) (domain.CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return domain.CheckIn{}, fmt.Errorf("context error: %w", err)
	}

	if checkIn.Day < 0 {
		return domain.CheckIn{}, domain.ErrInvalidDay
	}

	session, err := s.openSession(ctx, userID, sessionID)
	if err != nil {
		return domain.CheckIn{}, err
	}

	if checkIn.PhotoStandardization != nil {
		if err := s.validate.Struct(checkIn.PhotoStandardization); err != nil {
			logger.Warn("Invalid photo standardization metadata", err)
			return domain.CheckIn{}, err
		}
	}
	if checkIn.Lifestyle != nil {
		if err := s.validate.Struct(checkIn.Lifestyle); err != nil {
			logger.Warn("Invalid lifestyle factors", err)
			return domain.CheckIn{}, err
		}
	}

	if checkIn.AnalysisID != nil {
		if _, err := s.ownedAnalysis(ctx, userID, *checkIn.AnalysisID); err != nil {
			return domain.CheckIn{}, err
		}
	}

	plainNote := checkIn.Notes
	if plainNote != nil && *plainNote != "" {
		sealed, err := sealNote(*plainNote, s.noteKey)
		if err != nil {
			logger.Error("Failed to encrypt check-in note", err)
			return domain.CheckIn{}, err
		}
		checkIn.Notes = &sealed
	}

	checkIn.ID = uuid.New()
	checkIn.SessionID = session.ID
	checkIn.Reliability = nil
	if checkIn.CaptureDate.IsZero() {
		checkIn.CaptureDate = s.now()
	}
	checkIn.CaptureDate = checkIn.CaptureDate.UTC()

	if err := s.checkInRepo.Create(ctx, &checkIn); err != nil {
		logger.Error("Failed to create check-in", err)
		return domain.CheckIn{}, err
	}
	metrics.CheckInsRecorded.Inc()

	scored, err := s.refreshReliability(ctx, session)
	if err != nil {
		return domain.CheckIn{}, err
	}
	if rel, ok := scored[checkIn.ID]; ok {
		checkIn.Reliability = &rel
	}

	s.invalidate(ctx, session.ID)

	checkIn.Notes = plainNote
	return checkIn, nil
}

// RecordAnalysis stores a result produced by the external scoring service.
func (s *trackingService) RecordAnalysis(ctx context.Context, userID uint, analysis domain.SkinAnalysis) (domain.SkinAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return domain.SkinAnalysis{}, fmt.Errorf("context error: %w", err)
	}

	if err := s.validate.Var(analysis.OverallScore, "gte=0,lte=100"); err != nil {
		return domain.SkinAnalysis{}, domain.InvalidInput("overall score must be between 0 and 100")
	}
	if err := s.validate.Var(analysis.ConfidenceScore, "gte=0,lte=100"); err != nil {
		return domain.SkinAnalysis{}, domain.InvalidInput("confidence score must be between 0 and 100")
	}
	if err := s.validate.Var(analysis.SkinAge, "gt=0,lte=120"); err != nil {
		return domain.SkinAnalysis{}, domain.InvalidInput("skin age must be between 1 and 120")
	}
	if err := s.validate.Struct(analysis.IssueScores); err != nil {
		return domain.SkinAnalysis{}, err
	}

	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = s.now()
	}
	analysis.AnalyzedAt = analysis.AnalyzedAt.UTC()
	analysis.UserID = userID

	if err := s.analysisRepo.Create(ctx, &analysis); err != nil {
		logger.Error("Failed to store skin analysis", err)
		return domain.SkinAnalysis{}, err
	}

	return analysis, nil
}

// LinkAnalysis attaches a recorded analysis to a check-in of an active session.
func (s *trackingService) LinkAnalysis(ctx context.Context, userID uint, sessionID, checkInID, analysisID uuid.UUID) (domain.CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return domain.CheckIn{}, fmt.Errorf("context error: %w", err)
	}

	session, err := s.openSession(ctx, userID, sessionID)
	if err != nil {
		return domain.CheckIn{}, err
	}

	checkIn, err := s.checkInRepo.FindByID(ctx, checkInID)
	if err != nil {
		if !errors.Is(err, domain.ErrCheckInNotFound) {
			logger.Error("Failed to load check-in", err)
		}
		return domain.CheckIn{}, err
	}
	if checkIn.SessionID != session.ID {
		return domain.CheckIn{}, domain.ErrCheckInNotFound
	}

	if _, err := s.ownedAnalysis(ctx, userID, analysisID); err != nil {
		return domain.CheckIn{}, err
	}

	checkIn.AnalysisID = &analysisID
	if err := s.checkInRepo.Save(ctx, &checkIn); err != nil {
		logger.Error("Failed to link analysis", err)
		return domain.CheckIn{}, err
	}

	scored, err := s.refreshReliability(ctx, session)
	if err != nil {
		return domain.CheckIn{}, err
	}
	if rel, ok := scored[checkIn.ID]; ok {
		checkIn.Reliability = &rel
	}

	s.invalidate(ctx, session.ID)

	s.revealNote(&checkIn)
	return checkIn, nil
}

func (s *trackingService) CompleteSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error) {
	return s.finish(ctx, userID, id, domain.SessionCompleted)
}

func (s *trackingService) AbandonSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error) {
	return s.finish(ctx, userID, id, domain.SessionAbandoned)
}

func (s *trackingService) finish(ctx context.Context, userID uint, id uuid.UUID, status domain.SessionStatus) (domain.TrackingSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.TrackingSession{}, fmt.Errorf("context error: %w", err)
	}

	session, err := s.openSession(ctx, userID, id)
	if err != nil {
		return domain.TrackingSession{}, err
	}

	if err := s.sessionRepo.UpdateStatus(ctx, id, status); err != nil {
		logger.Error("Failed to update session status", err)
		return domain.TrackingSession{}, err
	}

	s.invalidate(ctx, id)

	logger.Info("Tracking session closed", "session_id", id.String(), "status", string(status))
	session.Status = status
	return session, nil
}

// refreshReliability scores every check-in of the session and persists the
// ones whose cached score changed. Camera consistency depends on the whole
// session, so a new check-in can shift earlier scores.
func (s *trackingService) refreshReliability(ctx context.Context, session domain.TrackingSession) (map[uuid.UUID]domain.ReliabilityMetadata, error) {
	checkIns, err := s.checkInRepo.FindBySession(ctx, session.ID)
	if err != nil {
		logger.Error("Failed to load check-ins", err)
		return nil, err
	}

	var ids []uuid.UUID
	for _, ci := range checkIns {
		if ci.AnalysisID != nil {
			ids = append(ids, *ci.AnalysisID)
		}
	}
	analyses := map[uuid.UUID]domain.SkinAnalysis{}
	if len(ids) > 0 {
		if analyses, err = s.analysisRepo.FindByIDs(ctx, ids); err != nil {
			logger.Error("Failed to load skin analyses", err)
			return nil, err
		}
	}

	scored := s.scorer.WithClock(s.now).ScoreAll(session, checkIns, analyses)
	for _, ci := range checkIns {
		rel := scored[ci.ID]
		if ci.Reliability != nil && sameReliability(*ci.Reliability, rel) {
			continue
		}
		ci.Reliability = &rel
		if err := s.checkInRepo.Save(ctx, &ci); err != nil {
			logger.Error("Failed to cache check-in reliability", err)
			return nil, err
		}
		metrics.ReliabilityScores.Observe(rel.Score)
	}

	return scored, nil
}

func (s *trackingService) ownedSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Error("Failed to load tracking session", err)
		}
		return domain.TrackingSession{}, err
	}

	if session.UserID != userID {
		logger.Warn("Session access denied", "session_id", id.String(), "user_id", userID)
		return domain.TrackingSession{}, domain.ErrForbidden
	}

	return session, nil
}

// openSession is ownedSession that also rejects completed and abandoned sessions.
func (s *trackingService) openSession(ctx context.Context, userID uint, id uuid.UUID) (domain.TrackingSession, error) {
	session, err := s.ownedSession(ctx, userID, id)
	if err != nil {
		return domain.TrackingSession{}, err
	}
	if session.IsTerminal() {
		return domain.TrackingSession{}, domain.ErrSessionClosed
	}
	return session, nil
}

func (s *trackingService) ownedAnalysis(ctx context.Context, userID uint, id uuid.UUID) (domain.SkinAnalysis, error) {
	analysis, err := s.analysisRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrAnalysisNotFound) {
			logger.Error("Failed to load skin analysis", err)
		}
		return domain.SkinAnalysis{}, err
	}
	if analysis.UserID != userID {
		return domain.SkinAnalysis{}, domain.ErrForbidden
	}
	return analysis, nil
}

func (s *trackingService) invalidate(ctx context.Context, sessionID uuid.UUID) {
	if err := s.reports.Invalidate(ctx, sessionID); err != nil {
		logger.Warn("Failed to invalidate cached report", "session_id", sessionID.String(), err)
	}
}

// revealNote decrypts a stored note in place. Undecryptable notes are dropped.
func (s *trackingService) revealNote(ci *domain.CheckIn) {
	if ci.Notes == nil || *ci.Notes == "" {
		return
	}
	plain, err := openNote(*ci.Notes, s.noteKey)
	if err != nil {
		logger.Warn("Failed to decrypt check-in note", "check_in_id", ci.ID.String(), err)
		ci.Notes = nil
		return
	}
	ci.Notes = &plain
}

func sameReliability(a, b domain.ReliabilityMetadata) bool {
	if a.Score != b.Score || a.Level != b.Level || len(a.Reasons) != len(b.Reasons) {
		return false
	}
	for i := range a.Reasons {
		if a.Reasons[i] != b.Reasons[i] {
			return false
		}
	}
	return true
}
