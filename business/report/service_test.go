//go:build !integration

package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skinTrack/domain"
)

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.TrackingSession, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.TrackingSession), args.Error(1)
}

type mockCheckInRepo struct{ mock.Mock }

func (m *mockCheckInRepo) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CheckIn, error) {
	args := m.Called(ctx, sessionID)
	checkIns, _ := args.Get(0).([]domain.CheckIn)
	return checkIns, args.Error(1)
}

type mockAnalysisRepo struct{ mock.Mock }

func (m *mockAnalysisRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.SkinAnalysis, error) {
	args := m.Called(ctx, ids)
	analyses, _ := args.Get(0).(map[uuid.UUID]domain.SkinAnalysis)
	return analyses, args.Error(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, sessionID uuid.UUID) (*domain.TrackingReport, error) {
	args := m.Called(ctx, sessionID)
	r, _ := args.Get(0).(*domain.TrackingReport)
	return r, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, report *domain.TrackingReport, ttl time.Duration) error {
	return m.Called(ctx, report, ttl).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, sessionID uuid.UUID) error {
	return m.Called(ctx, sessionID).Error(0)
}

type deps struct {
	sessions *mockSessionRepo
	checkIns *mockCheckInRepo
	analyses *mockAnalysisRepo
	cache    *mockCache
}

func newService() (*reportService, deps) {
	d := deps{&mockSessionRepo{}, &mockCheckInRepo{}, &mockAnalysisRepo{}, &mockCache{}}
	svc := NewReportService(d.sessions, d.checkIns, d.analyses, d.cache, NewGenerator(Config{}), 10*time.Minute)
	svc.now = func() time.Time { return now }
	return svc, d
}

func TestGetReport_CacheHit(t *testing.T) {
	svc, d := newService()
	session, _, _ := improvingSession()
	cached := &domain.TrackingReport{SessionID: session.ID}

	d.sessions.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	d.cache.On("Get", mock.Anything, session.ID).Return(cached, nil)

	got, err := svc.GetReport(context.Background(), session.UserID, session.ID)

	require.NoError(t, err)
	assert.Same(t, cached, got)
	d.checkIns.AssertNotCalled(t, "FindBySession", mock.Anything, mock.Anything)
}

func TestGetReport_MissGeneratesAndCaches(t *testing.T) {
	svc, d := newService()
	session, checkIns, analyses := improvingSession()

	d.sessions.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	d.cache.On("Get", mock.Anything, session.ID).Return(nil, domain.ErrReportNotCached)
	d.checkIns.On("FindBySession", mock.Anything, session.ID).Return(checkIns, nil)
	d.analyses.On("FindByIDs", mock.Anything, mock.AnythingOfType("[]uuid.UUID")).Return(analyses, nil)
	d.cache.On("Set", mock.Anything, mock.AnythingOfType("*domain.TrackingReport"), 10*time.Minute).Return(nil)

	got, err := svc.GetReport(context.Background(), session.UserID, session.ID)

	require.NoError(t, err)
	assert.Equal(t, session.ID, got.SessionID)
	assert.Len(t, got.Timeline, 4)
	assert.Equal(t, now, got.GeneratedAt)
	d.cache.AssertExpectations(t)
}

func TestGetReport_CacheFailuresDoNotFailTheRequest(t *testing.T) {
	svc, d := newService()
	session, checkIns, analyses := improvingSession()

	d.sessions.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	d.cache.On("Get", mock.Anything, session.ID).Return(nil, errors.New("connection refused"))
	d.checkIns.On("FindBySession", mock.Anything, session.ID).Return(checkIns, nil)
	d.analyses.On("FindByIDs", mock.Anything, mock.Anything).Return(analyses, nil)
	d.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	got, err := svc.GetReport(context.Background(), session.UserID, session.ID)

	require.NoError(t, err)
	assert.Equal(t, 5, got.CheckInCount)
}

func TestGetReport_OtherUsersSession(t *testing.T) {
	svc, d := newService()
	session, _, _ := improvingSession()
	d.sessions.On("FindByID", mock.Anything, session.ID).Return(session, nil)

	_, err := svc.GetReport(context.Background(), session.UserID+1, session.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	d.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetReport_SessionNotFound(t *testing.T) {
	svc, d := newService()
	id := uuid.New()
	d.sessions.On("FindByID", mock.Anything, id).Return(domain.TrackingSession{}, domain.ErrSessionNotFound)

	_, err := svc.GetReport(context.Background(), 1, id)

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetReport_RepositoryError(t *testing.T) {
	svc, d := newService()
	session, _, _ := improvingSession()
	dbErr := errors.New("db down")

	d.sessions.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	d.cache.On("Get", mock.Anything, session.ID).Return(nil, domain.ErrReportNotCached)
	d.checkIns.On("FindBySession", mock.Anything, session.ID).Return(nil, dbErr)

	_, err := svc.GetReport(context.Background(), session.UserID, session.ID)

	assert.ErrorIs(t, err, dbErr)
	d.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetReport_CancelledContext(t *testing.T) {
	svc, _ := newService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetReport(ctx, 1, uuid.New())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetReliability(t *testing.T) {
	svc, d := newService()
	session := domain.TrackingSession{ID: uuid.New(), UserID: 3, StartDate: start}
	checkIns := []domain.CheckIn{{ID: uuid.New(), SessionID: session.ID, Day: 0, CaptureDate: start}}

	d.sessions.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	d.checkIns.On("FindBySession", mock.Anything, session.ID).Return(checkIns, nil)

	got, err := svc.GetReliability(context.Background(), 3, session.ID)

	require.NoError(t, err)
	require.Contains(t, got, checkIns[0].ID)
	assert.Equal(t, now, got[checkIns[0].ID].ComputedAt)
	// no analysis ids, so the analysis repository is never queried
	d.analyses.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}
