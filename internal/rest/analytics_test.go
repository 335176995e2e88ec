package rest

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinTrack/business/anomaly"
	"skinTrack/business/forecast"
	"skinTrack/business/timeseries"
	"skinTrack/domain"
)

func newAnalyticsHandler() *AnalyticsHandler {
	return NewAnalyticsHandler(anomaly.NewDetector(anomaly.Config{}), forecast.NewEngine(forecast.Config{}), nil, 0)
}

func weeklyDates(n int) []time.Time {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, 7*i)
	}
	return out
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestNewAnalyticsHandler_Defaults(t *testing.T) {
	h := newAnalyticsHandler()
	assert.Greater(t, h.emaAlpha, 0.0)
	assert.LessOrEqual(t, h.emaAlpha, 1.0)

	assert.Equal(t, timeseries.DefaultEMAAlpha, h.emaAlpha)

	half := 0.5
	h = NewAnalyticsHandler(anomaly.NewDetector(anomaly.Config{}), forecast.NewEngine(forecast.Config{}), &half, 0.7)
	assert.Equal(t, 0.5, h.emaAlpha)
	assert.Equal(t, 0.7, h.lifestyle.MinReliability)

	tooBig := 1.5
	h = NewAnalyticsHandler(anomaly.NewDetector(anomaly.Config{}), forecast.NewEngine(forecast.Config{}), &tooBig, 0)
	assert.Equal(t, timeseries.DefaultEMAAlpha, h.emaAlpha)
}

func TestAnalyticsHandler_ZeroAlphaFreezesAverage(t *testing.T) {
	zero := 0.0
	h := NewAnalyticsHandler(anomaly.NewDetector(anomaly.Config{}), forecast.NewEngine(forecast.Config{}), &zero, 0)
	assert.Equal(t, 0.0, h.emaAlpha)

	rec := serve(t, http.MethodPost, "/statistics", "/statistics", `{"values":[60,70,80]}`, 7, h.Statistics)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exponential_average":[60,60,60]`)
}

func TestAnalyticsHandler_Statistics(t *testing.T) {
	h := newAnalyticsHandler()

	body := mustJSON(t, map[string]interface{}{
		"values": []float64{60, 62, 64, 66, 68},
		"dates":  weeklyDates(5),
	})
	rec := serve(t, http.MethodPost, "/statistics", "/statistics", body, 7, h.Statistics)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moving_average")
	assert.Contains(t, rec.Body.String(), "interval_consistency")

	rec = serve(t, http.MethodPost, "/statistics", "/statistics", `{"values":[]}`, 7, h.Statistics)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodPost, "/statistics", "/statistics", `{"values":[1,2],"window":31}`, 7, h.Statistics)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_Anomalies(t *testing.T) {
	h := newAnalyticsHandler()

	body := mustJSON(t, map[string]interface{}{
		"values": []float64{60, 61, 20, 62, 61},
		"days":   []int{0, 7, 14, 21, 28},
		"dates":  weeklyDates(5),
		"metric": domain.MetricOverall,
		"method": domain.AnomalyMethodMAD,
	})
	rec := serve(t, http.MethodPost, "/anomalies", "/anomalies", body, 7, h.Anomalies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"day":14`)
	assert.Contains(t, rec.Body.String(), "data_quality")

	bad := mustJSON(t, map[string]interface{}{
		"values": []float64{1, 2, 3},
		"days":   []int{0, 7, 14},
		"dates":  weeklyDates(3),
		"metric": domain.MetricOverall,
		"method": "percentile",
	})
	rec = serve(t, http.MethodPost, "/anomalies", "/anomalies", bad, 7, h.Anomalies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_Jumps(t *testing.T) {
	h := newAnalyticsHandler()

	body := mustJSON(t, map[string]interface{}{
		"values": []float64{60, 61, 60, 61, 60},
		"days":   []int{0, 7, 14, 21, 28},
		"dates":  weeklyDates(5),
		"metric": domain.MetricOverall,
	})
	rec := serve(t, http.MethodPost, "/jumps", "/jumps", body, 7, h.Jumps)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anomalies")
}

func TestAnalyticsHandler_Forecast(t *testing.T) {
	h := newAnalyticsHandler()
	dates := weeklyDates(4)

	timeline := make([]domain.ScorePoint, 4)
	for i := range timeline {
		timeline[i] = domain.ScorePoint{
			CheckInID:    uuid.New(),
			Day:          7 * i,
			Date:         dates[i],
			OverallScore: float64(60 + 4*i),
			SkinAge:      30,
		}
	}

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"configured horizon", map[string]interface{}{"timeline": timeline, "metric": domain.MetricOverall}, http.StatusOK},
		{"explicit horizon", map[string]interface{}{"timeline": timeline, "metric": domain.MetricOverall, "horizon": 14}, http.StatusOK},
		{"too short", map[string]interface{}{"timeline": timeline[:2], "metric": domain.MetricOverall}, http.StatusUnprocessableEntity},
		{"unknown metric", map[string]interface{}{"timeline": timeline, "metric": "pores"}, http.StatusBadRequest},
		{"horizon too long", map[string]interface{}{"timeline": timeline, "metric": domain.MetricOverall, "horizon": 365}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, http.MethodPost, "/forecast", "/forecast", mustJSON(t, tt.body), 7, h.Forecast)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), "forecast")
			}
		})
	}
}

func TestAnalyticsHandler_Reliability(t *testing.T) {
	h := newAnalyticsHandler()
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	checkInID := uuid.New()

	body := mustJSON(t, map[string]interface{}{
		"session": domain.TrackingSession{ID: uuid.New(), StartDate: start, Status: domain.SessionActive},
		"check_ins": []domain.CheckIn{
			{ID: checkInID, Day: 0, CaptureDate: start, UsedProducts: []string{}},
		},
	})
	rec := serve(t, http.MethodPost, "/reliability", "/reliability", body, 7, h.Reliability)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), checkInID.String())

	rec = serve(t, http.MethodPost, "/reliability", "/reliability", `{"check_ins":"nope"}`, 7, h.Reliability)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_RejectsUnknownPhotoTags(t *testing.T) {
	h := newAnalyticsHandler()
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		meta domain.PhotoStandardizationMetadata
	}{
		{"lighting", domain.PhotoStandardizationMetadata{Lighting: "dark", Distance: domain.DistanceOptimal, CaptureSource: domain.CaptureSourceCamera}},
		{"distance", domain.PhotoStandardizationMetadata{Lighting: domain.LightingOptimal, Distance: "far", CaptureSource: domain.CaptureSourceCamera}},
		{"source", domain.PhotoStandardizationMetadata{Lighting: domain.LightingOptimal, Distance: domain.DistanceOptimal, CaptureSource: "upload"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := tt.meta
			checkIns := []domain.CheckIn{{ID: uuid.New(), CaptureDate: start, PhotoStandardization: &meta}}

			body := mustJSON(t, map[string]interface{}{
				"session":   domain.TrackingSession{ID: uuid.New(), StartDate: start, Status: domain.SessionActive},
				"check_ins": checkIns,
			})
			rec := serve(t, http.MethodPost, "/reliability", "/reliability", body, 7, h.Reliability)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			body = mustJSON(t, map[string]interface{}{"check_ins": checkIns, "timeline": []domain.ScorePoint{}})
			rec = serve(t, http.MethodPost, "/lifestyle", "/lifestyle", body, 7, h.Lifestyle)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			body = mustJSON(t, map[string]interface{}{"product_ids": []string{"A", "B"}, "check_ins": checkIns})
			rec = serve(t, http.MethodPost, "/products/combination", "/products/combination", body, 7, h.ProductCombination)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	valid := domain.PhotoStandardizationMetadata{Lighting: domain.LightingOptimal, FaceDetected: true, Distance: domain.DistanceOptimal, CaptureSource: domain.CaptureSourceCamera}
	body := mustJSON(t, map[string]interface{}{
		"session":   domain.TrackingSession{ID: uuid.New(), StartDate: start, Status: domain.SessionActive},
		"check_ins": []domain.CheckIn{{ID: uuid.New(), CaptureDate: start, PhotoStandardization: &valid}},
	})
	rec := serve(t, http.MethodPost, "/reliability", "/reliability", body, 7, h.Reliability)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyticsHandler_Lifestyle(t *testing.T) {
	h := newAnalyticsHandler()

	rec := serve(t, http.MethodPost, "/lifestyle", "/lifestyle", `{"check_ins":[],"timeline":[]}`, 7, h.Lifestyle)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coverage")
}

func productFixture(n int, products ...string) ([]domain.CheckIn, []domain.SkinAnalysis) {
	dates := weeklyDates(n)
	checkIns := make([]domain.CheckIn, n)
	analyses := make([]domain.SkinAnalysis, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		analyses[i] = domain.SkinAnalysis{ID: id, OverallScore: 60 + 3*i, SkinAge: 30, AnalyzedAt: dates[i]}
		checkIns[i] = domain.CheckIn{
			ID:           uuid.New(),
			Day:          7 * i,
			CaptureDate:  dates[i],
			AnalysisID:   &id,
			UsedProducts: products,
		}
	}
	return checkIns, analyses
}

func TestAnalyticsHandler_ProductAttribution(t *testing.T) {
	h := newAnalyticsHandler()
	checkIns, analyses := productFixture(4, "A", "B")

	body := mustJSON(t, map[string]interface{}{
		"product_ids": []string{"A", "B"},
		"check_ins":   checkIns,
		"analyses":    analyses,
	})
	rec := serve(t, http.MethodPost, "/products/attribution", "/products/attribution", body, 7, h.ProductAttribution)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weights")
	assert.Contains(t, rec.Body.String(), "overlaps")

	rec = serve(t, http.MethodPost, "/products/attribution", "/products/attribution", `{"product_ids":[]}`, 7, h.ProductAttribution)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_ProductCombination(t *testing.T) {
	h := newAnalyticsHandler()

	rec := serve(t, http.MethodPost, "/products/combination", "/products/combination",
		`{"product_ids":["A","B"],"check_ins":[],"analyses":[]}`, 7, h.ProductCombination)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, http.MethodPost, "/products/combination", "/products/combination",
		`{"product_ids":[""]}`, 7, h.ProductCombination)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysesByID(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := analysesByID([]domain.SkinAnalysis{{ID: a, OverallScore: 50}, {ID: b, OverallScore: 70}})

	require.Len(t, got, 2)
	assert.Equal(t, 70, got[b].OverallScore)
}
