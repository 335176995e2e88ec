package rest

import (
	"net/http"
	"time"

	"skinTrack/business/anomaly"
	"skinTrack/business/forecast"
	"skinTrack/business/lifestyle"
	"skinTrack/business/producteffect"
	"skinTrack/business/reliability"
	"skinTrack/business/timeseries"
	"skinTrack/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler exposes the pure analytics engines for callers that keep
// their own data. Nothing here touches storage.
type AnalyticsHandler struct {
	detector   *anomaly.Detector
	forecaster *forecast.Engine
	scorer     *reliability.Scorer
	lifestyle  *lifestyle.Analyzer
	products   *producteffect.Analyzer
	emaAlpha   float64
	validator  *validator.Validate
}

// NewAnalyticsHandler uses timeseries.DefaultEMAAlpha when emaAlpha is nil or
// outside [0, 1]. Zero is kept.
func NewAnalyticsHandler(detector *anomaly.Detector, forecaster *forecast.Engine, emaAlpha *float64, minReliability float64) *AnalyticsHandler {
	la := lifestyle.NewAnalyzer()
	if minReliability > 0 {
		la.MinReliability = minReliability
	}
	alpha := timeseries.DefaultEMAAlpha
	if emaAlpha != nil && *emaAlpha >= 0 && *emaAlpha <= 1 {
		alpha = *emaAlpha
	}
	return &AnalyticsHandler{
		detector:   detector,
		forecaster: forecaster,
		scorer:     reliability.NewScorer(),
		lifestyle:  la,
		products:   producteffect.NewAnalyzer(),
		emaAlpha:   alpha,
		validator:  validator.New(),
	}
}

type StatisticsRequest struct {
	Values []float64   `json:"values" validate:"required,min=1,max=1000"`
	Dates  []time.Time `json:"dates,omitempty" validate:"max=1000"`
	Window int         `json:"window,omitempty" validate:"gte=0,lte=30"`
}

type StatisticsResponse struct {
	Statistics          domain.TimeSeriesStatistics `json:"statistics"`
	MovingAverage       []float64                   `json:"moving_average"`
	ExponentialAverage  []float64                   `json:"exponential_average"`
	Slope               float64                     `json:"slope"`
	RSquared            float64                     `json:"r_squared"`
	Volatility          float64                     `json:"volatility"`
	MaxDrawdown         float64                     `json:"max_drawdown"`
	IntervalConsistency *domain.IntervalConsistency `json:"interval_consistency,omitempty"`
}

type SeriesRequest struct {
	Values    []float64            `json:"values" validate:"required,max=1000"`
	Days      []int                `json:"days" validate:"required,max=1000"`
	Dates     []time.Time          `json:"dates" validate:"required,max=1000"`
	Metric    string               `json:"metric" validate:"required,max=50"`
	Method    domain.AnomalyMethod `json:"method,omitempty" validate:"omitempty,oneof=zscore mad iqr"`
	Threshold float64              `json:"threshold,omitempty" validate:"gte=0"`
}

type AnomalyResponse struct {
	Anomalies   []domain.AnomalyDetectionResult `json:"anomalies"`
	DataQuality domain.DataQuality              `json:"data_quality"`
}

type ForecastRequest struct {
	Timeline []domain.ScorePoint `json:"timeline" validate:"required,max=1000"`
	Metric   string              `json:"metric" validate:"required,oneof=overall acne redness sensitivity skinAge"`
	Horizon  int                 `json:"horizon,omitempty" validate:"gte=0,lte=90"`
}

type ReliabilityRequest struct {
	Session  domain.TrackingSession `json:"session"`
	CheckIns []domain.CheckIn       `json:"check_ins" validate:"max=1000,dive"`
	Analyses []domain.SkinAnalysis  `json:"analyses" validate:"max=1000"`
}

type LifestyleRequest struct {
	CheckIns    []domain.CheckIn                         `json:"check_ins" validate:"max=1000,dive"`
	Timeline    []domain.ScorePoint                      `json:"timeline" validate:"max=1000"`
	Reliability map[uuid.UUID]domain.ReliabilityMetadata `json:"reliability,omitempty"`
}

type LifestyleResponse struct {
	Insights []domain.LifestyleCorrelationInsight `json:"insights"`
	Coverage map[domain.LifestyleFactor]int       `json:"coverage"`
}

type ProductRequest struct {
	ProductIDs   []string              `json:"product_ids" validate:"required,min=1,max=20,dive,required"`
	CheckIns     []domain.CheckIn      `json:"check_ins" validate:"max=1000,dive"`
	Analyses     []domain.SkinAnalysis `json:"analyses" validate:"max=1000"`
	ProductNames map[string]string     `json:"product_names,omitempty"`
}

type AttributionResponse struct {
	Weights  map[string]float64            `json:"weights"`
	Insights []domain.ProductEffectInsight `json:"insights"`
	Overlaps []domain.ProductOverlap       `json:"overlaps"`
}

// bind decodes and validates req. A false return means the 400 response has
// already been written.
func (h *AnalyticsHandler) bind(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	return true, nil
}

func (h *AnalyticsHandler) Statistics(c echo.Context) error {
	var req StatisticsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	window := req.Window
	if window == 0 {
		window = 3
	}

	resp := StatisticsResponse{
		Statistics:         timeseries.CalculateStatistics(req.Values),
		MovingAverage:      timeseries.MovingAverage(req.Values, window),
		ExponentialAverage: timeseries.ExponentialMovingAverage(req.Values, h.emaAlpha),
		Slope:              timeseries.Slope(req.Values),
		RSquared:           timeseries.RSquared(req.Values),
		Volatility:         timeseries.Volatility(req.Values),
		MaxDrawdown:        timeseries.MaxDrawdown(req.Values),
	}
	if len(req.Dates) > 1 {
		ic := timeseries.AnalyzeIntervalConsistency(req.Dates)
		resp.IntervalConsistency = &ic
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

func (h *AnalyticsHandler) Anomalies(c echo.Context) error {
	var req SeriesRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	method := req.Method
	if method == "" {
		method = domain.AnomalyMethodZScore
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(AnomalyResponse{
		Anomalies:   h.detector.Detect(req.Values, req.Days, req.Dates, req.Metric, method, req.Threshold),
		DataQuality: h.detector.AssessDataQuality(req.Values),
	}))
}

func (h *AnalyticsHandler) Jumps(c echo.Context) error {
	var req SeriesRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(AnomalyResponse{
		Anomalies:   h.detector.DetectJumps(req.Values, req.Days, req.Dates, req.Metric, req.Threshold),
		DataQuality: h.detector.AssessDataQuality(req.Values),
	}))
}

// Forecast answers 422 when the timeline is too short or flat to fit a trend.
func (h *AnalyticsHandler) Forecast(c echo.Context) error {
	var req ForecastRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	var result *domain.ForecastWithAlert
	if req.Horizon == 0 {
		result = h.forecaster.WithAlert(req.Timeline, req.Metric)
	} else {
		history := forecast.SeriesFor(req.Timeline, req.Metric)
		var f *domain.TrendForecast
		if req.Metric == domain.MetricSensitivity {
			f = h.forecaster.SensitivityForecast(history, req.Horizon)
		} else {
			f = h.forecaster.Forecast(history, req.Metric, req.Horizon)
		}
		if f != nil {
			result = &domain.ForecastWithAlert{Forecast: *f, Alert: f.RiskAlert()}
		}
	}

	if result == nil {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: "not enough data to forecast"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *AnalyticsHandler) Reliability(c echo.Context) error {
	var req ReliabilityRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	scored := h.scorer.ScoreAll(req.Session, req.CheckIns, analysesByID(req.Analyses))
	return c.JSON(http.StatusOK, fres.Response.StatusOK(scored))
}

func (h *AnalyticsHandler) Lifestyle(c echo.Context) error {
	var req LifestyleRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(LifestyleResponse{
		Insights: h.lifestyle.Analyze(req.CheckIns, req.Timeline, req.Reliability),
		Coverage: lifestyle.Coverage(req.CheckIns),
	}))
}

func (h *AnalyticsHandler) ProductAttribution(c echo.Context) error {
	var req ProductRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	analyses := analysesByID(req.Analyses)
	return c.JSON(http.StatusOK, fres.Response.StatusOK(AttributionResponse{
		Weights:  h.products.CalculateAttributionWeights(req.ProductIDs, req.CheckIns, analyses),
		Insights: h.products.Evaluate(req.CheckIns, analyses, req.ProductNames),
		Overlaps: h.products.DetectProductOverlap(req.CheckIns),
	}))
}

// ProductCombination answers 422 when the products were never used together often enough.
func (h *AnalyticsHandler) ProductCombination(c echo.Context) error {
	var req ProductRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	insight := h.products.AnalyzeCombinationEffect(req.ProductIDs, req.CheckIns, analysesByID(req.Analyses))
	if insight == nil {
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: "not enough joint usage to analyze"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(insight))
}

func analysesByID(list []domain.SkinAnalysis) map[uuid.UUID]domain.SkinAnalysis {
	out := make(map[uuid.UUID]domain.SkinAnalysis, len(list))
	for _, a := range list {
		out[a.ID] = a
	}
	return out
}
