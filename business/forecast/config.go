package forecast

import (
	"gonum.org/v1/gonum/stat/distuv"

	"skinTrack/domain"
)

type Config struct {
	// two-sided level of the prediction interval, e.g. 0.95
	ConfidenceLevel float64
	// default horizon per metric, in days
	Horizons map[string]int
}

const (
	defaultConfidenceLevel = 0.95
	defaultHorizon         = 7

	minSamples = 3
)

func DefaultConfig() Config {
	return Config{
		ConfidenceLevel: defaultConfidenceLevel,
		Horizons: map[string]int{
			domain.MetricOverall: 7,
			domain.MetricAcne:    7,
			domain.MetricRedness: 7,
			domain.MetricSkinAge: 14,
		},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		c.ConfidenceLevel = d.ConfidenceLevel
	}
	if len(c.Horizons) == 0 {
		c.Horizons = d.Horizons
	}
	return c
}

// HorizonFor returns the configured horizon for metric, or a week.
func (c Config) HorizonFor(metric string) int {
	if h, ok := c.Horizons[metric]; ok && h > 0 {
		return h
	}
	return defaultHorizon
}

// tValue is the two-sided Student's t critical value for the configured
// level with df degrees of freedom.
func (c Config) tValue(df float64) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return t.Quantile(1 - (1-c.ConfidenceLevel)/2)
}
