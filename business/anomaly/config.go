package anomaly

type Config struct {
	// |z| above this flags a point (z-score method)
	ZScoreThreshold float64
	// modified z above this flags a point (MAD method)
	MADThreshold float64
	// fence width in IQRs (IQR method)
	IQRMultiplier float64
	// z of a step change above this flags a jump
	JumpThreshold float64

	// points needed before any detection runs
	MinSamples int
}

const (
	defaultZScoreThreshold = 2.0
	defaultMADThreshold    = 2.5
	defaultIQRMultiplier   = 1.5
	defaultJumpThreshold   = 2.0
	defaultMinSamples      = 3

	// consistency constant of the modified z-score
	madConsistency = 0.6745

	zModerate   = 3.0
	zSevere     = 3.5
	madModerate = 3.5
	madSevere   = 5.0
	iqrSevere   = 3.0
	jumpSevere  = 5.0
)

func DefaultConfig() Config {
	return Config{
		ZScoreThreshold: defaultZScoreThreshold,
		MADThreshold:    defaultMADThreshold,
		IQRMultiplier:   defaultIQRMultiplier,
		JumpThreshold:   defaultJumpThreshold,
		MinSamples:      defaultMinSamples,
	}
}

// withDefaults fills zero or negative fields so a partially specified
// config never disables detection.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ZScoreThreshold <= 0 {
		c.ZScoreThreshold = d.ZScoreThreshold
	}
	if c.MADThreshold <= 0 {
		c.MADThreshold = d.MADThreshold
	}
	if c.IQRMultiplier <= 0 {
		c.IQRMultiplier = d.IQRMultiplier
	}
	if c.JumpThreshold <= 0 {
		c.JumpThreshold = d.JumpThreshold
	}
	if c.MinSamples < d.MinSamples {
		c.MinSamples = d.MinSamples
	}
	return c
}
