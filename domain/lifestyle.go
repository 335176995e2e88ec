package domain

type LifestyleFactor string

const (
	FactorSleepHours       LifestyleFactor = "sleepHours"
	FactorStressLevel      LifestyleFactor = "stressLevel"
	FactorWaterIntakeLevel LifestyleFactor = "waterIntakeLevel"
	FactorAlcohol          LifestyleFactor = "alcohol"
	FactorExerciseMinutes  LifestyleFactor = "exerciseMinutes"
	FactorSunExposureLevel LifestyleFactor = "sunExposureLevel"
	FactorHumidity         LifestyleFactor = "humidity"
	FactorUVIndex          LifestyleFactor = "uvIndex"
	FactorAirQuality       LifestyleFactor = "airQuality"
)

// TrackedFactors lists every lifestyle factor the correlation analyzer looks at, in report order.
var TrackedFactors = []LifestyleFactor{
	FactorSleepHours,
	FactorStressLevel,
	FactorWaterIntakeLevel,
	FactorAlcohol,
	FactorExerciseMinutes,
	FactorSunExposureLevel,
	FactorHumidity,
	FactorUVIndex,
	FactorAirQuality,
}

// DisplayName is the human readable label used in interpretation text.
func (f LifestyleFactor) DisplayName() string {
	switch f {
	case FactorSleepHours:
		return "sleep duration"
	case FactorStressLevel:
		return "stress level"
	case FactorWaterIntakeLevel:
		return "water intake"
	case FactorAlcohol:
		return "alcohol consumption"
	case FactorExerciseMinutes:
		return "exercise time"
	case FactorSunExposureLevel:
		return "sun exposure"
	case FactorHumidity:
		return "humidity"
	case FactorUVIndex:
		return "UV index"
	case FactorAirQuality:
		return "air quality"
	}
	return string(f)
}

type LifestyleFactors struct {
	SleepHours       *float64 `json:"sleep_hours,omitempty" validate:"omitempty,gte=0,lte=24"`
	StressLevel      *int     `json:"stress_level,omitempty" validate:"omitempty,gte=1,lte=5"`
	WaterIntakeLevel *int     `json:"water_intake_level,omitempty" validate:"omitempty,gte=1,lte=5"`
	AlcoholConsumed  *bool    `json:"alcohol_consumed,omitempty"`
	ExerciseMinutes  *int     `json:"exercise_minutes,omitempty" validate:"omitempty,gte=0"`
	SunExposureLevel *int     `json:"sun_exposure_level,omitempty" validate:"omitempty,gte=1,lte=5"`

	Humidity   *float64 `json:"humidity,omitempty" validate:"omitempty,gte=0,lte=100"`
	UVIndex    *float64 `json:"uv_index,omitempty" validate:"omitempty,gte=0"`
	AirQuality *int     `json:"air_quality,omitempty" validate:"omitempty,gte=0"`
}

// Value returns the numeric value recorded for a factor. Booleans map to 0/1.
func (l LifestyleFactors) Value(f LifestyleFactor) (float64, bool) {
	switch f {
	case FactorSleepHours:
		return floatPtr(l.SleepHours)
	case FactorStressLevel:
		return intPtr(l.StressLevel)
	case FactorWaterIntakeLevel:
		return intPtr(l.WaterIntakeLevel)
	case FactorAlcohol:
		if l.AlcoholConsumed == nil {
			return 0, false
		}
		if *l.AlcoholConsumed {
			return 1, true
		}
		return 0, true
	case FactorExerciseMinutes:
		return intPtr(l.ExerciseMinutes)
	case FactorSunExposureLevel:
		return intPtr(l.SunExposureLevel)
	case FactorHumidity:
		return floatPtr(l.Humidity)
	case FactorUVIndex:
		return floatPtr(l.UVIndex)
	case FactorAirQuality:
		return intPtr(l.AirQuality)
	}
	return 0, false
}

func floatPtr(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func intPtr(v *int) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}
