package forecast

import (
	"fmt"
	"sort"

	"github.com/dashirov/neural-prophet/internal/nn"
)

// Component parameter sharing across tracked series.
const (
	// ShareGlobal uses one parameter set for every series.
	ShareGlobal = "global"
	// ShareLocal learns an independent parameter set per series.
	ShareLocal = "local"
	// ShareGlocal learns a shared base plus a per-series offset.
	ShareGlocal = "glocal"
)

// Component effect modes.
const (
	ModeAdditive       = "additive"
	ModeMultiplicative = "multiplicative"
)

// TrendConfig configures the piecewise-linear trend component.
type TrendConfig struct {
	// Growth is "linear" (default) or "off" (constant offset only).
	Growth string
	// NChangepoints is the number of potential slope changes, laid out on
	// an even grid over the changepoint range of normalized time.
	NChangepoints int
	// ChangepointsRange is the fraction of normalized training time that
	// may contain changepoints (default 0.8).
	ChangepointsRange float64
	// GlobalLocal selects parameter sharing across series.
	GlobalLocal string
	// Reg is the changepoint-delta sparsity weight; 0 disables.
	Reg float64
	// RegThreshold is the soft threshold under which delta magnitudes are
	// not penalized.
	RegThreshold float64
	// LocalReg penalizes per-series parameters deviating from their
	// cross-series mean; only meaningful for local sharing.
	LocalReg float64
}

// SeasonalPeriod is one named periodic term.
type SeasonalPeriod struct {
	// Period length in days (7 for weekly, 365.25 for yearly).
	Period float64
	// K is the number of Fourier harmonics.
	K int
}

// SeasonalityConfig configures the Fourier seasonality component.
// All periods share one mode and one sharing policy.
type SeasonalityConfig struct {
	Periods     map[string]SeasonalPeriod
	Mode        string // additive or multiplicative
	GlobalLocal string // global, local or glocal
	Reg         float64
	LocalReg    float64
}

// EventConfig configures one event or holiday with learned scalar effects.
type EventConfig struct {
	Name string
	Mode string // additive or multiplicative; unknown values are coerced to additive
	Reg  float64
}

// RegressorConfig configures one future regressor with learned scalar effects.
type RegressorConfig struct {
	Name string
	Mode string // additive or multiplicative
	Reg  float64
}

// LaggedRegressorConfig configures one lagged covariate fed into the
// shared covariate network.
type LaggedRegressorConfig struct {
	Name string
	// NLags overrides the model lag count for this covariate; 0 inherits.
	NLags int
	Reg   float64
}

// ARConfig configures the autoregressive network over the lag window.
type ARConfig struct {
	// HiddenLayers gives the width of each hidden layer; empty means a
	// single linear layer from lags to forecasts.
	HiddenLayers []int
	Reg          float64
}

// NormalizationConfig carries the stored shift/scale used to map
// predictions back to original units for metric reporting. When Global is
// false denormalization is the identity.
type NormalizationConfig struct {
	Global bool
	Shift  float64
	Scale  float64
}

// TrainConfig carries the training collaborator's settings: loss,
// optimizer and scheduler parameters, regularization ramp and recency bias.
type TrainConfig struct {
	// Loss is the elementwise loss; nil defaults to Huber with beta 1.
	// Models with more than one quantile always use the pinball loss.
	Loss nn.LossFunc

	Optimizer    string // "AdamW" (default) or "SGD"
	LearningRate float64
	Epochs       int
	BatchSize    int

	// Regularization ramp thresholds over training progress in [0, 1]:
	// no gated regularization before RegStartPct, full strength after
	// RegFullPct, half-cosine ramp between.
	RegStartPct float64
	RegFullPct  float64

	// NewerSamplesWeight is the end weight of the recency-bias ramp;
	// 1 means uniform weighting. NewerSamplesStart is the fraction of
	// normalized time at which the ramp begins.
	NewerSamplesWeight float64
	NewerSamplesStart  float64

	// FindingLR switches to the learning-rate range test: the scheduler
	// steps geometrically per batch and regularization is suppressed.
	FindingLR bool
}

// Config is the immutable model configuration, created once and validated
// at model construction.
type Config struct {
	// NForecasts is the forecast horizon length. NLags is the lag window
	// length; 0 disables autoregression.
	NForecasts int
	NLags      int

	// Quantiles in ascending order. Must contain 0.5 unless it is the
	// singleton point forecast.
	Quantiles []float64

	Trend            TrendConfig
	Seasonality      *SeasonalityConfig
	Events           []EventConfig
	Regressors       []RegressorConfig
	LaggedRegressors []LaggedRegressorConfig
	AR               ARConfig

	// CovarHiddenLayers configures the shared covariate network.
	CovarHiddenLayers []int

	// IDList names the tracked series; per-batch metadata indexes into it.
	// Empty means one unnamed global series.
	IDList []string

	Normalization NormalizationConfig
	Train         TrainConfig
}

// withDefaults fills unset fields; called by New before validation.
func (c Config) withDefaults() Config {
	if len(c.Quantiles) == 0 {
		c.Quantiles = []float64{0.5}
	}
	if c.Trend.Growth == "" {
		c.Trend.Growth = "linear"
	}
	if c.Trend.ChangepointsRange == 0 {
		c.Trend.ChangepointsRange = 0.8
	}
	if c.Trend.GlobalLocal == "" {
		c.Trend.GlobalLocal = ShareGlobal
	}
	if c.Seasonality != nil {
		if c.Seasonality.Mode == "" {
			c.Seasonality.Mode = ModeAdditive
		}
		if c.Seasonality.GlobalLocal == "" {
			c.Seasonality.GlobalLocal = ShareGlobal
		}
	}
	if len(c.IDList) == 0 {
		c.IDList = []string{"__df__"}
	}
	if c.Train.Optimizer == "" {
		c.Train.Optimizer = "AdamW"
	}
	if c.Train.LearningRate == 0 {
		c.Train.LearningRate = 1e-3
	}
	if c.Train.Epochs == 0 {
		c.Train.Epochs = 100
	}
	if c.Train.BatchSize == 0 {
		c.Train.BatchSize = 32
	}
	if c.Train.NewerSamplesWeight == 0 {
		c.Train.NewerSamplesWeight = 1.0
	}
	if c.Train.Loss == nil {
		c.Train.Loss = nn.HuberLoss(1.0)
	}
	return c
}

// validate enforces the construction-time invariants. Misconfiguration is
// fatal here; it never surfaces later as degraded behavior.
func (c Config) validate() error {
	if c.NForecasts <= 0 {
		return fmt.Errorf("config: n_forecasts must be positive, got %d", c.NForecasts)
	}
	if c.NLags < 0 {
		return fmt.Errorf("config: n_lags must be non-negative, got %d", c.NLags)
	}
	if !sort.Float64sAreSorted(c.Quantiles) {
		return fmt.Errorf("config: quantiles must be ascending, got %v", c.Quantiles)
	}
	for _, q := range c.Quantiles {
		if q <= 0 || q >= 1 {
			return fmt.Errorf("config: quantile %v outside (0, 1)", q)
		}
	}
	if len(c.Quantiles) > 1 && !containsFloat(c.Quantiles, 0.5) {
		return fmt.Errorf("config: multi-quantile list must include the median 0.5, got %v", c.Quantiles)
	}
	switch c.Trend.Growth {
	case "linear", "off":
	default:
		return fmt.Errorf("config: unknown trend growth %q", c.Trend.Growth)
	}
	switch c.Trend.GlobalLocal {
	case ShareGlobal, ShareLocal:
	default:
		return fmt.Errorf("config: unknown trend sharing %q", c.Trend.GlobalLocal)
	}
	if c.Seasonality != nil {
		switch c.Seasonality.Mode {
		case ModeAdditive:
		case ModeMultiplicative:
			if c.Trend.Growth == "off" {
				return fmt.Errorf("config: multiplicative seasonality requires trend")
			}
		default:
			return fmt.Errorf("config: unknown seasonality mode %q", c.Seasonality.Mode)
		}
		switch c.Seasonality.GlobalLocal {
		case ShareGlobal, ShareLocal, ShareGlocal:
		default:
			return fmt.Errorf("config: unknown seasonality sharing %q", c.Seasonality.GlobalLocal)
		}
		for name, p := range c.Seasonality.Periods {
			if p.K <= 0 || p.Period <= 0 {
				return fmt.Errorf("config: seasonality %q needs positive period and harmonics", name)
			}
		}
	}
	for _, ev := range c.Events {
		if ev.Mode == ModeMultiplicative && c.Trend.Growth == "off" {
			return fmt.Errorf("config: multiplicative event %q requires trend", ev.Name)
		}
	}
	for _, r := range c.Regressors {
		switch r.Mode {
		case ModeAdditive:
		case ModeMultiplicative:
			if c.Trend.Growth == "off" {
				return fmt.Errorf("config: multiplicative regressor %q requires trend", r.Name)
			}
		default:
			return fmt.Errorf("config: unknown regressor mode %q for %q", r.Mode, r.Name)
		}
	}
	if len(c.LaggedRegressors) > 0 && c.NLags == 0 {
		return fmt.Errorf("config: lagged regressors require n_lags > 0")
	}
	if c.Train.RegFullPct < c.Train.RegStartPct {
		return fmt.Errorf("config: reg_full_pct %v before reg_start_pct %v",
			c.Train.RegFullPct, c.Train.RegStartPct)
	}
	return nil
}

func containsFloat(xs []float64, v float64) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
