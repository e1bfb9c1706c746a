package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// RiskConfig holds the bettor's bankroll and staking parameters. The json
// names are the persisted snapshot format; yaml names are used in files.
type RiskConfig struct {
	StartingCapital     float64 `json:"startingCapital" yaml:"starting_capital" validate:"gt=0"`
	FixedRatio          float64 `json:"fixedRatio" yaml:"fixed_ratio" validate:"gte=0,lte=1"`
	KellyFactor         float64 `json:"kellyFactor" yaml:"kelly_factor" validate:"gte=0,lte=1"`
	StopLossLimit       int     `json:"stopLossLimit" yaml:"stop_loss_limit" validate:"gte=0"`
	TargetMonthlyReturn float64 `json:"targetMonthlyReturn" yaml:"target_monthly_return" validate:"gte=0"`
	Theme               string  `json:"theme" yaml:"theme" validate:"oneof=light dark"`
	RiskTolerance       string  `json:"riskTolerance" yaml:"risk_tolerance" validate:"oneof=conservative balanced aggressive"`
}

const (
	ToleranceConservative = "conservative"
	ToleranceBalanced     = "balanced"
	ToleranceAggressive   = "aggressive"
)

// DefaultRisk returns the parameters a fresh install starts with.
func DefaultRisk() RiskConfig {
	return RiskConfig{
		StartingCapital:     10000,
		FixedRatio:          0.03,
		KellyFactor:         0.5,
		StopLossLimit:       3,
		TargetMonthlyReturn: 0.1,
		Theme:               "light",
		RiskTolerance:       ToleranceBalanced,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Validate checks every field against its bounds.
func (r RiskConfig) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// Patch is a partial update of a RiskConfig. Nil fields are left alone, as
// are empty Theme and RiskTolerance values.
type Patch struct {
	StartingCapital     *float64 `json:"startingCapital,omitempty"`
	FixedRatio          *float64 `json:"fixedRatio,omitempty"`
	KellyFactor         *float64 `json:"kellyFactor,omitempty"`
	StopLossLimit       *int     `json:"stopLossLimit,omitempty"`
	TargetMonthlyReturn *float64 `json:"targetMonthlyReturn,omitempty"`
	Theme               *string  `json:"theme,omitempty"`
	RiskTolerance       *string  `json:"riskTolerance,omitempty"`
}

// Apply returns r with p laid over it.
func (p Patch) Apply(r RiskConfig) RiskConfig {
	if p.StartingCapital != nil {
		r.StartingCapital = *p.StartingCapital
	}
	if p.FixedRatio != nil {
		r.FixedRatio = *p.FixedRatio
	}
	if p.KellyFactor != nil {
		r.KellyFactor = *p.KellyFactor
	}
	if p.StopLossLimit != nil {
		r.StopLossLimit = *p.StopLossLimit
	}
	if p.TargetMonthlyReturn != nil {
		r.TargetMonthlyReturn = *p.TargetMonthlyReturn
	}
	if p.Theme != nil && *p.Theme != "" {
		r.Theme = *p.Theme
	}
	if p.RiskTolerance != nil && *p.RiskTolerance != "" {
		r.RiskTolerance = *p.RiskTolerance
	}
	return r
}
