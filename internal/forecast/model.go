package forecast

import (
	"fmt"
	"strings"
)

// DefaultMovingAverageWindow is the trailing window used when none is given.
const DefaultMovingAverageWindow = 5

// ModelSpec selects a forecasting model. The set of implementations is closed;
// use ParseModelSpec at the boundary and type-switch on the result.
type ModelSpec interface {
	// Name is the wire tag of the model.
	Name() string
	isModelSpec()
}

// Linear fits y = a + b*x by ordinary least squares.
type Linear struct{}

// Polynomial fits y against [x^0 .. x^Degree] by ordinary least squares.
type Polynomial struct {
	Degree int
}

// MovingAverage forecasts the mean of the trailing Window values, flat. A zero
// Window uses the engine default.
type MovingAverage struct {
	Window int
}

// Unknown is any unrecognized tag. It forecasts zeros.
type Unknown struct {
	Tag string
}

func (Linear) Name() string        { return "linear" }
func (p Polynomial) Name() string  { return fmt.Sprintf("poly%d", p.Degree) }
func (MovingAverage) Name() string { return "moving_avg" }
func (u Unknown) Name() string     { return u.Tag }
func (Linear) isModelSpec()        {}
func (Polynomial) isModelSpec()    {}
func (MovingAverage) isModelSpec() {}
func (Unknown) isModelSpec()       {}

// ParseModelSpec resolves a model tag. Unrecognized tags become Unknown rather
// than an error. An empty tag means linear.
func ParseModelSpec(tag string) ModelSpec {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "linear":
		return Linear{}
	case "poly2":
		return Polynomial{Degree: 2}
	case "poly3":
		return Polynomial{Degree: 3}
	case "moving_avg":
		return MovingAverage{}
	}
	return Unknown{Tag: tag}
}
