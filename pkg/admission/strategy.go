package admission

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Strategy identifies one of the admission strategies the facade can be
// built around. The set is closed: the factory switches over it
// exhaustively instead of looking constructors up by name at runtime.
type Strategy int

const (
	// StrategyUnknown is the zero value and never a valid configuration.
	StrategyUnknown Strategy = iota

	// StrategyTokenBucket admits while refilling tokens are available.
	StrategyTokenBucket

	// StrategyLeakyBucket queues excess work and drains it at a constant rate.
	StrategyLeakyBucket

	// StrategyFixedWindow counts admissions per fixed, epoch-aligned window.
	StrategyFixedWindow

	// StrategySlidingWindow tracks admission timestamps in a rolling window.
	StrategySlidingWindow

	// StrategyConcurrency bounds simultaneously in-flight operations.
	StrategyConcurrency
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyTokenBucket:
		return "token-bucket"
	case StrategyLeakyBucket:
		return "leaky-bucket"
	case StrategyFixedWindow:
		return "fixed-window"
	case StrategySlidingWindow:
		return "sliding-window"
	case StrategyConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a configuration name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "token-bucket":
		return StrategyTokenBucket, nil
	case "leaky-bucket":
		return StrategyLeakyBucket, nil
	case "fixed-window":
		return StrategyFixedWindow, nil
	case "sliding-window":
		return StrategySlidingWindow, nil
	case "concurrency":
		return StrategyConcurrency, nil
	default:
		return StrategyUnknown, fmt.Errorf("unknown admission strategy %q", name)
	}
}

// MarshalYAML encodes the strategy as its configuration name.
func (s Strategy) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML decodes the strategy from its configuration name.
func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}

	parsed, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
