package admission

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/goadmit/pkg/metrics"
)

// Default values applied by New when the corresponding Config field is zero.
const (
	// DefaultInterval is the refill, leak, or window interval.
	DefaultInterval = time.Second

	// DefaultMaxConcurrent is the slot count for the concurrency strategy.
	DefaultMaxConcurrent = 5
)

// Config selects one admission strategy and carries its parameters.
// Fields that a strategy does not use are ignored: Capacity doubles as
// the per-window maximum for the window strategies, Rate and Interval
// only apply to the bucket strategies, and MaxConcurrent only to the
// concurrency strategy.
type Config struct {
	// Strategy names the admission strategy to construct.
	Strategy Strategy `yaml:"strategy"`

	// Capacity is the token capacity, queue capacity, or per-window
	// request maximum, depending on the strategy.
	Capacity int `yaml:"capacity"`

	// Rate is the number of tokens refilled or requests drained per interval.
	Rate int `yaml:"rate"`

	// Interval is the refill, leak, or window duration.
	// If zero, DefaultInterval is used.
	Interval time.Duration `yaml:"interval"`

	// MaxConcurrent is the slot count for the concurrency strategy.
	// If zero, DefaultMaxConcurrent is used.
	MaxConcurrent int `yaml:"maxConcurrent"`

	// Name labels this facade in metrics.
	Name string `yaml:"name"`

	// Metrics controls Prometheus instrumentation of the underlying limiter.
	Metrics metrics.Config `yaml:"-"`
}

// withDefaults returns a copy of the config with zero fields filled in.
func (c Config) withDefaults() Config {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Strategy == StrategyConcurrency && c.MaxConcurrent == 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Name == "" {
		c.Name = c.Strategy.String()
	}
	return c
}

// UnmarshalYAML decodes a Config, accepting Go duration strings such as
// "250ms" or "1s" for the interval.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		Strategy      Strategy `yaml:"strategy"`
		Capacity      int      `yaml:"capacity"`
		Rate          int      `yaml:"rate"`
		Interval      string   `yaml:"interval"`
		MaxConcurrent int      `yaml:"maxConcurrent"`
		Name          string   `yaml:"name"`
	}{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Strategy = raw.Strategy
	c.Capacity = raw.Capacity
	c.Rate = raw.Rate
	c.MaxConcurrent = raw.MaxConcurrent
	c.Name = raw.Name

	if raw.Interval != "" {
		interval, err := time.ParseDuration(raw.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", raw.Interval, err)
		}
		c.Interval = interval
	} else {
		c.Interval = 0
	}
	return nil
}

// ParseConfig decodes a YAML document into a Config. Defaults are not
// applied here; New fills them in.
func ParseConfig(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}
