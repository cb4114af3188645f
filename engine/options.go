package engine

import (
	"golang.org/x/text/language"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for the builders
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Palette            []string
	DefaultTopN        int          // default-checked labels per filter
	RateSample         int          // rows inspected by IsRate
	RateScaleThreshold float64      // |mean| at or below this is a fraction → ×100
	Locale             language.Tag // collation locale for label titles
	MeasureLabel       string       // fmt pattern for positional multi-measure names
}

// DefaultPalette is the dashboard's series palette.
var DefaultPalette = []string{
	"#7BD1F7", "#006BF5", "#064A9D", "#FF70BF", "#FF8497",
	"#DEAAFF", "#70D7BD", "#00F587", "#FFBF1F", "#F2DD54",
}

// WithPalette overrides the series colors. An empty palette is ignored.
func WithPalette(colors ...string) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.Palette = colors
		}
	}
}

// WithDefaultTopN caps how many labels start checked on a default axis.
func WithDefaultTopN(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.DefaultTopN = n
		}
	}
}

// WithRateSample sets how many leading rows IsRate inspects.
func WithRateSample(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.RateSample = n
		}
	}
}

// WithRateScaleThreshold sets the fraction threshold for percent scaling.
func WithRateScaleThreshold(v float64) Option {
	return func(c *config) {
		c.RateScaleThreshold = v
	}
}

// WithLocale sets the collation locale used to sort label titles.
func WithLocale(tag language.Tag) Option {
	return func(c *config) {
		c.Locale = tag
	}
}

// WithMeasureLabel sets the pattern naming measures in multi-measure charts,
// e.g. "measure %d". It receives the 1-based measure position.
func WithMeasureLabel(pattern string) Option {
	return func(c *config) {
		if pattern != "" {
			c.MeasureLabel = pattern
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Palette:            DefaultPalette,
		DefaultTopN:        10,
		RateSample:         100,
		RateScaleThreshold: 1,
		Locale:             language.Hebrew,
		MeasureLabel:       "measure %d",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *config) color(i int) string {
	if len(c.Palette) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return c.Palette[i%len(c.Palette)]
}

// TopN returns the default-checked label cap the options resolve to.
func TopN(opts ...Option) int {
	return applyOptions(opts).DefaultTopN
}
