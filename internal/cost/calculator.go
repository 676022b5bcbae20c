// Package cost prices LLM token usage for providers that do not report a
// cost themselves.
package cost

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ModelRate holds per-model token pricing (USD per million tokens). Cache
// multipliers apply to the input rate; zero means the model has no prompt
// cache pricing.
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// Rates maps model names to their pricing.
type Rates map[string]ModelRate

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Known reports whether model has a rate.
func (c *Calculator) Known(model string) bool {
	_, ok := c.rates[model]
	return ok
}

// Tokens computes the cost of one call. Unknown models cost 0.
func (c *Calculator) Tokens(model string, input, output, cacheWrite, cacheRead int) float64 {
	rate, ok := c.rates[model]
	if !ok {
		return 0
	}
	inCost := (float64(input) / 1e6) * rate.Input
	outCost := (float64(output) / 1e6) * rate.Output
	cwCost := (float64(cacheWrite) / 1e6) * rate.Input * rate.CacheWriteMul
	crCost := (float64(cacheRead) / 1e6) * rate.Input * rate.CacheReadMul
	return inCost + outCost + cwCost + crCost
}

// Merge returns a copy of r with every rate in overrides applied on top.
func (r Rates) Merge(overrides Rates) Rates {
	out := make(Rates, len(r)+len(overrides))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// DefaultRates returns list prices for the models the service is usually
// pointed at.
func DefaultRates() Rates {
	return Rates{
		"gpt-4o-mini":  {Input: 0.15, Output: 0.60},
		"gpt-4o":       {Input: 2.50, Output: 10.00},
		"gpt-4.1-mini": {Input: 0.40, Output: 1.60},
		"gpt-4.1":      {Input: 2.00, Output: 8.00},

		"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00, CacheWriteMul: 1.25, CacheReadMul: 0.1},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00, CacheWriteMul: 1.25, CacheReadMul: 0.1},
		"claude-opus-4-6":            {Input: 15.00, Output: 75.00, CacheWriteMul: 1.25, CacheReadMul: 0.1},
	}
}

// LoadRates reads a YAML file of the form:
//
//	models:
//	  gpt-4o-mini: {input: 0.15, output: 0.60}
func LoadRates(path string) (Rates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cost: read %s", path)
	}
	var f struct {
		Models Rates `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "cost: parse %s", path)
	}
	for name, r := range f.Models {
		if r.Input < 0 || r.Output < 0 || r.CacheWriteMul < 0 || r.CacheReadMul < 0 {
			return nil, eris.Errorf("cost: negative rate for %s", name)
		}
	}
	return f.Models, nil
}
