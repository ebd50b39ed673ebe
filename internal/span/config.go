// Package span implements the SPAN opportunity matrix: candidate extraction,
// weighted two-axis scoring, quadrant assignment and prioritization.
package span

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/strategy-cli/internal/config"
)

// DefaultConfig returns the standard SPAN weights. Each axis sums to 1.
func DefaultConfig() config.SPANConfig {
	return config.SPANConfig{
		// Market attractiveness.
		SizeWeight:      0.30,
		GrowthWeight:    0.25,
		ProfitWeight:    0.25,
		StrategicWeight: 0.20,

		// Competitive position.
		ShareWeight: 0.25,
		FitWeight:   0.25,
		BrandWeight: 0.25,
		TechWeight:  0.25,

		Threshold:               5.0,
		MaxCompetitorWeaknesses: 2,
	}
}

// AttractivenessWeightSum returns the sum of the market-attractiveness weights.
func AttractivenessWeightSum(c config.SPANConfig) float64 {
	return c.SizeWeight + c.GrowthWeight + c.ProfitWeight + c.StrategicWeight
}

// PositionWeightSum returns the sum of the competitive-position weights.
func PositionWeightSum(c config.SPANConfig) float64 {
	return c.ShareWeight + c.FitWeight + c.BrandWeight + c.TechWeight
}

// ValidateConfig checks that a SPANConfig is internally consistent.
func ValidateConfig(c config.SPANConfig) error {
	var errs []string

	weights := []struct {
		name string
		w    float64
	}{
		{"size_weight", c.SizeWeight},
		{"growth_weight", c.GrowthWeight},
		{"profit_weight", c.ProfitWeight},
		{"strategic_weight", c.StrategicWeight},
		{"share_weight", c.ShareWeight},
		{"fit_weight", c.FitWeight},
		{"brand_weight", c.BrandWeight},
		{"tech_weight", c.TechWeight},
	}
	for _, w := range weights {
		if w.w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", w.name))
		}
	}

	if sum := AttractivenessWeightSum(c); math.Abs(sum-1) > 0.01 {
		errs = append(errs, fmt.Sprintf("attractiveness weights should sum to 1, got %.2f", sum))
	}
	if sum := PositionWeightSum(c); math.Abs(sum-1) > 0.01 {
		errs = append(errs, fmt.Sprintf("position weights should sum to 1, got %.2f", sum))
	}

	if c.Threshold < minScore || c.Threshold > maxScore {
		errs = append(errs, "threshold must be between 1 and 10")
	}
	if c.MaxCompetitorWeaknesses < 0 {
		errs = append(errs, "max_competitor_weaknesses must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("span: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
