package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the planner knobs. Defaults are tuned for the built-in
// catalog; a yaml file can override any subset for experiments.
type Tuning struct {
	ActivityCount        int     `yaml:"activity_count"`
	WatchWindowLevels    int     `yaml:"watch_window_levels"`
	SellPressureFraction float64 `yaml:"sell_pressure_fraction"`

	// CompetitiveMargin scales the bar an upgrade must clear: its projected
	// best value must exceed margin times the current best. 1 means any
	// strict improvement qualifies.
	CompetitiveMargin float64 `yaml:"competitive_margin"`

	GoldBucket      float64 `yaml:"gold_bucket"`
	BankValueBucket float64 `yaml:"bank_value_bucket"`
	HealthBucket    float64 `yaml:"health_bucket"`

	MaxExpandedNodes int   `yaml:"max_expanded_nodes"`
	MaxSegmentTicks  int64 `yaml:"max_segment_ticks"`
	MaxSegments      int   `yaml:"max_segments"`

	MacroMaxDepth      int `yaml:"macro_max_depth"`
	MacroMaxIterations int `yaml:"macro_max_iterations"`
	StockBatchCap      int `yaml:"stock_batch_cap"`

	ExecBatchTicks int64 `yaml:"exec_batch_ticks"`
}

// Default returns the shipped tuning.
func Default() Tuning {
	return Tuning{
		ActivityCount:        6,
		WatchWindowLevels:    15,
		SellPressureFraction: 0.8,
		CompetitiveMargin:    1.0,

		GoldBucket:      25,
		BankValueBucket: 50,
		HealthBucket:    10,

		MaxExpandedNodes: 20000,
		MaxSegmentTicks:  864000, // 24h of 100ms ticks
		MaxSegments:      64,

		MacroMaxDepth:      8,
		MacroMaxIterations: 1000,
		StockBatchCap:      100,

		ExecBatchTicks: 100,
	}
}

// Load reads a yaml override file on top of the defaults. Fields absent
// from the file keep their default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning: %w", err)
	}
	return t, nil
}

func (t Tuning) validate() error {
	if t.ActivityCount < 1 {
		return fmt.Errorf("activity_count must be at least 1, got %d", t.ActivityCount)
	}
	if t.SellPressureFraction <= 0 || t.SellPressureFraction > 1 {
		return fmt.Errorf("sell_pressure_fraction must be in (0, 1], got %v", t.SellPressureFraction)
	}
	if t.CompetitiveMargin <= 0 {
		return fmt.Errorf("competitive_margin must be positive, got %v", t.CompetitiveMargin)
	}
	if t.MaxExpandedNodes < 1 {
		return fmt.Errorf("max_expanded_nodes must be positive, got %d", t.MaxExpandedNodes)
	}
	if t.MaxSegmentTicks < 1 {
		return fmt.Errorf("max_segment_ticks must be positive, got %d", t.MaxSegmentTicks)
	}
	if t.MaxSegments < 1 {
		return fmt.Errorf("max_segments must be positive, got %d", t.MaxSegments)
	}
	if t.MacroMaxDepth < 1 || t.MacroMaxIterations < 1 {
		return fmt.Errorf("macro limits must be positive, got depth %d iterations %d", t.MacroMaxDepth, t.MacroMaxIterations)
	}
	if t.StockBatchCap < 1 {
		return fmt.Errorf("stock_batch_cap must be positive, got %d", t.StockBatchCap)
	}
	if t.ExecBatchTicks < 1 {
		return fmt.Errorf("exec_batch_ticks must be positive, got %d", t.ExecBatchTicks)
	}
	return nil
}
