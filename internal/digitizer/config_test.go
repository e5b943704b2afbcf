package digitizer

import (
	"testing"

	"github.com/ironsheep/glucose-digitizer/internal/detection"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.GreyAlgorithm != imaging.GreyGreen {
		t.Errorf("GreyAlgorithm = %q", cfg.GreyAlgorithm)
	}
	if cfg.BlackThreshold != 5 || cfg.LineFillRatio != 0.7 || cfg.MaskThreshold != 0.7 {
		t.Errorf("thresholds: got black=%d fill=%v mask=%v", cfg.BlackThreshold, cfg.LineFillRatio, cfg.MaskThreshold)
	}
	if cfg.ErodeIterations != 2 || cfg.ForegroundThreshold != 10 || cfg.AxisMargin != 2 {
		t.Errorf("got erode=%d fg=%d margin=%d", cfg.ErodeIterations, cfg.ForegroundThreshold, cfg.AxisMargin)
	}

	if got := cfg.Thresholds(); got != detection.DefaultThresholds() {
		t.Errorf("Thresholds() = %+v, want %+v", got, detection.DefaultThresholds())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"luma", func(c *Config) { c.GreyAlgorithm = imaging.GreyLuma }, false},
		{"no erosion", func(c *Config) { c.ErodeIterations = 0; c.ErodeRadius = 0 }, false},
		{"unknown grey", func(c *Config) { c.GreyAlgorithm = "blue" }, true},
		{"zero black", func(c *Config) { c.BlackThreshold = 0 }, true},
		{"fill ratio one", func(c *Config) { c.LineFillRatio = 1 }, true},
		{"fill ratio zero", func(c *Config) { c.LineFillRatio = 0 }, true},
		{"mask negative", func(c *Config) { c.MaskThreshold = -0.1 }, true},
		{"mask one", func(c *Config) { c.MaskThreshold = 1 }, true},
		{"negative erosion", func(c *Config) { c.ErodeIterations = -1 }, true},
		{"zero radius", func(c *Config) { c.ErodeRadius = 0 }, true},
		{"negative margin", func(c *Config) { c.AxisMargin = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input   string
		want    Unit
		wantErr bool
	}{
		{"mg/dL", MgPerDL, false},
		{"MG/DL", MgPerDL, false},
		{"mgdl", MgPerDL, false},
		{" mg ", MgPerDL, false},
		{"mmol/L", MmolPerL, false},
		{"mmol-l", MmolPerL, false},
		{"mmol", MmolPerL, false},
		{"", "", true},
		{"kg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUnit(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScaleFor(t *testing.T) {
	mg, err := ScaleFor(MgPerDL)
	if err != nil {
		t.Fatal(err)
	}
	if mg.Range != (Range{Min: 0, Max: 250}) || mg.GoodRange != (Range{Min: 72, Max: 126}) {
		t.Errorf("mg/dL scale = %+v", mg)
	}

	mmol, err := ScaleFor(MmolPerL)
	if err != nil {
		t.Fatal(err)
	}
	if mmol.Range != (Range{Min: 0, Max: 21}) || mmol.GoodRange != (Range{Min: 4, Max: 6.9}) {
		t.Errorf("mmol/L scale = %+v", mmol)
	}

	if _, err := ScaleFor("kg"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestRange(t *testing.T) {
	r := Range{Min: 70, Max: 160}
	if !r.Valid() {
		t.Error("expected valid range")
	}
	for _, v := range []float64{70, 100, 160} {
		if !r.Contains(v) {
			t.Errorf("Contains(%v) = false", v)
		}
	}
	for _, v := range []float64{69.9, 160.1} {
		if r.Contains(v) {
			t.Errorf("Contains(%v) = true", v)
		}
	}
	if (Range{Min: 1, Max: 1}).Valid() {
		t.Error("empty range reported valid")
	}
}
