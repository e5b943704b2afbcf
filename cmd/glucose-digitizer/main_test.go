package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/glucose-digitizer/internal/config"
	"github.com/ironsheep/glucose-digitizer/internal/synth"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.png")
	if err := runSample([]string{"-out", path}); err != nil {
		t.Fatalf("runSample failed: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GLUCOSE_DIGITIZER_CONFIG", "")
	t.Setenv("GLUCOSE_DIGITIZER_UNIT", "")
}

func TestRunDigitize_JSON(t *testing.T) {
	clearEnv(t)
	path := writeSample(t)

	var out bytes.Buffer
	if err := runDigitize([]string{"-in", path, "-unit", "mmol/L", "-date", "2024-03-10"}, &out); err != nil {
		t.Fatalf("runDigitize failed: %v", err)
	}

	var doc struct {
		Source   string `json:"source"`
		Readings []struct {
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		} `json:"readings"`
		Summary struct {
			Count int `json:"count"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if doc.Source != path {
		t.Errorf("Source: got %s, want %s", doc.Source, path)
	}
	if len(doc.Readings) < 300 {
		t.Fatalf("Expected at least 300 readings, got %d", len(doc.Readings))
	}
	if doc.Summary.Count != len(doc.Readings) {
		t.Errorf("Summary count %d, readings %d", doc.Summary.Count, len(doc.Readings))
	}
	for _, r := range doc.Readings {
		if r.Unit != "mmol/L" || r.Value < 0 || r.Value > 21 {
			t.Fatalf("Reading out of range: %+v", r)
		}
	}
}

func TestRunDigitize_CSVWithArtifacts(t *testing.T) {
	clearEnv(t)
	path := writeSample(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "readings.csv")
	chartPath := filepath.Join(dir, "chart.png")
	debugDir := filepath.Join(dir, "debug")

	args := []string{
		"-in", path,
		"-unit", "mg/dL",
		"-format", "csv",
		"-out", outPath,
		"-chart", chartPath,
		"-debug-dir", debugDir,
		"-debug-format", "webp",
	}
	if err := runDigitize(args, &bytes.Buffer{}); err != nil {
		t.Fatalf("runDigitize failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("CSV not written: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if strings.Join(rows[0], ",") != "time,hours,value,unit" {
		t.Errorf("Header: got %v", rows[0])
	}
	if len(rows) < 301 || rows[1][3] != "mg/dL" {
		t.Errorf("Unexpected rows: %d, first %v", len(rows), rows[1])
	}

	if _, err := os.Stat(chartPath); err != nil {
		t.Errorf("Chart not written: %v", err)
	}
	for _, stage := range []string{"preprocessed", "crop", "mask", "eroded", "overlay"} {
		if _, err := os.Stat(filepath.Join(debugDir, "sample-"+stage+".webp")); err != nil {
			t.Errorf("Debug image %s not written: %v", stage, err)
		}
	}
}

func TestRunDigitize_ChartSkippedWithoutCurve(t *testing.T) {
	clearEnv(t)
	opts := synth.Default()
	opts.Curve = nil
	path := filepath.Join(t.TempDir(), "flat.png")
	if err := writeFile(path, func(w io.Writer) error { return png.Encode(w, synth.Screenshot(opts)) }); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	outPath := filepath.Join(dir, "readings.csv")
	chartPath := filepath.Join(dir, "chart.png")
	args := []string{"-in", path, "-unit", "mmol/L", "-format", "csv", "-out", outPath, "-chart", chartPath}
	if err := runDigitize(args, &bytes.Buffer{}); err != nil {
		t.Fatalf("runDigitize failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Readings not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "time,hours,value,unit") {
		t.Errorf("CSV output: %q", data)
	}
	if _, err := os.Stat(chartPath); !os.IsNotExist(err) {
		t.Errorf("Chart should not be written, stat: %v", err)
	}
}

func TestRunDigitize_Errors(t *testing.T) {
	clearEnv(t)
	path := writeSample(t)

	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{"missing input", []string{}, "-in is required"},
		{"bad format", []string{"-in", path, "-format", "xml"}, "output.format"},
		{"bad debug format", []string{"-in", path, "-debug-format", "bmp"}, "output.debug_format"},
		{"missing config", []string{"-in", path, "-config", filepath.Join(t.TempDir(), "none.json")}, "failed to read config file"},
		{"unknown flag", []string{"-bogus"}, "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runDigitize(tt.args, &bytes.Buffer{})
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Error %q should contain %q", err, tt.errText)
			}
		})
	}
}

func TestRunSample_RequiresOut(t *testing.T) {
	if err := runSample(nil); err == nil {
		t.Error("Expected error without -out")
	}
}

func TestRunConfig(t *testing.T) {
	clearEnv(t)

	var out bytes.Buffer
	if err := runConfig(nil, &out); err != nil {
		t.Fatalf("runConfig failed: %v", err)
	}
	var printed config.Config
	if err := json.Unmarshal(out.Bytes(), &printed); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if printed.Glucose.Unit != config.Default().Glucose.Unit {
		t.Errorf("Printed unit: got %s", printed.Glucose.Unit)
	}

	if err := runConfig([]string{"-init"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("runConfig -init failed: %v", err)
	}
	if _, err := config.LoadFromFile(config.GetConfigPath()); err != nil {
		t.Fatalf("Default config not written: %v", err)
	}

	err := runConfig([]string{"-init"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Second -init: got %v, want already exists", err)
	}
	if err := runConfig([]string{"-init", "-force"}, &bytes.Buffer{}); err != nil {
		t.Errorf("runConfig -init -force failed: %v", err)
	}

	// The written file is picked up without -config.
	cfg, err := config.LoadFromFile(config.GetConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Output.Format = "csv"
	if err := cfg.SaveToFile(config.GetConfigPath()); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := runConfig(nil, &out); err != nil {
		t.Fatalf("runConfig failed: %v", err)
	}
	if !strings.Contains(out.String(), `"format": "csv"`) {
		t.Errorf("Default config file not loaded:\n%s", out.String())
	}

	other := filepath.Join(t.TempDir(), "custom.json")
	if err := runConfig([]string{"-init", "-out", other}, &bytes.Buffer{}); err != nil {
		t.Fatalf("runConfig -init -out failed: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Config not written to -out: %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}); err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "hello" {
		t.Errorf("Content: got %q", data)
	}

	boom := errors.New("boom")
	if err := writeFile(path, func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Write error: got %v, want boom", err)
	}

	if err := writeFile(filepath.Join(t.TempDir(), "missing", "out.txt"), func(io.Writer) error { return nil }); err == nil {
		t.Error("Expected error creating a file in a missing directory")
	}
}
