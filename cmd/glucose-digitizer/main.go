package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/glucose-digitizer/internal/app"
	"github.com/ironsheep/glucose-digitizer/internal/config"
	"github.com/ironsheep/glucose-digitizer/internal/ocr"
	"github.com/ironsheep/glucose-digitizer/internal/report"
	"github.com/ironsheep/glucose-digitizer/internal/server"
	"github.com/ironsheep/glucose-digitizer/internal/synth"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			printVersion()
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "digitize":
			setupLogging()
			if err := runDigitize(os.Args[2:], os.Stdout); err != nil {
				log.Fatalf("digitize: %v", err)
			}
			return
		case "sample":
			setupLogging()
			if err := runSample(os.Args[2:]); err != nil {
				log.Fatalf("sample: %v", err)
			}
			return
		case "config":
			setupLogging()
			if err := runConfig(os.Args[2:], os.Stdout); err != nil {
				log.Fatalf("config: %v", err)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q (see --help)\n", os.Args[1])
			os.Exit(2)
		}
	}

	setupLogging()
	if os.Getenv("GLUCOSE_DIGITIZER_LOG_LEVEL") == "debug" {
		log.Printf("Glucose Digitizer MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	srv := server.New(app.New(cfg, ocr.NewTesseract(cfg.OCR.Language, cfg.OCR.TessdataPrefix)))
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// setupLogging sends logs to stderr; stdout carries MCP traffic or output
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

func printVersion() {
	fmt.Printf("glucose-digitizer %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)

	info := ocr.NewTesseract("", "").GetInfo()
	if info.Available {
		fmt.Printf("  OCR: %s %s\n", info.Backend, info.Version)
	} else {
		fmt.Println("  OCR: unavailable")
	}
}

func printHelp() {
	fmt.Println("glucose-digitizer - turn glucose trend screenshots into readings")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  glucose-digitizer                      Run the MCP server on stdin/stdout")
	fmt.Println("  glucose-digitizer digitize -in <path>  Digitize one screenshot")
	fmt.Println("  glucose-digitizer sample -out <path>   Write a synthetic calibration screenshot")
	fmt.Println("  glucose-digitizer config [-init]       Print the effective configuration, or write a default one")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Digitize flags:")
	fmt.Println("  -in            Screenshot path or http(s) URL (required)")
	fmt.Println("  -unit          mg/dL, mmol/L or auto (default: configured unit)")
	fmt.Println("  -date          Day the graph covers, YYYY-MM-DD (default: today)")
	fmt.Println("  -format        json or csv (default: configured format)")
	fmt.Println("  -out           Write readings here instead of stdout")
	fmt.Println("  -chart         Also write a PNG chart of the readings")
	fmt.Println("  -debug-dir     Write intermediate images to this directory")
	fmt.Println("  -debug-format  png, jpg or webp (default: configured debug format)")
	fmt.Println("  -config        Configuration file")
	fmt.Println()
	fmt.Println("Config flags:")
	fmt.Println("  -init          Write the default configuration instead of printing it")
	fmt.Println("  -out           Where -init writes (default: " + config.GetConfigPath() + ")")
	fmt.Println("  -force         Let -init replace an existing file")
	fmt.Println("  -config        Configuration file to print")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  GLUCOSE_DIGITIZER_CONFIG=<path>    Configuration file (default: the -init location when present)")
	fmt.Println("  GLUCOSE_DIGITIZER_UNIT=<unit>      Default glucose unit")
	fmt.Println("  GLUCOSE_DIGITIZER_LOG_LEVEL=debug  Enable debug logging")
	fmt.Println("  TESSDATA_PREFIX=<dir>              Tesseract language data")
	fmt.Println()
	fmt.Println("In server mode it communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func runDigitize(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("digitize", flag.ContinueOnError)
	in := fs.String("in", "", "screenshot path or http(s) URL")
	unit := fs.String("unit", "", "mg/dL, mmol/L or auto")
	date := fs.String("date", "", "day the graph covers, YYYY-MM-DD")
	format := fs.String("format", "", "json or csv")
	out := fs.String("out", "", "output file (default stdout)")
	chartPath := fs.String("chart", "", "PNG chart output file")
	debugDir := fs.String("debug-dir", "", "directory for intermediate images")
	debugFormat := fs.String("debug-format", "", "png, jpg or webp")
	configPath := fs.String("config", "", "configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *debugFormat != "" {
		cfg.Output.DebugFormat = *debugFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc := app.New(cfg, ocr.NewTesseract(cfg.OCR.Language, cfg.OCR.TessdataPrefix))
	req := app.Request{Source: *in, Unit: *unit, Day: *date}
	ctx := context.Background()

	var res *app.Result
	if *debugDir != "" {
		res, err = svc.Diagnose(ctx, req)
		if res != nil && res.Diagnostics != nil {
			prefix := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
			written, werr := app.WriteDebugImages(*debugDir, prefix, res.Diagnostics, cfg.Output.DebugFormat)
			for _, a := range written {
				log.Printf("wrote %s image %s", a.Stage, a.Path)
			}
			if werr != nil {
				log.Printf("debug images: %v", werr)
			}
		}
	} else {
		res, err = svc.Digitize(ctx, req)
	}
	if err != nil {
		return err
	}

	if *chartPath != "" {
		err := writeChart(*chartPath, res, cfg)
		switch {
		case errors.Is(err, report.ErrNoReadings):
			log.Printf("skipping chart: %v", err)
		case err != nil:
			return err
		}
	}

	write := func(w io.Writer) error {
		if cfg.Output.Format == "csv" {
			return report.WriteCSV(w, res.Readings)
		}
		return report.WriteJSON(w, res.Document())
	}
	if *out == "" {
		return write(stdout)
	}
	return writeFile(*out, write)
}

// writeChart renders the chart before creating path so a chart that cannot
// be drawn leaves no file behind.
func writeChart(path string, res *app.Result, cfg *config.Config) error {
	title := ""
	if len(res.Readings) > 0 {
		title = res.Readings[0].Time.Format(report.DayLayout)
	}

	var buf bytes.Buffer
	err := report.RenderChart(&buf, res.Points, res.Scale, report.ChartOptions{
		Title:  title,
		Width:  cfg.Output.ChartWidth,
		Height: cfg.Output.ChartHeight,
	})
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
}

func runSample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	out := fs.String("out", "", "output PNG file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("-out is required")
	}

	opts := synth.Default()
	opts.Width, opts.Height = 520, 400
	opts.Plot.Min.X, opts.Plot.Min.Y = 60, 80
	opts.Plot.Max.X, opts.Plot.Max.Y = 460, 340
	opts.Gridlines = []int{100, 170, 240, 310}
	opts.Labels = []string{"21", "14", "7", "0"}

	return writeFile(*out, func(w io.Writer) error {
		return png.Encode(w, synth.Screenshot(opts))
	})
}

func runConfig(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	initFile := fs.Bool("init", false, "write the default configuration")
	out := fs.String("out", "", "file written by -init")
	force := fs.Bool("force", false, "replace an existing file")
	configPath := fs.String("config", "", "configuration file to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*initFile {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	path := *out
	if path == "" {
		path = config.GetConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to replace it)", path)
	}
	if err := config.Default().SaveToFile(path); err != nil {
		return err
	}
	log.Printf("wrote default configuration to %s", path)
	return nil
}

// writeFile creates path and hands it to write. A failed close is reported
// when write succeeded.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return write(f)
}
