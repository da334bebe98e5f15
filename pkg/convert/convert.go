// Package convert orchestrates the full conversion pipeline.
//
// A Runner executes the three stages in order:
//
//  1. Reading: decode heightmap and colormap images into grids
//  2. Generating: run the selected merge strategy over the grids
//  3. Writing: encode the brick sequence and write the save file
//
// Every stage reports progress through the caller's reporter with a
// monotonically non-decreasing fraction; returning false from the reporter
// (or cancelling the context) stops the pipeline between units of work and
// yields gen.ErrCancelled without touching the output path.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/brickadia-community/heightmap2brz/pkg/brdb"
	"github.com/brickadia-community/heightmap2brz/pkg/brz"
	"github.com/brickadia-community/heightmap2brz/pkg/gen"
	"github.com/brickadia-community/heightmap2brz/pkg/heightmap"
	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

// Stage labels reported to the progress callback.
const (
	StageReading    = "Reading"
	StageGenerating = "Generating"
	StageWriting    = "Writing"
	StageFinished   = "Finished"
)

// Progress fractions reserved for the reading and writing stages; the
// generator's own fraction is mapped into the span between them.
const (
	fracReading = 0.10
	fracWriting = 0.95
)

// Format is one of the two supported save-file formats.
type Format int

const (
	// FormatBRZ is the compact compressed container.
	FormatBRZ Format = iota
	// FormatBRDB is the structured SQLite database.
	FormatBRDB
)

// DetectFormat selects the output format from the file extension. Any
// extension other than .brz or .brdb is a configuration error.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".brz":
		return FormatBRZ, nil
	case ".brdb":
		return FormatBRDB, nil
	}
	return 0, fmt.Errorf("output file must end with .brz or .brdb, got %q", path)
}

// Options configures one pipeline run.
type Options struct {
	// Heightmaps are the input elevation images, concatenated left to
	// right. May be empty in image mode.
	Heightmaps []string
	// Colormap is the optional color image. When no heightmaps are given
	// it drives image mode.
	Colormap string
	// Output is the save file path; its extension selects the format.
	Output string

	Gen gen.GenOptions

	// Map and Owner populate the save header. Zero values fall back to
	// the document defaults.
	Map       string
	OwnerName string

	// Progress receives stage/fraction updates; nil disables reporting.
	Progress gen.ProgressFunc
}

// Stats carries per-stage timings and grid dimensions for logging.
type Stats struct {
	Width, Height int
	ReadTime      time.Duration
	GenerateTime  time.Duration
	WriteTime     time.Duration
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Path   string
	Format Format
	Bricks int
	Stats  Stats
}

// Runner executes conversion pipelines. It is stateless apart from the
// logger; one runner can serve many sequential runs.
type Runner struct {
	Logger *log.Logger
}

// NewRunner returns a runner logging through logger, or the default logger
// when nil.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the full pipeline. Cancelling ctx or returning false from
// the progress reporter aborts with gen.ErrCancelled; in that case nothing
// is written to the output path.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	format, err := DetectFormat(opts.Output)
	if err != nil {
		return nil, err
	}
	if len(opts.Heightmaps) == 0 {
		if opts.Colormap == "" {
			return nil, fmt.Errorf("no input images")
		}
		opts.Gen.Img = true
	}
	if err := opts.Gen.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	report := func(stage string, frac float64) bool {
		if ctx.Err() != nil {
			return false
		}
		if opts.Progress == nil {
			return true
		}
		return opts.Progress(stage, frac)
	}

	result := &Result{Path: opts.Output, Format: format}

	// Stage 1: Reading
	if !report(StageReading, 0) {
		return nil, gen.ErrCancelled
	}
	readStart := time.Now()
	hm, cm, err := r.loadMaps(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.Width, result.Stats.Height = hm.Size()
	result.Stats.ReadTime = time.Since(readStart)
	r.Logger.Info("read image files",
		"width", result.Stats.Width,
		"height", result.Stats.Height,
		"duration", result.Stats.ReadTime.Round(time.Millisecond))

	// Stage 2: Generating
	if !report(StageGenerating, fracReading) {
		return nil, gen.ErrCancelled
	}
	genStart := time.Now()
	bricks, err := gen.Generate(hm, cm, opts.Gen, func(_ string, p float64) bool {
		return report(StageGenerating, fracReading+(fracWriting-fracReading)*p)
	})
	if err != nil {
		return nil, err
	}
	result.Bricks = len(bricks)
	result.Stats.GenerateTime = time.Since(genStart)
	r.Logger.Info("generated bricks",
		"strategy", opts.Gen.Strategy(),
		"bricks", len(bricks),
		"duration", result.Stats.GenerateTime.Round(time.Millisecond))

	// Stage 3: Writing
	if !report(StageWriting, fracWriting) {
		return nil, gen.ErrCancelled
	}
	writeStart := time.Now()
	if err := r.write(format, bricks, opts); err != nil {
		return nil, err
	}
	result.Stats.WriteTime = time.Since(writeStart)
	r.Logger.Info("wrote save",
		"path", opts.Output,
		"duration", result.Stats.WriteTime.Round(time.Millisecond))

	report(StageFinished, 1)
	return result, nil
}

// loadMaps decodes the input images. In image mode the heightmap is a flat
// grid sized to the colormap; without a colormap every brick gets the
// default color.
func (r *Runner) loadMaps(opts Options) (heightmap.Heightmap, heightmap.ColorSource, error) {
	if opts.Gen.Img {
		cm, err := heightmap.NewColormap(opts.Colormap, opts.Gen.LRGB)
		if err != nil {
			return nil, nil, fmt.Errorf("reading colormap: %w", err)
		}
		w, h := cm.Size()
		hm, err := heightmap.NewFlat(w, h)
		if err != nil {
			return nil, nil, err
		}
		return hm, cm, nil
	}

	hm, err := heightmap.New(opts.Heightmaps, opts.Gen.HDMap)
	if err != nil {
		return nil, nil, fmt.Errorf("reading heightmap: %w", err)
	}
	if opts.Colormap == "" {
		w, h := hm.Size()
		return hm, heightmap.NewUniform(w, h, heightmap.DefaultColor), nil
	}
	cm, err := heightmap.NewColormap(opts.Colormap, opts.Gen.LRGB)
	if err != nil {
		return nil, nil, fmt.Errorf("reading colormap: %w", err)
	}
	return hm, cm, nil
}

// write assembles the save document and hands it to the selected encoder.
func (r *Runner) write(format Format, bricks []save.Brick, opts Options) error {
	assetName, err := opts.Gen.Asset.AssetName()
	if err != nil {
		return err
	}

	docOpts := []save.DocumentOption{}
	if opts.Map != "" {
		docOpts = append(docOpts, save.WithMap(opts.Map, "Generated from heightmap"))
	}
	doc := save.NewDocument(bricks, []string{assetName}, docOpts...)
	if opts.OwnerName != "" {
		doc.Owner.Name = opts.OwnerName
	}

	switch format {
	case FormatBRDB:
		return brdb.Write(doc, opts.Output)
	default:
		data, err := brz.Encode(doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			return fmt.Errorf("writing save: %w", err)
		}
		return nil
	}
}
