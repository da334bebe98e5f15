package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/brickadia-community/heightmap2brz/pkg/buildinfo"
	"github.com/brickadia-community/heightmap2brz/pkg/convert"
	"github.com/brickadia-community/heightmap2brz/pkg/gen"
	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

// convertOpts holds the command-line flags for the conversion.
type convertOpts struct {
	output     string // save file path, extension selects the format
	colormap   string // color image; alone it enables img2brick mode
	configPath string // optional TOML defaults file
	mapName    string // save header map name
	ownerName  string // save header owner name

	size     int // footprint per pixel in studs (microbricks for --micro)
	vertical int // height units per elevation step

	cull      bool
	nocollide bool
	lrgb      bool
	snap      bool
	glow      bool
	hdmap     bool
	img       bool

	tile   bool
	smooth bool
	micro  bool
	stud   bool

	quadtree bool
	greedy   bool

	noProgress bool
}

// Execute runs the heightmap2brz CLI.
func Execute(ctx context.Context) error {
	var verbose bool
	opts := convertOpts{
		output:   "out.brz",
		size:     1,
		vertical: 1,
		quadtree: true,
	}

	root := &cobra.Command{
		Use:          "heightmap2brz [flags] heightmap...",
		Short:        "Converts heightmap images (PNG/JPG) to brick save files",
		Long:         "Converts heightmap images (PNG/JPG) into .brz or .brdb save files.\nSupply only a colormap (-c) for image-to-brick mode.",
		Version:      buildinfo.Version,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, &opts)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("heightmap2brz %s (%s, built %s)\n",
		buildinfo.Version, buildinfo.Commit, buildinfo.Date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output save file (.brz or .brdb)")
	root.Flags().StringVarP(&opts.colormap, "colormap", "c", "", "input colormap image (PNG/JPG)")
	root.Flags().StringVar(&opts.configPath, "config", "", "TOML defaults file")
	root.Flags().StringVar(&opts.mapName, "map", "", "map name written to the save header")
	root.Flags().StringVar(&opts.ownerName, "owner", "", "owner name written to the save header")
	root.Flags().IntVarP(&opts.size, "size", "s", opts.size, "brick stud size per pixel")
	root.Flags().IntVar(&opts.vertical, "vertical", opts.vertical, "vertical scale multiplier")
	root.Flags().BoolVar(&opts.cull, "cull", false, "remove bottom level bricks and fully transparent bricks")
	root.Flags().BoolVar(&opts.tile, "tile", false, "render bricks as tiles")
	root.Flags().BoolVar(&opts.smooth, "smooth", false, "render bricks as smooth tiles")
	root.Flags().BoolVar(&opts.micro, "micro", false, "render bricks as micro bricks")
	root.Flags().BoolVar(&opts.stud, "stud", false, "render bricks as stud cubes")
	root.Flags().BoolVar(&opts.snap, "snap", false, "snap bricks to the brick grid")
	root.Flags().BoolVar(&opts.lrgb, "lrgb", false, "linearize input colors before merging")
	root.Flags().BoolVarP(&opts.img, "img", "i", false, "make the heightmap flat and render an image")
	root.Flags().BoolVar(&opts.glow, "glow", false, "make bricks glow at lowest intensity")
	root.Flags().BoolVar(&opts.hdmap, "hdmap", false, "use a high detail rgb encoded heightmap")
	root.Flags().BoolVar(&opts.nocollide, "nocollide", false, "disable brick collision")
	root.Flags().BoolVar(&opts.quadtree, "quadtree", opts.quadtree, "use quadtree optimization")
	root.Flags().BoolVar(&opts.greedy, "greedy", false, "use greedy mesh optimization")
	root.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable the progress meter")

	return root.ExecuteContext(ctx)
}

// applyConfig seeds option values from the TOML config for every flag the
// user did not set explicitly.
func applyConfig(cmd *cobra.Command, cfg *Config, opts *convertOpts) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	d := cfg.Defaults
	if d.Size > 0 && !set("size") {
		opts.size = d.Size
	}
	if d.Vertical > 0 && !set("vertical") {
		opts.vertical = d.Vertical
	}
	if !set("cull") {
		opts.cull = opts.cull || d.Cull
	}
	if !set("snap") {
		opts.snap = opts.snap || d.Snap
	}
	if !set("lrgb") {
		opts.lrgb = opts.lrgb || d.LRGB
	}
	if !set("glow") {
		opts.glow = opts.glow || d.Glow
	}
	if !set("hdmap") {
		opts.hdmap = opts.hdmap || d.HDMap
	}
	if !set("nocollide") {
		opts.nocollide = opts.nocollide || d.NoCollide
	}
	if !set("greedy") {
		opts.greedy = opts.greedy || d.Greedy
	}
	switch d.Brick {
	case "tile":
		opts.tile = opts.tile || !brickFlagSet(cmd)
	case "smooth":
		opts.smooth = opts.smooth || !brickFlagSet(cmd)
	case "stud":
		opts.stud = opts.stud || !brickFlagSet(cmd)
	case "micro":
		opts.micro = opts.micro || !brickFlagSet(cmd)
	}
	if cfg.Owner.Name != "" && !set("owner") {
		opts.ownerName = cfg.Owner.Name
	}
}

func brickFlagSet(cmd *cobra.Command) bool {
	for _, f := range []string{"tile", "smooth", "micro", "stud"} {
		if cmd.Flags().Changed(f) {
			return true
		}
	}
	return false
}

// assetKind resolves the brick family flags with the same priority the
// original tool used: micro wins, then tile, smooth, stud.
func (o *convertOpts) assetKind() save.AssetKind {
	switch {
	case o.micro:
		return save.AssetMicro
	case o.tile:
		return save.AssetTile
	case o.smooth:
		return save.AssetSmoothTile
	case o.stud:
		return save.AssetStud
	default:
		return save.AssetDefault
	}
}

// genOptions assembles the engine options from the flag values.
func (o *convertOpts) genOptions() gen.GenOptions {
	size := o.size
	if !o.micro {
		size *= gen.StudMultiplier
	}
	return gen.GenOptions{
		Size:      size,
		Scale:     o.vertical,
		Cull:      o.cull,
		NoCollide: o.nocollide,
		LRGB:      o.lrgb,
		Snap:      o.snap,
		Glow:      o.glow,
		HDMap:     o.hdmap,
		Img:       o.img,
		Micro:     o.micro,
		Stud:      o.stud,
		Asset:     o.assetKind(),
		Quadtree:  o.quadtree && !o.greedy,
		Greedy:    o.greedy,
	}
}

func runConvert(cmd *cobra.Command, args []string, opts *convertOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if opts.configPath != "" {
		cfg, err := loadConfig(opts.configPath)
		if err != nil {
			return err
		}
		applyConfig(cmd, cfg, opts)
	}

	if opts.size < 1 || opts.size > 100 {
		return fmt.Errorf("size must be in [1, 100], got %d", opts.size)
	}
	if opts.vertical < 1 || opts.vertical > 100 {
		return fmt.Errorf("vertical must be in [1, 100], got %d", opts.vertical)
	}
	if len(args) == 0 && opts.colormap == "" {
		return fmt.Errorf("supply heightmap images, or a colormap for image mode")
	}
	if opts.img && opts.colormap == "" {
		return fmt.Errorf("--img requires a colormap")
	}
	if _, err := convert.DetectFormat(opts.output); err != nil {
		return err
	}

	// The original tool colors bricks from the heightmap itself when no
	// colormap is given.
	colormap := opts.colormap
	if colormap == "" && len(args) > 0 {
		colormap = args[0]
	}

	m := newMeter(os.Stderr, !opts.noProgress)
	defer m.Clear()

	start := time.Now()
	runner := convert.NewRunner(logger)
	res, err := runner.Execute(ctx, convert.Options{
		Heightmaps: args,
		Colormap:   colormap,
		Output:     opts.output,
		Gen:        opts.genOptions(),
		Map:        opts.mapName,
		OwnerName:  opts.ownerName,
		Progress:   m.Update,
	})
	m.Clear()
	if err != nil {
		if errors.Is(err, gen.ErrCancelled) {
			logger.Info("stopped by user")
			return err
		}
		printError("%v", err)
		return err
	}

	printSuccess("Wrote %d bricks to %s (%s)",
		res.Bricks, res.Path, time.Since(start).Round(time.Millisecond))
	return nil
}
