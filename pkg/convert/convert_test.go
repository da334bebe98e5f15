package convert

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/brickadia-community/heightmap2brz/pkg/gen"
	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

func quietRunner() *Runner {
	return NewRunner(log.New(io.Discard))
}

func writeGrayPNG(t *testing.T, path string, w, h int, v uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func writeColorPNG(t *testing.T, path string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func baseGen() gen.GenOptions {
	return gen.GenOptions{Size: 1, Scale: 10, Micro: true, Asset: save.AssetMicro}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"out.brz", FormatBRZ, false},
		{"out.brdb", FormatBRDB, false},
		{"dir/save.BRZ", FormatBRZ, false},
		{"out.brs", 0, true},
		{"out", 0, true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("%s: format = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExecuteBRZ(t *testing.T) {
	dir := t.TempDir()
	hmPath := writeGrayPNG(t, filepath.Join(dir, "hm.png"), 4, 4, 200)
	out := filepath.Join(dir, "out.brz")

	res, err := quietRunner().Execute(context.Background(), Options{
		Heightmaps: []string{hmPath},
		Output:     out,
		Gen:        baseGen(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Format != FormatBRZ {
		t.Errorf("format = %v, want FormatBRZ", res.Format)
	}
	if res.Bricks != 16 {
		t.Errorf("bricks = %d, want 16", res.Bricks)
	}
	if res.Stats.Width != 4 || res.Stats.Height != 4 {
		t.Errorf("stats %dx%d, want 4x4", res.Stats.Width, res.Stats.Height)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data[:3]) != "BRZ" {
		t.Errorf("output magic = %q", data[:3])
	}
}

func TestExecuteBRDB(t *testing.T) {
	dir := t.TempDir()
	hmPath := writeGrayPNG(t, filepath.Join(dir, "hm.png"), 2, 2, 100)
	out := filepath.Join(dir, "out.brdb")

	res, err := quietRunner().Execute(context.Background(), Options{
		Heightmaps: []string{hmPath},
		Output:     out,
		Gen:        baseGen(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Format != FormatBRDB {
		t.Errorf("format = %v, want FormatBRDB", res.Format)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestExecuteImageMode(t *testing.T) {
	// With no heightmaps the colormap drives a flat one-level grid.
	dir := t.TempDir()
	cmPath := writeColorPNG(t, filepath.Join(dir, "cm.png"), 3, 2)
	out := filepath.Join(dir, "out.brz")

	res, err := quietRunner().Execute(context.Background(), Options{
		Colormap: cmPath,
		Output:   out,
		Gen:      baseGen(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Bricks != 6 {
		t.Errorf("bricks = %d, want 6", res.Bricks)
	}
}

func TestExecuteNoInputs(t *testing.T) {
	_, err := quietRunner().Execute(context.Background(), Options{
		Output: filepath.Join(t.TempDir(), "out.brz"),
		Gen:    baseGen(),
	})
	if err == nil {
		t.Error("expected error with neither heightmap nor colormap")
	}
}

func TestExecuteBadExtension(t *testing.T) {
	dir := t.TempDir()
	hmPath := writeGrayPNG(t, filepath.Join(dir, "hm.png"), 2, 2, 10)
	_, err := quietRunner().Execute(context.Background(), Options{
		Heightmaps: []string{hmPath},
		Output:     filepath.Join(dir, "out.txt"),
		Gen:        baseGen(),
	})
	if err == nil {
		t.Error("expected error for unsupported output extension")
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	dir := t.TempDir()
	hmPath := writeGrayPNG(t, filepath.Join(dir, "hm.png"), 8, 8, 50)
	out := filepath.Join(dir, "out.brz")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietRunner().Execute(ctx, Options{
		Heightmaps: []string{hmPath},
		Output:     out,
		Gen:        baseGen(),
	})
	if !errors.Is(err, gen.ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file written despite cancellation")
	}
}

func TestExecuteProgressStops(t *testing.T) {
	dir := t.TempDir()
	hmPath := writeGrayPNG(t, filepath.Join(dir, "hm.png"), 8, 8, 50)
	out := filepath.Join(dir, "out.brz")

	calls := 0
	_, err := quietRunner().Execute(context.Background(), Options{
		Heightmaps: []string{hmPath},
		Output:     out,
		Gen:        baseGen(),
		Progress: func(string, float64) bool {
			calls++
			return calls <= 2
		},
	})
	if !errors.Is(err, gen.ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file written despite cancellation")
	}
}

func TestExecuteProgressReachesFinish(t *testing.T) {
	dir := t.TempDir()
	hmPath := writeGrayPNG(t, filepath.Join(dir, "hm.png"), 4, 4, 128)
	out := filepath.Join(dir, "out.brz")

	var stages []string
	var last float64
	_, err := quietRunner().Execute(context.Background(), Options{
		Heightmaps: []string{hmPath},
		Output:     out,
		Gen:        baseGen(),
		Progress: func(stage string, frac float64) bool {
			if frac < last {
				t.Errorf("progress decreased: %v -> %v", last, frac)
			}
			last = frac
			if len(stages) == 0 || stages[len(stages)-1] != stage {
				stages = append(stages, stage)
			}
			return true
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if last != 1 {
		t.Errorf("final fraction %v, want 1", last)
	}
	if stages[0] != StageReading || stages[len(stages)-1] != StageFinished {
		t.Errorf("stage order = %v", stages)
	}
}

func TestExecuteOwnerAndMapHeader(t *testing.T) {
	dir := t.TempDir()
	hmPath := writeGrayPNG(t, filepath.Join(dir, "hm.png"), 2, 2, 30)
	out := filepath.Join(dir, "out.brz")

	_, err := quietRunner().Execute(context.Background(), Options{
		Heightmaps: []string{hmPath},
		Output:     out,
		Gen:        baseGen(),
		Map:        "Hills",
		OwnerName:  "cartographer",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// Owner name follows the 20-byte fixed header as a length-prefixed string.
	n := int(data[20])
	if got := string(data[21 : 21+n]); got != "cartographer" {
		t.Errorf("owner name in header = %q", got)
	}
	off := 21 + n
	m := int(data[off])
	if got := string(data[off+1 : off+1+m]); got != "Hills" {
		t.Errorf("map name in header = %q", got)
	}
}
