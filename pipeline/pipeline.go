package pipeline

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/lwittmann/cosmoview/colorscale"
	"github.com/lwittmann/cosmoview/config"
	"github.com/lwittmann/cosmoview/cpcm"
	"github.com/lwittmann/cosmoview/export"
	"github.com/lwittmann/cosmoview/mesh"
	"github.com/lwittmann/cosmoview/render"
	"github.com/lwittmann/cosmoview/spatial"
	"github.com/lwittmann/cosmoview/status"
	"github.com/lwittmann/cosmoview/utils"
)

// Value selection for coloring.
const (
	ColorByCharge        = "charge"
	ColorByPotential     = "potential"
	ColorBySurfaceCharge = "surface-charge"
)

// Options configure one batch run. Zero value is not usable, start
// from DefaultOptions.
type Options struct {
	InputDir  string
	OutputDir string

	// Force rebuilds artifacts that already exist.
	Force bool
	// OffScreen writes png renders; otherwise rasterization is left
	// to the web viewer.
	OffScreen bool
	// WritePQR additionally dumps the raw point cloud per file.
	WritePQR bool
	// WriteGLTF additionally writes a binary glb per file.
	WriteGLTF bool
	// Jobs bounds how many files are processed in parallel. Files are
	// independent, nothing is shared between them.
	Jobs int

	ColorBy string
	Builder mesh.BuilderParams
	Color   colorscale.Params
	Render  render.Params
}

func DefaultOptions() Options {
	return Options{
		InputDir:  "input",
		OutputDir: "output",
		OffScreen: true,
		WriteGLTF: true,
		Jobs:      1,
		ColorBy:   ColorByCharge,
		Builder:   mesh.DefaultBuilderParams(),
		Color:     colorscale.Params{Scale: colorscale.DefaultScale, RobustPct: 1.0},
		Render:    render.DefaultParams(),
	}
}

// Result is the outcome for one input file.
type Result struct {
	File    string
	Skipped bool
	Err     error
}

// ProcessAll converts every .cpcm file in the input directory. A
// failure on one file never aborts the others.
func ProcessAll(opts Options) ([]Result, error) {
	entries, err := os.ReadDir(opts.InputDir)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to list input directory %q", opts.InputDir)
	}
	if err := os.MkdirAll(opts.OutputDir, 0777); err != nil {
		return nil, errors.Wrapf(err, "Failed to create output directory %q", opts.OutputDir)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".cpcm") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	log.Printf("[pipeline] found %d cpcm files in %q", len(files), opts.InputDir)

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	results := make([]Result, len(files))
	var wg sync.WaitGroup
	sem := make(chan struct{}, jobs)
	for i, name := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = processOne(name, opts)
		}(i, name)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Printf("[pipeline] FAILED %s: %v", r.File, r.Err)
			status.Error("%s failed: %v", r.File, r.Err)
		}
	}
	if failed > 0 {
		return results, errors.Errorf("%d of %d files failed", failed, len(files))
	}
	return results, nil
}

func processOne(name string, opts Options) Result {
	base := strings.TrimSuffix(name, ".cpcm")
	inPath := filepath.Join(opts.InputDir, name)
	wrlPath := filepath.Join(opts.OutputDir, base+".wrl")
	glbPath := filepath.Join(opts.OutputDir, base+".glb")
	pqrPath := filepath.Join(opts.OutputDir, base+".pqr")
	pngPath := filepath.Join(opts.OutputDir, base+".png")

	need := opts.Force ||
		!fileExists(wrlPath) ||
		(opts.WriteGLTF && !fileExists(glbPath)) ||
		(opts.WritePQR && !fileExists(pqrPath)) ||
		(opts.OffScreen && !fileExists(pngPath))
	if !need {
		log.Printf("[pipeline] skipping (exists): %s", name)
		return Result{File: name, Skipped: true}
	}

	status.SetFile(name)
	status.Info("Building %s", name)
	log.Printf("[pipeline] building: %s", name)

	if err := convert(inPath, wrlPath, glbPath, pqrPath, pngPath, base, opts); err != nil {
		return Result{File: name, Err: err}
	}
	status.Info("Finished %s", name)
	return Result{File: name}
}

// convert runs the full parse, reconstruct, color, export sequence for
// one file. Each stage consumes the complete output of the previous
// one; there is no overlap within a file.
func convert(inPath, wrlPath, glbPath, pqrPath, pngPath, name string, opts Options) error {
	surface, err := cpcm.ParseFile(inPath)
	if err != nil {
		return err
	}
	if config.GetVerbosity() >= config.VerbosityDebug {
		log.Printf("[pipeline] %s: %d points, params %s", name, surface.Len(), utils.SDump(opts.Builder))
	}

	values, err := SelectValues(opts.ColorBy, surface)
	if err != nil {
		return err
	}

	index := spatial.NewIndex(surface.Points, surface.Owners)
	m, err := mesh.BuildFaces(index, surface.Areas, opts.Builder, inPath)
	if err != nil {
		return err
	}

	mapper, err := colorscale.NewMapper(opts.Color, values)
	if err != nil {
		return err
	}
	if config.GetVerbosity() >= config.VerbosityInfo {
		log.Printf("[pipeline] %s: color scale %s over [%g, %g]", name, mapper.Name, mapper.Min, mapper.Max)
	}

	faceColors := mapper.Colors(m.FaceMeans(values))

	if err := export.WriteVRMLFile(wrlPath, m, faceColors); err != nil {
		return err
	}
	log.Printf("[pipeline] wrote %s", wrlPath)

	if opts.WriteGLTF {
		if err := export.WriteGLTFFile(glbPath, name, m, mapper.Colors(values)); err != nil {
			return err
		}
		log.Printf("[pipeline] wrote %s", glbPath)
	}
	if opts.WritePQR {
		if err := export.WritePQRFile(pqrPath, surface.Points, values, export.DefaultPQRRadius); err != nil {
			return err
		}
		log.Printf("[pipeline] wrote %s", pqrPath)
	}
	if opts.OffScreen {
		if err := render.RenderPNGFile(pngPath, m, faceColors, opts.Render); err != nil {
			return err
		}
		log.Printf("[pipeline] rendered %s", pngPath)
	}
	return nil
}

// SelectValues picks the per point scalar that drives coloring.
func SelectValues(mode string, s *cpcm.Surface) ([]float64, error) {
	switch mode {
	case ColorByPotential:
		return s.Potentials, nil
	case ColorByCharge, "":
		return s.Charges, nil
	case ColorBySurfaceCharge:
		// charge weighted by patch area, area converted back to Bohr^2
		values := make([]float64, len(s.Charges))
		for i := range values {
			areaBohr := s.Areas[i] / (cpcm.AngstromPerBohr * cpcm.AngstromPerBohr)
			values[i] = s.Charges[i] * areaBohr
		}
		return values, nil
	default:
		return nil, errors.Errorf("Unsupported color-by option %q", mode)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
