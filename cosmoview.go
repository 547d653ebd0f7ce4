package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lwittmann/cosmoview/colorscale"
	"github.com/lwittmann/cosmoview/config"
	"github.com/lwittmann/cosmoview/pipeline"
	"github.com/lwittmann/cosmoview/web"
)

const version = "1.0.0"

func printBanner() {
	const width = 33
	lines := []string{
		"Simple Cosmo Surface Viewer",
		fmt.Sprintf("Version %s", version),
		"L. Wittmann",
	}
	fmt.Println(strings.Repeat("-", width))
	for _, ln := range lines {
		pad := (width - len(ln)) / 2
		if pad < 0 {
			pad = 0
		}
		fmt.Println(strings.Repeat(" ", pad) + ln)
	}
	fmt.Println(strings.Repeat("-", width))
	fmt.Println()
}

func main() {
	var input, output, colorBy, cmap, background, encoding, settingsPath, serveAddr string
	var force, onscreen, robust, writePQR, noGLTF bool
	var neighborRadius, neighborsThreshold, boundaryFactor, maxEdgeFactor, robustPct, vmin, vmax float64
	var maxNeighbors, maxCrossNeighbors, width, height, jobs, verbose int

	flag.StringVar(&input, "input", "input", "Input directory with .cpcm files")
	flag.StringVar(&output, "output", "output", "Directory to write .wrl, .glb and .png files")
	flag.BoolVar(&force, "force", false, "Rebuild artifacts even if they exist")
	flag.BoolVar(&onscreen, "onscreen", false, "Skip png rendering and open the web viewer instead")
	flag.StringVar(&serveAddr, "serve", "", "Address of viewer server (empty - do not serve)")

	flag.Float64Var(&neighborRadius, "neighbor-radius", 0, "Radius for neighbor search (Angstrom)")
	flag.IntVar(&maxNeighbors, "max-neighbors", 0, "Max same sphere neighbors per point")
	flag.IntVar(&maxCrossNeighbors, "max-cross-neighbors", 0, "Max cross sphere neighbors for boundary points")
	flag.Float64Var(&boundaryFactor, "boundary-factor", 0, "Sphere boundary detection factor")
	flag.Float64Var(&neighborsThreshold, "neighbors-threshold", 0, "Distance threshold factor for triangle acceptance")
	flag.Float64Var(&maxEdgeFactor, "max-edge-factor", 0, "Absolute edge cap as multiple of median neighbor distance")

	flag.Float64Var(&vmin, "vmin", math.NaN(), "Lower bound for color mapping")
	flag.Float64Var(&vmax, "vmax", math.NaN(), "Upper bound for color mapping")
	flag.StringVar(&colorBy, "color-by", "", "Color by 'charge', 'potential' or 'surface-charge'")
	flag.StringVar(&cmap, "cmap", "", "Color scale name (default "+colorscale.DefaultScale+")")
	flag.BoolVar(&robust, "robust", false, "Use percentile clipping when vmin/vmax not provided")
	flag.Float64Var(&robustPct, "robust-pct", 0, "Percentile for robust clipping")

	flag.IntVar(&width, "window-width", 0, "PNG width in pixels")
	flag.IntVar(&height, "window-height", 0, "PNG height in pixels")
	flag.StringVar(&background, "background", "", "Background color name or hex code")

	flag.BoolVar(&writePQR, "pqr", false, "Additionally write .pqr point clouds")
	flag.BoolVar(&noGLTF, "no-gltf", false, "Do not write .glb meshes")
	flag.IntVar(&jobs, "jobs", 1, "Process this many files in parallel")
	flag.StringVar(&encoding, "encoding", "", "Input file charmap encoding (default utf8)")
	flag.StringVar(&settingsPath, "settings", "cosmoview.yaml", "Settings file path")
	flag.IntVar(&verbose, "v", 0, "Verbosity: 0 - warnings, 1 - info, 2 - debug")
	flag.Parse()

	printBanner()

	config.SetVerbosity(config.Verbosity(verbose))
	if err := config.SetEncoding(encoding); err != nil {
		log.Fatal(err)
	}

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		log.Fatal(err)
	}

	opts := pipeline.DefaultOptions()
	opts.InputDir = input
	opts.OutputDir = output
	opts.Force = force
	opts.OffScreen = !onscreen
	opts.WritePQR = writePQR
	opts.WriteGLTF = !noGLTF
	opts.Jobs = jobs

	opts.Builder.NeighborRadius = settings.Mesh.NeighborRadius
	opts.Builder.MaxNeighbors = settings.Mesh.MaxNeighbors
	opts.Builder.MaxCrossNeighbors = settings.Mesh.MaxCrossNeighbors
	opts.Builder.BoundaryFactor = settings.Mesh.BoundaryFactor
	opts.Builder.NeighborsThreshold = settings.Mesh.NeighborsThreshold
	opts.Builder.MaxEdgeFactor = settings.Mesh.MaxEdgeFactor
	opts.ColorBy = settings.Color.ColorBy
	opts.Color.Scale = settings.Color.Scale
	opts.Color.Robust = settings.Color.Robust
	opts.Color.RobustPct = settings.Color.RobustPct
	opts.Render.Width = settings.Render.Width
	opts.Render.Height = settings.Render.Height
	opts.Render.Background = settings.Render.Background

	// explicit flags win over the settings file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "neighbor-radius":
			opts.Builder.NeighborRadius = neighborRadius
		case "max-neighbors":
			opts.Builder.MaxNeighbors = maxNeighbors
		case "max-cross-neighbors":
			opts.Builder.MaxCrossNeighbors = maxCrossNeighbors
		case "boundary-factor":
			opts.Builder.BoundaryFactor = boundaryFactor
		case "neighbors-threshold":
			opts.Builder.NeighborsThreshold = neighborsThreshold
		case "max-edge-factor":
			opts.Builder.MaxEdgeFactor = maxEdgeFactor
		case "color-by":
			opts.ColorBy = colorBy
		case "cmap":
			opts.Color.Scale = cmap
		case "robust":
			opts.Color.Robust = robust
		case "robust-pct":
			opts.Color.RobustPct = robustPct
		case "window-width":
			opts.Render.Width = width
		case "window-height":
			opts.Render.Height = height
		case "background":
			opts.Render.Background = background
		}
	})
	if !math.IsNaN(vmin) {
		opts.Color.Min = &vmin
	}
	if !math.IsNaN(vmax) {
		opts.Color.Max = &vmax
	}

	log.Printf("[main] mesh params: radius=%g max-neighbors=%d threshold=%g",
		opts.Builder.NeighborRadius, opts.Builder.MaxNeighbors, opts.Builder.NeighborsThreshold)

	results, err := pipeline.ProcessAll(opts)
	if err != nil {
		log.Printf("[main] %v", err)
	}
	built := 0
	for _, r := range results {
		if r.Err == nil && !r.Skipped {
			built++
		}
	}
	log.Printf("[main] built %d meshes in %q", built, output)

	if onscreen && serveAddr == "" {
		serveAddr = ":8000"
	}
	if serveAddr != "" {
		abs, aerr := filepath.Abs(output)
		if aerr != nil {
			abs = output
		}
		if err := web.StartServer(serveAddr, abs); err != nil {
			log.Fatal(err)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}
