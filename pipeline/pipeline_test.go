package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lwittmann/cosmoview/cpcm"
)

// writeSphereCPCM writes a synthetic input file whose points cover a
// sphere densely enough for the reconstruction to produce faces.
// Positions are stored in Bohr, the way the quantum chemistry codes
// emit them.
func writeSphereCPCM(t *testing.T, path string, n int, radius float64) {
	t.Helper()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d # Number of surface points\n", n)
	sb.WriteString("SURFACE POINTS\n")
	sb.WriteString("# x y z area potential charge aux aux aux atom\n")
	sb.WriteString("# ------------------------------------------------\n")

	golden := math.Pi * (3 - math.Sqrt(5))
	area := 4 * math.Pi * radius * radius / float64(n)
	for i := 0; i < n; i++ {
		y := 1 - 2*float64(i)/float64(n-1)
		r := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		x := math.Cos(theta) * r * radius
		z := math.Sin(theta) * r * radius
		charge := 0.01 * math.Sin(float64(i))
		fmt.Fprintf(&sb, "%.8f %.8f %.8f %.6f %.4f %.4f 0 0 0 1\n",
			x/cpcm.AngstromPerBohr, y*radius/cpcm.AngstromPerBohr, z/cpcm.AngstromPerBohr,
			area, charge*2, charge)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0666); err != nil {
		t.Fatal(err)
	}
}

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.InputDir = filepath.Join(t.TempDir(), "in")
	opts.OutputDir = filepath.Join(t.TempDir(), "out")
	opts.Color.Scale = "ColdHot"
	opts.Render.Width = 120
	opts.Render.Height = 90
	if err := os.MkdirAll(opts.InputDir, 0777); err != nil {
		t.Fatal(err)
	}
	return opts
}

func TestProcessAll(t *testing.T) {
	opts := testOptions(t)
	opts.WritePQR = true
	writeSphereCPCM(t, filepath.Join(opts.InputDir, "mol.cpcm"), 200, 2.0)

	results, err := ProcessAll(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Err != nil || results[0].Skipped {
		t.Fatalf("unexpected results: %+v", results)
	}

	for _, name := range []string{"mol.wrl", "mol.glb", "mol.pqr", "mol.png"} {
		if _, err := os.Stat(filepath.Join(opts.OutputDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
}

func TestProcessAllSkipsExisting(t *testing.T) {
	opts := testOptions(t)
	writeSphereCPCM(t, filepath.Join(opts.InputDir, "mol.cpcm"), 200, 2.0)

	if _, err := ProcessAll(opts); err != nil {
		t.Fatal(err)
	}
	results, err := ProcessAll(opts)
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Skipped {
		t.Error("second run rebuilt existing artifacts")
	}

	opts.Force = true
	results, err = ProcessAll(opts)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Skipped {
		t.Error("force run skipped the file")
	}
}

func TestProcessAllIsolatesFailures(t *testing.T) {
	opts := testOptions(t)
	writeSphereCPCM(t, filepath.Join(opts.InputDir, "good.cpcm"), 200, 2.0)
	if err := os.WriteFile(filepath.Join(opts.InputDir, "bad.cpcm"), []byte("garbage\n"), 0666); err != nil {
		t.Fatal(err)
	}

	results, err := ProcessAll(opts)
	if err == nil {
		t.Fatal("expected batch error for the malformed file")
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// files are processed in name order
	if results[0].File != "bad.cpcm" || results[0].Err == nil {
		t.Errorf("bad.cpcm: %+v", results[0])
	}
	if results[1].File != "good.cpcm" || results[1].Err != nil {
		t.Errorf("good.cpcm: %+v", results[1])
	}
	if _, err := os.Stat(filepath.Join(opts.OutputDir, "good.wrl")); err != nil {
		t.Error("good file was not converted despite the bad one")
	}
}

func TestProcessAllParallel(t *testing.T) {
	opts := testOptions(t)
	opts.Jobs = 4
	opts.WriteGLTF = false
	opts.OffScreen = false
	for i := 0; i < 6; i++ {
		writeSphereCPCM(t, filepath.Join(opts.InputDir, fmt.Sprintf("mol%d.cpcm", i)), 150, 1.5)
	}

	results, err := ProcessAll(opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(opts.OutputDir, fmt.Sprintf("mol%d.wrl", i))); err != nil {
			t.Errorf("missing mol%d.wrl: %v", i, err)
		}
	}
}

func TestSelectValues(t *testing.T) {
	s := &cpcm.Surface{
		Charges:    []float64{0.5},
		Potentials: []float64{2.0},
		Areas:      []float64{cpcm.AngstromPerBohr * cpcm.AngstromPerBohr},
	}

	if v, err := SelectValues(ColorByCharge, s); err != nil || v[0] != 0.5 {
		t.Errorf("charge: %v, %v", v, err)
	}
	if v, err := SelectValues("", s); err != nil || v[0] != 0.5 {
		t.Errorf("default: %v, %v", v, err)
	}
	if v, err := SelectValues(ColorByPotential, s); err != nil || v[0] != 2.0 {
		t.Errorf("potential: %v, %v", v, err)
	}
	// area is one Bohr^2, so the weighted value equals the charge
	if v, err := SelectValues(ColorBySurfaceCharge, s); err != nil || math.Abs(v[0]-0.5) > 1e-12 {
		t.Errorf("surface-charge: %v, %v", v, err)
	}
	if _, err := SelectValues("bogus", s); err == nil {
		t.Error("bogus mode accepted")
	}
}
