package render

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/lwittmann/cosmoview/colorscale"
	"github.com/lwittmann/cosmoview/mesh"
)

// Params control the off screen rasterization.
type Params struct {
	Width      int
	Height     int
	Background string // color name or #rrggbb
}

func DefaultParams() Params {
	return Params{Width: 1600, Height: 1200, Background: "white"}
}

var namedColors = map[string]color.RGBA{
	"white": {255, 255, 255, 255},
	"black": {0, 0, 0, 255},
	"gray":  {128, 128, 128, 255},
	"grey":  {128, 128, 128, 255},
}

func parseBackground(s string) color.RGBA {
	if c, ok := namedColors[s]; ok {
		return c
	}
	if len(s) == 7 && s[0] == '#' {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
		}
	}
	return namedColors["white"]
}

// Render rasterizes the colored mesh into an image: orthographic
// camera down the z axis, z buffer, flat shading per face with a
// headlight from the viewer.
func Render(m *mesh.Mesh, faceColors []colorscale.RGB, p Params) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	bg := parseBackground(p.Background)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			img.SetRGBA(x, y, bg)
		}
	}

	if len(m.Vertices) == 0 || len(m.Faces) == 0 {
		return img
	}

	center, radius := boundingSphere(m.Vertices)
	if radius == 0 {
		radius = 1
	}
	half := float64(p.Height)
	if float64(p.Width) < half {
		half = float64(p.Width)
	}
	scale := 0.45 * half / radius

	// screen space projection: x right, y down, z toward the viewer
	project := func(v mgl64.Vec3) mgl64.Vec3 {
		d := v.Sub(center)
		return mgl64.Vec3{
			float64(p.Width)/2 + d[0]*scale,
			float64(p.Height)/2 - d[1]*scale,
			d[2] * scale,
		}
	}

	zbuf := make([]float64, p.Width*p.Height)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}

	light := mgl64.Vec3{0, 0, 1}
	for fi, f := range m.Faces {
		a := project(m.Vertices[f[0]])
		b := project(m.Vertices[f[1]])
		c := project(m.Vertices[f[2]])

		n := m.Normal(fi)
		if n.Len() == 0 {
			continue
		}
		shade := math.Abs(n.Normalize().Dot(light))
		intensity := 0.35 + 0.65*shade

		col := faceColors[fi]
		rgba := color.RGBA{
			uint8(clamp01(col[0]*intensity)*255 + 0.5),
			uint8(clamp01(col[1]*intensity)*255 + 0.5),
			uint8(clamp01(col[2]*intensity)*255 + 0.5),
			255,
		}
		fillTriangle(img, zbuf, a, b, c, rgba)
	}
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boundingSphere(vertices []mgl64.Vec3) (mgl64.Vec3, float64) {
	var center mgl64.Vec3
	for _, v := range vertices {
		center = center.Add(v)
	}
	center = center.Mul(1.0 / float64(len(vertices)))
	radius := 0.0
	for _, v := range vertices {
		if d := v.Sub(center).Len(); d > radius {
			radius = d
		}
	}
	return center, radius
}

// fillTriangle scanline fills the projected triangle with z testing.
func fillTriangle(img *image.RGBA, zbuf []float64, a, b, c mgl64.Vec3, col color.RGBA) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()

	minX := int(math.Floor(min3(a[0], b[0], c[0])))
	maxX := int(math.Ceil(max3(a[0], b[0], c[0])))
	minY := int(math.Floor(min3(a[1], b[1], c[1])))
	maxY := int(math.Ceil(max3(a[1], b[1], c[1])))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= w {
		maxX = w - 1
	}
	if maxY >= h {
		maxY = h - 1
	}

	area := edge(a, b, c[0], c[1])
	if area == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			py := float64(y) + 0.5

			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*a[2] + w1*b[2] + w2*c[2]
			zi := y*w + x
			if z > zbuf[zi] {
				zbuf[zi] = z
				img.SetRGBA(x, y, col)
			}
		}
	}
}

func edge(a, b mgl64.Vec3, px, py float64) float64 {
	return (b[0]-a[0])*(py-a[1]) - (b[1]-a[1])*(px-a[0])
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

// RenderPNGFile rasterizes the mesh and writes it as png.
func RenderPNGFile(path string, m *mesh.Mesh, faceColors []colorscale.RGB, p Params) error {
	img := Render(m, faceColors, p)

	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrapf(err, "Failed to create render directory for %q", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create render target %q", path)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errors.Wrapf(err, "Failed to encode png %q", path)
	}
	return f.Close()
}
