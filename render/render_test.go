package render

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lwittmann/cosmoview/colorscale"
	"github.com/lwittmann/cosmoview/mesh"
)

func TestRenderEmptyMesh(t *testing.T) {
	p := Params{Width: 64, Height: 48, Background: "black"}
	img := Render(&mesh.Mesh{}, nil, p)

	bounds := img.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Fatalf("image size = %dx%d, want 64x48", bounds.Dx(), bounds.Dy())
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("background pixel = %v, want black", got)
	}
}

func TestRenderTriangleCoversCenter(t *testing.T) {
	m := &mesh.Mesh{
		Vertices: []mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}},
		Faces:    []mesh.Face{{0, 1, 2}},
	}
	faceColors := []colorscale.RGB{{1, 0, 0}}
	p := Params{Width: 100, Height: 100, Background: "white"}

	img := Render(m, faceColors, p)

	// triangle centroid projects near the image center
	center := img.RGBAAt(50, 45)
	if center.R == 255 && center.G == 255 && center.B == 255 {
		t.Error("center pixel still background, triangle not rasterized")
	}
	if center.G != 0 || center.B != 0 {
		t.Errorf("center pixel = %v, want a pure red shade", center)
	}

	// corner stays background
	if got := img.RGBAAt(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("corner pixel = %v, want white background", got)
	}
}

func TestRenderDepthOrder(t *testing.T) {
	// red triangle in front of a larger green one on the same axis
	m := &mesh.Mesh{
		Vertices: []mgl64.Vec3{
			{-2, -2, 0}, {2, -2, 0}, {0, 2, 0},
			{-1, -1, 1}, {1, -1, 1}, {0, 1, 1},
		},
		Faces: []mesh.Face{{0, 1, 2}, {3, 4, 5}},
	}
	faceColors := []colorscale.RGB{{0, 1, 0}, {1, 0, 0}}
	p := Params{Width: 120, Height: 120, Background: "black"}

	img := Render(m, faceColors, p)

	center := img.RGBAAt(60, 55)
	if center.R == 0 || center.G != 0 {
		t.Errorf("center pixel = %v, want the nearer red face", center)
	}
}

func TestParseBackground(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"white", color.RGBA{255, 255, 255, 255}},
		{"black", color.RGBA{0, 0, 0, 255}},
		{"#ff8000", color.RGBA{255, 128, 0, 255}},
		{"no-such-color", color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := parseBackground(tt.in); got != tt.want {
			t.Errorf("parseBackground(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
