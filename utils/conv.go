package utils

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lwittmann/cosmoview/colorscale"
)

// Interchange formats want float32; all internal geometry is float64.

func FloatArray64to32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func Vec3Array64to32(in []mgl64.Vec3) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	return out
}

func ColorArrayToBytes(in []colorscale.RGB) [][4]uint8 {
	out := make([][4]uint8, len(in))
	for i, c := range in {
		out[i] = [4]uint8{
			uint8(c[0]*255 + 0.5),
			uint8(c[1]*255 + 0.5),
			uint8(c[2]*255 + 0.5),
			255,
		}
	}
	return out
}
