package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultPQRRadius is the display radius assigned to every surface
// point in the PQR point cloud.
const DefaultPQRRadius = 0.300

// WritePQR writes the raw surface points with their scalar values as a
// PQR point cloud, one pseudo atom per surface point. Useful for
// loading the uncolored cloud into molecular viewers.
func WritePQR(w io.Writer, points []mgl64.Vec3, values []float64, radius float64) error {
	bw := bufio.NewWriter(w)
	for i, p := range points {
		fmt.Fprintf(bw, "ATOM %6d SPH  CSP A    1    %8.3f%8.3f%8.3f %8.4f %6.3f\n",
			i+1, p[0], p[1], p[2], values[i], radius)
	}
	return bw.Flush()
}

// WritePQRFile writes the point cloud to path, creating parent
// directories.
func WritePQRFile(path string, points []mgl64.Vec3, values []float64, radius float64) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WritePQR(f, points, values, radius); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}
