package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lwittmann/cosmoview/colorscale"
	"github.com/lwittmann/cosmoview/mesh"
)

// WriteVRML writes the colored mesh as a VRML 2.0 IndexedFaceSet with
// one color per face. Output is byte deterministic for a given mesh.
func WriteVRML(w io.Writer, m *mesh.Mesh, faceColors []colorscale.RGB) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("#VRML V2.0 utf8\n")
	bw.WriteString("Shape {\n")
	bw.WriteString("  geometry IndexedFaceSet {\n")
	bw.WriteString("    coord Coordinate {\n")
	bw.WriteString("      point [\n")
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "        %.6f %.6f %.6f,\n", v[0], v[1], v[2])
	}
	bw.WriteString("      ]\n")
	bw.WriteString("    }\n")
	bw.WriteString("    colorPerVertex FALSE\n")
	bw.WriteString("    color Color {\n")
	bw.WriteString("      color [\n")
	for _, c := range faceColors {
		fmt.Fprintf(bw, "        %.3f %.3f %.3f,\n", c[0], c[1], c[2])
	}
	bw.WriteString("      ]\n")
	bw.WriteString("    }\n")
	bw.WriteString("    coordIndex [\n")
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "      %d %d %d -1,\n", f[0], f[1], f[2])
	}
	bw.WriteString("    ]\n")
	bw.WriteString("  }\n")
	bw.WriteString("}\n")

	return bw.Flush()
}

// WriteVRMLFile writes the scene to path, creating parent directories.
func WriteVRMLFile(path string, m *mesh.Mesh, faceColors []colorscale.RGB) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteVRML(f, m, faceColors); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}
