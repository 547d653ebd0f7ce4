package export

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/lwittmann/cosmoview/colorscale"
	"github.com/lwittmann/cosmoview/mesh"
	"github.com/lwittmann/cosmoview/utils"
)

// BuildGLTF assembles a glTF document for the colored mesh. Colors are
// per vertex because glTF interpolates COLOR_0 across triangles.
func BuildGLTF(name string, m *mesh.Mesh, vertexColors []colorscale.RGB) *gltf.Document {
	doc := gltf.NewDocument()

	attributes := make(map[string]uint32)
	attributes["POSITION"] = modeler.WritePosition(doc, utils.Vec3Array64to32(m.Vertices))
	attributes["COLOR_0"] = modeler.WriteColor(doc, utils.ColorArrayToBytes(vertexColors))

	indices := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	indicesAccessor := modeler.WriteIndices(doc, indices)

	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "surface",
		DoubleSided: true,
	})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{
			&gltf.Primitive{
				Indices:    &indicesAccessor,
				Attributes: attributes,
				Material:   gltf.Index(0),
			},
		},
	})

	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	return doc
}

// WriteGLTFFile writes the mesh as a binary glb, creating parent
// directories.
func WriteGLTFFile(path, name string, m *mesh.Mesh, vertexColors []colorscale.RGB) error {
	doc := BuildGLTF(name, m, vertexColors)

	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := gltf.NewEncoder(f)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}
