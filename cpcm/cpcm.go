package cpcm

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/lwittmann/cosmoview/config"
)

// Positions in cpcm files are atomic units.
const AngstromPerBohr = 0.529177

const (
	countMarker   = "# Number of surface points"
	sectionMarker = "SURFACE POINTS"

	// marker line plus two column header lines
	sectionHeaderLines = 3

	// x y z area potential charge and the owner sphere column
	minRecordFields = 10
)

// Surface is the parsed point cloud of one cpcm file. All slices are
// parallel and indexed by surface point id. Never mutated after parse.
type Surface struct {
	Path       string
	Points     []mgl64.Vec3 // Angstrom
	Charges    []float64
	Potentials []float64
	Areas      []float64
	Owners     []int
}

func (s *Surface) Len() int { return len(s.Points) }

// ParseError reports a structural problem in a cpcm file. Line is
// 1-based, 0 when the problem is not tied to a single line.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cpcm %q line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("cpcm %q: %s", e.Path, e.Reason)
}

// EmptyError reports a structurally valid file with zero surface points.
type EmptyError struct {
	Path string
}

func (e *EmptyError) Error() string {
	return fmt.Sprintf("cpcm %q: no surface points", e.Path)
}

func ParseFile(path string) (*Surface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read cpcm file %q", path)
	}
	return NewFromData(data, path)
}

func NewFromData(b []byte, path string) (*Surface, error) {
	if cm := config.GetEncoding(); cm != nil {
		decoded, err := cm.NewDecoder().Bytes(b)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to decode cpcm file %q", path)
		}
		b = decoded
	}

	lines := strings.Split(string(b), "\n")

	numPoints := -1
	start := -1
	for i, line := range lines {
		if strings.Contains(line, countMarker) {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				return nil, &ParseError{Path: path, Line: i + 1, Reason: "point count line has no fields"}
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, &ParseError{Path: path, Line: i + 1, Reason: fmt.Sprintf("bad point count %q", fields[0])}
			}
			numPoints = n
		}
		if strings.Contains(line, sectionMarker) {
			start = i + sectionHeaderLines
			break
		}
	}
	if start < 0 || numPoints < 0 {
		return nil, &ParseError{Path: path, Reason: "SURFACE POINTS section not found or point count missing"}
	}
	if numPoints == 0 {
		return nil, &EmptyError{Path: path}
	}
	if start+numPoints > len(lines) {
		return nil, &ParseError{Path: path, Line: len(lines),
			Reason: fmt.Sprintf("file truncated: %d surface points declared, %d record lines present", numPoints, len(lines)-start)}
	}

	s := &Surface{
		Path:       path,
		Points:     make([]mgl64.Vec3, 0, numPoints),
		Charges:    make([]float64, 0, numPoints),
		Potentials: make([]float64, 0, numPoints),
		Areas:      make([]float64, 0, numPoints),
		Owners:     make([]int, 0, numPoints),
	}

	for i := start; i < start+numPoints; i++ {
		lineNo := i + 1
		fields := strings.Fields(lines[i])
		if len(fields) < minRecordFields {
			return nil, &ParseError{Path: path, Line: lineNo,
				Reason: fmt.Sprintf("surface point record has %d fields, want at least %d", len(fields), minRecordFields)}
		}

		var v [6]float64
		for fi, col := range []int{0, 1, 2, 3, 4, 5} {
			f, err := strconv.ParseFloat(fields[col], 64)
			if err != nil {
				return nil, &ParseError{Path: path, Line: lineNo,
					Reason: fmt.Sprintf("field %d %q is not a number", col+1, fields[col])}
			}
			v[fi] = f
		}
		owner, err := strconv.Atoi(fields[9])
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineNo,
				Reason: fmt.Sprintf("owner sphere field %q is not an integer", fields[9])}
		}
		if owner < 0 {
			return nil, &ParseError{Path: path, Line: lineNo,
				Reason: fmt.Sprintf("owner sphere index %d is negative", owner)}
		}

		s.Points = append(s.Points, mgl64.Vec3{
			v[0] * AngstromPerBohr,
			v[1] * AngstromPerBohr,
			v[2] * AngstromPerBohr,
		})
		s.Areas = append(s.Areas, v[3])
		s.Potentials = append(s.Potentials, v[4])
		s.Charges = append(s.Charges, v[5])
		s.Owners = append(s.Owners, owner)
	}

	return s, nil
}
