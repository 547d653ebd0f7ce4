package cpcm

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const sampleFile = `3 # Number of surface points
OTHER HEADER LINE
SURFACE POINTS
hdr1
hdr2
0.0 0.0 0.0 0.1 0.2 0.5 0 0 0 1
1.0 0.0 0.0 0.1 0.3 0.6 0 0 0 1
0.0 1.0 0.0 0.1 0.4 0.7 0 0 0 2
`

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseSample(t *testing.T) {
	s, err := NewFromData([]byte(sampleFile), "sample.cpcm")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("got %d points, want 3", s.Len())
	}
	if !almostEqual(s.Points[0][0], 0.0) {
		t.Errorf("points[0].x = %v, want 0", s.Points[0][0])
	}
	if !almostEqual(s.Points[1][0], AngstromPerBohr) {
		t.Errorf("points[1].x = %v, want %v (Bohr to Angstrom)", s.Points[1][0], AngstromPerBohr)
	}
	if !almostEqual(s.Charges[1], 0.6) {
		t.Errorf("charges[1] = %v, want 0.6", s.Charges[1])
	}
	if !almostEqual(s.Potentials[2], 0.4) {
		t.Errorf("potentials[2] = %v, want 0.4", s.Potentials[2])
	}
	if !almostEqual(s.Areas[0], 0.1) {
		t.Errorf("areas[0] = %v, want 0.1", s.Areas[0])
	}
	if s.Owners[0] != 1 || s.Owners[2] != 2 {
		t.Errorf("owners = %v, want [1 1 2]", s.Owners)
	}
}

var malformedTests = []struct {
	name string
	data string
	line int
}{
	{
		name: "no section",
		data: "3 # Number of surface points\nnothing else\n",
	},
	{
		name: "no count",
		data: "SURFACE POINTS\nhdr1\nhdr2\n0 0 0 0 0 0 0 0 0 1\n",
	},
	{
		name: "short record",
		data: "1 # Number of surface points\nSURFACE POINTS\nhdr1\nhdr2\n0.0 0.0 0.0 0.1\n",
		line: 5,
	},
	{
		name: "non numeric field",
		data: "1 # Number of surface points\nSURFACE POINTS\nhdr1\nhdr2\n0.0 zzz 0.0 0.1 0.2 0.5 0 0 0 1\n",
		line: 5,
	},
	{
		name: "bad owner",
		data: "1 # Number of surface points\nSURFACE POINTS\nhdr1\nhdr2\n0.0 0.0 0.0 0.1 0.2 0.5 0 0 0 x\n",
		line: 5,
	},
	{
		name: "truncated",
		data: "5 # Number of surface points\nSURFACE POINTS\nhdr1\nhdr2\n0.0 0.0 0.0 0.1 0.2 0.5 0 0 0 1\n",
	},
}

func TestParseMalformed(t *testing.T) {
	for _, test := range malformedTests {
		_, err := NewFromData([]byte(test.data), test.name)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%s: got %v, want ParseError", test.name, err)
			continue
		}
		if test.line != 0 && perr.Line != test.line {
			t.Errorf("%s: error at line %d, want %d", test.name, perr.Line, test.line)
		}
		if !strings.Contains(perr.Error(), test.name) {
			t.Errorf("%s: error %q does not name the file", test.name, perr.Error())
		}
	}
}

func TestParseEmpty(t *testing.T) {
	data := "0 # Number of surface points\nSURFACE POINTS\nhdr1\nhdr2\n"
	_, err := NewFromData([]byte(data), "empty.cpcm")
	var eerr *EmptyError
	if !errors.As(err, &eerr) {
		t.Fatalf("got %v, want EmptyError", err)
	}
	if eerr.Path != "empty.cpcm" {
		t.Errorf("EmptyError path = %q", eerr.Path)
	}
}
