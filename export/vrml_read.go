package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/lwittmann/cosmoview/colorscale"
)

// ParseVRMLColors extracts the Color node values from a VRML scene,
// as written by WriteVRML. The geometry is not re-read; the viewer
// only needs the color table.
func ParseVRMLColors(r io.Reader) ([]colorscale.RGB, error) {
	values := make([]float64, 0, 1024)
	inside := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(s, "color [") {
			inside = true
			s = strings.TrimSpace(strings.TrimPrefix(s, "color ["))
		}
		if !inside {
			continue
		}
		if idx := strings.Index(s, "]"); idx >= 0 {
			s = s[:idx]
			inside = false
		}
		for _, token := range strings.Fields(strings.ReplaceAll(s, ",", " ")) {
			f, err := strconv.ParseFloat(token, 64)
			if err != nil {
				continue
			}
			values = append(values, f)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Failed to scan vrml")
	}

	if len(values)%3 != 0 {
		values = values[:len(values)/3*3]
	}
	colors := make([]colorscale.RGB, len(values)/3)
	for i := range colors {
		colors[i] = colorscale.RGB{values[i*3], values[i*3+1], values[i*3+2]}
	}
	return colors, nil
}
