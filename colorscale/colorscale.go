package colorscale

import (
	"sort"
	"strings"

	"cogentcore.org/core/colors/colormap"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DefaultScale is perceptually uniform, which keeps potential
// differences readable across the whole range.
const DefaultScale = "viridis"

// RGB is a color triple with components in [0,1].
type RGB [3]float64

// Params configure value-to-color mapping for one run.
type Params struct {
	// Scale names a color map, matched case insensitively against the
	// available maps.
	Scale string
	// Min and Max bound the normalization domain. Nil means derive
	// from the data.
	Min *float64
	Max *float64
	// Robust derives missing bounds from percentiles instead of the
	// raw extrema, cutting off outlier charges.
	Robust    bool
	RobustPct float64
}

// Mapper maps scalars to colors. Immutable, deterministic.
type Mapper struct {
	Name string
	Min  float64
	Max  float64

	cmap *colormap.Map
}

func lookupScale(name string) (string, *colormap.Map, error) {
	if name == "" {
		name = DefaultScale
	}
	if cm, ok := colormap.AvailableMaps[name]; ok {
		return name, cm, nil
	}
	keys := colormap.AvailableMapsList()
	sort.Strings(keys)
	for _, key := range keys {
		if strings.EqualFold(key, name) {
			return key, colormap.AvailableMaps[key], nil
		}
	}
	return "", nil, errors.Errorf("Unknown color scale %q, available: %s",
		name, strings.Join(keys, ", "))
}

// NewMapper resolves the scale and the normalization domain. values
// are consulted only for bounds that Params leave open.
func NewMapper(p Params, values []float64) (*Mapper, error) {
	name, cmap, err := lookupScale(p.Scale)
	if err != nil {
		return nil, err
	}

	m := &Mapper{Name: name, cmap: cmap}

	needMin := p.Min == nil
	needMax := p.Max == nil
	if !needMin {
		m.Min = *p.Min
	}
	if !needMax {
		m.Max = *p.Max
	}

	if needMin || needMax {
		if len(values) == 0 {
			return nil, errors.New("cannot derive color bounds from empty values")
		}
		lo, hi := bounds(values, p.Robust, p.RobustPct)
		if needMin {
			m.Min = lo
		}
		if needMax {
			m.Max = hi
		}
	}
	if m.Min == m.Max {
		m.Max = m.Min + 1e-12
	}
	return m, nil
}

func bounds(values []float64, robust bool, pct float64) (float64, float64) {
	if robust {
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		lo := stat.Quantile(pct/100, stat.LinInterp, sorted, nil)
		hi := stat.Quantile(1-pct/100, stat.LinInterp, sorted, nil)
		return lo, hi
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Normalize clamps v into [Min,Max] and rescales to [0,1].
func (m *Mapper) Normalize(v float64) float64 {
	if v < m.Min {
		v = m.Min
	}
	if v > m.Max {
		v = m.Max
	}
	return (v - m.Min) / (m.Max - m.Min)
}

// Color maps one scalar to RGB.
func (m *Mapper) Color(v float64) RGB {
	c := m.cmap.Map(float32(m.Normalize(v)))
	return RGB{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// Colors maps a scalar slice to a parallel color slice.
func (m *Mapper) Colors(values []float64) []RGB {
	out := make([]RGB, len(values))
	for i, v := range values {
		out[i] = m.Color(v)
	}
	return out
}
