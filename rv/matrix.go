package rv

import (
	"math"
	"sort"

	"github.com/meenmo/bondrv/curve"
)

// Cell is one matrix entry. Missing observations keep Valid false — an
// explicit absent marker, never a zero.
type Cell struct {
	SpreadBP float64 `json:"spread_bp"`
	Valid    bool    `json:"valid"`
}

// Row is one issuer's spreads across the display tenors.
type Row struct {
	Issuer string `json:"issuer"`
	Cells  []Cell `json:"cells"`
}

// Matrix is the issuer × tenor spread table consumed by the presentation
// layer, which renders it centred at zero for the rich/cheap read.
type Matrix struct {
	Tenors []float64 `json:"tenors"`
	Labels []string  `json:"labels"`
	Rows   []Row     `json:"rows"`
}

// BuildMatrix assembles the wide spread table from one Gov-vs-reference
// series per issuer. A cell fills only when the series has a point at the
// display tenor (within grid tolerance); rows are sorted by issuer for a
// stable output.
func BuildMatrix(series []Series, displayTenors []float64) Matrix {
	m := Matrix{
		Tenors: append([]float64(nil), displayTenors...),
		Labels: make([]string, len(displayTenors)),
		Rows:   make([]Row, 0, len(series)),
	}
	for i, t := range displayTenors {
		m.Labels[i] = curve.FormatTenor(t)
	}

	for _, s := range series {
		row := Row{Issuer: s.Issuer, Cells: make([]Cell, len(displayTenors))}
		for i, t := range displayTenors {
			for _, p := range s.Points {
				if math.Abs(p.Tenor-t) < 1e-9 {
					row.Cells[i] = Cell{SpreadBP: p.SpreadBP, Valid: true}
					break
				}
			}
		}
		m.Rows = append(m.Rows, row)
	}

	sort.Slice(m.Rows, func(i, j int) bool { return m.Rows[i].Issuer < m.Rows[j].Issuer })
	return m
}
