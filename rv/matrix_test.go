package rv_test

import (
	"math"
	"testing"

	"github.com/meenmo/bondrv/rv"
)

func TestBuildMatrix(t *testing.T) {
	t.Parallel()

	series := []rv.Series{
		{
			Issuer: "Italy",
			Points: []rv.Point{
				{Tenor: 2, SpreadBP: 45}, {Tenor: 10, SpreadBP: 130}, {Tenor: 30, SpreadBP: 155},
			},
		},
		{
			Issuer: "France",
			Points: []rv.Point{
				{Tenor: 2, SpreadBP: 25}, {Tenor: 5, SpreadBP: 33}, {Tenor: 10, SpreadBP: 50}, {Tenor: 30, SpreadBP: 68},
			},
		},
	}

	m := rv.BuildMatrix(series, []float64{2, 5, 10, 30})

	if len(m.Labels) != 4 || m.Labels[0] != "2Y" || m.Labels[3] != "30Y" {
		t.Fatalf("labels wrong: %v", m.Labels)
	}
	if len(m.Rows) != 2 || m.Rows[0].Issuer != "France" || m.Rows[1].Issuer != "Italy" {
		t.Fatalf("rows not sorted by issuer: %+v", m.Rows)
	}

	// Italy has no 5Y point: explicit absent marker, not zero.
	italy := m.Rows[1]
	if italy.Cells[1].Valid {
		t.Fatalf("missing 5Y cell must be invalid, got %+v", italy.Cells[1])
	}
	if !italy.Cells[0].Valid || math.Abs(italy.Cells[0].SpreadBP-45) > 1e-12 {
		t.Fatalf("Italy 2Y cell wrong: %+v", italy.Cells[0])
	}

	france := m.Rows[0]
	for i, want := range []float64{25, 33, 50, 68} {
		if !france.Cells[i].Valid || france.Cells[i].SpreadBP != want {
			t.Fatalf("France cell %d = %+v, want %v", i, france.Cells[i], want)
		}
	}
}

func TestBuildMatrix_EmptySeries(t *testing.T) {
	t.Parallel()

	m := rv.BuildMatrix(nil, []float64{2, 5})
	if len(m.Rows) != 0 || len(m.Tenors) != 2 {
		t.Fatalf("empty input should give empty rows: %+v", m)
	}
}
