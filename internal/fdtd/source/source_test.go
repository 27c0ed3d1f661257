package source

import (
	"context"
	"testing"

	"github.com/wavelab-data/field.report/internal/fdtd/detector"
	"github.com/wavelab-data/field.report/internal/fdtd/field"
	"github.com/wavelab-data/field.report/internal/fdtd/grid"
)

func makeTestGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(40, 40, 1.0, 1.0, 6, 1e-3)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func TestRipple_FrameShapeAndDeterminism(t *testing.T) {
	g := makeTestGrid(t)
	r, err := NewRipple(g, grid.Anchor(grid.AnchorCenter), grid.Anchor(grid.AnchorCenter))
	if err != nil {
		t.Fatalf("NewRipple: %v", err)
	}

	a := r.Frame(3)
	rows, cols := a.Dims()
	if rows != 40 || cols != 40 {
		t.Fatalf("expected (40, 40) frame, got (%d, %d)", rows, cols)
	}

	b := r.Frame(3)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if a.At(i, j) != b.At(i, j) {
				t.Fatalf("frame generation not deterministic at (%d, %d)", i, j)
			}
		}
	}

	// Peak amplitude sits at the origin at t=0.
	origin := r.Frame(0)
	oi, oj := 20, 20
	if got := origin.At(oi, oj); got != r.Amplitude {
		t.Fatalf("expected amplitude %g at origin, got %g", r.Amplitude, got)
	}
}

func TestRipple_RunFeedsObservers(t *testing.T) {
	g := makeTestGrid(t)
	r, err := NewRipple(g, grid.Anchor(grid.AnchorCenter), grid.Anchor(grid.AnchorCenter))
	if err != nil {
		t.Fatalf("NewRipple: %v", err)
	}
	d, err := detector.NewPoint(g, grid.Anchor(grid.AnchorCenter), grid.Anchor(grid.AnchorCenter))
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}

	h, err := field.NewHistory(40, 40)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	if err := r.Run(context.Background(), h, d); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if h.Steps() != g.NSteps() {
		t.Fatalf("expected %d steps, got %d", g.NSteps(), h.Steps())
	}
	if len(d.Data()) != g.NSteps() {
		t.Fatalf("expected detector series of length %d, got %d", g.NSteps(), len(d.Data()))
	}
	if d.Data()[0] != r.Amplitude {
		t.Fatalf("expected origin detector to read the peak at t=0, got %g", d.Data()[0])
	}
}

func TestRipple_RunCancelled(t *testing.T) {
	g := makeTestGrid(t)
	r, err := NewRipple(g, grid.Anchor(grid.AnchorCenter), grid.Anchor(grid.AnchorCenter))
	if err != nil {
		t.Fatalf("NewRipple: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h, err := field.NewHistory(40, 40)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	if err := r.Run(ctx, h); err == nil {
		t.Fatal("expected cancellation error")
	}
}
