package field

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestHistory_AppendAndAt(t *testing.T) {
	h, err := NewHistory(3, 4)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	for step := 0; step < 2; step++ {
		frame := mat.NewDense(3, 4, nil)
		frame.Set(1, 2, float64(step+1))
		if err := h.Append(frame); err != nil {
			t.Fatalf("Append step %d: %v", step, err)
		}
	}

	if h.Steps() != 2 {
		t.Fatalf("expected 2 steps, got %d", h.Steps())
	}
	if got := h.At(0, 1, 2); got != 1 {
		t.Fatalf("expected 1 at (0,1,2), got %g", got)
	}
	if got := h.At(1, 1, 2); got != 2 {
		t.Fatalf("expected 2 at (1,1,2), got %g", got)
	}
}

func TestHistory_AppendShapeMismatch(t *testing.T) {
	h, err := NewHistory(3, 4)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	if err := h.Append(mat.NewDense(4, 3, nil)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if h.Steps() != 0 {
		t.Fatalf("mismatched frame must not be retained, got %d steps", h.Steps())
	}
}

func TestHistory_CheckShape(t *testing.T) {
	h, err := NewHistory(3, 4)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	if err := h.CheckShape(3, 4); err != nil {
		t.Fatalf("CheckShape on congruent shape: %v", err)
	}
	if err := h.CheckShape(4, 4); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestNewHistory_Validation(t *testing.T) {
	if _, err := NewHistory(0, 4); err == nil {
		t.Fatal("expected error for zero rows")
	}
	if _, err := NewHistory(3, -1); err == nil {
		t.Fatal("expected error for negative cols")
	}
}
