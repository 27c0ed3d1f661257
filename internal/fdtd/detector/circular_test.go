package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/wavelab-data/field.report/internal/fdtd/field"
	"github.com/wavelab-data/field.report/internal/fdtd/grid"
)

func makeCenterDetector(t *testing.T) *CircularDetector {
	t.Helper()
	g := makeTestGrid(t, 5)
	d, err := NewCircular(g, grid.Abs(0.5), grid.Abs(0.5), 0.1)
	if err != nil {
		t.Fatalf("NewCircular: %v", err)
	}
	return d
}

func TestNewCircular_Geometry(t *testing.T) {
	d := makeCenterDetector(t)

	rx, ry := d.RadiusIndexes()
	if rx != 10 || ry != 10 {
		t.Fatalf("expected radius (10, 10) index units, got (%d, %d)", rx, ry)
	}

	// Member count approximates the ellipse area pi*rx*ry within
	// rasterisation tolerance.
	count := len(d.MemberCoordinates())
	area := math.Pi * float64(rx) * float64(ry)
	if math.Abs(float64(count)-area) > 0.1*area {
		t.Fatalf("member count %d too far from ellipse area %.0f", count, area)
	}
	if d.Mask().Count() != count {
		t.Fatalf("mask count %d disagrees with member enumeration %d", d.Mask().Count(), count)
	}
}

func TestCircular_MembersInsideEllipse(t *testing.T) {
	d := makeCenterDetector(t)
	pos := d.Position()
	rx, ry := d.RadiusIndexes()

	for _, c := range d.MemberCoordinates() {
		fx := float64(c.Row-pos.XIndex) / float64(rx)
		fy := float64(c.Col-pos.YIndex) / float64(ry)
		if fx*fx+fy*fy > 1+1e-9 {
			t.Fatalf("member (%d, %d) lies outside the ellipse", c.Row, c.Col)
		}
	}
}

func TestCircular_AngleConvention(t *testing.T) {
	d := makeCenterDetector(t)
	pos := d.Position()
	coords := d.MemberCoordinates()
	angles := d.MemberAngles()

	if len(coords) != len(angles) {
		t.Fatalf("coords and angles must align: %d vs %d", len(coords), len(angles))
	}

	for k, c := range coords {
		// Re-deriving the angle with the same argument order must
		// reproduce the stored value exactly: atan2(row offset, col
		// offset), column axis as reference.
		want := math.Atan2(float64(c.Row-pos.XIndex), float64(c.Col-pos.YIndex))
		if angles[k] != want {
			t.Fatalf("angle mismatch at member %d: stored %g, derived %g", k, angles[k], want)
		}

		// Pin the sign convention on the axis-aligned members.
		switch {
		case c.Row == pos.XIndex && c.Col > pos.YIndex && angles[k] != 0:
			t.Fatalf("member right of centre must have angle 0, got %g", angles[k])
		case c.Col == pos.YIndex && c.Row < pos.XIndex && angles[k] != -math.Pi/2:
			t.Fatalf("member above centre must have angle -pi/2, got %g", angles[k])
		case c.Col == pos.YIndex && c.Row > pos.XIndex && angles[k] != math.Pi/2:
			t.Fatalf("member below centre must have angle pi/2, got %g", angles[k])
		}
	}
}

func TestCircular_ConstructionIdempotent(t *testing.T) {
	g := makeTestGrid(t, 5)

	a, err := NewCircular(g, grid.Abs(0.5), grid.Abs(0.5), 0.1)
	if err != nil {
		t.Fatalf("first NewCircular: %v", err)
	}
	b, err := NewCircular(g, grid.Abs(0.5), grid.Abs(0.5), 0.1)
	if err != nil {
		t.Fatalf("second NewCircular: %v", err)
	}

	if diff := cmp.Diff(a.MemberCoordinates(), b.MemberCoordinates()); diff != "" {
		t.Fatalf("member coordinates differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(a.MemberAngles(), b.MemberAngles()); diff != "" {
		t.Fatalf("member angles differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(a.Mask(), b.Mask(), cmp.AllowUnexported(Mask{})); diff != "" {
		t.Fatalf("masks differ (-first +second):\n%s", diff)
	}
}

func TestCircular_MaskClippedAtBoundary(t *testing.T) {
	g := makeTestGrid(t, 5)

	// Centre close to the raster edge: the ellipse partially exits the
	// grid and must clip rather than index out of range.
	d, err := NewCircular(g, grid.Abs(0.03), grid.Abs(0.5), 0.1)
	if err != nil {
		t.Fatalf("NewCircular: %v", err)
	}

	rows, cols := g.Shape()
	for _, c := range d.MemberCoordinates() {
		if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
			t.Fatalf("member (%d, %d) outside raster (%d, %d)", c.Row, c.Col, rows, cols)
		}
	}

	full := makeCenterDetector(t)
	if len(d.MemberCoordinates()) >= len(full.MemberCoordinates()) {
		t.Fatal("clipped detector should have fewer members than an interior one")
	}
}

func TestCircularUpdateData_Shape(t *testing.T) {
	d := makeCenterDetector(t)

	h := makeConstHistory(t, 100, 100, 4, 2.0)
	if err := d.UpdateData(h); err != nil {
		t.Fatalf("UpdateData: %v", err)
	}

	steps, members := d.Data().Dims()
	if steps != 4 || members != len(d.MemberCoordinates()) {
		t.Fatalf("expected data (4, %d), got (%d, %d)", len(d.MemberCoordinates()), steps, members)
	}
}

func TestCircularUpdateData_ColumnsTrackMembers(t *testing.T) {
	d := makeCenterDetector(t)

	// Encode the cell identity into the field value so column alignment
	// is directly observable.
	h, err := field.NewHistory(100, 100)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	for s := 0; s < 2; s++ {
		frame := mat.NewDense(100, 100, nil)
		for i := 0; i < 100; i++ {
			for j := 0; j < 100; j++ {
				frame.Set(i, j, float64(s*1000000+i*1000+j))
			}
		}
		if err := h.Append(frame); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := d.UpdateData(h); err != nil {
		t.Fatalf("UpdateData: %v", err)
	}

	for m, c := range d.MemberCoordinates() {
		for s := 0; s < 2; s++ {
			want := float64(s*1000000 + c.Row*1000 + c.Col)
			if got := d.Data().At(s, m); got != want {
				t.Fatalf("data[%d][%d] = %g, want %g (member (%d, %d))", s, m, got, want, c.Row, c.Col)
			}
		}
	}
}

func TestCircularUpdateData_ShapeMismatch(t *testing.T) {
	d := makeCenterDetector(t)

	h := makeConstHistory(t, 100, 80, 2, 1.0)
	if err := d.UpdateData(h); !errors.Is(err, field.ErrShapeMismatch) {
		t.Fatalf("expected field.ErrShapeMismatch, got %v", err)
	}
}

func TestCircular_AngularProfile(t *testing.T) {
	d := makeCenterDetector(t)

	// Alternating-sign constant frames: |−2| + |2| + |−2| = 6 per member
	// over the full range.
	h, err := field.NewHistory(100, 100)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	for s := 0; s < 3; s++ {
		v := 2.0
		if s%2 == 0 {
			v = -2.0
		}
		vals := make([]float64, 100*100)
		for i := range vals {
			vals[i] = v
		}
		if err := h.Append(mat.NewDense(100, 100, vals)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := d.UpdateData(h); err != nil {
		t.Fatalf("UpdateData: %v", err)
	}

	angles, mags, err := d.AngularProfile(0, 2)
	if err != nil {
		t.Fatalf("AngularProfile: %v", err)
	}
	if len(angles) != len(mags) {
		t.Fatalf("angles and magnitudes must align: %d vs %d", len(angles), len(mags))
	}
	for m, v := range mags {
		if v != 6 {
			t.Fatalf("member %d: expected magnitude 6, got %g", m, v)
		}
	}

	// Single most recent step degenerates to the absolute value there.
	_, mags, err = d.AngularProfileAt(-1)
	if err != nil {
		t.Fatalf("AngularProfileAt: %v", err)
	}
	for m, v := range mags {
		if v != 2 {
			t.Fatalf("member %d: expected magnitude 2, got %g", m, v)
		}
	}
}

func TestCircular_AngularProfileErrors(t *testing.T) {
	d := makeCenterDetector(t)

	if _, _, err := d.AngularProfile(0, 0); err == nil {
		t.Fatal("expected error before first UpdateData")
	}

	if err := d.UpdateData(makeConstHistory(t, 100, 100, 3, 1.0)); err != nil {
		t.Fatalf("UpdateData: %v", err)
	}
	if _, _, err := d.AngularProfile(2, 1); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if _, _, err := d.AngularProfile(0, 3); err == nil {
		t.Fatal("expected error for range past the sampled steps")
	}
}

func TestCircularAddToAxis(t *testing.T) {
	d := makeCenterDetector(t)

	ax := &recordingAxis{}
	if err := d.AddToAxis(ax); err != nil {
		t.Fatalf("AddToAxis: %v", err)
	}
	if len(ax.ellipses) != 1 {
		t.Fatalf("expected one ellipse call, got %d", len(ax.ellipses))
	}
	e := ax.ellipses[0]
	if e.cx != 0.5 || e.cy != 0.5 || e.rx != 0.1 || e.ry != 0.1 {
		t.Fatalf("overlay must use physical geometry, got %+v", e)
	}
}
