package grid

import (
	"fmt"

	"github.com/spf13/cast"
)

// Symbolic axis anchors accepted by Anchor and ParseCoord. Left/right apply
// to the x axis, bottom/top to the y axis; center applies to both.
const (
	AnchorCenter = "center"
	AnchorLeft   = "left"
	AnchorRight  = "right"
	AnchorBottom = "bottom"
	AnchorTop    = "top"
)

type axis int

const (
	axisX axis = iota
	axisY
)

// Coord is a single-axis coordinate: either an absolute physical value or a
// symbolic anchor resolved against the grid extent.
type Coord struct {
	value    float64
	anchor   string
	symbolic bool
}

// Abs returns a coordinate at an absolute physical value.
func Abs(v float64) Coord { return Coord{value: v} }

// Anchor returns a coordinate at a symbolic grid anchor such as "center".
// Validity of the anchor for a given axis is checked at resolution time.
func Anchor(name string) Coord { return Coord{anchor: name, symbolic: true} }

// ParseCoord interprets a configuration string as a coordinate: a symbolic
// anchor name, or any numeric representation cast.ToFloat64E accepts.
func ParseCoord(s string) (Coord, error) {
	switch s {
	case AnchorCenter, AnchorLeft, AnchorRight, AnchorBottom, AnchorTop:
		return Anchor(s), nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return Coord{}, fmt.Errorf("coordinate %q is neither an anchor nor a number: %w", s, err)
	}
	return Abs(v), nil
}

// physical resolves the coordinate to a physical axis value. Anchors at the
// far edge resolve one cell pitch inside the extent so the resulting index
// stays within the raster.
func (c Coord) physical(ax axis, g *Grid) (float64, error) {
	if !c.symbolic {
		return c.value, nil
	}

	size := g.sizeX
	pitch := g.DX()
	if ax == axisY {
		size = g.sizeY
		pitch = g.DY()
	}

	switch {
	case c.anchor == AnchorCenter:
		return size / 2, nil
	case c.anchor == AnchorLeft && ax == axisX,
		c.anchor == AnchorBottom && ax == axisY:
		return 0, nil
	case c.anchor == AnchorRight && ax == axisX,
		c.anchor == AnchorTop && ax == axisY:
		return size - pitch, nil
	}
	return 0, fmt.Errorf("anchor %q is not valid for this axis", c.anchor)
}
