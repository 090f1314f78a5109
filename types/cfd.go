package types

import (
	"fmt"
	"strings"
)

type CellFLAG uint8

const (
	CELL_Fluid CellFLAG = iota
	CELL_Solid
)

// Bound is the solid/fluid mask, one byte per cell stored with y varying
// fastest (idx = y + x*Ny). Zero is fluid, anything else is solid.
type Bound struct {
	Nx, Ny int
	Cells  []uint8
}

func NewBound(Nx, Ny int) (b Bound) {
	b = Bound{
		Nx:    Nx,
		Ny:    Ny,
		Cells: make([]uint8, Nx*Ny),
	}
	return
}

// NewBoundFrom wraps a caller owned mask without copying it
func NewBoundFrom(Nx, Ny int, cells []uint8) (b Bound, err error) {
	if len(cells) != Nx*Ny {
		err = fmt.Errorf("boundary mask has %d cells, grid %d x %d needs %d",
			len(cells), Nx, Ny, Nx*Ny)
		return
	}
	b = Bound{Nx: Nx, Ny: Ny, Cells: cells}
	return
}

func (b Bound) Index(x, y int) int { return y + x*b.Ny }

func (b Bound) IsSolid(x, y int) bool { return b.Cells[b.Index(x, y)] != 0 }

func (b Bound) SetFlag(x, y int, flag CellFLAG) {
	b.Cells[b.Index(x, y)] = uint8(flag)
}

func (b Bound) NumSolid() (count int) {
	for _, c := range b.Cells {
		if c != 0 {
			count++
		}
	}
	return
}

type AccuracyMode uint8

const (
	ACCURACY_Standard AccuracyMode = iota
	ACCURACY_BFECC
)

var AccuracyNameMap = map[string]AccuracyMode{
	"standard":     ACCURACY_Standard,
	"semilagrange": ACCURACY_Standard,
	"bfecc":        ACCURACY_BFECC,
}

func NewAccuracyMode(label string) (am AccuracyMode, err error) {
	var ok bool
	if len(label) == 0 {
		am = ACCURACY_BFECC
		return
	}
	if am, ok = AccuracyNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown accuracy mode %q, must be one of Standard, BFECC", label)
	}
	return
}

func (am AccuracyMode) String() string {
	switch am {
	case ACCURACY_Standard:
		return "Standard"
	case ACCURACY_BFECC:
		return "BFECC"
	}
	return fmt.Sprintf("AccuracyMode(%d)", uint8(am))
}
