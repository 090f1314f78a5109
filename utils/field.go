package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Component selectors for VectorField planes
const (
	CompX = 0
	CompY = 1
)

/*
ScalarField is a view onto an Nx x Ny plane stored column by column, with y
varying fastest:

	idx = y + x*Ny

The view never owns its storage exclusively, two fields may share a slice.
*/
type ScalarField struct {
	Nx, Ny int
	DataP  []float64
}

func NewScalarField(Nx, Ny int) (f ScalarField) {
	f = ScalarField{
		Nx:    Nx,
		Ny:    Ny,
		DataP: make([]float64, Nx*Ny),
	}
	return
}

func NewScalarFieldFrom(Nx, Ny int, data []float64) (f ScalarField, err error) {
	if len(data) != Nx*Ny {
		err = fmt.Errorf("scalar field has %d values, grid %d x %d needs %d",
			len(data), Nx, Ny, Nx*Ny)
		return
	}
	f = ScalarField{Nx: Nx, Ny: Ny, DataP: data}
	return
}

func (f ScalarField) At(x, y int) float64       { return f.DataP[y+x*f.Ny] }
func (f ScalarField) Set(x, y int, val float64) { f.DataP[y+x*f.Ny] = val }

// Column returns the y-run of cells at a fixed x
func (f ScalarField) Column(x int) []float64 {
	return f.DataP[x*f.Ny : (x+1)*f.Ny : (x+1)*f.Ny]
}

func (f ScalarField) SameShape(g ScalarField) bool {
	return f.Nx == g.Nx && f.Ny == g.Ny && len(f.DataP) == len(g.DataP)
}

func (f ScalarField) Fill(val float64) ScalarField {
	for i := range f.DataP {
		f.DataP[i] = val
	}
	return f
}

func (f ScalarField) CopyFrom(src ScalarField) {
	if !f.SameShape(src) {
		panic(fmt.Errorf("dimension mismatch, have %dx%d, copying from %dx%d",
			f.Nx, f.Ny, src.Nx, src.Ny))
	}
	copy(f.DataP, src.DataP)
}

func (f ScalarField) Copy() (g ScalarField) {
	g = NewScalarField(f.Nx, f.Ny)
	copy(g.DataP, f.DataP)
	return
}

func (f ScalarField) Max() float64 { return floats.Max(f.DataP) }
func (f ScalarField) Min() float64 { return floats.Min(f.DataP) }
func (f ScalarField) Sum() float64 { return floats.Sum(f.DataP) }

// InteriorL2Norm skips the outermost ring of cells
func (f ScalarField) InteriorL2Norm() float64 {
	var sum float64
	for x := 1; x < f.Nx-1; x++ {
		col := f.Column(x)[1 : f.Ny-1]
		sum += floats.Dot(col, col)
	}
	return math.Sqrt(sum)
}

/*
VectorField stacks two ScalarField planes of the same grid, the x component
first, then the y component, so the backing slice is 2*Nx*Ny long.
*/
type VectorField struct {
	Nx, Ny int
	DataP  []float64
}

func NewVectorField(Nx, Ny int) (v VectorField) {
	v = VectorField{
		Nx:    Nx,
		Ny:    Ny,
		DataP: make([]float64, 2*Nx*Ny),
	}
	return
}

func NewVectorFieldFrom(Nx, Ny int, data []float64) (v VectorField, err error) {
	if len(data) != 2*Nx*Ny {
		err = fmt.Errorf("vector field has %d values, grid %d x %d needs %d",
			len(data), Nx, Ny, 2*Nx*Ny)
		return
	}
	v = VectorField{Nx: Nx, Ny: Ny, DataP: data}
	return
}

// Component returns plane n (CompX or CompY) sharing memory with v
func (v VectorField) Component(n int) ScalarField {
	N := v.Nx * v.Ny
	return ScalarField{
		Nx:    v.Nx,
		Ny:    v.Ny,
		DataP: v.DataP[n*N : (n+1)*N : (n+1)*N],
	}
}

func (v VectorField) At(x, y int) (vx, vy float64) {
	var (
		N   = v.Nx * v.Ny
		idx = y + x*v.Ny
	)
	return v.DataP[idx], v.DataP[N+idx]
}

func (v VectorField) Set(x, y int, vx, vy float64) {
	var (
		N   = v.Nx * v.Ny
		idx = y + x*v.Ny
	)
	v.DataP[idx], v.DataP[N+idx] = vx, vy
}

func (v VectorField) Fill(vx, vy float64) VectorField {
	v.Component(CompX).Fill(vx)
	v.Component(CompY).Fill(vy)
	return v
}

func (v VectorField) SameShape(w VectorField) bool {
	return v.Nx == w.Nx && v.Ny == w.Ny && len(v.DataP) == len(w.DataP)
}

func (v VectorField) CopyFrom(src VectorField) {
	if !v.SameShape(src) {
		panic(fmt.Errorf("dimension mismatch, have %dx%d, copying from %dx%d",
			v.Nx, v.Ny, src.Nx, src.Ny))
	}
	copy(v.DataP, src.DataP)
}

func (v VectorField) Copy() (w VectorField) {
	w = NewVectorField(v.Nx, v.Ny)
	copy(w.DataP, v.DataP)
	return
}

// Magnitude writes |v| into dst, which must have the same grid
func (v VectorField) Magnitude(dst ScalarField) ScalarField {
	var (
		vx, vy = v.Component(CompX).DataP, v.Component(CompY).DataP
	)
	for i := range dst.DataP {
		dst.DataP[i] = math.Hypot(vx[i], vy[i])
	}
	return dst
}
