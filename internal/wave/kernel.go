package wave

import "fmt"

// grids is the flat view of the staggered fields the kernels work on. All
// five arrays share one layout with a zero guard column on each side.
type grids struct {
	stride int
	u, vx  []float32
	vy     []float32
	a, b   []float32
}

func (g *grids) index(i, j int) int { return i*g.stride + 1 + j }

// Kernel updates interior tiles. Boundary tiles always use the scalar rules
// in pml.go.
type Kernel interface {
	Name() string
	homogeneous(g *grids, t Tile)
	heterogeneous(g *grids, t Tile)
}

// KernelByName returns the kernel called name.
func KernelByName(name string) (Kernel, error) {
	switch name {
	case "scalar":
		return ScalarKernel, nil
	case "unrolled":
		return UnrolledKernel, nil
	}
	return nil, fmt.Errorf("wave: unknown kernel %q", name)
}

var (
	// ScalarKernel is the reference one-cell-at-a-time stencil.
	ScalarKernel Kernel = scalarKernel{}
	// UnrolledKernel processes four cells per step over fixed-size array
	// views, which lets the compiler drop bounds checks.
	UnrolledKernel Kernel = unrolledKernel{}
)

type scalarKernel struct{}

func (scalarKernel) Name() string { return "scalar" }

func (scalarKernel) homogeneous(g *grids, t Tile) {
	s := g.stride
	k0 := g.index(t.I0, t.J0)
	a := 2 * g.a[k0]
	b := g.b[k0]
	U, Vx, Vy := g.u, g.vx, g.vy
	for i := t.I0; i < t.I1; i++ {
		first := g.index(i, t.J0)
		last := first + t.J1 - t.J0
		for k := first; k < last; k++ {
			Vx[k] += a * (U[k+1] - U[k])
			Vy[k] += a * (U[k+s] - U[k])
			U[k] += b * ((Vx[k] - Vx[k-1]) + (Vy[k] - Vy[k-s]))
		}
	}
}

func (scalarKernel) heterogeneous(g *grids, t Tile) {
	s := g.stride
	U, Vx, Vy, A, B := g.u, g.vx, g.vy, g.a, g.b
	for i := t.I0; i < t.I1; i++ {
		first := g.index(i, t.J0)
		last := first + t.J1 - t.J0
		for k := first; k < last; k++ {
			u := U[k]
			Vx[k] += (A[k+1] + A[k]) * (U[k+1] - u)
			Vy[k] += (A[k+s] + A[k]) * (U[k+s] - u)
			U[k] = u + B[k]*((Vx[k]-Vx[k-1])+(Vy[k]-Vy[k-s]))
		}
	}
}

type unrolledKernel struct{}

func (unrolledKernel) Name() string { return "unrolled" }

func (unrolledKernel) homogeneous(g *grids, t Tile) {
	s := g.stride
	k0 := g.index(t.I0, t.J0)
	a := 2 * g.a[k0]
	b := g.b[k0]
	n := t.J1 - t.J0
	for i := t.I0; i < t.I1; i++ {
		k := g.index(i, t.J0)
		u := g.u[k : k+n+1]
		below := g.u[k+s : k+s+n]
		vx := g.vx[k-1 : k+n]
		vy := g.vy[k : k+n]
		above := g.vy[k-s : k-s+n]
		j := 0
		for ; j+4 <= n; j += 4 {
			uc := (*[5]float32)(u[j : j+5])
			ub := (*[4]float32)(below[j : j+4])
			x := (*[5]float32)(vx[j : j+5])
			y := (*[4]float32)(vy[j : j+4])
			ya := (*[4]float32)(above[j : j+4])
			for m := 0; m < 4; m++ {
				x[m+1] += a * (uc[m+1] - uc[m])
			}
			for m := 0; m < 4; m++ {
				y[m] += a * (ub[m] - uc[m])
			}
			for m := 0; m < 4; m++ {
				uc[m] += b * ((x[m+1] - x[m]) + (y[m] - ya[m]))
			}
		}
		for ; j < n; j++ {
			vx[j+1] += a * (u[j+1] - u[j])
			vy[j] += a * (below[j] - u[j])
			u[j] += b * ((vx[j+1] - vx[j]) + (vy[j] - above[j]))
		}
	}
}

func (unrolledKernel) heterogeneous(g *grids, t Tile) {
	s := g.stride
	n := t.J1 - t.J0
	for i := t.I0; i < t.I1; i++ {
		k := g.index(i, t.J0)
		u := g.u[k : k+n+1]
		below := g.u[k+s : k+s+n]
		a := g.a[k : k+n+1]
		aBelow := g.a[k+s : k+s+n]
		b := g.b[k : k+n]
		vx := g.vx[k-1 : k+n]
		vy := g.vy[k : k+n]
		above := g.vy[k-s : k-s+n]
		j := 0
		for ; j+4 <= n; j += 4 {
			uc := (*[5]float32)(u[j : j+5])
			ub := (*[4]float32)(below[j : j+4])
			ac := (*[5]float32)(a[j : j+5])
			ab := (*[4]float32)(aBelow[j : j+4])
			bc := (*[4]float32)(b[j : j+4])
			x := (*[5]float32)(vx[j : j+5])
			y := (*[4]float32)(vy[j : j+4])
			ya := (*[4]float32)(above[j : j+4])
			for m := 0; m < 4; m++ {
				x[m+1] += (ac[m+1] + ac[m]) * (uc[m+1] - uc[m])
			}
			for m := 0; m < 4; m++ {
				y[m] += (ab[m] + ac[m]) * (ub[m] - uc[m])
			}
			for m := 0; m < 4; m++ {
				uc[m] += bc[m] * ((x[m+1] - x[m]) + (y[m] - ya[m]))
			}
		}
		for ; j < n; j++ {
			uj := u[j]
			vx[j+1] += (a[j+1] + a[j]) * (u[j+1] - uj)
			vy[j] += (aBelow[j] + a[j]) * (below[j] - uj)
			u[j] = uj + b[j]*((vx[j+1]-vx[j])+(vy[j]-above[j]))
		}
	}
}
