package wave

// Uniaxial perfectly matched layer. Each absorbing cell at depth l into the
// layer scales its recursions by d0..d3 and accumulates the flux along the
// layer in a psi term weighted by d4 or d5.

// d6 decays the psi terms just enough to keep round-off from accumulating.
const d6 = float32(1) - 0x1p-23

type pmlCoeffs struct {
	d0, d1, d2, d3, d4, d5 []float32
}

func newPML(damp int, sigmaMax float32) pmlCoeffs {
	c := pmlCoeffs{
		d0: make([]float32, damp),
		d1: make([]float32, damp),
		d2: make([]float32, damp),
		d3: make([]float32, damp),
		d4: make([]float32, damp),
		d5: make([]float32, damp),
	}
	kMax := float32(damp) - 0.5
	ramp := func(k float32) float32 { return k * k * (sigmaMax / (kMax * kMax)) }
	for k := 0; k < damp; k++ {
		s0 := ramp(float32(k))
		s1 := ramp(float32(k) + 0.5)
		c.d0[k] = (2 - s0) / (2 + s0)
		c.d1[k] = (2 - s1) / (2 + s1)
		c.d2[k] = 2 / (2 + s0)
		c.d3[k] = 2 / (2 + s1)
		c.d4[k] = s0
		c.d5[k] = s1
	}
	return c
}

// updateTop applies the reflecting free surface on row 0.
func (f *Field) updateTop(t Tile) {
	g := &f.g
	for j := t.J0; j < t.J1; j++ {
		k := g.index(1, j)
		g.vy[g.index(0, j)] += 4 * g.a[k] * g.u[k]
	}
}

func (f *Field) updateLeft(t Tile) {
	g, c, damp := &f.g, &f.pml, f.damp
	s := g.stride
	U, Vx, Vy, A, B := g.u, g.vx, g.vy, g.a, g.b
	for i := t.I0; i < t.I1; i++ {
		pl := f.pl[i*damp : (i+1)*damp]
		for j := t.J0; j < t.J1; j++ {
			l := damp - 1 - j
			k := g.index(i, j)
			u := U[k]
			Vx[k] = c.d0[l]*Vx[k] + c.d2[l]*(A[k+1]+A[k])*(U[k+1]-u)
			Vy[k] = Vy[k] + (A[k+s]+A[k])*(U[k+s]-u)
			dy := Vy[k] - Vy[k-s]
			U[k] = c.d1[l]*u + B[k]*(c.d3[l]*((Vx[k]-Vx[k-1])+pl[l])+dy)
			pl[l] = d6*pl[l] + c.d5[l]*dy
		}
	}
}

func (f *Field) updateRight(t Tile) {
	g, c, damp := &f.g, &f.pml, f.damp
	s := g.stride
	right := f.layout.leftJof
	U, Vx, Vy, A, B := g.u, g.vx, g.vy, g.a, g.b
	for i := t.I0; i < t.I1; i++ {
		pr := f.pr[i*damp : (i+1)*damp]
		for j := t.J0; j < t.J1; j++ {
			l := j - right
			k := g.index(i, j)
			u := U[k]
			Vx[k] = c.d1[l]*Vx[k] + c.d3[l]*(A[k+1]+A[k])*(U[k+1]-u)
			Vy[k] = Vy[k] + (A[k+s]+A[k])*(U[k+s]-u)
			dy := Vy[k] - Vy[k-s]
			U[k] = c.d0[l]*u + B[k]*(c.d2[l]*((Vx[k]-Vx[k-1])+pr[l])+dy)
			pr[l] = d6*pr[l] + c.d4[l]*dy
		}
	}
}

func (f *Field) updateBottom(t Tile) {
	g, c, w := &f.g, &f.pml, f.w
	s := g.stride
	U, Vx, Vy, A, B := g.u, g.vx, g.vy, g.a, g.b
	for i := t.I0; i < t.I1; i++ {
		m := i - f.layout.topIofB
		pb := f.pb[m*w : (m+1)*w]
		for j := t.J0; j < t.J1; j++ {
			k := g.index(i, j)
			u := U[k]
			Vx[k] = Vx[k] + (A[k+1]+A[k])*(U[k+1]-u)
			Vy[k] = c.d1[m]*Vy[k] + c.d3[m]*(A[k+s]+A[k])*(U[k+s]-u)
			dx := Vx[k] - Vx[k-1]
			U[k] = c.d0[m]*u + B[k]*(dx+c.d2[m]*((Vy[k]-Vy[k-s])+pb[j]))
			pb[j] = d6*pb[j] + c.d4[m]*dx
		}
	}
}

func (f *Field) updateBottomLeft(t Tile) {
	g, c, w, damp := &f.g, &f.pml, f.w, f.damp
	s := g.stride
	U, Vx, Vy, A, B := g.u, g.vx, g.vy, g.a, g.b
	for i := t.I0; i < t.I1; i++ {
		m := i - f.layout.topIofB
		pb := f.pb[m*w : (m+1)*w]
		pl := f.pl[i*damp : (i+1)*damp]
		for j := t.J0; j < t.J1; j++ {
			l := damp - 1 - j
			k := g.index(i, j)
			u := U[k]
			Vx[k] = c.d0[l]*Vx[k] + c.d2[l]*(A[k+1]+A[k])*(U[k+1]-u)
			Vy[k] = c.d1[m]*Vy[k] + c.d3[m]*(A[k+s]+A[k])*(U[k+s]-u)
			dx := Vx[k] - Vx[k-1]
			dy := Vy[k] - Vy[k-s]
			U[k] = c.d0[m]*c.d1[l]*u + B[k]*(c.d3[l]*(dx+pl[l])+c.d2[m]*(dy+pb[j]))
			pb[j] = d6*pb[j] + c.d4[m]*dx
			pl[l] = d6*pl[l] + c.d5[l]*dy
		}
	}
}

func (f *Field) updateBottomRight(t Tile) {
	g, c, w, damp := &f.g, &f.pml, f.w, f.damp
	s := g.stride
	right := f.layout.leftJof
	U, Vx, Vy, A, B := g.u, g.vx, g.vy, g.a, g.b
	for i := t.I0; i < t.I1; i++ {
		m := i - f.layout.topIofB
		pb := f.pb[m*w : (m+1)*w]
		pr := f.pr[i*damp : (i+1)*damp]
		for j := t.J0; j < t.J1; j++ {
			l := j - right
			k := g.index(i, j)
			u := U[k]
			Vx[k] = c.d1[l]*Vx[k] + c.d3[l]*(A[k+1]+A[k])*(U[k+1]-u)
			Vy[k] = c.d1[m]*Vy[k] + c.d3[m]*(A[k+s]+A[k])*(U[k+s]-u)
			dx := Vx[k] - Vx[k-1]
			dy := Vy[k] - Vy[k-s]
			U[k] = c.d0[m]*c.d0[l]*u + B[k]*(c.d2[l]*(dx+pr[l])+c.d2[m]*(dy+pb[j]))
			pb[j] = d6*pb[j] + c.d4[m]*dx
			pr[l] = d6*pr[l] + c.d4[l]*dy
		}
	}
}
