package wave

// layout maps wavefield rows y in [-1, h) onto array rows i. Each panel owns
// a contiguous run of i followed by a separation zone that holds the ghost
// rows of both neighbours.
type layout struct {
	n       int
	firstY  []int // n+1 entries; firstY[n] == h
	firstI  []int
	lastI   []int
	iOfY    []int // indexed by y+1
	rows    int   // total array rows, separation zones included
	topIofB int   // first row of the bottom absorbing layer
	leftJof int   // first column of the right absorbing layer
}

func newLayout(h, w, n, pumpMax, damp int) layout {
	l := layout{
		n:      n,
		firstY: make([]int, n+1),
		firstI: make([]int, n),
		lastI:  make([]int, n),
		iOfY:   make([]int, h+1),
	}
	rows := h + 1
	for p := 0; p <= n; p++ {
		l.firstY[p] = rows*p/n - 1
	}
	i := 0
	for p := 0; p < n; p++ {
		l.firstI[p] = i
		for y := l.firstY[p]; y < l.firstY[p+1]; y++ {
			l.iOfY[y+1] = i
			i++
		}
		l.lastI[p] = i
		i += 2*pumpMax + 1
	}
	l.rows = i
	l.topIofB = l.lastI[n-1] - damp
	l.leftJof = w - damp
	return l
}

// IofY returns the array row of wavefield row y.
func (l *layout) IofY(y int) int { return l.iOfY[y+1] }

// transfer copies array row src over row dst.
type transfer struct {
	src, dst int
}

// transfersFor returns the ghost copies between panel p-1 and panel p for
// pump factor d: the first d rows of p go below p-1, and the last d rows of
// p-1 go above p.
func (l *layout) transfersFor(p, d int) []transfer {
	out := make([]transfer, 0, 2*d)
	for k := 0; k < d; k++ {
		out = append(out, transfer{src: l.firstI[p] + k, dst: l.lastI[p-1] + k})
	}
	for k := 0; k < d; k++ {
		out = append(out, transfer{src: l.lastI[p-1] - k - 1, dst: l.firstI[p] - k - 1})
	}
	return out
}

// trapezoidFirstI is the first row panel p updates at stage k of d.
func (l *layout) trapezoidFirstI(p, k, d int) int {
	if p == 0 {
		return l.firstI[p]
	}
	return l.firstI[p] - (d - k)
}

// trapezoidLastI is one past the last row panel p updates at stage k of d.
func (l *layout) trapezoidLastI(p, k, d int) int {
	if p == l.n-1 {
		return l.lastI[p]
	}
	return l.lastI[p] + (d - 1 - k)
}

// replicate performs the ghost copies into and out of panel p. With all set
// the medium coefficients are copied too.
func (f *Field) replicate(p int, all bool) {
	for _, t := range f.transfers[p] {
		if all {
			f.a.CopyRow(t.dst, t.src)
			f.b.CopyRow(t.dst, t.src)
			f.rock.CopyRow(t.dst, t.src)
		}
		f.u.CopyRow(t.dst, t.src)
		f.vx.CopyRow(t.dst, t.src)
		f.vy.CopyRow(t.dst, t.src)
		d := f.damp
		copy(f.pl[t.dst*d:(t.dst+1)*d], f.pl[t.src*d:(t.src+1)*d])
		copy(f.pr[t.dst*d:(t.dst+1)*d], f.pr[t.src*d:(t.src+1)*d])
	}
}

// setTransfers rebuilds the ghost copies for pump factor d.
func (f *Field) setTransfers(d int) {
	f.transfers = make([][]transfer, f.layout.n)
	for p := 1; p < f.layout.n; p++ {
		f.transfers[p] = f.layout.transfersFor(p, d)
	}
}
