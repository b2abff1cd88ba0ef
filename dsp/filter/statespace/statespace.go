// Package statespace implements a discrete single-input single-output
// state-space model y = C*s + D*x, s' = A*s + B*x, with an optional
// saturator applied to the state update for nonlinear variants.
package statespace

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/saturator"
)

// Model holds the state matrices in row-major flat slices and the current
// state vector. The zero state is the quiescent point.
type Model[T core.Float] struct {
	n int

	a []T // n*n, row-major
	b []T // n
	c []T // n
	d T

	state   []T
	scratch []T

	sat saturator.Shaper[T]
}

// New validates the matrix dimensions and returns a model with zero
// state. The state dimension is taken from len(b); a must hold n*n
// entries and c must hold n.
func New[T core.Float](a, b, c []T, d T) (*Model[T], error) {
	n := len(b)
	if n == 0 {
		return nil, fmt.Errorf("statespace: state dimension must be > 0")
	}

	if len(a) != n*n {
		return nil, fmt.Errorf("statespace: a must hold %d entries, got %d", n*n, len(a))
	}

	if len(c) != n {
		return nil, fmt.Errorf("statespace: c must hold %d entries, got %d", n, len(c))
	}

	for _, v := range a {
		if !core.IsFinite(v) {
			return nil, fmt.Errorf("statespace: a contains a non-finite entry")
		}
	}

	for i := range b {
		if !core.IsFinite(b[i]) || !core.IsFinite(c[i]) {
			return nil, fmt.Errorf("statespace: b or c contains a non-finite entry")
		}
	}

	if !core.IsFinite(d) {
		return nil, fmt.Errorf("statespace: d must be finite: %v", d)
	}

	m := &Model[T]{
		n:       n,
		a:       append([]T(nil), a...),
		b:       append([]T(nil), b...),
		c:       append([]T(nil), c...),
		d:       d,
		state:   make([]T, n),
		scratch: make([]T, n),
	}

	return m, nil
}

// SetMatrices replaces the coefficient matrices. The state dimension must
// match; the state vector is kept so retuning stays click-free.
func (m *Model[T]) SetMatrices(a, b, c []T, d T) error {
	next, err := New(a, b, c, d)
	if err != nil {
		return err
	}

	if next.n != m.n {
		return fmt.Errorf("statespace: state dimension %d does not match existing %d", next.n, m.n)
	}

	copy(m.a, next.a)
	copy(m.b, next.b)
	copy(m.c, next.c)
	m.d = next.d

	return nil
}

// SetStateSaturator installs a saturator applied to each state entry
// after the update. nil restores the linear model.
func (m *Model[T]) SetStateSaturator(s saturator.Shaper[T]) {
	m.sat = s
}

// Dim returns the state dimension.
func (m *Model[T]) Dim() int { return m.n }

// ProcessSample advances the model by one sample. Zero-alloc.
func (m *Model[T]) ProcessSample(x T) T {
	y := m.d * x
	for j := 0; j < m.n; j++ {
		y += m.c[j] * m.state[j]
	}

	for i := 0; i < m.n; i++ {
		s := m.b[i] * x

		row := m.a[i*m.n:]
		for j := 0; j < m.n; j++ {
			s += row[j] * m.state[j]
		}

		if m.sat != nil {
			s = m.sat.Evaluate(s)
		}

		m.scratch[i] = core.FlushDenormals(s)
	}

	copy(m.state, m.scratch)

	return y
}

// ProcessInPlace filters a block in-place. Zero-alloc.
func (m *Model[T]) ProcessInPlace(buf []T) {
	for i, x := range buf {
		buf[i] = m.ProcessSample(x)
	}
}

// Reset clears the state vector.
func (m *Model[T]) Reset() {
	for i := range m.state {
		m.state[i] = 0
	}
}

// Latency reports zero samples; D provides the direct path.
func (m *Model[T]) Latency() int { return 0 }

// State returns a copy of the state vector.
func (m *Model[T]) State() []T {
	return append([]T(nil), m.state...)
}

// SetState restores a previously saved state vector.
func (m *Model[T]) SetState(state []T) error {
	if len(state) != m.n {
		return fmt.Errorf("statespace: state length %d does not match dimension %d", len(state), m.n)
	}

	copy(m.state, state)

	return nil
}

// Response evaluates the linear transfer function
// H(z) = C (zI - A)^-1 B + D at the given frequency in Hz by solving
// (zI - A) v = B with partial pivoting. Returns NaN when zI - A is
// singular at that frequency.
func (m *Model[T]) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	z := complex(math.Cos(w), math.Sin(w))

	n := m.n

	// zI - A, augmented with B.
	mat := make([][]complex128, n)
	for i := range mat {
		mat[i] = make([]complex128, n+1)
		for j := 0; j < n; j++ {
			mat[i][j] = -complex(float64(m.a[i*n+j]), 0)
		}

		mat[i][i] += z
		mat[i][n] = complex(float64(m.b[i]), 0)
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if cmplx.Abs(mat[row][col]) > cmplx.Abs(mat[pivot][col]) {
				pivot = row
			}
		}

		if cmplx.Abs(mat[pivot][col]) == 0 {
			return complex(math.NaN(), math.NaN())
		}

		mat[col], mat[pivot] = mat[pivot], mat[col]

		for row := col + 1; row < n; row++ {
			factor := mat[row][col] / mat[col][col]
			for j := col; j <= n; j++ {
				mat[row][j] -= factor * mat[col][j]
			}
		}
	}

	v := make([]complex128, n)
	for i := n - 1; i >= 0; i-- {
		sum := mat[i][n]
		for j := i + 1; j < n; j++ {
			sum -= mat[i][j] * v[j]
		}

		v[i] = sum / mat[i][i]
	}

	h := complex(float64(m.d), 0)
	for j := 0; j < n; j++ {
		h += complex(float64(m.c[j]), 0) * v[j]
	}

	return h
}
