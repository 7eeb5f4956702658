package matrix

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"golang.org/x/exp/constraints"
)

// ErrSingularMatrix is returned when no usable pivot is left in a column.
var ErrSingularMatrix = errors.New("singular matrix")

// Scalar covers the two element types the simulator solves with:
// float64 for DC and transient analysis, complex128 for AC sweep.
type Scalar interface {
	constraints.Float | constraints.Complex
}

// Dense is an n x n linear system A*x = b. Rows and columns are 1-based
// so that index 0 can stand for the ground node and stamps can skip it.
type Dense[T Scalar] struct {
	n int
	a [][]T
	b []T
	x []T
}

func NewDense[T Scalar](n int) *Dense[T] {
	a := make([][]T, n+1)
	for i := range a {
		a[i] = make([]T, n+1)
	}

	return &Dense[T]{
		n: n,
		a: a,
		b: make([]T, n+1),
		x: make([]T, n+1),
	}
}

func (d *Dense[T]) Size() int { return d.n }

func (d *Dense[T]) Clear() {
	for i := 1; i <= d.n; i++ {
		for j := 1; j <= d.n; j++ {
			d.a[i][j] = 0
		}
		d.b[i] = 0
		d.x[i] = 0
	}
}

func (d *Dense[T]) Add(i, j int, value T) {
	if i <= 0 || j <= 0 || i > d.n || j > d.n {
		return
	}
	d.a[i][j] += value
}

func (d *Dense[T]) AddRHS(i int, value T) {
	if i <= 0 || i > d.n {
		return
	}
	d.b[i] += value
}

func (d *Dense[T]) At(i, j int) T { return d.a[i][j] }
func (d *Dense[T]) RHSAt(i int) T { return d.b[i] }
func (d *Dense[T]) Solution() []T { return d.x }

func magnitude[T Scalar](v T) float64 {
	switch s := any(v).(type) {
	case float64:
		return math.Abs(s)
	case float32:
		return math.Abs(float64(s))
	case complex128:
		return cmplx.Abs(s)
	case complex64:
		return cmplx.Abs(complex128(s))
	}
	return 0
}

// Solve factors a copy of A with partial pivoting and back-substitutes
// into the solution vector. A and b are left as stamped so the system
// can still be rendered afterwards.
func (d *Dense[T]) Solve() error {
	n := d.n
	if n == 0 {
		return nil
	}

	lu := make([][]T, n+1)
	for i := 1; i <= n; i++ {
		lu[i] = make([]T, n+1)
		copy(lu[i], d.a[i])
	}
	rhs := make([]T, n+1)
	copy(rhs, d.b)

	// Pivot threshold relative to the infinity norm of A.
	norm := 0.0
	for i := 1; i <= n; i++ {
		rowSum := 0.0
		for j := 1; j <= n; j++ {
			rowSum += magnitude(lu[i][j])
		}
		if rowSum > norm {
			norm = rowSum
		}
	}
	pivotMin := 1e-14 * norm
	if pivotMin == 0 {
		pivotMin = 1e-14
	}

	for col := 1; col <= n; col++ {
		pivotRow := col
		pivotMag := magnitude(lu[col][col])
		for row := col + 1; row <= n; row++ {
			if mag := magnitude(lu[row][col]); mag > pivotMag {
				pivotMag = mag
				pivotRow = row
			}
		}
		if pivotMag <= pivotMin {
			return fmt.Errorf("column %d: largest pivot %g below threshold %g: %w",
				col, pivotMag, pivotMin, ErrSingularMatrix)
		}
		if pivotRow != col {
			lu[col], lu[pivotRow] = lu[pivotRow], lu[col]
			rhs[col], rhs[pivotRow] = rhs[pivotRow], rhs[col]
		}

		pivot := lu[col][col]
		for row := col + 1; row <= n; row++ {
			if lu[row][col] == 0 {
				continue
			}
			factor := lu[row][col] / pivot
			lu[row][col] = 0
			for j := col + 1; j <= n; j++ {
				lu[row][j] -= factor * lu[col][j]
			}
			rhs[row] -= factor * rhs[col]
		}
	}

	for row := n; row >= 1; row-- {
		sum := rhs[row]
		for j := row + 1; j <= n; j++ {
			sum -= lu[row][j] * d.x[j]
		}
		d.x[row] = sum / lu[row][row]
	}
	d.x[0] = 0

	return nil
}
