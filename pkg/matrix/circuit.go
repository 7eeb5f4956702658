package matrix

// CircuitMatrix is the MNA system one analysis stamps into. It fronts a
// real or a complex dense system depending on the analysis: DC and
// transient solve in float64, AC sweep in complex128.
type CircuitMatrix struct {
	Size      int
	isComplex bool
	re        *Dense[float64]
	cx        *Dense[complex128]
}

func NewMatrix(size int, isComplex bool) *CircuitMatrix {
	m := &CircuitMatrix{Size: size, isComplex: isComplex}
	if isComplex {
		m.cx = NewDense[complex128](size)
	} else {
		m.re = NewDense[float64](size)
	}
	return m
}

func (m *CircuitMatrix) IsComplex() bool { return m.isComplex }

func (m *CircuitMatrix) Clear() {
	if m.isComplex {
		m.cx.Clear()
	} else {
		m.re.Clear()
	}
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if m.isComplex {
		m.cx.Add(i, j, complex(value, 0))
		return
	}
	m.re.Add(i, j, value)
}

func (m *CircuitMatrix) AddComplexElement(i, j int, real, imag float64) {
	if !m.isComplex {
		m.re.Add(i, j, real)
		return
	}
	m.cx.Add(i, j, complex(real, imag))
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if m.isComplex {
		m.cx.AddRHS(i, complex(value, 0))
		return
	}
	m.re.AddRHS(i, value)
}

func (m *CircuitMatrix) AddComplexRHS(i int, real, imag float64) {
	if !m.isComplex {
		m.re.AddRHS(i, real)
		return
	}
	m.cx.AddRHS(i, complex(real, imag))
}

func (m *CircuitMatrix) Solve() error {
	if m.isComplex {
		return m.cx.Solve()
	}
	return m.re.Solve()
}

// Solution returns the real solution vector, 1-based like the stamps.
func (m *CircuitMatrix) Solution() []float64 {
	if m.isComplex {
		return nil
	}
	return m.re.Solution()
}

// ComplexSolution returns the complex solution vector, 1-based.
func (m *CircuitMatrix) ComplexSolution() []complex128 {
	if !m.isComplex {
		return nil
	}
	return m.cx.Solution()
}

func (m *CircuitMatrix) At(i, j int) float64 {
	if m.isComplex {
		return real(m.cx.At(i, j))
	}
	return m.re.At(i, j)
}

func (m *CircuitMatrix) AtComplex(i, j int) complex128 {
	if m.isComplex {
		return m.cx.At(i, j)
	}
	return complex(m.re.At(i, j), 0)
}

func (m *CircuitMatrix) RHSAt(i int) float64 {
	if m.isComplex {
		return real(m.cx.RHSAt(i))
	}
	return m.re.RHSAt(i)
}

func (m *CircuitMatrix) RHSAtComplex(i int) complex128 {
	if m.isComplex {
		return m.cx.RHSAt(i)
	}
	return complex(m.re.RHSAt(i), 0)
}
