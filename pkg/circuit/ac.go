package circuit

import (
	"fmt"
	"math"

	"github.com/edp1096/circuit-sim/pkg/device"
	"github.com/edp1096/circuit-sim/pkg/matrix"
)

const (
	DefaultACStartFreq       = 1.0
	DefaultACStopFreq        = 1e6
	DefaultACPointsPerDecade = 20
)

// ACSweep runs the small-signal sweep over the default logarithmic
// grid, 1 Hz to 1 MHz at 20 points per decade.
func (c *Circuit) ACSweep(probeNames []string) ([]float64, [][]complex128, error) {
	return c.ACSweepRange(probeNames, DefaultACStartFreq, DefaultACStopFreq, DefaultACPointsPerDecade)
}

// ACSweepRange sweeps a logarithmic grid between fStart and fStop.
func (c *Circuit) ACSweepRange(probeNames []string, fStart, fStop float64, pointsPerDecade int) ([]float64, [][]complex128, error) {
	if fStart <= 0 || fStop <= fStart {
		return nil, nil, fmt.Errorf("frequency range [%g, %g]: %w", fStart, fStop, ErrInvalidParameter)
	}
	if pointsPerDecade < 1 {
		return nil, nil, fmt.Errorf("points per decade %d: %w", pointsPerDecade, ErrInvalidParameter)
	}

	decades := math.Log10(fStop / fStart)
	n := int(math.Round(decades*float64(pointsPerDecade))) + 1
	if n < 2 {
		n = 2
	}

	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = fStart * math.Pow(10, float64(i)*decades/float64(n-1))
	}

	return c.acSolve(probeNames, freqs)
}

// ACSweepLinear sweeps a linear grid, for callers zooming into a narrow
// band such as a resonance.
func (c *Circuit) ACSweepLinear(probeNames []string, fStart, fStop float64, numPoints int) ([]float64, [][]complex128, error) {
	if fStart <= 0 || fStop <= fStart {
		return nil, nil, fmt.Errorf("frequency range [%g, %g]: %w", fStart, fStop, ErrInvalidParameter)
	}
	if numPoints < 2 {
		return nil, nil, fmt.Errorf("number of points %d: %w", numPoints, ErrInvalidParameter)
	}

	freqs := make([]float64, numPoints)
	step := (fStop - fStart) / float64(numPoints-1)
	for i := range freqs {
		freqs[i] = fStart + float64(i)*step
	}

	return c.acSolve(probeNames, freqs)
}

// acSolve linearizes about the DC operating point and solves the
// complex system once per frequency. The operating point is computed
// first when the circuit is not already DC-solved, which freezes each
// diode at its small-signal conductance.
func (c *Circuit) acSolve(probeNames []string, freqs []float64) ([]float64, [][]complex128, error) {
	if c.state != stateDCSolved {
		if err := c.DCAnalysis(); err != nil {
			return nil, nil, fmt.Errorf("operating point for AC sweep: %w", err)
		}
	}

	probes := make([]probe, len(probeNames))
	for i, name := range probeNames {
		p, err := c.resolveProbe(name)
		if err != nil {
			return nil, nil, err
		}
		probes[i] = p
	}

	c.matrix = matrix.NewMatrix(c.size, true)
	series := make([][]complex128, len(probes))
	for i := range series {
		series[i] = make([]complex128, 0, len(freqs))
	}

	for _, f := range freqs {
		status := &device.CircuitStatus{
			Mode:  device.ACAnalysis,
			Omega: 2 * math.Pi * f,
		}
		if err := c.stampSystem(status); err != nil {
			return nil, nil, err
		}
		if err := c.matrix.Solve(); err != nil {
			return nil, nil, fmt.Errorf("at f=%g Hz: %w", f, c.reclassify(err, status))
		}

		x := c.matrix.ComplexSolution()
		for i, p := range probes {
			series[i] = append(series[i], p.complexValue(x))
		}
	}

	c.state = stateDCSolved

	return freqs, series, nil
}
