package circuit

import (
	"fmt"
	"math"

	"github.com/edp1096/circuit-sim/pkg/device"
	"github.com/edp1096/circuit-sim/pkg/matrix"
)

// defaultTransientPoints sets the default time step of
// TransientSimulation to (tEnd - tBegin) / 1000. The chosen step is
// reported by TimeStep.
const defaultTransientPoints = 1000

// TransientSimulation starts a transient run. The state of every
// reactive element is reset from its initial conditions, a preparation
// solve with a degenerate zero step pins those conditions into the
// first solution, and t = tBegin is recorded exactly once. With
// tEnd <= tBegin no steps are taken; that is the documented way to
// prepare before a sequence of ContinueTransientSimulation calls.
func (c *Circuit) TransientSimulation(tBegin, tEnd float64, probeNames []string) ([]float64, [][]float64, error) {
	probes := make([]probe, len(probeNames))
	for i, name := range probeNames {
		p, err := c.resolveProbe(name)
		if err != nil {
			return nil, nil, err
		}
		probes[i] = p
	}

	c.probes = probes
	c.timeStamps = nil
	c.series = make([][]float64, len(probes))
	c.t = tBegin

	for _, td := range c.reactive {
		td.ResetState()
	}

	c.matrix = matrix.NewMatrix(c.size, false)
	prep := &device.CircuitStatus{
		Mode:     device.TransientAnalysis,
		Time:     tBegin,
		TimeStep: 0,
	}
	if err := c.solveReal(prep); err != nil {
		return nil, nil, err
	}
	for _, td := range c.reactive {
		td.UpdateState(c.solution)
	}
	c.record()
	c.state = stateTransient

	if tEnd > tBegin {
		c.timeStep = (tEnd - tBegin) / defaultTransientPoints
		if _, _, err := c.ContinueTransientSimulation(tEnd-tBegin, c.timeStep); err != nil {
			return nil, nil, err
		}
	}

	ts, series := c.history()
	return ts, series, nil
}

// ContinueTransientSimulation advances the running simulation by
// ceil(duration / timeStep) steps of exactly timeStep, appending to the
// history buffers. Mutations announced through
// GetComponentForModification take effect at the first step after the
// call. On a failed step the buffers keep everything up to the last
// successful one.
func (c *Circuit) ContinueTransientSimulation(duration, timeStep float64) ([]float64, [][]float64, error) {
	if c.state != stateTransient {
		return nil, nil, fmt.Errorf("no transient simulation is running; call TransientSimulation first")
	}
	if timeStep <= 0 {
		return nil, nil, fmt.Errorf("time step %g: %w", timeStep, ErrTimeStepNonPositive)
	}
	c.timeStep = timeStep

	steps := 0
	if duration > 0 {
		steps = int(math.Ceil(duration/timeStep - 1e-9))
	}

	for i := 0; i < steps; i++ {
		status := &device.CircuitStatus{
			Mode:     device.TransientAnalysis,
			Time:     c.t + timeStep,
			TimeStep: timeStep,
		}
		if err := c.solveReal(status); err != nil {
			return nil, nil, err
		}

		c.t += timeStep
		for _, td := range c.reactive {
			td.UpdateState(c.solution)
		}
		c.record()
	}

	ts, series := c.history()
	return ts, series, nil
}

// TimeStep reports the step in effect: the default chosen by
// TransientSimulation or the one passed to the latest continuation.
func (c *Circuit) TimeStep() float64 { return c.timeStep }

// TransientTime reports the current simulation time.
func (c *Circuit) TransientTime() float64 { return c.t }

// ClearTransientData empties the history buffers without disturbing the
// simulation state, so a long-running caller can bound memory.
func (c *Circuit) ClearTransientData() {
	c.timeStamps = c.timeStamps[:0]
	for i := range c.series {
		c.series[i] = c.series[i][:0]
	}
}

func (c *Circuit) record() {
	c.timeStamps = append(c.timeStamps, c.t)
	for i, p := range c.probes {
		c.series[i] = append(c.series[i], p.value(c.solution))
	}
}

func (c *Circuit) history() ([]float64, [][]float64) {
	ts := make([]float64, len(c.timeStamps))
	copy(ts, c.timeStamps)

	series := make([][]float64, len(c.series))
	for i := range c.series {
		series[i] = make([]float64, len(c.series[i]))
		copy(series[i], c.series[i])
	}
	return ts, series
}
