package circuit

import (
	"errors"
	"fmt"

	"github.com/edp1096/circuit-sim/pkg/device"
	"github.com/edp1096/circuit-sim/pkg/matrix"
)

// reclassify turns a singular solve into a structural error when the
// topology explains it; otherwise the solver error passes through.
func (c *Circuit) reclassify(err error, status *device.CircuitStatus) error {
	if !errors.Is(err, matrix.ErrSingularMatrix) {
		return err
	}
	if reason := c.diagnoseStructure(status.Mode); reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrStructural)
	}
	return err
}

// diagnoseStructure looks for the two topology defects that always show
// up as singular systems: a node with no conduction path to ground and
// a node wired to a single terminal. Capacitors do not conduct at DC,
// so they are not paths when diagnosing a DC solve.
func (c *Circuit) diagnoseStructure(mode device.AnalysisMode) string {
	numNodes := len(c.nodeMap)
	adjacency := make([][]int, numNodes+1)
	terminals := make([]int, numNodes+1)

	for _, dev := range c.devices {
		nodes := dev.GetNodes()
		if len(nodes) != 2 {
			continue
		}
		a, b := nodes[0], nodes[1]
		terminals[a]++
		terminals[b]++

		if mode == device.DCAnalysis && dev.GetType() == "C" {
			continue
		}
		adjacency[a] = append(adjacency[a], b)
		adjacency[b] = append(adjacency[b], a)
	}

	reached := make([]bool, numNodes+1)
	reached[0] = true
	queue := []int{0}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[n] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	for idx := 1; idx <= numNodes; idx++ {
		if !reached[idx] {
			return fmt.Sprintf("node %q has no conduction path to ground", c.varNames[idx])
		}
	}
	for idx := 1; idx <= numNodes; idx++ {
		if terminals[idx] == 1 {
			return fmt.Sprintf("node %q is connected to only one terminal", c.varNames[idx])
		}
	}

	return ""
}
