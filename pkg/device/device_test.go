package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/circuit-sim/pkg/matrix"
)

func TestResistorStamp(t *testing.T) {
	r := NewResistor("R1", []string{"a", "b"}, 100)
	r.SetNodes([]int{1, 2})

	m := matrix.NewMatrix(2, false)
	require.NoError(t, r.Stamp(m, &CircuitStatus{Mode: DCAnalysis}))

	g := 0.01
	assert.Equal(t, g, m.At(1, 1))
	assert.Equal(t, -g, m.At(1, 2))
	assert.Equal(t, -g, m.At(2, 1))
	assert.Equal(t, g, m.At(2, 2))
}

func TestResistorStampGroundedTerminal(t *testing.T) {
	r := NewResistor("R1", []string{"a", "gnd"}, 100)
	r.SetNodes([]int{1, 0})

	m := matrix.NewMatrix(1, false)
	require.NoError(t, r.Stamp(m, &CircuitStatus{Mode: DCAnalysis}))

	assert.Equal(t, 0.01, m.At(1, 1))
}

func TestVoltageSourceStamp(t *testing.T) {
	v := NewVoltageSource("VG1", []string{"a", "gnd"}, 5)
	v.SetNodes([]int{1, 0})
	v.SetBranchIndex(2)

	m := matrix.NewMatrix(2, false)
	require.NoError(t, v.Stamp(m, &CircuitStatus{Mode: DCAnalysis}))

	assert.Equal(t, -1.0, m.At(1, 2))
	assert.Equal(t, 1.0, m.At(2, 1))
	assert.Equal(t, 5.0, m.RHSAt(2))
}

func TestCapacitorTransientRowDegeneratesToIC(t *testing.T) {
	c := NewCapacitor("C1", []string{"a", "gnd"}, 1e-6, 2.5, 0)
	c.SetNodes([]int{1, 0})
	c.SetBranchIndex(2)

	m := matrix.NewMatrix(2, false)
	status := &CircuitStatus{Mode: TransientAnalysis, TimeStep: 0}
	require.NoError(t, c.Stamp(m, status))

	// row 2 reads V(a) = 2.5
	assert.Equal(t, 1.0, m.At(2, 1))
	assert.Equal(t, 0.0, m.At(2, 2))
	assert.Equal(t, 2.5, m.RHSAt(2))
}

func TestInductorDCRowIsShortCircuit(t *testing.T) {
	l := NewInductor("L1", []string{"a", "b"}, 1e-3, 0, 0)
	l.SetNodes([]int{1, 2})
	l.SetBranchIndex(3)

	m := matrix.NewMatrix(3, false)
	require.NoError(t, l.Stamp(m, &CircuitStatus{Mode: DCAnalysis}))

	assert.Equal(t, 1.0, m.At(3, 1))
	assert.Equal(t, -1.0, m.At(3, 2))
	assert.Equal(t, 0.0, m.At(3, 3))
}

func TestMutationNeedsAcknowledgement(t *testing.T) {
	r := NewResistor("R1", []string{"a", "b"}, 1000)

	r.SetValue(2000)
	assert.Equal(t, 1000.0, r.GetValue(), "value must not change before acknowledgement")

	r.Acknowledge()
	assert.Equal(t, 1000.0, r.GetValue(), "acknowledge without dirty flag is a no-op")

	r.MarkDirty()
	r.SetValue(500)
	r.Acknowledge()
	assert.Equal(t, 500.0, r.GetValue())
}

func TestDiodeBiasStepLimit(t *testing.T) {
	d := NewDiode("D1", []string{"a", "gnd"}, 1e-5, 3, 0.5)
	d.SetNodes([]int{1, 0})

	x := []float64{0, 5, 0, 0}
	d.UpdateBias(x)
	d.UpdateBias(x)

	// two limited steps of 0.3 V
	m := matrix.NewMatrix(3, false)
	d.SetInternalIndex(2)
	d.SetBranchIndex(3)
	require.NoError(t, d.Stamp(m, &CircuitStatus{Mode: DCAnalysis}))

	// offset row: V(a) - V_int = vBias - 1/m with vBias = 0.6
	assert.InDelta(t, 0.6-1.0/3.0, m.RHSAt(3), 1e-12)
}
