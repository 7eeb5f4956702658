package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAndSolveDC(t *testing.T, netlist string) *Circuit {
	t.Helper()
	ckt, err := BuildFromString(netlist)
	require.NoError(t, err)
	require.NoError(t, ckt.DCAnalysis())
	return ckt
}

func getVar(t *testing.T, ckt *Circuit, name string) float64 {
	t.Helper()
	v, err := ckt.GetVariable(name)
	require.NoError(t, err)
	return v
}

func TestResistorDivider(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R R1 vcc v_out 1k
		R v_out gnd 1kOhm

		vcc = 2.5v
	`)

	assert.InDelta(t, 1.25, getVar(t, ckt, "v_out"), 1e-9)
	assert.InDelta(t, 2.5, getVar(t, ckt, "vcc"), 1e-9)
}

func TestResistorDividerChain(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R       vcc     v_out1      1e3
		R R2    v_out1  v_out2      1000
		R R3    v_out2  v_out3      3KOhm
		R       v_out3  v_out4      500
		R       v_out4  gnd         0.5k

		vcc = 6
	`)

	assert.InDelta(t, 5.0, getVar(t, ckt, "v_out1"), 1e-9)
	assert.InDelta(t, 4.0, getVar(t, ckt, "v_out2"), 1e-9)
	assert.InDelta(t, 1.0, getVar(t, ckt, "v_out3"), 1e-9)
	assert.InDelta(t, 0.5, getVar(t, ckt, "v_out4"), 1e-9)
}

func TestParallelResistors(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R   vcc     v_out1      300
		R   v_out1  v_out2      1k
		R   v_out1  v_out2      2k
		R   v_out1  v_out2      3k
		R   v_out1  v_out2      4k
		R   v_out2  gnd         500

		vcc = 5
	`)

	assert.InDelta(t, 3.828125, getVar(t, ckt, "v_out1"), 1e-9)
	assert.InDelta(t, 1.953125, getVar(t, ckt, "v_out2"), 1e-9)
}

func TestFloatingSource(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		VG  vcc     v_rtn       5v
		R   v_rtn   gnd         100

		R   vcc     v_out1      300
		R   v_out1  v_out2      1k
		R   v_out1  v_out2      2k
		R   v_out1  v_out2      3k
		R   v_out1  v_out2      4k
		R   v_out2  gnd         500
	`)

	assert.InEpsilon(t, 3.55, getVar(t, ckt, "v_out1"), 0.01)
	assert.InEpsilon(t, 1.81, getVar(t, ckt, "v_out2"), 0.01)
	assert.InEpsilon(t, -0.362, getVar(t, ckt, "v_rtn"), 0.01)
}

func TestStackedSources(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		VG  vcc     vs1         2V
		VG  vs1     vs2         1.5
		VG  vs2     gnd         2.5

		R   vcc     v_out1      300
		R   v_out1  v_out2      1k
		R   v_out1  v_out2      2k
		R   v_out1  v_out2      3k
		R   v_out1  v_out2      4k
		R   v_out2  gnd         500
	`)

	assert.InEpsilon(t, 4.59, getVar(t, ckt, "v_out1"), 0.01)
	assert.InEpsilon(t, 2.34, getVar(t, ckt, "v_out2"), 0.01)
}

func TestDiodeMinusSideFixed(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R           vcc     v1      0.1
		D my_diode  v1      gnd     i0=1e-5 m=3 v0=0.5

		vcc = 5v
	`)

	assert.InDelta(t, 4.7018, getVar(t, ckt, "v1"), 1e-3)
	assert.InDelta(t, 0.3329, getVar(t, ckt, "my_diode.internal_node"), 1e-3)
	assert.InDelta(t, 2.9818, getVar(t, ckt, "my_diode.current"), 1e-3)
}

func TestDiodePlusSideFixed(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		D my_diode  vcc     v1      i0=1e-5 m=3 v0=0.5
		R           v1      gnd     0.1

		vcc = 5v
	`)

	assert.InEpsilon(t, 0.298, getVar(t, ckt, "v1"), 0.01)
	assert.InEpsilon(t, 2.982, getVar(t, ckt, "my_diode.current"), 0.01)
}

func TestDiodeBothSidesFloating(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R           vcc     v1      0.03
		D my_diode  v1      v2      i0=1e-5 m=3 v0=0.5
		R           v2      gnd     0.07

		vcc = 5v
	`)

	assert.InEpsilon(t, 4.911, getVar(t, ckt, "v1"), 0.01)
	assert.InEpsilon(t, 0.208, getVar(t, ckt, "v2"), 0.01)
	assert.InEpsilon(t, 2.982, getVar(t, ckt, "my_diode.current"), 0.01)
}

func TestCapacitorOpenAtDC(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R       vcc     v_out1      500
		R       v_out1  v_out2      1000
		R       v_out2  gnd         2000
		C       v_out1  v_out2      10uF

		vcc = 3.5v
	`)

	assert.InDelta(t, 3.0, getVar(t, ckt, "v_out1"), 1e-9)
	assert.InDelta(t, 2.0, getVar(t, ckt, "v_out2"), 1e-9)
	assert.InDelta(t, 0.0, getVar(t, ckt, "C1.current"), 1e-12)
}

func TestInductorShortAtDC(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R       vcc     v_out1      500
		R       v_out1  v_out2      1000
		R       v_out2  gnd         2000
		L       v_out1  v_out2      10uH

		vcc = 2.5v
	`)

	assert.InDelta(t, 2.0, getVar(t, ckt, "v_out1"), 1e-9)
	assert.InDelta(t, 2.0, getVar(t, ckt, "v_out2"), 1e-9)
	assert.InDelta(t, 1e-3, getVar(t, ckt, "L1.current"), 1e-9)
}

func TestGroundIsPinned(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R vcc v_out 1k
		R v_out gnd 1k
		vcc = 2.5v
	`)

	assert.Equal(t, 0.0, getVar(t, ckt, "gnd"))
	assert.Equal(t, 0.0, getVar(t, ckt, "0"))
}

// Kirchhoff's current law holds at every internal node of a solved
// divider: the resistor currents computed from the solution cancel.
func TestKCLResidual(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R ra vcc v_mid 1k
		R rb v_mid v_low 2.2k
		R rc v_mid v_low 4.7k
		R rd v_low gnd 330

		vcc = 12v
	`)

	into := getVar(t, ckt, "ra.current")
	out1 := getVar(t, ckt, "rb.current")
	out2 := getVar(t, ckt, "rc.current")
	assert.InDelta(t, 0.0, into-out1-out2, 10*1e-9)

	outLow := getVar(t, ckt, "rd.current")
	assert.InDelta(t, 0.0, out1+out2-outLow, 10*1e-9)
}

func TestIdempotentRestamp(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R           vcc     v1      0.1
		D my_diode  v1      gnd     i0=1e-5 m=3 v0=0.5

		vcc = 5v
	`)
	first := make(map[string]float64)
	for _, name := range ckt.VariableNames() {
		first[name] = getVar(t, ckt, name)
	}

	require.NoError(t, ckt.DCAnalysis())
	for name, want := range first {
		assert.Equal(t, want, getVar(t, ckt, name), name)
	}
}

func TestDeterminism(t *testing.T) {
	netlist := `
		R           vcc     v1      0.1
		D my_diode  v1      gnd     i0=1e-5 m=3 v0=0.5

		vcc = 5v
	`
	a := buildAndSolveDC(t, netlist)
	b := buildAndSolveDC(t, netlist)

	for _, name := range a.VariableNames() {
		assert.Equal(t, getVar(t, a, name), getVar(t, b, name), name)
	}
}

func TestFloatingSubcircuitIsStructural(t *testing.T) {
	ckt, err := BuildFromString(`
		R vcc v_out 1k
		R v_out gnd 1k
		R island_a island_b 1k
		vcc = 5v
	`)
	require.NoError(t, err)

	err = ckt.DCAnalysis()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)
	assert.Contains(t, err.Error(), "island")
}

func TestInvalidParameters(t *testing.T) {
	cases := []string{
		"R a gnd -5",
		"C a gnd 0",
		"L a gnd -1u",
		"D a gnd i0=1e-5 m=0 v0=0.5",
		"D a gnd i0=0 m=3 v0=0.5",
	}
	for _, netlist := range cases {
		_, err := BuildFromString(netlist)
		require.Error(t, err, netlist)
		assert.ErrorIs(t, err, ErrInvalidParameter, netlist)
	}
}

func TestUnknownVariable(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R vcc v_out 1k
		R v_out gnd 1k
		vcc = 2.5v
	`)

	_, err := ckt.GetVariable("nope")
	assert.ErrorIs(t, err, ErrUnknownVariable)

	_, err = ckt.GetVariable("R1.internal_node")
	assert.ErrorIs(t, err, ErrUnknownVariable)

	_, err = ckt.GetComponentForModification("nope")
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestDerivedProbes(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		R R1 vcc v_out 1k
		R R2 v_out gnd 1k
		vcc = 2.5v
	`)

	assert.InDelta(t, 1.25e-3, getVar(t, ckt, "R1.current"), 1e-9)
	assert.InDelta(t, 1.25, getVar(t, ckt, "R1.voltage"), 1e-9)
	assert.InDelta(t, 1.25, getVar(t, ckt, "R2.voltage"), 1e-9)
	assert.InDelta(t, 2.5, getVar(t, ckt, "VG1.voltage"), 1e-9)
}

// A source feeding through an inductor puts zeros on the natural
// diagonal, so this only solves with pivoting.
func TestPivotingCircuit(t *testing.T) {
	ckt := buildAndSolveDC(t, `
		L L1 vcc v_out 10uH
		R v_out gnd 1k
		vcc = 2v
	`)

	assert.InDelta(t, 2.0, getVar(t, ckt, "v_out"), 1e-9)
	assert.InDelta(t, 2e-3, getVar(t, ckt, "L1.current"), 1e-9)
}
