package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResistorLine(t *testing.T) {
	elements, err := Parse("R R1 vcc v_out 1k")
	require.NoError(t, err)
	require.Len(t, elements, 1)

	e := elements[0]
	assert.Equal(t, "R", e.Kind)
	assert.Equal(t, "R1", e.Name)
	assert.Equal(t, []string{"vcc", "v_out"}, e.Nodes)
	assert.Equal(t, 1000.0, e.Value)
}

func TestParseValueSuffixes(t *testing.T) {
	cases := []struct {
		line string
		want float64
	}{
		{"R a b 1k", 1000},
		{"R a b 1kOhm", 1000},
		{"R a b 3KOhm", 3000},
		{"R a b 0.5k", 500},
		{"R a b 1e3", 1000},
		{"R a b 10ohm", 10},
		{"C a b 30uF", 30e-6},
		{"C a b 100uF", 100e-6},
		{"L a b 50uH", 50e-6},
		{"L a b 30mH", 30e-3},
		{"L a b 1m", 1e-3},
		{"R a b 1M", 1e6},
		{"C a b 2n", 2e-9},
		{"C a b 5pF", 5e-12},
		{"VG a b 2.5v", 2.5},
		{"VG a b 5V", 5},
		{"VG a b 6", 6},
	}

	for _, tc := range cases {
		elements, err := Parse(tc.line)
		require.NoError(t, err, tc.line)
		assert.InEpsilon(t, tc.want, elements[0].Value, 1e-12, tc.line)
	}
}

func TestParseAutoNaming(t *testing.T) {
	input := `
		R  vcc  v_out  1k
		R  v_out  gnd  1k
		C  v_out  gnd  1uF
		vcc = 2.5v
	`
	elements, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, elements, 4)

	assert.Equal(t, "R1", elements[0].Name)
	assert.Equal(t, "R2", elements[1].Name)
	assert.Equal(t, "C1", elements[2].Name)
	assert.Equal(t, "VG1", elements[3].Name)
}

func TestParseNamedOrdinalsShareCounter(t *testing.T) {
	input := `
		R first  a b 1k
		R        b c 1k
	`
	elements, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, "first", elements[0].Name)
	assert.Equal(t, "R2", elements[1].Name)
}

func TestParseAssignmentCreatesSource(t *testing.T) {
	elements, err := Parse("vcc = 2.5v")
	require.NoError(t, err)
	require.Len(t, elements, 1)

	e := elements[0]
	assert.Equal(t, "VG", e.Kind)
	assert.Equal(t, "VG1", e.Name)
	assert.Equal(t, []string{"vcc", "gnd"}, e.Nodes)
	assert.Equal(t, 2.5, e.Value)
}

func TestParseGroundAssignmentIsNoOp(t *testing.T) {
	elements, err := Parse("gnd = 0\nR a gnd 1k")
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "R", elements[0].Kind)

	_, err = Parse("gnd = 5v")
	require.Error(t, err)
}

func TestParseInitialConditions(t *testing.T) {
	elements, err := Parse("L L1 v_sw v_out 50uH v0=0 i0=5")
	require.NoError(t, err)

	e := elements[0]
	assert.Equal(t, 50e-6, e.Value)
	assert.Equal(t, 0.0, e.Params["v0"])
	assert.Equal(t, 5.0, e.Params["i0"])
}

func TestParseDiodeParamsAnyOrder(t *testing.T) {
	elements, err := Parse("D my_diode v1 gnd m=3 v0=0.5 i0=1e-5")
	require.NoError(t, err)

	e := elements[0]
	assert.Equal(t, "D", e.Kind)
	assert.Equal(t, "my_diode", e.Name)
	assert.Equal(t, 1e-5, e.Params["i0"])
	assert.Equal(t, 3.0, e.Params["m"])
	assert.Equal(t, 0.5, e.Params["v0"])
}

func TestParseDiodeMissingParam(t *testing.T) {
	_, err := Parse("D v1 gnd i0=1e-5 m=3")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, perr.Reason, "v0")
}

func TestParseCommentsAndBlanks(t *testing.T) {
	input := `
		# hash comment
		// slash comment
		; semicolon comment
		* star comment

		R a gnd 1k
	`
	elements, err := Parse(input)
	require.NoError(t, err)
	assert.Len(t, elements, 1)
}

func TestParseUnknownKind(t *testing.T) {
	_, err := Parse("Q q1 a b 10")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "unknown component kind")
}

func TestParseDuplicateName(t *testing.T) {
	_, err := Parse("R dup a b 1k\nR dup b c 1k")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Reason, "dup")
}

func TestParseBadName(t *testing.T) {
	_, err := Parse("R 1bad a b 1k")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "digit")
}

func TestParseMalformedValue(t *testing.T) {
	_, err := Parse("R a b 1q2")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 7, perr.Column)
}

func TestParseErrorReportsLine(t *testing.T) {
	_, err := Parse("R a b 1k\n\nR a b oops")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
}
