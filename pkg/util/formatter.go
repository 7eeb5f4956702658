package util

import (
	"fmt"
	"math"
)

// engPrefixes are tried in order; the first scale the value reaches
// wins. Zero falls through to the unprefixed entry.
var engPrefixes = []struct {
	scale  float64
	prefix string
}{
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
}

// FormatValueFactor renders a value with an engineering prefix, e.g.
// 0.0032 with unit "V" becomes "3.200 mV". Values below the pico range
// fall back to scientific notation.
func FormatValueFactor(value float64, unit string) string {
	abs := math.Abs(value)
	if abs > 0 && abs < 1e-12 {
		return fmt.Sprintf("%.3e %s", value, unit)
	}

	chosen := engPrefixes[0]
	for _, p := range engPrefixes {
		if abs >= p.scale {
			chosen = p
			break
		}
	}
	return fmt.Sprintf("%.3f %s%s", value/chosen.scale, chosen.prefix, unit)
}

var freqBands = []struct {
	scale float64
	unit  string
}{
	{1e6, "MHz"},
	{1e3, "kHz"},
	{1, "Hz "},
}

// FormatFrequency renders a frequency in fixed-width columns so swept
// tables line up.
func FormatFrequency(freq float64) string {
	band := freqBands[len(freqBands)-1]
	for _, b := range freqBands {
		if freq >= b.scale {
			band = b
			break
		}
	}
	return fmt.Sprintf("%7.3f %s", freq/band.scale, band.unit)
}

// FormatMagnitudePhase renders one AC data point, e.g. "v_out=0.707<-45.0deg".
func FormatMagnitudePhase(name string, magnitude, phaseDeg float64) string {
	var magStr string
	if magnitude >= 1000 || (magnitude < 0.001 && magnitude != 0) {
		magStr = fmt.Sprintf("%.3e", magnitude)
	} else {
		magStr = fmt.Sprintf("%.4g", magnitude)
	}
	return fmt.Sprintf("%s=%s<%.1fdeg", name, magStr, phaseDeg)
}
