// Package plot renders simulation results to PNG files: time-domain
// line charts and Bode plots of AC sweep output.
package plot

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Series is one labeled curve of a line chart.
type Series struct {
	Label string
	X     []float64
	Y     []float64
}

// LineChart writes a chart with one line per series to a PNG file.
func LineChart(path, xLabel string, series ...Series) error {
	p := plot.New()
	p.X.Label.Text = xLabel
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %q: x and y lengths differ", s.Label)
		}
		xys := make(plotter.XYs, len(s.X))
		for j := range s.X {
			xys[j].X = s.X[j]
			xys[j].Y = s.Y[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Label, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// Bode writes a two-panel Bode plot of the given gain: magnitude in dB
// on top, phase in degrees below, both over a logarithmic frequency
// axis.
func Bode(path string, freqs []float64, gain []complex128) error {
	if len(freqs) != len(gain) {
		return fmt.Errorf("bode plot: frequency and gain lengths differ")
	}

	magXYs := make(plotter.XYs, len(freqs))
	phaseXYs := make(plotter.XYs, len(freqs))
	for i, f := range freqs {
		mag, phase := cmplx.Polar(gain[i])
		magXYs[i].X = f
		magXYs[i].Y = 20 * math.Log10(mag)
		phaseXYs[i].X = f
		phaseXYs[i].Y = phase * 180 / math.Pi
	}

	magPlot, err := logPlot("Magnitude (dB)", magXYs)
	if err != nil {
		return err
	}
	phasePlot, err := logPlot("Phase (deg)", phaseXYs)
	if err != nil {
		return err
	}
	phasePlot.X.Label.Text = "Frequency (Hz)"

	img := vgimg.New(8*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	plots := [][]*plot.Plot{{magPlot}, {phasePlot}}
	canvases := plot.Align(plots, draw.Tiles{Rows: 2, Cols: 1}, dc)
	magPlot.Draw(canvases[0][0])
	phasePlot.Draw(canvases[1][0])

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func logPlot(yLabel string, xys plotter.XYs) (*plot.Plot, error) {
	p := plot.New()
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = plotutil.Color(0)
	p.Add(line)

	return p, nil
}
