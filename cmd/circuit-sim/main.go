// Command circuit-sim runs one analysis over a netlist file and prints
// the results, optionally writing a chart next to them.
package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/circuit-sim/pkg/circuit"
	"github.com/edp1096/circuit-sim/pkg/plot"
	"github.com/edp1096/circuit-sim/pkg/util"
)

var netlistPath string

func loadCircuit() (*circuit.Circuit, error) {
	data, err := os.ReadFile(netlistPath)
	if err != nil {
		return nil, err
	}
	return circuit.BuildFromString(string(data))
}

func main() {
	root := &cobra.Command{
		Use:           "circuit-sim",
		Short:         "Lumped analog circuit simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&netlistPath, "file", "f", "", "netlist file")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(dcCommand(), tranCommand(), acCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func dcCommand() *cobra.Command {
	var showEquations bool

	cmd := &cobra.Command{
		Use:   "dc",
		Short: "Solve the DC operating point",
		RunE: func(cmd *cobra.Command, args []string) error {
			ckt, err := loadCircuit()
			if err != nil {
				return err
			}
			if err := ckt.DCAnalysis(); err != nil {
				return err
			}
			if showEquations {
				ckt.PrintEquations()
				fmt.Println()
			}
			ckt.PrintAllVariables()
			return nil
		},
	}
	cmd.Flags().BoolVar(&showEquations, "equations", false, "print the stamped system")

	return cmd
}

func tranCommand() *cobra.Command {
	var (
		begin, end, step float64
		probesFlag       string
		chartPath        string
	)

	cmd := &cobra.Command{
		Use:   "tran",
		Short: "Run a transient simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ckt, err := loadCircuit()
			if err != nil {
				return err
			}

			probes := splitProbes(probesFlag)

			var timeStamps []float64
			var results [][]float64
			if step > 0 {
				if _, _, err := ckt.TransientSimulation(begin, begin, probes); err != nil {
					return err
				}
				timeStamps, results, err = ckt.ContinueTransientSimulation(end-begin, step)
			} else {
				timeStamps, results, err = ckt.TransientSimulation(begin, end, probes)
			}
			if err != nil {
				return err
			}

			fmt.Printf("%-16s", "time")
			for _, p := range probes {
				fmt.Printf("%-16s", p)
			}
			fmt.Println()
			for i, t := range timeStamps {
				fmt.Printf("%-16.6g", t)
				for j := range probes {
					fmt.Printf("%-16.6g", results[j][i])
				}
				fmt.Println()
			}

			if chartPath != "" {
				series := make([]plot.Series, len(probes))
				for j, p := range probes {
					series[j] = plot.Series{Label: p, X: timeStamps, Y: results[j]}
				}
				if err := plot.LineChart(chartPath, "time (s)", series...); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "wrote %s\n", chartPath)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&begin, "begin", 0, "start time (s)")
	cmd.Flags().Float64Var(&end, "end", 1e-3, "end time (s)")
	cmd.Flags().Float64Var(&step, "step", 0, "time step (s), default (end-begin)/1000")
	cmd.Flags().StringVar(&probesFlag, "probes", "", "comma separated probe names")
	cmd.Flags().StringVar(&chartPath, "chart", "", "write a PNG line chart")

	return cmd
}

func acCommand() *cobra.Command {
	var (
		fStart, fStop float64
		pointsPerDec  int
		probesFlag    string
		bodePath      string
	)

	cmd := &cobra.Command{
		Use:   "ac",
		Short: "Run a small-signal AC sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			ckt, err := loadCircuit()
			if err != nil {
				return err
			}

			probes := splitProbes(probesFlag)
			freqs, results, err := ckt.ACSweepRange(probes, fStart, fStop, pointsPerDec)
			if err != nil {
				return err
			}

			for i, f := range freqs {
				fmt.Printf("%s ", util.FormatFrequency(f))
				parts := make([]string, len(probes))
				for j, p := range probes {
					mag, phase := cmplx.Polar(results[j][i])
					parts[j] = util.FormatMagnitudePhase(p, mag, phase*180/math.Pi)
				}
				fmt.Println(strings.Join(parts, "  "))
			}

			if bodePath != "" && len(results) > 0 {
				if err := plot.Bode(bodePath, freqs, results[0]); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "wrote %s\n", bodePath)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&fStart, "start", circuit.DefaultACStartFreq, "start frequency (Hz)")
	cmd.Flags().Float64Var(&fStop, "stop", circuit.DefaultACStopFreq, "stop frequency (Hz)")
	cmd.Flags().IntVar(&pointsPerDec, "points-per-decade", circuit.DefaultACPointsPerDecade, "grid density")
	cmd.Flags().StringVar(&probesFlag, "probes", "", "comma separated probe names")
	cmd.Flags().StringVar(&bodePath, "bode", "", "write a PNG Bode plot of the first probe")

	return cmd
}

func splitProbes(flag string) []string {
	if strings.TrimSpace(flag) == "" {
		return nil
	}
	parts := strings.Split(flag, ",")
	probes := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			probes = append(probes, trimmed)
		}
	}
	return probes
}
