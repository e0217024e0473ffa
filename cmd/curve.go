package cmd

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/ui/theme"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Tabulate item or bank characteristic curves",
	Long: "Prints P(θ) and I(θ) for a single item given by --a and --b, or the test\n" +
		"information and its standard error for a whole bank given by --bank.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetFloat64("from")
		to, _ := cmd.Flags().GetFloat64("to")
		step, _ := cmd.Flags().GetFloat64("step")
		thetas, err := thetaGrid(from, to, step)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("bank") {
			b, err := loadBank(cmd)
			if err != nil {
				return err
			}
			items := make([]irt.Item, 0, b.Len())
			for _, it := range b.Items {
				items = append(items, irt.Item{A: it.A, B: it.B})
			}

			fmt.Println(theme.Title.Render(fmt.Sprintf("Test information: %s (%d items)", b.Name, b.Len())))
			fmt.Printf("%8s  %12s  %10s\n", "θ", "I(θ)", "SE(θ)")
			fmt.Println(strings.Repeat("─", 34))
			for _, th := range thetas {
				info := irt.TestInformation(items, th)
				fmt.Printf("%8.2f  %12.6f  %10.4f\n", th, info, 1/math.Sqrt(info))
			}
			return nil
		}

		a, _ := cmd.Flags().GetFloat64("a")
		b, _ := cmd.Flags().GetFloat64("b")
		item := []irt.Item{{A: a, B: b}}
		probs := irt.ProbabilityMatrix(item, thetas)[0]
		infos := irt.InformationMatrix(item, thetas)[0]

		fmt.Println(theme.Title.Render(fmt.Sprintf("Item curve: a=%g b=%g", a, b)))
		fmt.Printf("%8s  %10s  %10s\n", "θ", "P(θ)", "I(θ)")
		fmt.Println(strings.Repeat("─", 32))
		for i, th := range thetas {
			fmt.Printf("%8.2f  %10.6f  %10.6f\n", th, probs[i], infos[i])
		}
		return nil
	},
}

func init() {
	curveCmd.Flags().Float64("a", 1, "Item discrimination")
	curveCmd.Flags().Float64("b", 0, "Item difficulty")
	curveCmd.Flags().Float64("from", -4, "First θ")
	curveCmd.Flags().Float64("to", 4, "Last θ")
	curveCmd.Flags().Float64("step", 0.5, "θ increment")
	curveCmd.Flags().String("bank", "", "Item bank YAML file, or \"sample\" for the built-in bank")
}

// thetaGrid returns from, from+step, ... up to and including to.
func thetaGrid(from, to, step float64) ([]float64, error) {
	switch {
	case !(step > 0):
		return nil, errors.New("--step must be positive")
	case !(from <= to):
		return nil, fmt.Errorf("empty θ range [%v, %v]", from, to)
	case (to-from)/step > 10000:
		return nil, errors.New("θ grid exceeds 10000 points")
	}
	n := int(math.Floor((to-from)/step+1e-9)) + 1
	thetas := make([]float64, n)
	for i := range thetas {
		thetas[i] = from + float64(i)*step
	}
	return thetas, nil
}
