package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/irtcat/internal/session"
	"github.com/abhisek/irtcat/internal/take"
	"github.com/abhisek/irtcat/internal/ui/theme"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take an adaptive test in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBank(cmd)
		if err != nil {
			return err
		}

		d, err := buildDeps(cmd, nil, true)
		if err != nil {
			return err
		}
		defer d.Close()

		maxItems, _ := cmd.Flags().GetInt("max-items")
		sess := session.New(b, d.service, session.Config{MaxItems: maxItems})

		m, err := take.New(cmd.Context(), b.Name, sess, d.estimator.Policy())
		if err != nil {
			return fmt.Errorf("start test: %w", err)
		}
		sum, err := take.Run(m)
		if err != nil {
			return err
		}
		printSummary(sum)
		return nil
	},
}

func init() {
	takeCmd.Flags().String("bank", "", "Item bank YAML file (default: built-in sample bank)")
	takeCmd.Flags().Int("max-items", 0, "Maximum items (0 = until precise or the bank runs out)")
}

func printSummary(s *session.Summary) {
	fmt.Println(theme.Title.Render("Test complete"))
	fmt.Printf("  Session:     %s\n", s.SessionID)
	fmt.Printf("  Questions:   %d (%d correct, %.0f%%)\n", s.TotalQuestions, s.TotalCorrect, s.Accuracy*100)
	fmt.Printf("  Estimate:    %.3f\n", s.Theta)
	fmt.Printf("  Std. error:  %.3f\n", s.StandardError)
	fmt.Printf("  Ended by:    %s\n", s.Reason)
	if len(s.Trajectory) > 0 {
		steps := make([]string, len(s.Trajectory))
		for i, th := range s.Trajectory {
			steps[i] = fmt.Sprintf("%.2f", th)
		}
		fmt.Printf("  Trajectory:  %s\n", strings.Join(steps, " → "))
	}
}
