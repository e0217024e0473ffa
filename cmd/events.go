package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/irtcat/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the scoring event log",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent scoring events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		after, _ := cmd.Flags().GetInt64("after")
		if kind != "" && kind != store.KindEstimate && kind != store.KindSelect {
			return fmt.Errorf("unknown kind %q (want %s or %s)", kind, store.KindEstimate, store.KindSelect)
		}

		s, err := openEventLog(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryScoring(cmd.Context(), store.QueryOpts{
			Limit: limit,
			After: after,
			Kind:  kind,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No scoring events found.")
			return nil
		}

		// Header.
		fmt.Printf("%-6s  %-19s  %-8s  %-5s  %-9s  %-8s  %-4s  %-8s  %s\n",
			"Seq", "Timestamp", "Kind", "Items", "θ", "SE", "Iter", "Us", "OK")
		fmt.Println(strings.Repeat("─", 86))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			theta, se, iter := "-", "-", "-"
			switch e.Kind {
			case store.KindEstimate:
				theta = formatOpt(e.ThetaOut, "%.4f")
				se = formatOpt(e.StandardError, "%.4f")
				iter = strconv.Itoa(e.Iterations)
			case store.KindSelect:
				theta = formatOpt(e.ThetaIn, "%.4f")
				if e.QuestionID != "" {
					se = e.QuestionID
					if len(se) > 8 {
						se = se[:8]
					}
				}
			}
			fmt.Printf("%-6d  %-19s  %-8s  %-5d  %-9s  %-8s  %-4s  %-8d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Kind,
				e.ItemCount,
				theta,
				se,
				iter,
				e.LatencyUs,
				ok,
			)
		}
		return nil
	},
}

var eventsViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "Show one scoring event in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || seq < 1 {
			return fmt.Errorf("invalid sequence %q", args[0])
		}

		s, err := openEventLog(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryScoring(cmd.Context(), store.QueryOpts{
			After:  seq - 1,
			Before: seq + 1,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			return fmt.Errorf("event %d not found", seq)
		}
		e := events[0]

		fmt.Printf("Sequence:    %d\n", e.Sequence)
		fmt.Printf("Timestamp:   %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05.000"))
		fmt.Printf("Request ID:  %s\n", e.RequestID)
		fmt.Printf("Kind:        %s\n", e.Kind)
		fmt.Printf("Items:       %d\n", e.ItemCount)
		fmt.Printf("θ in:        %s\n", formatOpt(e.ThetaIn, "%g"))
		if e.Kind == store.KindEstimate {
			fmt.Printf("θ out:       %s\n", formatOpt(e.ThetaOut, "%g"))
			fmt.Printf("Raw θ:       %s\n", formatOpt(e.RawTheta, "%g"))
			fmt.Printf("Std. error:  %s\n", formatOpt(e.StandardError, "%g"))
			fmt.Printf("Iterations:  %d\n", e.Iterations)
			fmt.Printf("Converged:   %t\n", e.Converged)
			fmt.Printf("End:         %t\n", e.IsEnd)
		} else {
			fmt.Printf("Question:    %s\n", e.QuestionID)
			if e.ItemIndex != nil {
				fmt.Printf("Index:       %d\n", *e.ItemIndex)
			}
			fmt.Printf("Max info:    %s\n", formatOpt(e.MaxInformation, "%g"))
		}
		fmt.Printf("Latency:     %dµs\n", e.LatencyUs)
		fmt.Printf("Success:     %t\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:       %s\n", e.ErrorMessage)
		}
		return nil
	},
}

func init() {
	eventsListCmd.Flags().Int("limit", 20, "Maximum number of events to show")
	eventsListCmd.Flags().String("kind", "", "Filter by kind (estimate, select)")
	eventsListCmd.Flags().Int64("after", 0, "Only events with a sequence greater than this")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsViewCmd)
}

// openEventLog opens the store regardless of store.enabled, since reading
// the log is the whole point of the command.
func openEventLog(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.Store.Enabled = true
	return openStore(cfg)
}

func formatOpt[T int | float64](v *T, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
