package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/irtcat/internal/api"
	"github.com/abhisek/irtcat/internal/irt"
	"github.com/abhisek/irtcat/internal/scoring"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the latent trait for a response pattern",
	Long: "Reads an estimate request body (the JSON accepted by POST /api/v1/estimate)\n" +
		"from --file or stdin and prints the response.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, scoreEstimate)
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select the most informative next question",
	Long: "Reads a select request body (the JSON accepted by POST /api/v1/select)\n" +
		"from --file or stdin and prints the response.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, scoreSelect)
	},
}

func init() {
	for _, c := range []*cobra.Command{estimateCmd, selectCmd} {
		c.Flags().StringP("file", "f", "", "Request JSON file (default stdin)")
	}
}

type scoreFunc func(ctx context.Context, svc scoring.Service, raw []byte, out io.Writer) error

func runScore(cmd *cobra.Command, score scoreFunc) error {
	raw, err := readInput(cmd)
	if err != nil {
		return err
	}

	d, err := buildDeps(cmd, nil, true)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := scoring.WithRequestID(cmd.Context(), uuid.NewString())
	return score(ctx, d.service, raw, cmd.OutOrStdout())
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read request: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func scoreEstimate(ctx context.Context, svc scoring.Service, raw []byte, out io.Writer) error {
	req, err := api.ParseEstimateRequest(raw)
	if err != nil {
		return err
	}
	est, err := svc.Estimate(ctx, req.ResponsePattern, req.PreviousLatentTraitEstimate)
	if err != nil {
		return scoreError(api.MalformedEstimate, err)
	}
	return writeJSON(out, api.NewEstimateResponse(est))
}

func scoreSelect(ctx context.Context, svc scoring.Service, raw []byte, out io.Writer) error {
	req, err := api.ParseSelectRequest(raw)
	if err != nil {
		return err
	}
	sel, err := svc.Select(ctx, req.QuestionList, req.LatentTraitEstimate)
	if err != nil {
		return scoreError(api.MalformedSelect, err)
	}
	return writeJSON(out, api.NewSelectResponse(sel))
}

// scoreError prefixes input errors with the operation's malformed message,
// matching the HTTP 400 body.
func scoreError(malformed string, err error) error {
	if errors.Is(err, irt.ErrInvalidInput) {
		return fmt.Errorf("%s: %w", malformed, err)
	}
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
