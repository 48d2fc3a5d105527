// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
)

// resultFlags are shared by the commands that print a pipeline result.
type resultFlags struct {
	refDate string
	output  string
}

func (f *resultFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.refDate, "ref-date", "", "reference date for relative phrases, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "yaml", "output format: yaml or json")
}

func (f *resultFlags) reference(loc *time.Location) (time.Time, error) {
	if f.refDate == "" {
		return time.Time{}, nil
	}
	ref, err := time.ParseInLocation(time.DateOnly, f.refDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--ref-date must be YYYY-MM-DD: %w", err)
	}
	return ref, nil
}

func newParseCmd(a *app) *cobra.Command {
	var f resultFlags
	cmd := &cobra.Command{
		Use:   "parse <text...>",
		Short: "Extract an appointment from text",
		Example: `  appointment-mcp parse "Book dentist next Friday at 3pm"
  echo "cardiology tomorrow at 10:30 am" | appointment-mcp parse -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}
			ref, err := f.reference(a.cfg.Location)
			if err != nil {
				return err
			}
			res, err := a.intake.SubmitText(cmd.Context(), text, ref)
			return printResult(cmd.OutOrStdout(), f.output, res, err)
		},
	}
	f.register(cmd)
	return cmd
}

func newImageCmd(a *app) *cobra.Command {
	var f resultFlags
	cmd := &cobra.Command{
		Use:   "image <file>",
		Short: "Extract an appointment from a PNG or JPEG image using the configured OCR service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			ref, err := f.reference(a.cfg.Location)
			if err != nil {
				return err
			}
			res, err := a.intake.SubmitImage(cmd.Context(), img, ref)
			return printResult(cmd.OutOrStdout(), f.output, res, err)
		},
	}
	f.register(cmd)
	return cmd
}

// printResult writes res when the pipeline produced one. Clarification and
// extraction outcomes are printed, not returned as errors.
func printResult(w io.Writer, format string, res appointment.Result, runErr error) error {
	switch appointment.KindOf(runErr) {
	case "", appointment.KindAmbiguousEntity, appointment.KindExtractionFailure:
	default:
		return runErr
	}
	if runErr != nil && res.Status == "" {
		return runErr
	}

	var (
		out []byte
		err error
	)
	switch strings.ToLower(format) {
	case "json":
		out, err = json.MarshalIndent(res, "", "  ")
		out = append(out, '\n')
	case "yaml", "":
		out, err = yaml.Marshal(res)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = w.Write(out)
	return err
}
