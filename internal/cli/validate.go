package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/content"
	"github.com/roach88/bourse/internal/engine"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  []string          `json:"files"`
	Counts content.Counts    `json:"counts"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one rejected content record.
type ValidationError struct {
	File    string `json:"file,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Index   int    `json:"index"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <content...>",
		Short: "Validate content files without playing",
		Long: `Load content files and install them into a scratch simulation.

Every record is checked against its schema, then cross references
(links, owners, successors, pack contents) are resolved. Rejected
records are listed with their file and position.

Exit codes:
  0 - All records valid
  1 - One or more records rejected
  2 - Command error (missing path, unreadable file)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			formatter.Error(ErrCodeNotFound, fmt.Sprintf("content not found: %s", p), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("content not found: %s", p))
		}
	}

	result, err := ValidateContent(paths...)
	if err != nil {
		formatter.Error(ErrCodeContent, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load content", err)
	}
	for _, f := range result.Files {
		formatter.VerboseLog("Loaded %s", f)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateContent loads and installs content into a scratch simulation.
// The error is reserved for unreadable or unparsable files.
func ValidateContent(paths ...string) (*ValidationResult, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	loader := content.NewLoader(content.WithLogger(quiet))
	c, rejected, err := loader.Load(paths...)
	if err != nil {
		return nil, err
	}

	sim, err := engine.New(config.Default(), engine.WithSeed(1), engine.WithLogger(quiet))
	if err != nil {
		return nil, err
	}
	inst, errs := loader.Install(c, sim)
	rejected = append(rejected, errs...)

	result := &ValidationResult{Files: c.Files, Counts: inst.Counts}
	result.Counts.Skipped = len(rejected)
	for _, err := range rejected {
		result.Errors = append(result.Errors, toValidationError(err))
	}

	if n := sim.LoadPacks(inst.Packs...); n != len(inst.Packs) {
		result.Errors = append(result.Errors, ValidationError{
			Kind:    string(content.KindPack),
			Message: fmt.Sprintf("only %d of %d packs could be registered", n, len(inst.Packs)),
		})
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

func toValidationError(err error) ValidationError {
	var rec *content.RecordError
	if errors.As(err, &rec) {
		return ValidationError{
			File:    rec.File,
			Kind:    string(rec.Kind),
			Index:   rec.Index,
			Name:    rec.Name,
			Message: rec.Err.Error(),
		}
	}
	return ValidationError{Message: err.Error()}
}

func outputValidateSuccess(formatter *OutputFormatter, result *ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	c := result.Counts
	fmt.Fprintf(formatter.Writer, "✓ %d file(s) valid\n", len(result.Files))
	fmt.Fprintf(formatter.Writer, "  environments: %d (%d links)\n", c.Environments, c.Links)
	fmt.Fprintf(formatter.Writer, "  tradeables:   %d\n", c.Tradeables)
	fmt.Fprintf(formatter.Writer, "  events:       %d\n", c.Events)
	fmt.Fprintf(formatter.Writer, "  packs:        %d (%d levels)\n", c.Packs, c.Levels)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeInvalid,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		switch {
		case err.File != "" && err.Name != "":
			fmt.Fprintf(formatter.Writer, "%s: %s[%d] %q\n", err.File, err.Kind, err.Index, err.Name)
		case err.File != "":
			fmt.Fprintf(formatter.Writer, "%s: %s[%d]\n", err.File, err.Kind, err.Index)
		}
		fmt.Fprintf(formatter.Writer, "  %s\n\n", err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
