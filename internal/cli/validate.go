package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ootlogic/internal/data"
	"github.com/roach88/ootlogic/internal/world"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationResult holds the validation outcome.
type ValidationResult struct {
	Valid     bool                    `json:"valid"`
	Errors    []world.ValidationError `json:"errors,omitempty"`
	Regions   int                     `json:"regions,omitempty"`
	Locations int                     `json:"locations,omitempty"`
	Entrances int                     `json:"entrances,omitempty"`
	Dungeons  int                     `json:"dungeons,omitempty"`
	Events    int                     `json:"events,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <world-dir>",
		Short: "Validate a world directory",
		Long: `Validate a world directory without computing anything.

Checks the data files against their schemas, the region graph for
undefined exit targets, the tables for unknown names, and compiles
every access rule with the world's helpers.

Exit codes:
  0 - World is valid
  1 - Validation or compilation failed
  2 - Command error (directory not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := checkDir(dir); err != nil {
		_ = formatter.Error("NOT_FOUND", err.Error(), nil)
		return err
	}

	formatter.VerboseLog("Loading world directory %s", dir)
	wd, err := data.LoadWorldDir(dir)
	if err != nil {
		return outputValidationErrors(formatter, validationErrors(err))
	}

	formatter.VerboseLog("Building world with %d region(s)", len(wd.Desc.Regions))
	worlds, err := wd.BuildAll(cmd.Context(), nil, data.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	if err != nil {
		return outputValidationErrors(formatter, validationErrors(err))
	}
	w := worlds[0]

	result := ValidationResult{
		Valid:     true,
		Regions:   w.RegionCount(),
		Locations: w.LocationCount(),
		Entrances: w.EntranceCount(),
		Dungeons:  len(w.Dungeons()),
		Events:    len(w.EventItems()),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ World valid")
	fmt.Fprintf(formatter.Writer, "  %d regions, %d locations, %d entrances, %d dungeons, %d events\n",
		result.Regions, result.Locations, result.Entrances, result.Dungeons, result.Events)
	return nil
}

// validationErrors flattens a load or build error into validation errors.
func validationErrors(err error) []world.ValidationError {
	var le *data.LoadError
	if errors.As(err, &le) && len(le.Issues) > 0 {
		return le.Issues
	}
	field := "world"
	if le != nil && le.Path != "" {
		field = le.Path
	}
	return []world.ValidationError{{Field: field, Message: err.Error(), Code: ErrorCode(err)}}
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []world.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
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
		fmt.Fprintf(formatter.Writer, "%s\n", err.Field)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
