package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ootlogic/internal/rules"
	"github.com/roach88/ootlogic/internal/world"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	World string // world directory
	Spot  string // location or entrance the rule belongs to
}

// CompileResult is the compiled form of one rule.
type CompileResult struct {
	Source  string `json:"source"`
	Printed string `json:"printed"`
	Spot    string `json:"spot,omitempty"`
	Always  bool   `json:"always"`
	Never   bool   `json:"never"`

	// Child and Adult evaluate the rule against an empty inventory.
	Child bool `json:"child"`
	Adult bool `json:"adult"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <rule>",
		Short: "Compile one access rule against a world",
		Long: `Compile a rule string with the world's helpers, items and settings
and print its rewritten form.

The rule is evaluated once per age against an empty inventory, which
shows whether it folds to a constant or depends on items.

Examples:
  ootlogic compile "Sword or Slingshot" --world ./worlds/mini
  ootlogic compile "here(at_night)" --world ./worlds/mini --spot "Cellar Night Pot"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.World, "world", "", "world directory (required)")
	cmd.Flags().StringVar(&opts.Spot, "spot", "", "location or entrance that owns the rule")
	_ = cmd.MarkFlagRequired("world")

	return cmd
}

func runCompile(opts *CompileOptions, source string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := checkDir(opts.World); err != nil {
		_ = formatter.Error("NOT_FOUND", err.Error(), nil)
		return err
	}

	sess, err := OpenSession(cmd.Context(), opts.World, "", opts.Logger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.Fail(loadExitCode(err), "build world", err)
	}
	w := sess.Worlds[0]

	spot, err := resolveSpot(w, opts.Spot)
	if err != nil {
		return formatter.Fail(ExitCommandError, "resolve spot", err)
	}
	formatter.VerboseLog("Compiling %q at %s", source, w.SpotName(spot))

	rule, err := rules.CompileRule(w, source, spot)
	if err != nil {
		return formatter.Fail(ExitFailure, "compile rule", err)
	}

	st := world.NewState(w)
	result := CompileResult{
		Source:  source,
		Printed: rule.Printed,
		Spot:    opts.Spot,
		Always:  rule.Always,
		Never:   rule.Never,
		Child:   rule.Eval(st, world.Context{Age: world.AgeChild, Spot: spot}),
		Adult:   rule.Eval(st, world.Context{Age: world.AgeAdult, Spot: spot}),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	out := formatter.Writer
	fmt.Fprintf(out, "rule:    %s\n", result.Source)
	fmt.Fprintf(out, "printed: %s\n", result.Printed)
	if result.Spot != "" {
		fmt.Fprintf(out, "spot:    %s\n", result.Spot)
	}
	fmt.Fprintf(out, "child:   %t\n", result.Child)
	fmt.Fprintf(out, "adult:   %t\n", result.Adult)
	return nil
}

// resolveSpot finds a location or, failing that, an entrance by name.
// An empty name is no spot.
func resolveSpot(w *world.World, name string) (world.Spot, error) {
	if name == "" {
		return world.NoSpot, nil
	}
	if l, err := w.Location(name); err == nil {
		return world.LocationSpot(l.ID), nil
	}
	e, err := w.Entrance(name)
	if err != nil {
		return world.NoSpot, fmt.Errorf("no location or entrance named %q", name)
	}
	return world.EntranceSpot(e.ID), nil
}
