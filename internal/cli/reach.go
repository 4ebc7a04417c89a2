package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ootlogic/internal/world"
)

// ReachOptions holds flags for the reach command.
type ReachOptions struct {
	*RootOptions
	Region string
	Age    string
	TOD    string
	State  string
}

// ReachResult answers one reachability query.
type ReachResult struct {
	Region    string `json:"region"`
	Age       string `json:"age"`
	TOD       string `json:"tod"`
	Reachable bool   `json:"reachable"`

	// Regions lists every region reached by the queried age.
	Regions []string `json:"regions"`
}

// NewReachCommand creates the reach command.
func NewReachCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReachOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reach <world-dir>",
		Short: "Check whether a region is reachable",
		Long: `Build a world, replay an optional tracker state onto it and check
whether a region is reachable for an age at a time of day.

Only the items already collected count: unlike spheres, reach does
not pick up the items of the locations it can get to.

Age is child, adult, both or either (default). Time of day is NONE
(default), DAY, DAMPE or ALL.

Examples:
  ootlogic reach ./worlds/mini --region Goal
  ootlogic reach ./worlds/mini --region Cellar --age child --tod DAMPE --state tracker.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReach(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Region, "region", "", "region name (required)")
	cmd.Flags().StringVar(&opts.Age, "age", "either", "child, adult, both or either")
	cmd.Flags().StringVar(&opts.TOD, "tod", "NONE", "NONE, DAY, DAMPE or ALL")
	cmd.Flags().StringVar(&opts.State, "state", "", "tracker state file")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

func runReach(opts *ReachOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	age, err := world.ParseAge(opts.Age)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid --age", err)
	}
	tod, err := world.ParseTimeOfDay(opts.TOD)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid --tod", err)
	}
	if err := checkDir(dir); err != nil {
		_ = formatter.Error("NOT_FOUND", err.Error(), nil)
		return err
	}

	sess, err := OpenSession(cmd.Context(), dir, opts.State, opts.Logger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.Fail(loadExitCode(err), "build world", err)
	}
	w := sess.Worlds[0]
	region, err := w.Region(opts.Region)
	if err != nil {
		return formatter.Fail(ExitCommandError, "find region", err)
	}

	sess.Search.Expand()
	result := ReachResult{
		Region:    region.Name,
		Age:       age.String(),
		TOD:       tod.String(),
		Reachable: sess.Search.CanReach(world.RegionRef{World: w.ID, ID: region.ID}, age, tod),
		Regions:   reachedRegions(sess, age),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	mark := "✗"
	if result.Reachable {
		mark = "✓"
	}
	fmt.Fprintf(formatter.Writer, "%s %s (%s, %s)\n", mark, result.Region, result.Age, result.TOD)
	formatter.VerboseLog("Reached regions: %v", result.Regions)
	return nil
}

// reachedRegions names the regions reached by age. Either age lists the
// union, both the intersection.
func reachedRegions(sess *Session, age world.Age) []string {
	count := make(map[world.RegionRef]int)
	var order []world.RegionRef
	for _, a := range world.Ages {
		if (age == world.AgeChild || age == world.AgeAdult) && a != age {
			continue
		}
		for _, ref := range sess.Search.VisitedRegions(a) {
			if count[ref] == 0 {
				order = append(order, ref)
			}
			count[ref]++
		}
	}

	names := []string{}
	for _, ref := range order {
		if age == world.AgeBoth && count[ref] < 2 {
			continue
		}
		names = append(names, sess.Worlds[ref.World].RegionByID(ref.ID).Name)
	}
	return names
}
