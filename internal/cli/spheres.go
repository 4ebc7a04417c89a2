package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/store"
)

// SpheresOptions holds flags for the spheres command.
type SpheresOptions struct {
	*RootOptions
	State    string // tracker state file
	Database string // run store; empty skips saving
	Label    string // run label
}

// SpheresResult holds the computed sphere log.
type SpheresResult struct {
	Hash    string               `json:"snapshot_hash"`
	Count   int                  `json:"count"`
	Entries []search.SphereEntry `json:"entries"`
	RunID   string               `json:"run_id,omitempty"`

	// Previous is the latest earlier run with the same hash, if any.
	Previous string `json:"previous_run,omitempty"`
}

// NewSpheresCommand creates the spheres command.
func NewSpheresCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SpheresOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "spheres <world-dir>",
		Short: "Compute the sphere log of a world",
		Long: `Build a world, replay an optional tracker state onto it and compute
its spheres: the order in which locations and entrances become
reachable when every reachable item is collected.

With --db the sphere log is saved as a run. A run whose hash matches
an earlier run reports that run's id.

Examples:
  ootlogic spheres ./worlds/mini
  ootlogic spheres ./worlds/mini --state tracker.yaml
  ootlogic spheres ./worlds/mini --db runs.db --label "after hookshot"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpheres(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "tracker state file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "save the run to this SQLite database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for the saved run")

	return cmd
}

func runSpheres(opts *SpheresOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := checkDir(dir); err != nil {
		_ = formatter.Error("NOT_FOUND", err.Error(), nil)
		return err
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	sess, log, err := computeSpheres(cmd.Context(), dir, opts.State, logger)
	if err != nil {
		return formatter.Fail(loadExitCode(err), "compute spheres", err)
	}

	result := SpheresResult{Count: log.Count(), Entries: log.Entries}
	if result.Hash, err = ir.SnapshotHash(log.Snapshot()); err != nil {
		return formatter.Fail(ExitFailure, "hash sphere log", err)
	}
	if result.Entries == nil {
		result.Entries = []search.SphereEntry{}
	}

	if opts.Database != "" {
		if err := saveRun(cmd.Context(), opts, sess, log, &result); err != nil {
			return formatter.Fail(ExitCommandError, "save run", err)
		}
		formatter.VerboseLog("Saved run %s to %s", result.RunID, opts.Database)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	writeSpheresText(formatter.Writer, result, log)
	return nil
}

// computeSpheres opens a session and collects its spheres.
func computeSpheres(ctx context.Context, dir, statePath string, logger *slog.Logger) (*Session, *search.SphereLog, error) {
	sess, err := OpenSession(ctx, dir, statePath, logger)
	if err != nil {
		return nil, nil, err
	}
	return sess, sess.Search.CollectSpheres(nil), nil
}

// saveRun stores the log and fills in the run id and any earlier run with
// the same hash.
func saveRun(ctx context.Context, opts *SpheresOptions, sess *Session, log *search.SphereLog, result *SpheresResult) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	prev, err := st.LatestRunByHash(ctx, result.Hash)
	switch {
	case err == nil:
		result.Previous = prev.ID
	case !errors.Is(err, store.ErrRunNotFound):
		return err
	}

	run, err := st.SaveRun(ctx, store.Run{
		Label:      opts.Label,
		Settings:   sess.Settings,
		WorldCount: len(sess.Worlds),
	}, log)
	if err != nil {
		return err
	}
	result.RunID = run.ID
	return nil
}

func writeSpheresText(w io.Writer, result SpheresResult, log *search.SphereLog) {
	fmt.Fprint(w, log.String())
	fmt.Fprintf(w, "%d spheres, %d entries\n", result.Count, len(result.Entries))
	fmt.Fprintf(w, "hash: %s\n", result.Hash)
	if result.RunID != "" {
		fmt.Fprintf(w, "run:  %s\n", result.RunID)
	}
	if result.Previous != "" {
		fmt.Fprintf(w, "same as run %s\n", result.Previous)
	}
}
