package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/ootlogic/internal/data"
	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/world"
)

// Session is a built world directory with an optional tracker state
// replayed onto it.
type Session struct {
	Dir      *data.WorldDir
	Settings []ir.Object
	Worlds   []*world.World
	Search   *search.Search
	State    *data.TrackerState
}

// checkDir verifies dir exists and is a directory.
func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("world directory not found: %s", dir))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "error accessing world directory", err)
	}
	if !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("not a directory: %s", dir))
	}
	return nil
}

// OpenSession loads dir, builds one world from its default settings and
// replays the tracker state at statePath, if any.
func OpenSession(ctx context.Context, dir, statePath string, logger *slog.Logger) (*Session, error) {
	wd, err := data.LoadWorldDir(dir)
	if err != nil {
		return nil, err
	}
	sess := &Session{Dir: wd, Settings: []ir.Object{wd.MergeSettings(nil)}}

	if sess.Worlds, err = wd.BuildAll(ctx, sess.Settings, data.WithLogger(logger)); err != nil {
		return nil, err
	}
	if err := sess.reset(logger); err != nil {
		return nil, err
	}
	if statePath == "" {
		return sess, nil
	}
	if sess.State, err = data.LoadTrackerState(statePath); err != nil {
		return nil, err
	}
	if err := sess.State.Apply(sess.Worlds, sess.Search); err != nil {
		return nil, fmt.Errorf("apply %s: %w", statePath, err)
	}
	return sess, nil
}

func (s *Session) reset(logger *slog.Logger) error {
	states := make([]*world.State, len(s.Worlds))
	for i, w := range s.Worlds {
		states[i] = world.NewState(w)
	}
	var err error
	s.Search, err = search.New(states, search.WithLogger(logger))
	return err
}

// loadExitCode maps a session error to an exit code: unreadable files are
// command errors, everything else is a logic failure.
func loadExitCode(err error) int {
	if data.HasCode(err, data.ErrCodeRead) {
		return ExitCommandError
	}
	return ExitFailure
}
