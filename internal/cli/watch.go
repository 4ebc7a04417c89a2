package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/ootlogic/internal/ir"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	State    string
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <world-dir>",
		Short: "Recompute spheres when files change",
		Long: `Compute the sphere log, then recompute it every time the tracker
state file or a file of the world directory changes.

Bursts of changes within the debounce window trigger one
recomputation. A change that breaks the world or the state file is
reported and watching continues. Press Ctrl-C to stop.

Examples:
  ootlogic watch ./worlds/mini --state tracker.yaml
  ootlogic watch ./worlds/mini --state tracker.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "tracker state file (required)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 200*time.Millisecond, "quiet period before recomputing")
	_ = cmd.MarkFlagRequired("state")

	return cmd
}

func runWatch(opts *WatchOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := checkDir(dir); err != nil {
		_ = formatter.Error("NOT_FOUND", err.Error(), nil)
		return err
	}
	statePath, err := filepath.Abs(opts.State)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve state path", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "create watcher", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return WrapExitError(ExitCommandError, "watch world directory", err)
	}
	// Editors replace files on save, so watch the state file's directory.
	if err := watcher.Add(filepath.Dir(statePath)); err != nil {
		return WrapExitError(ExitCommandError, "watch state file", err)
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	recompute := func(reason string) {
		logger.Debug("recomputing spheres", "reason", reason)
		if opts.Format != "json" {
			fmt.Fprintf(formatter.Writer, "--- %s (%s)\n", time.Now().Format(time.TimeOnly), reason)
		}
		_, log, err := computeSpheres(ctx, dir, statePath, logger)
		if err != nil {
			_ = formatter.Error(ErrorCode(err), err.Error(), nil)
			return
		}
		result := SpheresResult{Count: log.Count(), Entries: log.Entries}
		if result.Hash, err = ir.SnapshotHash(log.Snapshot()); err != nil {
			_ = formatter.Error(ErrorCode(err), err.Error(), nil)
			return
		}
		if opts.Format == "json" {
			_ = formatter.Success(result)
			return
		}
		writeSpheresText(formatter.Writer, result, log)
	}

	recompute("start")
	return watchLoop(ctx, watcher, dir, statePath, opts.Debounce, logger, recompute)
}

// watchLoop calls fn once per burst of relevant events until ctx is done.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, dir, statePath string, debounce time.Duration, logger *slog.Logger, fn func(reason string)) error {
	worldDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	relevant := func(name string) bool {
		abs, err := filepath.Abs(name)
		if err != nil {
			return false
		}
		if abs == statePath {
			return true
		}
		rel, err := filepath.Rel(worldDir, abs)
		return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
		last   string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, ev.Name)
				}
			}
			last = filepath.Base(ev.Name)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			fn(last)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// addRecursive watches root and every directory below it.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
