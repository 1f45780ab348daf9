package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PavelStransky/expressions"
)

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Manage the variables of the global context",
	Long: `The global context is read whole, changed and written back whole by every
command. Nothing is locked: when two commands change it at once, the one that
writes last wins.`,
}

var globalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGlobal()
		if err != nil {
			return err
		}
		ctx, err := g.Load()
		if err != nil {
			return err
		}
		printContext(cmd, ctx)
		return nil
	},
}

var globalGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGlobal()
		if err != nil {
			return err
		}
		v, err := g.Variable(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var globalSetCmd = &cobra.Command{
	Use:   "set NAME VALUE",
	Short: "Set a variable to a literal value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseLiteral(args[1])
		if err != nil {
			return err
		}
		g, err := openGlobal()
		if err != nil {
			return err
		}
		if err := g.SetVariable(args[0], v); err != nil {
			return err
		}
		logger.Info("set global variable", zap.String("name", args[0]), zap.String("type", expressions.TypeName(v)))
		return nil
	},
}

var globalClearCmd = &cobra.Command{
	Use:   "clear [NAME...]",
	Short: "Remove variables, or all of them",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGlobal()
		if err != nil {
			return err
		}
		return g.Clear(args...)
	},
}

var globalWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the variables each time the global context file changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Global.Store != "file" {
			return fmt.Errorf("watch needs the file store, not %s", cfg.Global.Store)
		}
		g, err := openGlobal()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, cmd, g, cfg.Global.Path)
	},
}

// watch prints the Global Context whenever the file at path is written. It
// watches the directory so that the file may be created after the watch
// starts.
func watch(ctx context.Context, cmd *cobra.Command, g *expressions.Global, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	show := func() {
		c, err := g.Load()
		if err != nil {
			// The writer may not have finished; the next event shows it.
			logger.Debug("failed to load global context", zap.Error(err))
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), "--")
		printContext(cmd, c)
	}
	show()
	want := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != want {
				continue
			}
			logger.Debug("global context event", zap.Stringer("op", ev.Op))
			switch {
			case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
				show()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				fmt.Fprintln(cmd.OutOrStdout(), "-- removed")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				show()
				continue
			}
			return err
		}
	}
}

func printContext(cmd *cobra.Command, ctx *expressions.Context) {
	for _, name := range ctx.Names() {
		v := ctx.Variable(name).Value()
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", name, v, expressions.TypeName(v))
	}
}
