// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jolks/mcp-remind/internal/clock"
	"github.com/jolks/mcp-remind/internal/config"
	"github.com/jolks/mcp-remind/internal/model"
	"github.com/jolks/mcp-remind/internal/ui"
)

// appClock is the clock every command schedules against; replaced in tests
var appClock clock.Clock = clock.System{}

// openApp loads configuration and logging and opens the task store
func openApp(cmd *cobra.Command, opts *globalOptions, overrides ...func(*config.Config)) (*Application, error) {
	cfg, err := loadConfig(opts, overrides...)
	if err != nil {
		return nil, err
	}
	if _, err := setupLogging(cfg); err != nil {
		return nil, err
	}
	return createApp(cmd.Context(), cfg, appClock)
}

func addCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME HH:MM",
		Short: "Add a task, or replace the task with the same name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.store.Add(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %q added for %s\n", task.Name, task.Deadline)
			return nil
		},
	}
}

func removeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %q deleted\n", args[0])
			return nil
		},
	}
}

func listCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in the order they were added",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			printTasks(cmd.OutOrStdout(), app.store.List())
			return nil
		},
	}
}

func remindCmd(opts *globalOptions) *cobra.Command {
	var before string
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Summarize the tasks to deal with before a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			cutoff := app.config.SummaryCutoff()
			if before != "" {
				if cutoff, err = model.ParseTimeOfDay(before); err != nil {
					return fmt.Errorf("invalid --before %q: %w", before, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.scheduler.SummarizePendingBefore(cutoff).Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Cutoff time as HH:MM (default: scheduler.summary_cutoff)")
	return cmd
}

func checkCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fire every reminder that is due, once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			before := app.store.List()
			after := app.scheduler.Tick(cmd.Context())
			fired := firedSince(before, after)
			for _, t := range fired {
				fmt.Fprintf(cmd.OutOrStdout(), "Reminder sent: %s (%s)\n", t.Name, t.Deadline)
			}
			if len(fired) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reminders due")
			}
			return nil
		},
	}
}

func runCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Check reminders in the foreground until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			return runApp(cmd.Context(), app)
		},
	}
}

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		transport string
		address   string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task tools over MCP while checking reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts, func(cfg *config.Config) {
				if transport != "" {
					cfg.Server.TransportMode = transport
				}
				if address != "" {
					cfg.Server.Address = address
				}
				if port != 0 {
					cfg.Server.Port = port
				}
			})
			if err != nil {
				return err
			}
			if err := app.enableServer(); err != nil {
				app.Close()
				return err
			}
			return runApp(cmd.Context(), app)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "Transport mode: sse or stdio")
	cmd.Flags().StringVar(&address, "address", "", "The address to bind the SSE server to")
	cmd.Flags().IntVar(&port, "port", 0, "The port to bind the SSE server to")
	return cmd
}

func runApp(parent context.Context, app *Application) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		app.Close()
		return fmt.Errorf("failed to start application: %w", err)
	}
	waitForSignal(parent, cancel, app)
	return nil
}

func tuiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Manage tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			// the screen belongs to the TUI, so logs go to a file
			if cfg.Logging.FilePath == "" {
				cfg.Logging.FilePath = defaultLogPath()
			}
			if _, err := setupLogging(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			banner := ui.NewBanner()
			app, err := createApp(ctx, cfg, appClock, banner)
			if err != nil {
				return err
			}
			defer app.Close()

			return ui.RunTUI(ctx, app.store, app.scheduler, banner,
				ui.WithInterval(cfg.Scheduler.Interval.Duration),
				ui.WithCutoff(cfg.SummaryCutoff()),
			)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", config.DefaultName, buildVersion)
		},
	}
}

func printTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	for _, t := range tasks {
		mark := "✘"
		if t.ReminderSent {
			mark = "✔"
		}
		fmt.Fprintf(w, "%s  %s  %s\n", t.Deadline, mark, t.Name)
	}
}

// firedSince returns the tasks whose reminder was sent between two snapshots
func firedSince(before, after []model.Task) []model.Task {
	sent := make(map[string]bool, len(before))
	for _, t := range before {
		sent[t.Name] = t.ReminderSent
	}
	var fired []model.Task
	for _, t := range after {
		if t.ReminderSent && !sent[t.Name] {
			fired = append(fired, t)
		}
	}
	return fired
}
