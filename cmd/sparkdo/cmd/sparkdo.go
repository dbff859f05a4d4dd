// Package cmd implements the sparkdo command line interface.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sparkdo/internal/app"
	"sparkdo/internal/chime"
	"sparkdo/internal/config"
	"sparkdo/internal/tui"
	"sparkdo/storage"
	"sparkdo/storage/file"
	"sparkdo/storage/keyring"
	"sparkdo/storage/sqlite"
	"sparkdo/store"
)

// Version is set at build time
var Version = "dev"

// Config holds application configuration
type Config struct {
	ConfigPath string
	Mute       bool
	NoTUI      bool       // force plain CLI even on a terminal (for testing)
	KV         storage.KV // injected storage (for testing)
	Output     chime.Output
}

// Execute runs the CLI with the given arguments and IO writers
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewSparkdo(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewSparkdo creates the root command with injectable IO
func NewSparkdo(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "sparkdo",
		Short:   "A single-pane task tracker with celebratory feedback",
		Long:    "sparkdo tracks short text tasks with priorities, persists them locally,\nand celebrates a fully completed list.",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if cfg.NoTUI || !isTerminal() {
				return doList(a, stdout, false)
			}

			model := tui.New(a, tui.WithSplash())
			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().Bool("mute", false, "Disable audio feedback")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	cmd.AddCommand(newAddCmd(stdout, cfg))
	cmd.AddCommand(newListCmd(stdout, cfg))
	cmd.AddCommand(newDoneCmd(stdout, cfg))
	cmd.AddCommand(newRmCmd(stdout, cfg))
	cmd.AddCommand(newMvCmd(stdout, cfg))
	cmd.AddCommand(newClearCmd(stdout, cfg))
	cmd.AddCommand(newStatsCmd(stdout, cfg))
	cmd.AddCommand(newCreditsCmd(stdout, cfg))
	cmd.AddCommand(newConfigCmd(stdout))

	return cmd
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// buildApp assembles the orchestrator from config and flags.
func buildApp(cmd *cobra.Command, cfg *Config) (*app.App, func(), error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = cfg.ConfigPath
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	kv := cfg.KV
	if kv == nil {
		kv, err = openStorage(conf)
		if err != nil {
			return nil, nil, err
		}
	}

	out := cfg.Output
	if out == nil {
		out = chime.NewSpeaker()
	}
	synth := chime.New(out, chime.WithLogger(logrus.StandardLogger()))
	mute, _ := cmd.Flags().GetBool("mute")
	if mute || cfg.Mute || !conf.Sound.Enabled {
		synth.SetEnabled(false)
	}

	s := store.New(kv, store.WithKey(conf.Storage.Key))
	a := app.New(s, synth)
	a.Load()

	// One-shot subcommands exit right after a trigger; draining gives
	// the scheduled cue time to sound before the process ends.
	closeFn := func() {
		synth.Drain(3 * time.Second)
		_ = kv.Close()
	}
	return a, closeFn, nil
}

// openStorage selects the persistence backend from config.
func openStorage(conf *config.Config) (storage.KV, error) {
	switch conf.Storage.Backend {
	case "memory":
		return storage.NewMemory(), nil
	case "sqlite":
		return sqlite.New(conf.Storage.SQLite.Path)
	case "keyring":
		return keyring.New(conf.Storage.Keyring.Service), nil
	default:
		return file.New(file.Config{Dir: conf.Storage.File.Dir})
	}
}

func newAddCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add TEXT",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			priorityFlag, _ := cmd.Flags().GetString("priority")
			task := a.Add(args[0], store.ParsePriority(priorityFlag))
			if task == nil {
				return fmt.Errorf("task text must not be empty")
			}
			_, _ = fmt.Fprintf(stdout, "Added %d: %s (%s)\n", task.ID, task.Text, task.Priority)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringP("priority", "p", "medium", "Task priority (low, medium, high)")
	return cmd
}

func newListCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			jsonOutput, _ := cmd.Flags().GetBool("json")
			return doList(a, stdout, jsonOutput)
		},
		SilenceUsage: true,
	}
}

func doList(a *app.App, stdout io.Writer, jsonOutput bool) error {
	tasks := a.Tasks()

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(stdout, "No tasks.")
		return nil
	}
	for _, t := range tasks {
		check := " "
		if t.Completed {
			check = "x"
		}
		_, _ = fmt.Fprintf(stdout, "%4d [%s] %-6s %s\n", t.ID, check, t.Priority, t.Text)
	}
	st := a.Stats()
	_, _ = fmt.Fprintf(stdout, "\n%d/%d done (%d%%)\n", st.Completed, st.Total, st.Percentage)
	return nil
}

func newDoneCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			task, found := a.Toggle(id)
			if !found {
				return fmt.Errorf("no task with id %d", id)
			}
			state := "open"
			if task.Completed {
				state = "done"
			}
			_, _ = fmt.Fprintf(stdout, "Task %d is now %s\n", task.ID, state)
			if a.Victory() {
				_, _ = fmt.Fprintln(stdout, "All tasks complete!")
			}
			return nil
		},
		SilenceUsage: true,
	}
}

func newRmCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if !a.Delete(id) {
				return fmt.Errorf("no task with id %d", id)
			}
			_, _ = fmt.Fprintf(stdout, "Deleted task %d\n", id)
			return nil
		},
		SilenceUsage: true,
	}
}

func newMvCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mv ID POS",
		Short: "Move a task to a new position (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position: %s", args[1])
			}

			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if !a.Move(id, pos) {
				return fmt.Errorf("no task with id %d", id)
			}
			_, _ = fmt.Fprintf(stdout, "Moved task %d to position %d\n", id, pos)
			return nil
		},
		SilenceUsage: true,
	}
}

func newClearCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all tasks (or only completed ones with --done)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			doneOnly, _ := cmd.Flags().GetBool("done")
			if doneOnly {
				a.ClearCompleted()
				_, _ = fmt.Fprintln(stdout, "Cleared completed tasks")
				return nil
			}
			a.ClearAll()
			_, _ = fmt.Fprintln(stdout, "Cleared all tasks")
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().Bool("done", false, "Only remove completed tasks")
	return cmd
}

func newStatsCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			st := a.Stats()
			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			_, _ = fmt.Fprintf(stdout, "%d/%d done (%d%%)\n", st.Completed, st.Total, st.Percentage)
			return nil
		},
		SilenceUsage: true,
	}
}

func newCreditsCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:    "credits",
		Short:  "Roll the credits",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			a.Credits()
			_, _ = fmt.Fprintln(stdout, "sparkdo — made for small wins.")
			return nil
		},
		SilenceUsage: true,
	}
}

func newConfigCmd(stdout io.Writer) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "sample",
		Short: "Print a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprint(stdout, config.GetSampleConfig())
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintln(stdout, config.DefaultPath())
			return nil
		},
	})
	return configCmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id: %s", s)
	}
	return id, nil
}
