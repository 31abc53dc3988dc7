package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewEnv())
}

func newRootCommand(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "enumbler",
		Short: "Declare, resolve and seed enum-like lookup tables",
		Long: color.CyanString(`Enumbler - enum-like lookup tables backed by a database

Models and their entries are declared in enumbler.yaml. Each entry has a
numeric id, a symbolic name and a display label, and is kept in sync with
one row of the model's table.

Features:
  • Resolve ids, names and labels to entries
  • Seed tables idempotently, optionally deleting orphaned rows
  • PostgreSQL, SQLite and Redis backends
  • Read-only HTTP lookup API`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env.ConfigPath, "config", "c", "", "Path to config file (default ./enumbler.yaml)")
	rootCmd.PersistentFlags().BoolVar(&env.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newListCommand(env))
	rootCmd.AddCommand(newResolveCommand(env))
	rootCmd.AddCommand(newSeedCommand(env))
	rootCmd.AddCommand(newCheckCommand(env))
	rootCmd.AddCommand(newServeCommand(env))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the enumbler version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "Enumbler version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command until ctx is canceled
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
