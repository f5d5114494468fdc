package commands

import (
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
	return newRootCommand(newSession())
}

func newRootCommand(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "declschema",
		Short: "Inspect, validate and store declarative-DSL analysis schemas",
		Long: color.CyanString(`declschema - analysis schema toolkit

declschema reads and writes the JSON form of the analysis schema that a
declarative configuration DSL exposes to its scripts: data classes, their
properties and member functions, external functions and objects.

Schemas can be validated, re-encoded canonically, packed as gzip archives and
kept in a schema store backed by files, Redis or a SQL database.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if s.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.configPath, "config", "", "Path to config file (default: nearest declschema.yml)")
	flags.StringVar(&s.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.BoolVar(&s.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCompletionCommand())
	rootCmd.AddCommand(newCheckCommand(s))
	rootCmd.AddCommand(newFormatCommand(s))
	rootCmd.AddCommand(newInspectCommand(s))
	rootCmd.AddCommand(newPackCommand(s))
	rootCmd.AddCommand(newUnpackCommand(s))
	rootCmd.AddCommand(newStoreCommand(s))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the declschema version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			for _, line := range [][2]string{
				{"declschema version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, line[0])
				fmt.Fprintln(out, line[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
