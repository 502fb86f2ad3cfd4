package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"revbench/internal/telemetry"
	"revbench/internal/ui"
)

var exit = os.Exit

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "revbench",
	Short: "Benchmark commands across git revisions with hyperfine",
	Long: `revbench drives hyperfine over the revisions of a git repository.
A TOML definition names the commands to benchmark and the commits,
branches, or tags to benchmark them at; revbench checks out each
revision, runs hyperfine, and merges the exported reports into one.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Silence log output")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Every persistent flag doubles as a config key and a REVBENCH_*
	// environment variable.
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		viper.BindPFlag(f.Name, f)
	})
}

// initConfig reads in ENV variables if set and initializes logging.
func initConfig() {
	// explicit .env loading, ignored if missing
	_ = godotenv.Load()

	viper.SetEnvPrefix("REVBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Empty means ~/.revbench/history.db.
	viper.SetDefault("history_db", "")

	// Logs go to stderr; stdout is reserved for reports.
	telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log-file"),
		viper.GetBool("quiet"))

	if viper.GetBool("no-color") || os.Getenv("NO_COLOR") != "" {
		ui.DisableColors()
	}
}
