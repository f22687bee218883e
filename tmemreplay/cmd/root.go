// Package cmd provides the command-line interface of tmemreplay.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Version is the version printed by the version command.
var Version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tmemreplay",
	Short: "Replay graphics command streams against the texture cache model.",
	Long: `tmemreplay feeds a recorded texture command stream into the ` +
		`texture cache model and reports, per draw, which texture units ` +
		`are believed to be cached. Defaults can be set in a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envFile)
	},
}

var envFile string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "tmemreplay", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File to load environment defaults from")
	rootCmd.AddCommand(versionCmd)
}

// loadEnv reads environment defaults. A missing file is not an error.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
