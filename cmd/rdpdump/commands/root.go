// Package commands implements the CLI commands for the rdpdump triage
// tool.
package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/mirrorbeam/rdpwire/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	logLevel string
	hexInput bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rdpdump",
	Short: "rdpdump - decode captured RDP PDU bytes",
	Long: `rdpdump decodes captured RDP protocol bytes into typed PDUs for
inspection and fuzz-corpus triage. Input is a file of raw bytes (or hex
text with --hex); output names the decoded variant and its fields, or the
precise typed error that rejected the input.

Use "rdpdump [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Config{Level: logLevel, Output: "stderr"})
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrf("%v\n", err)
		return err
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rdpdump %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().BoolVar(&hexInput, "hex", false, "treat input as hex text instead of raw bytes")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(scanCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// readInput loads the capture from a file path, or stdin for "-".
func readInput(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if hexInput {
		cleaned := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' || r == ',' {
				return -1
			}
			return r
		}, string(data))
		data, err = hex.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
	}
	return data, nil
}
