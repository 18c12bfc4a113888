package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pengdows/pengdows.crud-sub014/pkg/logger"
)

var (
	configFile string
	logLevel   string

	// Build information variables, stamped by the linker in release builds.
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"

	log = logger.New("dbprobe", Version)
)

// printVersionInfo displays detailed version information
func printVersionInfo() {
	fmt.Printf("dbprobe v%s\n", Version)
	fmt.Printf("Built: %s, from commit: %s\n", BuildTime, GitCommit)
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbprobe",
	Short: "Database connection diagnostics",
	Long: "dbprobe opens a managed database connection, reports what detection found " +
		"(product, server version, topology, dialect, resolved connection mode), and can " +
		"exercise the pool to show live connection metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("version").Changed {
			printVersionInfo()
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.ExpandEnv("$HOME/.dbprobe/config.yaml"), "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("version", false, "Show version information and exit")

	cobra.OnInitialize(func() {
		log.SetLevel(logger.ParseLevel(logLevel))
	})

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(metricsCmd)
}

func main() {
	Execute()
}
