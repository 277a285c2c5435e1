package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inkport/inkport/internal/cli"
	"github.com/inkport/inkport/internal/obs"
)

var rootCmd = &cobra.Command{
	Use:   "inkport",
	Short: "Inkport - document export and publish engine",
	Long: `Inkport exports documents to the targets declared in a project's
.export.toml (git, ftp, netlify, vercel) and publishes static snapshots of a
project to an SSH git remote. Credentials live in the OS secret store.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		logFile, _ := cmd.Flags().GetString("log-file")
		obs.Setup(logFile)
	},
}

// Build information variables
var (
	// Set by compiler via -ldflags
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (default: ~/.inkport/log/inkport.log)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Inkport CLI\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Git Commit: %s\n", gitCommit)
			fmt.Printf("Build Time: %s\n", buildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)

	app := cli.NewApp()
	rootCmd.AddCommand(cli.ExportCommand(app))
	rootCmd.AddCommand(cli.CredentialCommand(app))
	rootCmd.AddCommand(cli.PublishCommand(app))
	rootCmd.AddCommand(cli.DeployCommand(app))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
