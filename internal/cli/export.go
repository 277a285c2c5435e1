package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inkport/inkport/internal/export"
)

// ExportCommand submits an export job and waits for its terminal response.
func ExportCommand(app *App) *cobra.Command {
	var profile string
	var target string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a document to a configured target",
		Long: `Export a document to one of the targets declared in the project's
.export.toml: git, ftp, netlify or vercel. The export runs as a background
job; press Ctrl-C to request cancellation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedTarget, err := export.ParseTarget(target)
			if err != nil {
				return err
			}
			filePath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			jobID := app.Exports.Submit(export.Request{
				FilePath: filePath,
				Target:   parsedTarget,
				Profile:  profile,
			})
			defer app.Exports.Cleanup(jobID)

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			defer signal.Stop(interrupt)
			go func() {
				for range interrupt {
					if err := app.Exports.Cancel(jobID); err != nil {
						logrus.Warnf("cancel failed: %v", err)
					}
				}
			}()

			response := app.Sink.Wait(jobID)
			printTrail(response.Logs)

			if !response.OK {
				if response.Error != nil {
					return fmt.Errorf("%s (%s)", response.Error.Message, response.Error.Code)
				}
				return errors.New(response.Summary)
			}
			fmt.Println(response.Summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "export target: git, ftp, netlify or vercel")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "named profile of the target section")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func printTrail(logs []export.Log) {
	for _, entry := range logs {
		line := entry.Message
		if entry.Detail != "" {
			line += ": " + entry.Detail
		}
		switch entry.Level {
		case export.LevelWarn:
			logrus.Warn(line)
		case export.LevelError:
			logrus.Error(line)
		default:
			logrus.Info(line)
		}
	}
}
