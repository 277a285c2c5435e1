package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inkport/inkport/internal/publish"
)

// PublishCommand snapshots selected files into the publish directory.
func PublishCommand(app *App) *cobra.Command {
	var projectRoot string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "publish <file-or-glob>...",
		Short: "Copy files and their referenced assets into the publish directory",
		Long: `Copy the selected files, plus any local assets they reference, into the
project's publish directory (default "_publish"). Arguments may be literal
paths or doublestar globs resolved relative to the project root, e.g.
"docs/**/*.md".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(projectRoot)
			if err != nil {
				return err
			}
			files, err := expandSelections(root, args)
			if err != nil {
				return err
			}

			response, err := publish.Publish(publish.Request{
				ProjectRoot: root,
				Files:       files,
				OutputDir:   outputDir,
			})
			if err != nil {
				return err
			}
			for _, warning := range response.Warnings {
				logrus.Warn(warning)
			}
			fmt.Println(response.Summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRoot, "project-root", "r", ".", "project root directory")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "publish directory (default \"_publish\")")

	return cmd
}

// DeployCommand pushes the publish directory to an SSH git remote.
func DeployCommand(app *App) *cobra.Command {
	var projectRoot string
	var outputDir string
	var remote string
	var branch string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Commit and push the publish directory to an SSH remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(projectRoot)
			if err != nil {
				return err
			}
			response, err := app.Deployer.Deploy(publish.DeployRequest{
				ProjectRoot: root,
				OutputDir:   outputDir,
				Remote:      remote,
				Branch:      branch,
			})
			if err != nil {
				return err
			}
			for _, line := range response.Logs {
				logrus.Info(line)
			}
			fmt.Println(response.Summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRoot, "project-root", "r", ".", "project root directory")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "publish directory (default \"_publish\")")
	cmd.Flags().StringVar(&remote, "remote", "", "remote name or SSH URL")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "branch to push (default \"main\")")
	_ = cmd.MarkFlagRequired("remote")

	return cmd
}

// expandSelections resolves globs against the project root and keeps
// literal arguments as-is so a missing file still surfaces as a publish
// warning.
func expandSelections(root string, args []string) ([]string, error) {
	var files []string
	rootFS := os.DirFS(root)
	for _, arg := range args {
		pattern := filepath.ToSlash(arg)
		if !hasGlobMeta(pattern) {
			files = append(files, absUnder(root, arg))
			continue
		}
		matches, err := doublestar.Glob(rootFS, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", arg, err)
		}
		if len(matches) == 0 {
			logrus.Warnf("no files match %q", arg)
			continue
		}
		for _, match := range matches {
			files = append(files, filepath.Join(root, filepath.FromSlash(match)))
		}
	}
	return files, nil
}

func hasGlobMeta(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func absUnder(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
