package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inkport/inkport/internal/gitcmd"
)

// DeployRequest ships a previously published snapshot to a git remote over
// SSH.
type DeployRequest struct {
	ProjectRoot string `json:"projectRoot"`
	OutputDir   string `json:"outputDir,omitempty"`
	Remote      string `json:"remote"`
	Branch      string `json:"branch,omitempty"`
}

// DeployResponse summarizes a deploy run, including the git invocations it
// made.
type DeployResponse struct {
	OK      bool     `json:"ok"`
	Summary string   `json:"summary"`
	Logs    []string `json:"logs"`
}

// Deployer commits and pushes publish snapshots.
type Deployer struct {
	git gitcmd.Runner
}

// NewDeployer returns a Deployer using the given git runner.
func NewDeployer(git gitcmd.Runner) *Deployer {
	return &Deployer{git: git}
}

// Deploy initializes the snapshot directory as a git repository if needed,
// commits the current contents and pushes them to the requested remote.
// Authentication goes through the SSH agent; a non-SSH remote is rejected.
func (d *Deployer) Deploy(req DeployRequest) (*DeployResponse, error) {
	info, err := os.Stat(req.ProjectRoot)
	if err != nil || !info.IsDir() {
		return nil, errors.New("project root is missing")
	}
	if strings.TrimSpace(req.Remote) == "" {
		return nil, errors.New("deploy remote is missing")
	}

	outputDir, err := resolveOutputDir(req.ProjectRoot, req.OutputDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(outputDir); err != nil {
		return nil, errors.New("publish directory does not exist, run publish first")
	}

	if strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) == "" {
		return nil, errors.New("SSH agent not detected, start ssh-agent first")
	}

	outputCanon, err := canonicalize(outputDir)
	if err != nil {
		return nil, err
	}

	var logs []string
	run := func(args ...string) (string, error) {
		logs = append(logs, "git "+strings.Join(args, " "))
		return d.git.Run(outputCanon, args...)
	}

	if _, err := os.Stat(filepath.Join(outputCanon, ".git")); err != nil {
		if _, err := run("init"); err != nil {
			return nil, fmt.Errorf("git init: %w", err)
		}
	}

	remoteName, remoteURL, err := d.resolveRemote(outputCanon, req.Remote, run)
	if err != nil {
		return nil, err
	}
	if !isSSHURL(remoteURL) {
		return nil, errors.New("deploy requires an SSH remote (git@ or ssh://)")
	}

	branch := strings.TrimSpace(req.Branch)
	if branch == "" {
		branch = "main"
	}

	if _, err := run("checkout", "-B", branch); err != nil {
		return nil, fmt.Errorf("git checkout: %w", err)
	}
	if _, err := run("add", "-A"); err != nil {
		return nil, fmt.Errorf("git add: %w", err)
	}

	status, err := run("status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		if err := appendLog(filepath.Join(outputCanon, LogFileName), "DEPLOY", "No changes to deploy"); err != nil {
			return nil, err
		}
		return &DeployResponse{OK: true, Summary: "No changes to deploy", Logs: logs}, nil
	}

	message := "Publish snapshot @ " + time.Now().Format(logTimeFormat)
	if _, err := run("commit", "-m", message); err != nil {
		return nil, fmt.Errorf("git commit: %w", err)
	}
	if _, err := run("push", "-u", remoteName, branch); err != nil {
		return nil, fmt.Errorf("git push: %w", err)
	}

	if err := appendLog(filepath.Join(outputCanon, LogFileName), "DEPLOY",
		fmt.Sprintf("Pushed to %s (%s)", remoteName, branch)); err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Deployed to %s (%s)", remoteName, branch)
	return &DeployResponse{OK: true, Summary: summary, Logs: logs}, nil
}

// resolveRemote accepts either a configured remote name or a remote URL.
// URLs are registered (or re-pointed) as "origin" first.
func (d *Deployer) resolveRemote(repoPath, remote string, run func(args ...string) (string, error)) (string, string, error) {
	trimmed := strings.TrimSpace(remote)
	looksLikeURL := strings.Contains(trimmed, "://") || strings.HasPrefix(trimmed, "git@")
	remoteName := trimmed
	if looksLikeURL {
		remoteName = "origin"
		if _, err := d.git.Run(repoPath, "remote", "get-url", remoteName); err != nil {
			_, _ = run("remote", "add", remoteName, trimmed)
		} else {
			_, _ = run("remote", "set-url", remoteName, trimmed)
		}
	}

	url, err := run("remote", "get-url", remoteName)
	if err != nil {
		return "", "", fmt.Errorf("resolving remote %q: %w", remoteName, err)
	}
	return remoteName, strings.TrimSpace(url), nil
}

func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") || strings.HasPrefix(url, "ssh://")
}
