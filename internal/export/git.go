package export

import (
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/inkport/inkport/internal/config"
)

// runGit stages the document in the configured repository, optionally
// committing it, after the configured preflight checks pass. Steps
// short-circuit on the first failure.
func (m *Manager) runGit(projectRoot string, cfg *config.ExportConfig, req Request, cancel *atomic.Bool, t *trail) Response {
	section := cfg.Git
	if section == nil || !section.Enabled {
		return t.fail(CodeTargetDisabled, "Git export is disabled", "")
	}

	var profile *config.GitProfile
	if req.Profile != "" {
		p, ok := section.Profiles[req.Profile]
		if !ok {
			return t.fail(CodeProfileMissing, "Git profile not found", req.Profile)
		}
		if !p.Enabled {
			return t.fail(CodeProfileDisabled, "Git profile is disabled", req.Profile)
		}
		profile = &p
	}

	resolved := section.Resolve(profile)
	repoPath := resolvePath(projectRoot, resolved.RepoPath)

	if cancel.Load() {
		return t.cancelled()
	}

	t.info("Running Git checks", repoPath)

	if hasCheck(resolved.Checks, config.GitCheckRepo) {
		if _, err := m.git.Run(repoPath, "rev-parse", "--is-inside-work-tree"); err != nil {
			return t.fail(CodeGitRepoMissing, "Not a git repository", "")
		}
	}

	var status string
	if hasCheck(resolved.Checks, config.GitCheckStatus) || hasCheck(resolved.Checks, config.GitCheckClean) {
		out, err := m.git.Run(repoPath, "status", "--porcelain")
		if err != nil {
			return t.fail(CodeGitFailed, "Unable to read git status", err.Error())
		}
		if strings.TrimSpace(out) != "" {
			t.warn("Git status is not clean", strings.TrimSpace(out))
		} else {
			t.info("Git status clean", "")
		}
		status = out
	}

	if hasCheck(resolved.Checks, config.GitCheckClean) && strings.TrimSpace(status) != "" {
		return t.fail(CodeGitDirty, "Git working tree is not clean", "")
	}

	topLevel, err := m.git.Run(repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return t.fail(CodeGitRepoMissing, "Unable to resolve repository root", err.Error())
	}
	repoRoot := strings.TrimSpace(topLevel)

	if !isWithin(repoRoot, req.FilePath) {
		return t.fail(CodeFileNotInRepo, "File is outside the git repository", repoRoot)
	}

	if cancel.Load() {
		return t.cancelled()
	}

	t.info("Git add", req.FilePath)
	if _, err := m.git.Run(repoRoot, "add", "--", req.FilePath); err != nil {
		return t.fail(CodeGitFailed, "git add failed", err.Error())
	}

	if resolved.Mode == config.GitModeAddAndCommit {
		message := "Export " + filepath.Base(req.FilePath)
		t.info("Git commit", message)
		out, err := m.git.Run(repoRoot, "commit", "-m", message)
		// A document already matching HEAD is a no-op, not a failure,
		// whichever channel git reports it on.
		if err != nil {
			if strings.Contains(err.Error(), "nothing to commit") {
				t.warn("Nothing to commit", err.Error())
				return t.done("No changes to commit")
			}
			return t.fail(CodeGitFailed, "git commit failed", err.Error())
		}
		if strings.Contains(out, "nothing to commit") {
			t.warn("Nothing to commit", "")
			return t.done("No changes to commit")
		}
	}

	return t.done("Git export completed")
}

func hasCheck(checks []config.GitCheck, want config.GitCheck) bool {
	for _, check := range checks {
		if check == want {
			return true
		}
	}
	return false
}

func resolvePath(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

// isWithin reports whether child is parent or lives underneath it.
func isWithin(parent, child string) bool {
	absParent, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	absChild, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absParent, absChild)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
