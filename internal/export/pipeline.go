package export

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/inkport/inkport/internal/config"
	"github.com/inkport/inkport/internal/project"
)

// run executes the whole pipeline for one job: locate and validate the
// project config, then hand off to the target adapter. The cancellation
// flag is polled between stages; adapters poll it again before any process
// or network call.
func (m *Manager) run(jobID string, req Request, cancel *atomic.Bool) Response {
	t := &trail{}

	if cancel.Load() {
		return t.cancelled()
	}

	if _, err := os.Stat(req.FilePath); err != nil {
		return t.fail(CodeFileMissing, "File does not exist", "")
	}

	root, ok := project.FindRoot(req.FilePath)
	if !ok {
		return t.fail(CodeConfigMissing, "No "+project.ConfigFileName+" found in parent folders", "")
	}

	configPath := filepath.Join(root, project.ConfigFileName)
	t.info("Loading export configuration", configPath)

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return t.fail(CodeConfigMissing, "Unable to read "+project.ConfigFileName, err.Error())
	}

	cfg, err := config.Parse(raw)
	if err != nil {
		return t.fail(CodeConfigInvalid, "Invalid "+project.ConfigFileName, err.Error())
	}

	if err := cfg.Validate(); err != nil {
		code := CodeConfigInvalid
		if errors.Is(err, config.ErrUnsupportedVersion) {
			code = CodeUnsupportedConfigVersion
		}
		return t.fail(code, "Invalid export configuration", err.Error())
	}

	if cancel.Load() {
		return t.cancelled()
	}

	switch req.Target {
	case TargetGit:
		return m.runGit(root, cfg, req, cancel, t)
	case TargetFtp:
		return m.runFtp(jobID, cfg, req, cancel, t)
	case TargetNetlify:
		return m.runNetlify(cfg, req, cancel, t)
	case TargetVercel:
		return m.runVercel(cfg, cancel, t)
	default:
		return t.fail(CodeConfigInvalid, "Unknown export target", string(req.Target))
	}
}
