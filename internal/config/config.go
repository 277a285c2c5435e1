package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/inkport/inkport/internal/project"
)

// SchemaVersion is the only supported .export.toml schema version.
const SchemaVersion = 1

// ErrUnsupportedVersion marks a config whose version field does not match
// SchemaVersion. All other validation failures are plain errors.
var ErrUnsupportedVersion = errors.New("unsupported config version")

// GitMode selects how far the git target goes after staging.
type GitMode string

const (
	GitModeAddOnly      GitMode = "add-only"
	GitModeAddAndCommit GitMode = "add-and-commit"
)

// GitCheck is a precondition the git target verifies before staging.
type GitCheck string

const (
	GitCheckRepo   GitCheck = "repo"
	GitCheckStatus GitCheck = "status"
	GitCheckClean  GitCheck = "clean"
)

// FtpProtocol selects the transfer variant.
type FtpProtocol string

const (
	ProtocolFtp  FtpProtocol = "ftp"
	ProtocolSftp FtpProtocol = "sftp"
)

// VercelEnvironment is the deploy environment forwarded to the deploy hook.
type VercelEnvironment string

const (
	EnvProduction VercelEnvironment = "production"
	EnvPreview    VercelEnvironment = "preview"
)

// ExportConfig is the decoded .export.toml. Sections are nil when absent.
type ExportConfig struct {
	Version int             `toml:"version"`
	Git     *GitSection     `toml:"git"`
	Ftp     *FtpSection     `toml:"ftp"`
	Netlify *NetlifySection `toml:"netlify"`
	Vercel  *VercelSection  `toml:"vercel"`
}

// GitSection configures the git target and its named profiles.
type GitSection struct {
	Enabled  bool                  `toml:"enabled"`
	Mode     GitMode               `toml:"mode"`
	Checks   []GitCheck            `toml:"checks"`
	Profiles map[string]GitProfile `toml:"profiles"`
}

// GitProfile overrides a subset of the git section's fields.
type GitProfile struct {
	Enabled  bool       `toml:"enabled"`
	RepoPath string     `toml:"repo_path"`
	Mode     GitMode    `toml:"mode"`
	Checks   []GitCheck `toml:"checks"`
}

// ResolvedGit is the concrete git configuration for one export attempt.
type ResolvedGit struct {
	RepoPath string
	Mode     GitMode
	Checks   []GitCheck
}

// Resolve merges the section defaults with an optional profile. Profile
// fields win, then the section, then the builtin defaults (add-only mode,
// repo check only, repo path ".").
func (s *GitSection) Resolve(profile *GitProfile) ResolvedGit {
	resolved := ResolvedGit{
		RepoPath: ".",
		Mode:     GitModeAddOnly,
		Checks:   s.checksOrDefault(),
	}
	if s.Mode != "" {
		resolved.Mode = s.Mode
	}
	if profile != nil {
		if profile.Mode != "" {
			resolved.Mode = profile.Mode
		}
		if profile.Checks != nil {
			resolved.Checks = profile.Checks
		}
		if profile.RepoPath != "" {
			resolved.RepoPath = profile.RepoPath
		}
	}
	return resolved
}

func (s *GitSection) checksOrDefault() []GitCheck {
	if s.Checks == nil {
		return []GitCheck{GitCheckRepo}
	}
	return s.Checks
}

// FtpSection configures the transfer target. There is no sectionwide
// endpoint; every export must name a profile.
type FtpSection struct {
	Enabled  bool                  `toml:"enabled"`
	Protocol FtpProtocol           `toml:"protocol"`
	Profiles map[string]FtpProfile `toml:"profiles"`
}

// FtpProfile holds one transfer endpoint.
type FtpProfile struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Username   string `toml:"username"`
	RemotePath string `toml:"remote_path"`
}

// ResolvedFtp is the concrete transfer configuration for one export attempt.
type ResolvedFtp struct {
	Protocol   FtpProtocol
	Host       string
	Port       int
	Username   string
	RemotePath string
}

// Resolve merges the section with the chosen profile. Host and remote path
// have no defaults and must come from the profile.
func (s *FtpSection) Resolve(profile *FtpProfile) (ResolvedFtp, error) {
	if profile.Host == "" {
		return ResolvedFtp{}, errors.New("missing FTP host")
	}
	if profile.RemotePath == "" {
		return ResolvedFtp{}, errors.New("missing remote path")
	}
	resolved := ResolvedFtp{
		Protocol:   ProtocolSftp,
		Host:       profile.Host,
		Port:       22,
		Username:   profile.Username,
		RemotePath: profile.RemotePath,
	}
	if s.Protocol != "" {
		resolved.Protocol = s.Protocol
	}
	if profile.Port != 0 {
		resolved.Port = profile.Port
	}
	return resolved, nil
}

// NetlifySection configures the Netlify deploy trigger.
type NetlifySection struct {
	Enabled       bool   `toml:"enabled"`
	SiteID        string `toml:"site_id"`
	TriggerDeploy bool   `toml:"trigger_deploy"`
}

// VercelSection configures the Vercel deploy hook.
type VercelSection struct {
	Enabled       bool              `toml:"enabled"`
	ProjectName   string            `toml:"project_name"`
	DeployHookURL string            `toml:"deploy_hook_url"`
	Environment   VercelEnvironment `toml:"environment"`
}

// Parse decodes raw TOML into an ExportConfig without validating it.
func Parse(data []byte) (*ExportConfig, error) {
	var cfg ExportConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing export config: %w", err)
	}
	return &cfg, nil
}

// Validate runs the semantic checks in order, first failure wins: schema
// version, netlify requirements, vercel requirements, ftp profile
// requirements, then enum field sanity.
func (c *ExportConfig) Validate() error {
	if c.Version != SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}

	if c.Netlify != nil && c.Netlify.Enabled && c.Netlify.SiteID == "" {
		return errors.New("netlify enabled but site_id is missing")
	}

	if c.Vercel != nil && c.Vercel.Enabled {
		if c.Vercel.ProjectName == "" {
			return errors.New("vercel enabled but project_name is missing")
		}
		if c.Vercel.DeployHookURL == "" {
			return errors.New("vercel enabled but deploy_hook_url is missing")
		}
	}

	if c.Ftp != nil {
		for name, profile := range c.Ftp.Profiles {
			if profile.Enabled && profile.Host == "" {
				return fmt.Errorf("ftp profile %q is enabled but host is missing", name)
			}
		}
	}

	return c.validateEnums()
}

func (c *ExportConfig) validateEnums() error {
	if c.Git != nil {
		if err := validGitMode(c.Git.Mode); err != nil {
			return err
		}
		if err := validGitChecks(c.Git.Checks); err != nil {
			return err
		}
		for name, profile := range c.Git.Profiles {
			if err := validGitMode(profile.Mode); err != nil {
				return fmt.Errorf("git profile %q: %w", name, err)
			}
			if err := validGitChecks(profile.Checks); err != nil {
				return fmt.Errorf("git profile %q: %w", name, err)
			}
		}
	}
	if c.Ftp != nil {
		switch c.Ftp.Protocol {
		case "", ProtocolFtp, ProtocolSftp:
		default:
			return fmt.Errorf("unknown ftp protocol %q", c.Ftp.Protocol)
		}
	}
	if c.Vercel != nil {
		switch c.Vercel.Environment {
		case "", EnvProduction, EnvPreview:
		default:
			return fmt.Errorf("unknown vercel environment %q", c.Vercel.Environment)
		}
	}
	return nil
}

func validGitMode(mode GitMode) error {
	switch mode {
	case "", GitModeAddOnly, GitModeAddAndCommit:
		return nil
	}
	return fmt.Errorf("unknown git mode %q", mode)
}

func validGitChecks(checks []GitCheck) error {
	for _, check := range checks {
		switch check {
		case GitCheckRepo, GitCheckStatus, GitCheckClean:
		default:
			return fmt.Errorf("unknown git check %q", check)
		}
	}
	return nil
}

// Load reads, decodes and validates the config that governs documentPath.
// The config is read fresh on every call; nothing is cached.
func Load(documentPath string) (*ExportConfig, error) {
	root, ok := project.FindRoot(documentPath)
	if !ok {
		return nil, fmt.Errorf("no %s found in parent folders", project.ConfigFileName)
	}
	data, err := os.ReadFile(filepath.Join(root, project.ConfigFileName))
	if err != nil {
		return nil, fmt.Errorf("reading export config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
