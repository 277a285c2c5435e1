package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
version = 1

[git]
enabled = true
mode = "add-and-commit"
checks = ["repo", "status"]

[git.profiles.work]
enabled = true
repo_path = "/srv/work"
mode = "add-only"

[ftp]
enabled = true
protocol = "sftp"

[ftp.profiles.staging]
enabled = true
host = "staging.example.com"
port = 2022
username = "deploy"
remote_path = "/var/www/"

[netlify]
enabled = true
site_id = "site-123"
trigger_deploy = true

[vercel]
enabled = true
project_name = "blog"
deploy_hook_url = "https://hooks.vercel.test/abc"
environment = "preview"
`

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.NotNil(t, cfg.Git)
	assert.Equal(t, GitModeAddAndCommit, cfg.Git.Mode)
	assert.Equal(t, []GitCheck{GitCheckRepo, GitCheckStatus}, cfg.Git.Checks)
	require.Contains(t, cfg.Git.Profiles, "work")

	require.NotNil(t, cfg.Ftp)
	require.Contains(t, cfg.Ftp.Profiles, "staging")
	assert.Equal(t, 2022, cfg.Ftp.Profiles["staging"].Port)

	require.NotNil(t, cfg.Netlify)
	assert.True(t, cfg.Netlify.TriggerDeploy)

	require.NotNil(t, cfg.Vercel)
	assert.Equal(t, EnvPreview, cfg.Vercel.Environment)
}

func TestParseRejectsMalformedToml(t *testing.T) {
	_, err := Parse([]byte("version = \n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		wantErr string
	}{
		{
			name:    "unsupported version",
			toml:    "version = 2\n",
			wantErr: "unsupported config version",
		},
		{
			name:    "netlify without site id",
			toml:    "version = 1\n[netlify]\nenabled = true\n",
			wantErr: "site_id is missing",
		},
		{
			name:    "vercel without project name",
			toml:    "version = 1\n[vercel]\nenabled = true\ndeploy_hook_url = \"https://x\"\n",
			wantErr: "project_name is missing",
		},
		{
			name:    "vercel without deploy hook",
			toml:    "version = 1\n[vercel]\nenabled = true\nproject_name = \"blog\"\n",
			wantErr: "deploy_hook_url is missing",
		},
		{
			name:    "enabled ftp profile without host",
			toml:    "version = 1\n[ftp]\nenabled = true\n[ftp.profiles.bad]\nenabled = true\n",
			wantErr: "host is missing",
		},
		{
			name:    "disabled ftp profile without host passes",
			toml:    "version = 1\n[ftp]\nenabled = true\n[ftp.profiles.off]\nenabled = false\n",
			wantErr: "",
		},
		{
			name:    "unknown git mode",
			toml:    "version = 1\n[git]\nenabled = true\nmode = \"squash\"\n",
			wantErr: "unknown git mode",
		},
		{
			name:    "unknown git check",
			toml:    "version = 1\n[git]\nenabled = true\nchecks = [\"stash\"]\n",
			wantErr: "unknown git check",
		},
		{
			name:    "unknown ftp protocol",
			toml:    "version = 1\n[ftp]\nenabled = true\nprotocol = \"scp\"\n",
			wantErr: "unknown ftp protocol",
		},
		{
			name:    "unknown vercel environment",
			toml:    "version = 1\n[vercel]\nenabled = true\nproject_name = \"p\"\ndeploy_hook_url = \"https://x\"\nenvironment = \"staging\"\n",
			wantErr: "unknown vercel environment",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.toml))
			require.NoError(t, err)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateVersionWinsFirst(t *testing.T) {
	cfg, err := Parse([]byte("version = 3\n[netlify]\nenabled = true\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedVersion)
}

func TestGitResolveDefaults(t *testing.T) {
	section := &GitSection{Enabled: true}
	resolved := section.Resolve(nil)
	assert.Equal(t, ".", resolved.RepoPath)
	assert.Equal(t, GitModeAddOnly, resolved.Mode)
	assert.Equal(t, []GitCheck{GitCheckRepo}, resolved.Checks)
}

func TestGitResolveProfileWins(t *testing.T) {
	section := &GitSection{
		Enabled: true,
		Mode:    GitModeAddAndCommit,
		Checks:  []GitCheck{GitCheckRepo, GitCheckClean},
	}
	profile := &GitProfile{
		Enabled:  true,
		RepoPath: "/srv/site",
		Mode:     GitModeAddOnly,
		Checks:   []GitCheck{GitCheckStatus},
	}
	resolved := section.Resolve(profile)
	assert.Equal(t, "/srv/site", resolved.RepoPath)
	assert.Equal(t, GitModeAddOnly, resolved.Mode)
	assert.Equal(t, []GitCheck{GitCheckStatus}, resolved.Checks)
}

func TestGitResolveSectionFallback(t *testing.T) {
	section := &GitSection{
		Enabled: true,
		Mode:    GitModeAddAndCommit,
		Checks:  []GitCheck{GitCheckClean},
	}
	resolved := section.Resolve(&GitProfile{Enabled: true})
	assert.Equal(t, ".", resolved.RepoPath)
	assert.Equal(t, GitModeAddAndCommit, resolved.Mode)
	assert.Equal(t, []GitCheck{GitCheckClean}, resolved.Checks)
}

func TestGitResolveExplicitEmptyChecks(t *testing.T) {
	cfg, err := Parse([]byte("version = 1\n[git]\nenabled = true\nchecks = []\n"))
	require.NoError(t, err)
	resolved := cfg.Git.Resolve(nil)
	assert.Empty(t, resolved.Checks, "explicit empty checks must not fall back to the default")
	assert.NotNil(t, resolved.Checks)
}

func TestFtpResolve(t *testing.T) {
	section := &FtpSection{Enabled: true}
	profile := &FtpProfile{Enabled: true, Host: "example.com", RemotePath: "/srv/"}

	resolved, err := section.Resolve(profile)
	require.NoError(t, err)
	assert.Equal(t, ProtocolSftp, resolved.Protocol)
	assert.Equal(t, 22, resolved.Port)
	assert.Equal(t, "example.com", resolved.Host)

	section.Protocol = ProtocolFtp
	profile.Port = 2121
	resolved, err = section.Resolve(profile)
	require.NoError(t, err)
	assert.Equal(t, ProtocolFtp, resolved.Protocol)
	assert.Equal(t, 2121, resolved.Port)
}

func TestFtpResolveMissingFields(t *testing.T) {
	section := &FtpSection{Enabled: true}
	_, err := section.Resolve(&FtpProfile{Enabled: true, RemotePath: "/srv/"})
	assert.ErrorContains(t, err, "missing FTP host")

	_, err = section.Resolve(&FtpProfile{Enabled: true, Host: "example.com"})
	assert.ErrorContains(t, err, "missing remote path")
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".export.toml"), []byte(fullConfig), 0o644))
	doc := filepath.Join(root, "post.md")
	require.NoError(t, os.WriteFile(doc, []byte("# post\n"), 0o644))

	cfg, err := Load(doc)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, cfg.Version)
}

func TestLoadMissingConfig(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(doc, nil, 0o644))

	_, err := Load(doc)
	assert.ErrorContains(t, err, "no .export.toml found")
}
