// Package export runs document exports against heterogeneous delivery
// backends as cancellable background jobs.
package export

import "fmt"

// Target names one delivery backend.
type Target string

const (
	TargetGit     Target = "git"
	TargetFtp     Target = "ftp"
	TargetNetlify Target = "netlify"
	TargetVercel  Target = "vercel"
)

// ParseTarget validates a target name.
func ParseTarget(name string) (Target, error) {
	switch Target(name) {
	case TargetGit, TargetFtp, TargetNetlify, TargetVercel:
		return Target(name), nil
	}
	return "", fmt.Errorf("unknown export target %q", name)
}

// Request describes one export attempt.
type Request struct {
	FilePath string `json:"filePath"`
	Target   Target `json:"target"`
	Profile  string `json:"profile,omitempty"`
}

// ErrorCode is one of the closed set of terminal failure codes.
type ErrorCode string

const (
	CodeExportCancelled          ErrorCode = "export_cancelled"
	CodeConfigMissing            ErrorCode = "config_missing"
	CodeConfigInvalid            ErrorCode = "config_invalid"
	CodeUnsupportedConfigVersion ErrorCode = "unsupported_config_version"
	CodeTargetDisabled           ErrorCode = "target_disabled"
	CodeProfileMissing           ErrorCode = "profile_missing"
	CodeProfileDisabled          ErrorCode = "profile_disabled"
	CodeProfileRequired          ErrorCode = "profile_required"
	CodeFileMissing              ErrorCode = "file_missing"
	CodeFileNotInRepo            ErrorCode = "file_not_in_repo"
	CodeGitRepoMissing           ErrorCode = "git_repo_missing"
	CodeGitDirty                 ErrorCode = "git_dirty"
	CodeGitFailed                ErrorCode = "git_failed"
	CodeFtpFailed                ErrorCode = "ftp_failed"
	CodeFtpMissingUsername       ErrorCode = "ftp_missing_username"
	CodeFtpMissingPassword       ErrorCode = "ftp_missing_password"
	CodeNetlifyMissingToken      ErrorCode = "netlify_missing_token"
	CodeNetlifyFailed            ErrorCode = "netlify_failed"
	CodeVercelFailed             ErrorCode = "vercel_failed"
)

// Error is the structured failure carried by a Response.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// LogLevel classifies a diagnostic log line.
type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Log is one line of the diagnostic trail a job accumulates.
type Log struct {
	Level   LogLevel `json:"level"`
	Message string   `json:"message"`
	Detail  string   `json:"detail,omitempty"`
}

// Response is the single terminal result of a job. Logs are returned in full
// even on failure.
type Response struct {
	OK      bool   `json:"ok"`
	Summary string `json:"summary"`
	Logs    []Log  `json:"logs"`
	Error   *Error `json:"error,omitempty"`
}

// Progress reports streaming transfer state. Percent is 0 when TotalBytes
// is 0.
type Progress struct {
	JobID      string  `json:"jobId"`
	SentBytes  int64   `json:"sentBytes"`
	TotalBytes int64   `json:"totalBytes"`
	Percent    float64 `json:"percent"`
}

// Finished carries the terminal response of a job. Exactly one is emitted
// per job.
type Finished struct {
	JobID    string   `json:"jobId"`
	Response Response `json:"response"`
}

// Sink receives engine events. The engine assumes nothing about the
// transport behind it.
type Sink interface {
	Progress(Progress)
	Finished(Finished)
}

// trail accumulates the diagnostic log of one job and builds its terminal
// responses.
type trail struct {
	logs []Log
}

func (t *trail) info(message, detail string) {
	t.logs = append(t.logs, Log{Level: LevelInfo, Message: message, Detail: detail})
}

func (t *trail) warn(message, detail string) {
	t.logs = append(t.logs, Log{Level: LevelWarn, Message: message, Detail: detail})
}

func (t *trail) done(summary string) Response {
	return Response{OK: true, Summary: summary, Logs: t.logs}
}

func (t *trail) fail(code ErrorCode, message, detail string) Response {
	return Response{
		OK:      false,
		Summary: message,
		Logs:    t.logs,
		Error:   &Error{Code: code, Message: message, Detail: detail},
	}
}

func (t *trail) cancelled() Response {
	t.warn("Export cancelled", "")
	return Response{
		OK:      false,
		Summary: "Export cancelled",
		Logs:    t.logs,
		Error:   &Error{Code: CodeExportCancelled, Message: "Export cancelled"},
	}
}
