package export

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/inkport/inkport/internal/config"
	"github.com/inkport/inkport/internal/vault"
)

// PasswordEnv is the fallback source for the plain-transfer password when
// the vault holds no credential.
const PasswordEnv = "INKPORT_FTP_PASSWORD"

const transferChunkSize = 8192

var (
	errTransferCancelled = errors.New("transfer cancelled")
	errSSHAuthFailed     = errors.New("ssh authentication failed")
)

// runFtp uploads the document over SFTP or plain FTP depending on the
// section's protocol. A profile is mandatory; there is no sectionwide
// default endpoint.
func (m *Manager) runFtp(jobID string, cfg *config.ExportConfig, req Request, cancel *atomic.Bool, t *trail) Response {
	section := cfg.Ftp
	if section == nil || !section.Enabled {
		return t.fail(CodeTargetDisabled, "FTP export is disabled", "")
	}

	if req.Profile == "" {
		return t.fail(CodeProfileRequired, "FTP export requires a profile", "")
	}
	profile, ok := section.Profiles[req.Profile]
	if !ok {
		return t.fail(CodeProfileMissing, "FTP profile not found", req.Profile)
	}
	if !profile.Enabled {
		return t.fail(CodeProfileDisabled, "FTP profile is disabled", req.Profile)
	}

	resolved, err := section.Resolve(&profile)
	if err != nil {
		return t.fail(CodeConfigInvalid, "Invalid FTP profile", err.Error())
	}

	if cancel.Load() {
		return t.cancelled()
	}

	storedPassword, hasPassword, err := m.vault.Get(req.FilePath, string(TargetFtp), req.Profile, vault.KindPassword)
	if err != nil {
		return t.fail(CodeFtpFailed, "Unable to access credential storage", err.Error())
	}

	username := resolveUsername(resolved.Username)
	if username == "" {
		return t.fail(CodeFtpMissingUsername, "FTP username is missing", "")
	}

	remotePath := resolveRemotePath(resolved.RemotePath, req.FilePath)

	info, err := os.Stat(req.FilePath)
	if err != nil {
		return t.fail(CodeFtpFailed, "Unable to read file metadata", err.Error())
	}
	totalBytes := info.Size()

	switch resolved.Protocol {
	case config.ProtocolSftp:
		t.info("Connecting via SFTP", resolved.Host)
		err := m.uploadSftp(jobID, req.FilePath, remotePath, resolved, username, storedPassword, hasPassword, totalBytes, cancel)
		if err != nil {
			if errors.Is(err, errTransferCancelled) {
				return t.cancelled()
			}
			if errors.Is(err, errSSHAuthFailed) && !hasPassword {
				return t.fail(CodeFtpMissingPassword, "SFTP password missing (set in app or use SSH agent)", "")
			}
			return t.fail(CodeFtpFailed, "SFTP export failed", err.Error())
		}
		return t.done("SFTP export completed")

	default:
		password := storedPassword
		if !hasPassword {
			password = os.Getenv(PasswordEnv)
		}
		if password == "" {
			return t.fail(CodeFtpMissingPassword, "FTP password missing (set in app)", "")
		}
		t.info("Connecting via FTP", resolved.Host)
		if err := m.uploadFtp(req.FilePath, remotePath, resolved, username, password); err != nil {
			return t.fail(CodeFtpFailed, "FTP export failed", err.Error())
		}
		return t.done("FTP export completed")
	}
}

// uploadSftp streams the file over SFTP. Authentication tries the SSH agent
// first and falls back to the stored password.
func (m *Manager) uploadSftp(jobID, localPath, remotePath string, resolved config.ResolvedFtp, username, password string, hasPassword bool, totalBytes int64, cancel *atomic.Bool) error {
	var auths []ssh.AuthMethod
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			defer conn.Close()
			auths = append(auths, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	if hasPassword {
		auths = append(auths, ssh.Password(password))
	}
	if len(auths) == 0 {
		return errSSHAuthFailed
	}

	clientConfig := &ssh.ClientConfig{
		User:            username,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	addr := net.JoinHostPort(resolved.Host, strconv.Itoa(resolved.Port))
	client, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return errSSHAuthFailed
		}
		return err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return err
	}
	defer sftpClient.Close()

	remoteFile, err := sftpClient.Create(remotePath)
	if err != nil {
		return err
	}
	defer remoteFile.Close()

	localFile, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer localFile.Close()

	return streamFile(remoteFile, localFile, cancel, func(sent int64) {
		m.sink.Progress(Progress{
			JobID:      jobID,
			SentBytes:  sent,
			TotalBytes: totalBytes,
			Percent:    percentOf(sent, totalBytes),
		})
	})
}

// streamFile copies src to dst in fixed-size chunks, polling the
// cancellation flag before every read and reporting after every write.
func streamFile(dst io.Writer, src io.Reader, cancel *atomic.Bool, report func(sent int64)) error {
	buffer := make([]byte, transferChunkSize)
	var sent int64

	for {
		if cancel.Load() {
			return errTransferCancelled
		}
		read, readErr := src.Read(buffer)
		if read > 0 {
			if _, err := dst.Write(buffer[:read]); err != nil {
				return err
			}
			sent += int64(read)
			report(sent)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
		if read == 0 {
			return nil
		}
	}
}

func percentOf(sent, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(sent) / float64(total) * 100
}

// uploadFtp performs a single-shot put over plain FTP.
func (m *Manager) uploadFtp(localPath, remotePath string, resolved config.ResolvedFtp, username, password string) error {
	addr := net.JoinHostPort(resolved.Host, strconv.Itoa(resolved.Port))
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return err
	}
	defer conn.Quit()

	if err := conn.Login(username, password); err != nil {
		return fmt.Errorf("ftp login: %w", err)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := conn.Stor(remotePath, file); err != nil {
		return fmt.Errorf("ftp put: %w", err)
	}
	return nil
}

// resolveUsername falls back to the OS identity when the profile leaves the
// username blank.
func resolveUsername(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if current, err := user.Current(); err == nil {
		return current.Username
	}
	return ""
}

// resolveRemotePath appends the document's filename when the configured
// path ends in a separator.
func resolveRemotePath(remotePath, filePath string) string {
	if strings.HasSuffix(remotePath, "/") {
		name := filepath.Base(filePath)
		if name == "." || name == string(filepath.Separator) {
			name = "export.md"
		}
		return remotePath + name
	}
	return remotePath
}
