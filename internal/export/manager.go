package export

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inkport/inkport/internal/gitcmd"
	"github.com/inkport/inkport/internal/vault"
)

const defaultNetlifyAPI = "https://api.netlify.com"

// ErrUnknownJob is returned by Cancel for an id that is not registered,
// which covers cancel-after-cleanup as well as a bad id.
var ErrUnknownJob = errors.New("unknown export job")

type job struct {
	cancel *atomic.Bool
}

// Manager owns the registry of in-flight export jobs. Submission is
// non-blocking; the pipeline runs on its own goroutine and delivers exactly
// one Finished event through the sink. Registry entries survive completion
// until Cleanup so a late Cancel fails cleanly instead of silently
// succeeding.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*job

	sink       Sink
	vault      *vault.Vault
	git        gitcmd.Runner
	httpClient *http.Client
	netlifyAPI string
}

// Option configures a Manager.
type Option func(*Manager)

// WithGitRunner substitutes the git executor.
func WithGitRunner(r gitcmd.Runner) Option {
	return func(m *Manager) { m.git = r }
}

// WithHTTPClient substitutes the webhook HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithNetlifyAPI overrides the Netlify API base URL.
func WithNetlifyAPI(base string) Option {
	return func(m *Manager) { m.netlifyAPI = base }
}

// NewManager creates a Manager delivering events to sink and resolving
// credentials from v.
func NewManager(v *vault.Vault, sink Sink, opts ...Option) *Manager {
	m := &Manager{
		jobs:       make(map[string]*job),
		sink:       sink,
		vault:      v,
		git:        gitcmd.New(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		netlifyAPI: defaultNetlifyAPI,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Submit registers a new job and starts it in the background. It returns
// the job id immediately.
func (m *Manager) Submit(req Request) string {
	id := uuid.NewString()
	cancel := new(atomic.Bool)

	m.mu.Lock()
	m.jobs[id] = &job{cancel: cancel}
	m.mu.Unlock()

	logrus.Debugf("export job %s submitted: target=%s file=%s", id, req.Target, req.FilePath)

	go func() {
		response := m.run(id, req, cancel)
		logrus.Debugf("export job %s finished: ok=%v summary=%q", id, response.OK, response.Summary)
		m.sink.Finished(Finished{JobID: id, Response: response})
	}()

	return id
}

// Cancel sets the job's cancellation flag. The running job observes it at
// its next checkpoint; nothing is preempted.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.jobs[id]
	if !ok {
		return ErrUnknownJob
	}
	entry.cancel.Store(true)
	return nil
}

// Cleanup removes the registry entry. It is safe to call on an unknown id
// and safe to call more than once.
func (m *Manager) Cleanup(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}
