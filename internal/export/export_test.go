package export

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkport/inkport/internal/vault"
)

// memStore is an in-memory vault.SecretStore for tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]string)}
}

func (s *memStore) Get(service, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[service+"\x00"+key]
	if !ok {
		return "", vault.ErrNotFound
	}
	return value, nil
}

func (s *memStore) Set(service, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[service+"\x00"+key] = value
	return nil
}

func (s *memStore) Delete(service, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, service+"\x00"+key)
	return nil
}

// recorderSink captures engine events for assertions.
type recorderSink struct {
	mu       sync.Mutex
	progress []Progress
	finished chan Finished
}

func newRecorderSink() *recorderSink {
	return &recorderSink{finished: make(chan Finished, 4)}
}

func (s *recorderSink) Progress(p Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, p)
}

func (s *recorderSink) Finished(f Finished) {
	s.finished <- f
}

func (s *recorderSink) waitFinished(t *testing.T) Finished {
	t.Helper()
	select {
	case f := <-s.finished:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for finished event")
		return Finished{}
	}
}

// fakeGit scripts git invocations and records them.
type fakeGit struct {
	mu    sync.Mutex
	fn    func(dir string, args ...string) (string, error)
	calls [][]string
}

func (g *fakeGit) Run(dir string, args ...string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, args)
	g.mu.Unlock()
	return g.fn(dir, args...)
}

func (g *fakeGit) sawSubcommand(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, call := range g.calls {
		if len(call) > 0 && call[0] == name {
			return true
		}
	}
	return false
}

// newProject writes an .export.toml plus a document and returns both paths.
func newProject(t *testing.T, configToml string) (root, doc string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".export.toml"), []byte(configToml), 0o644))
	doc = filepath.Join(root, "post.md")
	require.NoError(t, os.WriteFile(doc, []byte("# post\n"), 0o644))
	return root, doc
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *recorderSink, *memStore) {
	t.Helper()
	store := newMemStore()
	sink := newRecorderSink()
	m := NewManager(vault.NewWithStore(store), sink, opts...)
	return m, sink, store
}

func errorCode(t *testing.T, response Response) ErrorCode {
	t.Helper()
	require.False(t, response.OK)
	require.NotNil(t, response.Error)
	return response.Error.Code
}
