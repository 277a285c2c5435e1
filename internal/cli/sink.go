package cli

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/inkport/inkport/internal/export"
)

// ConsoleSink renders progress events through the process logger and lets a
// command block until its job's terminal response arrives.
type ConsoleSink struct {
	mu   sync.Mutex
	done map[string]chan export.Finished
}

// NewConsoleSink creates a ConsoleSink.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{done: make(map[string]chan export.Finished)}
}

// Progress implements export.Sink.
func (s *ConsoleSink) Progress(p export.Progress) {
	logrus.Infof("transfer %d/%d bytes (%.0f%%)", p.SentBytes, p.TotalBytes, p.Percent)
}

// Finished implements export.Sink.
func (s *ConsoleSink) Finished(f export.Finished) {
	s.channel(f.JobID) <- f
}

// Wait blocks until the job's terminal response is delivered.
func (s *ConsoleSink) Wait(jobID string) export.Response {
	f := <-s.channel(jobID)
	s.mu.Lock()
	delete(s.done, jobID)
	s.mu.Unlock()
	return f.Response
}

func (s *ConsoleSink) channel(jobID string) chan export.Finished {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.done[jobID]
	if !ok {
		ch = make(chan export.Finished, 1)
		s.done[jobID] = ch
	}
	return ch
}
