package message

import (
	"bytes"
	"io"
	"sync"
	"sync/atomic"
	"syscall"
)

const (
	// withheldInitial is the initial capacity of the withheld buffer.
	withheldInitial = 1 << 12
	// withheldMax is the most output withheld before writes are dropped.
	withheldMax = 1 << 24
)

// Suspendable forwards writes to Downstream, except between Suspend and Resume,
// when up to 16 MiB of output is withheld and anything beyond that is dropped.
type Suspendable struct {
	Downstream io.Writer

	suspended atomic.Bool

	mu       sync.Mutex
	withheld bytes.Buffer
	dropped  int
}

func (s *Suspendable) Write(p []byte) (int, error) {
	if !s.suspended.Load() {
		return s.Downstream.Write(p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.withheld.Cap() == 0 {
		s.withheld.Grow(withheldInitial)
	}
	free := max(withheldMax-s.withheld.Len(), 0)
	if len(p) <= free {
		return s.withheld.Write(p)
	}
	n, _ := s.withheld.Write(p[:free])
	s.dropped += len(p) - n
	return n, syscall.ENOMEM
}

// IsSuspended returns whether output is currently withheld.
func (s *Suspendable) IsSuspended() bool { return s.suspended.Load() }

// Suspend starts withholding output. It returns false if output was already withheld.
func (s *Suspendable) Suspend() bool { return s.suspended.CompareAndSwap(false, true) }

// Resume stops withholding output and writes everything withheld to Downstream.
// The number of bytes dropped while suspended is returned alongside the outcome of the copy.
func (s *Suspendable) Resume() (resumed bool, dropped uintptr, n int64, err error) {
	if !s.suspended.CompareAndSwap(true, false) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped, s.dropped = uintptr(s.dropped), 0
	n, err = io.Copy(s.Downstream, &s.withheld)
	s.withheld.Reset()
	return true, dropped, n, err
}
