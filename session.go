// MIT License
//
// Copyright (c) 2016-2017 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package zkconn

import (
	"context"
	"sync"
	"time"

	"github.com/sagernet/zkconn/codec"
)

// SessionState is codec.State under a name in this package, used by
// Session and Client.State.
type SessionState = codec.State

// Session is the concrete SessionManager: it tracks connection state,
// the negotiated session id/timeout, whether the caller has begun a
// graceful close, and owns the ping heartbeat scheduler the dispatcher
// cancels on failure. Keepalive bookkeeping lives directly on the
// connection object rather than in a separate supervisor, the way
// smux keeps its own liveness timers on Session.
type Session struct {
	mu              sync.Mutex
	state           SessionState
	sessionID       int64
	sessionTimeout  time.Duration
	closing         bool
	pingCancel      context.CancelFunc
	onStateChange   func(SessionState)
}

// NewSession constructs a Session in the disconnected state.
func NewSession() *Session {
	return &Session{state: codec.StateDisconnected}
}

// OnStateChange installs a callback invoked whenever SetState changes
// the observed state. Nothing in this package installs one; Dial does
// not use it.
func (s *Session) OnStateChange(fn func(SessionState)) {
	s.mu.Lock()
	s.onStateChange = fn
	s.mu.Unlock()
}

// IsClosingSession reports whether the caller has requested a graceful
// close; the read loop checks this before blocking on the next frame.
func (s *Session) IsClosingSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// BeginClosing marks the session as closing, used by Client.Close
// before it submits the CLOSE_SESSION request.
func (s *Session) BeginClosing() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
}

// ParseWatchEvent applies a session-level watch notification
// (EventSession) to local state; path-scoped events are left to the
// WatchRegistry and otherwise ignored here.
func (s *Session) ParseWatchEvent(ev WatchEvent) {
	if ev.Type != codec.EventSession {
		return
	}
	s.SetState(ev.State)
}

// SetState updates the session state and invokes the registered
// callback, if any, outside the lock.
func (s *Session) SetState(state SessionState) {
	s.mu.Lock()
	s.state = state
	cb := s.onStateChange
	s.mu.Unlock()
	if cb != nil {
		cb(state)
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetConnectResult records the session id and negotiated timeout from
// a CREATE_SESSION reply.
func (s *Session) SetConnectResult(sessionID int64, timeout time.Duration) {
	s.mu.Lock()
	s.sessionID = sessionID
	s.sessionTimeout = timeout
	s.mu.Unlock()
}

// SessionID returns the negotiated session id, or 0 before connect.
func (s *Session) SessionID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// CancelPingScheduler stops the heartbeat goroutine started by
// StartPingScheduler, if one is running. Called by Dispatcher.fail and
// by a graceful close.
func (s *Session) CancelPingScheduler() {
	s.mu.Lock()
	cancel := s.pingCancel
	s.pingCancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// StartPingScheduler launches the background goroutine that submits a
// PING request every interval until canceled or ctx is done: a single
// ticker-driven loop stopped by canceling a context rather than
// closing a done channel directly, so a concurrent CancelPingScheduler
// is safe to call more than once.
func (s *Session) StartPingScheduler(ctx context.Context, interval time.Duration, ping func(context.Context) error) {
	pingCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.pingCancel = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				_ = ping(pingCtx)
			}
		}
	}()
}
