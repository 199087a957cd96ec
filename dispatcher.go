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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sagernet/zkconn/codec"
)

// SessionManager is the dispatcher's narrow view of session state.
type SessionManager interface {
	IsClosingSession() bool
	ParseWatchEvent(WatchEvent)
	CancelPingScheduler()
	SetState(codec.State)
}

// WatchRegistry is the dispatcher's narrow view of watch fan-out.
type WatchRegistry interface {
	Process(WatchEvent)
}

// ConnManager is the dispatcher's narrow view of connection validity.
type ConnManager interface {
	Invalidate()
}

// Managers bundles the three collaborator handles attached once via
// the configure control packet and thereafter treated as read-only
// references.
type Managers struct {
	Conn    ConnManager
	Session SessionManager
	Watch   WatchRegistry
}

// dispatcherState names the dispatcher's lifecycle phases. It exists
// for documentation only; the actual behavior is driven by the
// hasFailed/readLoopStarted flags and the session manager's closing
// check, not by an explicit state field.
type dispatcherState int32

const (
	stateUnconfigured dispatcherState = iota
	stateConfigured
	stateRunning
	stateFailed
	stateDrained
)

// Dispatcher is the orchestrator: the public entry point for
// submitting requests, the owner of the pending queue and the two
// monotonic state flags, and the coordinator of dispatcher-wide
// failure. One reader goroutine (readLoop, analogous to smux's
// recvLoop), a mutex-guarded write path (analogous to OpenStream's
// guarded write+register), and sync.Once-guarded terminal-failure
// bookkeeping (analogous to notifyReadError/notifyWriteError/
// notifyProtoError).
type Dispatcher struct {
	transport Transport
	queue     *pendingQueue
	metrics   *metrics
	log       *logrus.Entry

	xid atomic.Int32

	hasFailed       atomic.Bool
	readLoopStarted atomic.Bool
	failOnce        sync.Once

	// submitMu is the critical section that covers enqueue and write
	// atomically: it serializes competing submitters and guarantees a
	// reply can never be dequeued for a record that hasn't been
	// enqueued yet.
	submitMu sync.Mutex

	managersMu sync.RWMutex
	managers   Managers

	readLoopDone chan struct{}
}

// NewDispatcher constructs an unconfigured Dispatcher over transport.
// The read loop does not start until the first real submission.
func NewDispatcher(transport Transport, log *logrus.Entry) *Dispatcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{
		transport:    transport,
		queue:        newPendingQueue(),
		metrics:      newMetrics(),
		log:          log,
		readLoopDone: make(chan struct{}),
	}
}

func (d *Dispatcher) snapshotManagers() Managers {
	d.managersMu.RLock()
	defer d.managersMu.RUnlock()
	return d.managers
}

// Configure attaches the collaborator manager handles. It bypasses the
// pending queue entirely.
func (d *Dispatcher) Configure(m Managers) {
	d.managersMu.Lock()
	d.managers = m
	d.managersMu.Unlock()
}

// ConfigureDone signals that setup is complete. In this design
// Configure already attaches every handle the dispatcher needs, so
// ConfigureDone is a no-op beyond existing for the tagged union's
// exhaustiveness — a caller that wants to take the current session
// from the session manager can simply do so through the handle it
// already passed to Configure.
func (d *Dispatcher) ConfigureDone() {}

func (d *Dispatcher) nextXid() int32 {
	return d.xid.Add(1)
}

// Submit is the dispatcher's single public entry point. It validates
// !has_failed, then — for protocol and connect packets —
// allocates a result slot and, inside the submit critical section,
// enqueues the pending record and writes the packet, starting the read
// loop exactly once if this is the first submission. Configure and
// ConfigureDone packets bypass all of that.
func (d *Dispatcher) Submit(ctx context.Context, p RequestPacket) (ReplyPacket, error) {
	switch p.kind {
	case kindConfigureManagers:
		d.Configure(*p.managers)
		return ReplyPacket{}, nil
	case kindConfigureDone:
		d.ConfigureDone()
		return ReplyPacket{}, nil
	}

	if d.hasFailed.Load() {
		return ReplyPacket{}, ErrDispatcherFailed
	}

	record := RequestRecord{Opcode: p.opcode}
	var xid int32
	if p.kind == kindProtocol {
		xid = d.nextXid()
		record.Xid = xid
		record.HasXid = true
	}
	slot := newResultSlot()
	entry := &pendingEntry{record: record, slot: slot}

	d.submitMu.Lock()
	if d.hasFailed.Load() {
		d.submitMu.Unlock()
		return ReplyPacket{}, ErrDispatcherFailed
	}
	el := d.queue.enqueue(entry)

	writeErr := writePacket(ctx, d.transport, p, xid)
	if writeErr != nil {
		d.queue.remove(el)
		var terr *TransportError
		if isTransportError(writeErr, &terr) && terr.Kind == TransportOther {
			d.submitMu.Unlock()
			return ReplyPacket{}, writeErr
		}
		d.submitMu.Unlock()
		d.fail(writeErr)
		return ReplyPacket{}, writeErr
	}

	started := d.readLoopStarted.CompareAndSwap(false, true)
	d.submitMu.Unlock()

	if started {
		go d.readLoop()
	}

	reply, err := slot.wait()
	return reply, err
}

func isTransportError(err error, target **TransportError) bool {
	te, ok := err.(*TransportError)
	if !ok {
		return false
	}
	*target = te
	return true
}

// fail moves the dispatcher into its terminal failed state: sets
// has_failed, cancels the session's heartbeat scheduler, marks the
// connection invalid, and drains the pending queue, completing every
// entry with a cancellation wrapping cause. Idempotent via sync.Once,
// matching smux's own notifyReadError/notifyWriteError/notifyProtoError
// pattern.
func (d *Dispatcher) fail(cause error) {
	d.failOnce.Do(func() {
		d.hasFailed.Store(true)

		mgrs := d.snapshotManagers()
		if mgrs.Session != nil {
			mgrs.Session.CancelPingScheduler()
		}
		if mgrs.Conn != nil {
			mgrs.Conn.Invalidate()
		}

		entries := d.queue.drain()
		cancelErr := fmt.Errorf("%w: %w", ErrDispatcherFailed, cause)
		for _, e := range entries {
			e.slot.complete(pendingResult{err: cancelErr})
		}

		d.metrics.failures.Add(1)
		d.log.WithError(cause).WithField("pending", len(entries)).Warn("zkconn: dispatcher failed")
	})
}

// Failed reports whether the dispatcher has entered its terminal
// failed state.
func (d *Dispatcher) Failed() bool { return d.hasFailed.Load() }

// readLoop runs continuously: while the session isn't closing and the
// dispatcher hasn't failed, pull one buffer, decode it, and either
// correlate it to a pending request or fan it out as a watch event.
func (d *Dispatcher) readLoop() {
	defer close(d.readLoopDone)
	ctx := context.Background()

	for {
		if d.hasFailed.Load() {
			return
		}
		mgrs := d.snapshotManagers()
		if mgrs.Session != nil && mgrs.Session.IsClosingSession() {
			return
		}

		buf, terr := readFrame(ctx, d.transport)
		if terr != nil {
			d.handleReadError(terr)
			return
		}

		if front, ok := d.queue.front(); ok && !front.record.HasXid {
			// The head of the queue is the session-connect record: its
			// reply has no header at all, so the whole buffer is the
			// ConnectResponse body, decoded directly.
			d.handleConnectReply(buf)
			continue
		}

		header, rest, derr := codec.DecodeReplyHeader(buf)
		if derr != nil {
			// Header decode failure: re-interpret the same buffer as a
			// watch notification before giving up.
			ev, werr := decodeWatchEvent(buf)
			if werr != nil {
				d.fail(&DecodeError{Stage: DecodeStageHeader, Cause: derr})
				return
			}
			d.dispatchWatch(ev)
			continue
		}

		if err := d.correlate(header, rest); err != nil {
			d.fail(err)
			return
		}
	}
}

// handleReadError applies the read-error disposition: channel errors
// always fail the dispatcher. "Other" errors could in principle cancel
// only the current front entry and stop the read loop without failing
// the dispatcher — but that would leave every later pending entry
// stuck forever with no one reading replies for them, so this
// implementation takes the conservative option and fails the
// dispatcher here too, after first giving the front entry a more
// specific error.
func (d *Dispatcher) handleReadError(terr *TransportError) {
	if terr.Kind == TransportOther {
		if front, ok := d.queue.front(); ok {
			front.slot.complete(pendingResult{err: terr})
		}
	}
	d.fail(terr)
}

func (d *Dispatcher) handleConnectReply(buf []byte) {
	entry, ok := d.queue.dequeueFront()
	if !ok {
		// front() and dequeueFront() observed different states only if
		// something else drained the queue between them, i.e. fail()
		// raced us. Nothing to complete.
		return
	}
	resp := &codec.ConnectResponse{}
	if err := resp.Decode(codec.NewCursor(buf)); err != nil {
		entry.slot.complete(pendingResult{err: &DecodeError{Stage: DecodeStageBody, Cause: err}})
		return
	}
	d.onSessionEstablished(resp)
	entry.slot.complete(pendingResult{reply: ReplyPacket{Body: resp}})
	d.metrics.repliesDelivered.Add(1)
}

// onSessionEstablished marks the session connected (or expired, if the
// server rejected the request) on receipt of the CREATE_SESSION reply.
func (d *Dispatcher) onSessionEstablished(resp *codec.ConnectResponse) {
	mgrs := d.snapshotManagers()
	if mgrs.Session == nil {
		return
	}
	if resp.SessionID == 0 {
		mgrs.Session.SetState(codec.StateExpired)
		return
	}
	mgrs.Session.SetState(codec.StateHasSession)
}
