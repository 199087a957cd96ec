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
	"container/list"
	"sync"
)

// pendingResult is what a resultSlot is completed with: reply alone on
// success, err alone on a cancellation or decode failure, or both when
// the server reported a protocol-level error — the header-carried
// reply is still delivered so the caller can inspect it alongside the
// error ToError() produced.
type pendingResult struct {
	reply ReplyPacket
	err   error
}

// resultSlot is a single-assignment future. The first complete() wins;
// later calls are silently ignored, which is what lets fail()'s drain
// and an in-flight decode race harmlessly.
type resultSlot struct {
	ch   chan pendingResult
	once sync.Once
}

func newResultSlot() *resultSlot {
	return &resultSlot{ch: make(chan pendingResult, 1)}
}

func (s *resultSlot) complete(r pendingResult) {
	s.once.Do(func() { s.ch <- r })
}

func (s *resultSlot) wait() (ReplyPacket, error) {
	r := <-s.ch
	return r.reply, r.err
}

// pendingEntry pairs a correlation record with the slot its eventual
// reply (or cancellation) completes.
type pendingEntry struct {
	record RequestRecord
	slot   *resultSlot
}

// pendingQueue is the FIFO of outstanding (record, slot) pairs. Enqueue
// appends, dequeueFront pops the
// head for normal correlation, front is a non-destructive peek used to
// decide whether the next frame should be read as a headerless
// session-connect reply, and remove/drain support the two paths that
// don't follow strict head-of-queue order: a failed write rolling back
// its own (possibly non-head) entry, and dispatcher-wide failure
// draining everything at once.
type pendingQueue struct {
	mu sync.Mutex
	l  *list.List
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{l: list.New()}
}

// enqueue appends e and returns the list element backing it, which the
// caller can later pass to remove() to roll back a failed write
// without disturbing FIFO order for everyone else.
func (q *pendingQueue) enqueue(e *pendingEntry) *list.Element {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.PushBack(e)
}

// remove drops a specific entry, used when a write fails after the
// entry was already enqueued under the submit critical section.
func (q *pendingQueue) remove(el *list.Element) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.l.Remove(el)
}

// front non-destructively returns the head entry, used before every
// decode to tell a session-connect reply (no header at all) apart from
// an ordinary framed reply.
func (q *pendingQueue) front() (*pendingEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	el := q.l.Front()
	if el == nil {
		return nil, false
	}
	return el.Value.(*pendingEntry), true
}

// dequeueFront pops and returns the head entry.
func (q *pendingQueue) dequeueFront() (*pendingEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	el := q.l.Front()
	if el == nil {
		return nil, false
	}
	q.l.Remove(el)
	return el.Value.(*pendingEntry), true
}

// drain empties the queue and returns everything that was in it, in
// order, for fail() to cancel in one pass (I3).
func (q *pendingQueue) drain() []*pendingEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*pendingEntry, 0, q.l.Len())
	for el := q.l.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*pendingEntry))
	}
	q.l.Init()
	return out
}

func (q *pendingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}
