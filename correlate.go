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

import "github.com/sagernet/zkconn/codec"

// correlate takes a decoded reply header and the bytes following it
// and decides whether this is a watch notification (xid -1), a ping
// reply (xid -2), or an ordinary correlated reply, dispatching
// accordingly.
func (d *Dispatcher) correlate(header codec.ReplyHeader, rest []byte) error {
	switch header.Xid {
	case -1:
		return d.handleWatch(rest)
	case -2:
		return d.handlePing(header)
	default:
		return d.handleReply(header, rest)
	}
}

// dispatchWatch decodes an already-parsed WatchEvent into session
// bookkeeping and registry fan-out. It never touches the pending queue
// (I2/P3).
func (d *Dispatcher) dispatchWatch(ev WatchEvent) {
	mgrs := d.snapshotManagers()
	if mgrs.Session != nil {
		mgrs.Session.ParseWatchEvent(ev)
	}
	if mgrs.Watch != nil {
		mgrs.Watch.Process(ev)
	}
	d.metrics.watchesDelivered.Add(1)
}

// handleWatch decodes an xid -1 notification body and fans it out.
func (d *Dispatcher) handleWatch(rest []byte) error {
	ev, err := decodeWatchEvent(rest)
	if err != nil {
		return &DecodeError{Stage: DecodeStageWatch, Cause: err}
	}
	d.dispatchWatch(ev)
	return nil
}

// handlePing correlates an xid -2 reply against the head of the
// pending queue. A ping reply must match a ping request in flight at
// the head of the queue; anything else means the reply stream has
// desynchronized.
func (d *Dispatcher) handlePing(header codec.ReplyHeader) error {
	entry, ok := d.queue.dequeueFront()
	if !ok || !entry.record.HasXid || entry.record.Opcode != codec.OpPing {
		if ok {
			entry.slot.complete(pendingResult{err: ErrAssociation})
		}
		return ErrAssociation
	}
	entry.slot.complete(pendingResult{reply: ReplyPacket{Header: header}})
	d.metrics.repliesDelivered.Add(1)
	return nil
}

// handleReply correlates an ordinary reply (xid >= 0) against the head
// of the pending queue, decodes its body, and completes the matching
// slot. A head-of-queue xid mismatch is fatal: it means some reply was
// lost or duplicated and no later correlation in this stream can be
// trusted.
func (d *Dispatcher) handleReply(header codec.ReplyHeader, rest []byte) error {
	entry, ok := d.queue.dequeueFront()
	if !ok {
		return ErrAssociation
	}
	if !entry.record.HasXid || entry.record.Xid != header.Xid {
		entry.slot.complete(pendingResult{err: ErrAssociation})
		return ErrAssociation
	}

	body, err := decodeBody(entry.record.Opcode, header.Err, rest)
	if err != nil {
		// A body-decode failure after a matched header belongs to this
		// request alone: the slot gets the error, but the stream itself
		// is still in sync (the frame boundary already consumed these
		// bytes), so the read loop keeps serving the rest of the queue.
		derr := &DecodeError{Stage: DecodeStageBody, Cause: err}
		entry.slot.complete(pendingResult{err: derr})
		return nil
	}

	reply := ReplyPacket{Header: header, Body: body}
	if header.Err != 0 {
		entry.slot.complete(pendingResult{reply: reply, err: header.Err.ToError()})
	} else {
		entry.slot.complete(pendingResult{reply: reply})
	}
	d.metrics.repliesDelivered.Add(1)
	return nil
}
