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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sagernet/sing/common/bufio"
)

const (
	lengthPrefixSize = 4
	maxFrameSize     = 64 * 1024 * 1024
	initialReadSize  = 4096
)

// Transport is the dispatcher's one external dependency for bytes on
// the wire: framed reads and writes of opaque buffers. Framing itself
// (the length prefix) is the transport's responsibility, not the
// dispatcher's.
type Transport interface {
	// Next blocks for the next complete framed buffer. The returned
	// error is nil or one that classifies via classifyReadError.
	Next(ctx context.Context) ([]byte, error)
	// WriteFrame serializes payload behind a length prefix and writes
	// it in one logical operation. The returned error classifies via
	// classifyWriteError.
	WriteFrame(ctx context.Context, payload []byte) error
}

// netTransport is the concrete Transport backing a TCP connection,
// grounded directly on smux's Session.recvLoop/sendLoop: a fixed-size
// length header read with io.ReadFull, and a vectorised-write fast
// path over sing's bufio helpers when the underlying net.Conn supports
// it.
type netTransport struct {
	conn    net.Conn
	writeMu sync.Mutex
	readBuf []byte
}

// NewTransport adapts a dialed net.Conn into a Transport using
// ZooKeeper's own 4-byte big-endian length-prefix framing.
func NewTransport(conn net.Conn) Transport {
	return &netTransport{conn: conn, readBuf: make([]byte, initialReadSize)}
}

func (t *netTransport) Next(ctx context.Context) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = t.conn.SetReadDeadline(dl)
	} else {
		_ = t.conn.SetReadDeadline(time.Time{})
	}

	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(t.conn, lenBuf[:]); err != nil {
		return nil, err
	}

	n := int(binary.BigEndian.Uint32(lenBuf[:]))
	if n < 0 || n > maxFrameSize {
		return nil, fmt.Errorf("zkconn: invalid frame length %d", n)
	}
	if cap(t.readBuf) < n {
		t.readBuf = make([]byte, n)
	}
	buf := t.readBuf[:n]
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, buf)
	return out, nil
}

func (t *netTransport) WriteFrame(ctx context.Context, payload []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(dl)
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}

	var lenBuf [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if bw, ok := bufio.CreateVectorisedWriter(t.conn); ok {
		_, err := bufio.WriteVectorised(bw, [][]byte{lenBuf[:], payload})
		return err
	}

	full := make([]byte, lengthPrefixSize+len(payload))
	copy(full, lenBuf[:])
	copy(full[lengthPrefixSize:], payload)
	_, err := t.conn.Write(full)
	return err
}

// classifyReadError turns a raw transport error into the dispatcher's
// TransportError taxonomy. EOF and "use of closed network connection"
// are channel errors (fatal); a caller-side context cancellation or
// deadline is classified Other (cancels only the affected request);
// anything else defaults to channel, treating every unclassified read
// failure as fatal rather than silently limping on.
func classifyReadError(err error) *TransportError {
	if err == nil {
		return nil
	}
	if isSoftTransportError(err) {
		return &TransportError{Kind: TransportOther, Cause: err}
	}
	return &TransportError{Kind: TransportChannelError, Cause: err}
}

// classifyWriteError mirrors classifyReadError for the write side.
func classifyWriteError(err error) *TransportError {
	if err == nil {
		return nil
	}
	if isSoftTransportError(err) {
		return &TransportError{Kind: TransportOther, Cause: err}
	}
	return &TransportError{Kind: TransportWriteError, Cause: err}
}

func isSoftTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
