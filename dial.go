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
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sagernet/zkconn/codec"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultTimeout     = 10 * time.Second
	protocolVersion    = 0
)

// Options configures Dial. Constructed via functional options, a plain
// struct with defaults filled in by the constructor rather than a
// builder type.
type Options struct {
	dialTimeout time.Duration
	timeout     time.Duration
	sessionID   int64
	passwd      []byte
	logger      *logrus.Entry
}

// Option mutates an Options under construction.
type Option func(*Options)

// WithDialTimeout overrides how long Dial waits for the TCP handshake
// and for writing the CREATE_SESSION request. The wait for the
// server's CREATE_SESSION reply is not bounded by it.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.dialTimeout = d }
}

// WithSessionTimeout requests a session timeout from the server.
func WithSessionTimeout(d time.Duration) Option {
	return func(o *Options) { o.timeout = d }
}

// WithSessionReuse re-establishes a previously negotiated session
// instead of creating a new one.
func WithSessionReuse(sessionID int64, passwd []byte) Option {
	return func(o *Options) { o.sessionID, o.passwd = sessionID, passwd }
}

// WithLogger overrides the logrus entry used for dispatcher and
// dialer lifecycle logging.
func WithLogger(log *logrus.Entry) Option {
	return func(o *Options) { o.logger = log }
}

func defaultOptions() *Options {
	return &Options{
		dialTimeout: defaultDialTimeout,
		timeout:     defaultTimeout,
		logger:      logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Dial connects to addr, performs the CREATE_SESSION handshake, and
// returns a ready-to-use Client: dial a net.Conn, build the dispatcher
// around it, spawn its background loops, generalized from a bare
// duplex stream multiplexer to a full protocol dispatcher plus its
// three collaborator managers.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	dialCtx, cancel := context.WithTimeout(ctx, o.dialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("zkconn: dial %s: %w", addr, err)
	}

	transport := NewTransport(conn)
	disp := NewDispatcher(transport, o.logger)
	session := NewSession()
	registry := NewRegistry()
	connState := NewConnState()

	disp.Configure(Managers{Conn: connState, Session: session, Watch: registry})
	disp.ConfigureDone()

	session.SetState(codec.StateConnecting)

	connectReq := &codec.ConnectRequest{
		ProtocolVersion: protocolVersion,
		LastZxidSeen:    0,
		Timeout:         int32(o.timeout / time.Millisecond),
		SessionID:       o.sessionID,
		Passwd:          o.passwd,
	}

	reply, err := disp.Submit(dialCtx, NewConnectRequest(connectReq))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("zkconn: create session: %w", err)
	}

	resp, ok := reply.Body.(*codec.ConnectResponse)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("zkconn: create session: unexpected reply body %T", reply.Body)
	}
	if resp.SessionID == 0 {
		_ = conn.Close()
		return nil, fmt.Errorf("zkconn: server rejected session request")
	}

	negotiated := time.Duration(resp.Timeout) * time.Millisecond
	session.SetConnectResult(resp.SessionID, negotiated)
	session.SetState(codec.StateHasSession)

	client := newClient(disp, session, registry, connState)
	session.StartPingScheduler(context.Background(), negotiated/3, client.ping)

	return client, nil
}
