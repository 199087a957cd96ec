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

	"github.com/sagernet/zkconn/codec"
)

// Client is the public high-level API: one method per ZooKeeper
// operation, each a thin wrapper submitting a RequestPacket through the
// dispatcher and unwrapping its typed reply body. Mirrors smux's own
// Session/Stream split — Session owns the wire loops, Stream exposes
// the narrow per-call surface a user actually calls — generalized here
// to a single façade over one dispatcher per connection instead of
// many streams over one session.
type Client struct {
	disp     *Dispatcher
	session  *Session
	registry *Registry
	conn     *ConnState
}

func newClient(disp *Dispatcher, session *Session, registry *Registry, conn *ConnState) *Client {
	return &Client{disp: disp, session: session, registry: registry, conn: conn}
}

// SessionID returns the negotiated ZooKeeper session id.
func (c *Client) SessionID() int64 { return c.session.SessionID() }

// State returns the current session state.
func (c *Client) State() SessionState { return c.session.State() }

// Stats returns a snapshot of the dispatcher's lifetime counters.
func (c *Client) Stats() Stats { return c.disp.Stats() }

func (c *Client) submit(ctx context.Context, opcode codec.Opcode, body codec.Encodable) (ReplyPacket, error) {
	return c.disp.Submit(ctx, NewProtocolRequest(opcode, body))
}

func (c *Client) ping(ctx context.Context) error {
	_, err := c.submit(ctx, codec.OpPing, &codec.PingRequest{})
	return err
}

// Create creates a znode at path with the given data, ACL, and flags,
// returning the path the server assigned (may differ from the request
// for sequential nodes).
func (c *Client) Create(ctx context.Context, path string, data []byte, acl []codec.ACL, flags int32) (string, error) {
	reply, err := c.submit(ctx, codec.OpCreate, &codec.CreateRequest{Path: path, Data: data, Acl: acl, Flags: flags})
	if err != nil {
		return "", err
	}
	resp, ok := reply.Body.(*codec.CreateResponse)
	if !ok {
		return "", nil
	}
	return resp.Path, nil
}

// Delete removes the znode at path if its version matches (-1 to skip
// the version check).
func (c *Client) Delete(ctx context.Context, path string, version int32) error {
	_, err := c.submit(ctx, codec.OpDelete, &codec.DeleteRequest{Path: path, Version: version})
	return err
}

// Exists checks whether path exists, optionally registering an exist
// watch that fires on the next change (or creation) at that path.
func (c *Client) Exists(ctx context.Context, path string, watch bool) (codec.Stat, <-chan WatchEvent, error) {
	var ch <-chan WatchEvent
	if watch {
		ch = c.registry.Register(path, watchExist)
	}
	reply, err := c.submit(ctx, codec.OpExists, &codec.ExistsRequest{Path: path, Watch: watch})
	if err != nil {
		return codec.Stat{}, ch, err
	}
	resp, ok := reply.Body.(*codec.ExistsResponse)
	if !ok {
		return codec.Stat{}, ch, nil
	}
	return resp.Stat, ch, nil
}

// Get returns the data and Stat at path, optionally registering a data
// watch.
func (c *Client) Get(ctx context.Context, path string, watch bool) ([]byte, codec.Stat, <-chan WatchEvent, error) {
	var ch <-chan WatchEvent
	if watch {
		ch = c.registry.Register(path, watchData)
	}
	reply, err := c.submit(ctx, codec.OpGetData, &codec.GetDataRequest{Path: path, Watch: watch})
	if err != nil {
		return nil, codec.Stat{}, ch, err
	}
	resp, ok := reply.Body.(*codec.GetDataResponse)
	if !ok {
		return nil, codec.Stat{}, ch, nil
	}
	return resp.Data, resp.Stat, ch, nil
}

// SetData overwrites the data at path if its version matches (-1 to
// skip the version check), returning the updated Stat.
func (c *Client) SetData(ctx context.Context, path string, data []byte, version int32) (codec.Stat, error) {
	reply, err := c.submit(ctx, codec.OpSetData, &codec.SetDataRequest{Path: path, Data: data, Version: version})
	if err != nil {
		return codec.Stat{}, err
	}
	resp, ok := reply.Body.(*codec.SetDataResponse)
	if !ok {
		return codec.Stat{}, nil
	}
	return resp.Stat, nil
}

// Children lists the immediate children of path, optionally
// registering a child watch.
func (c *Client) Children(ctx context.Context, path string, watch bool) ([]string, <-chan WatchEvent, error) {
	var ch <-chan WatchEvent
	if watch {
		ch = c.registry.Register(path, watchChild)
	}
	reply, err := c.submit(ctx, codec.OpGetChildren2, &codec.GetChildren2Request{Path: path, Watch: watch})
	if err != nil {
		return nil, ch, err
	}
	resp, ok := reply.Body.(*codec.GetChildren2Response)
	if !ok {
		return nil, ch, nil
	}
	return resp.Children, ch, nil
}

// GetACL returns the ACL list and Stat for path.
func (c *Client) GetACL(ctx context.Context, path string) ([]codec.ACL, codec.Stat, error) {
	reply, err := c.submit(ctx, codec.OpGetACL, &codec.GetACLRequest{Path: path})
	if err != nil {
		return nil, codec.Stat{}, err
	}
	resp, ok := reply.Body.(*codec.GetACLResponse)
	if !ok {
		return nil, codec.Stat{}, nil
	}
	return resp.Acl, resp.Stat, nil
}

// SetACL replaces the ACL list at path if its ACL version matches (-1
// to skip the version check).
func (c *Client) SetACL(ctx context.Context, path string, acl []codec.ACL, version int32) (codec.Stat, error) {
	reply, err := c.submit(ctx, codec.OpSetACL, &codec.SetACLRequest{Path: path, Acl: acl, Version: version})
	if err != nil {
		return codec.Stat{}, err
	}
	resp, ok := reply.Body.(*codec.SetACLResponse)
	if !ok {
		return codec.Stat{}, nil
	}
	return resp.Stat, nil
}

// Sync asks the server to flush its view of path up to the leader
// before any subsequent read, returning the path the server echoes.
func (c *Client) Sync(ctx context.Context, path string) (string, error) {
	reply, err := c.submit(ctx, codec.OpSync, &codec.SyncRequest{Path: path})
	if err != nil {
		return "", err
	}
	resp, ok := reply.Body.(*codec.SyncResponse)
	if !ok {
		return "", nil
	}
	return resp.Path, nil
}

// AddAuth attaches an authentication credential (scheme, auth) to the
// session.
func (c *Client) AddAuth(ctx context.Context, scheme string, auth []byte) error {
	_, err := c.submit(ctx, codec.OpAuth, &codec.AuthRequest{Scheme: scheme, Auth: auth})
	return err
}

// Multi executes ops as a single atomic transaction, returning the
// per-operation results even when the overall transaction failed (see
// the MULTI design note).
func (c *Client) Multi(ctx context.Context, ops []codec.MultiOp) ([]codec.MultiOpResult, error) {
	reply, err := c.submit(ctx, codec.OpMulti, &codec.MultiRequest{Ops: ops})
	resp, ok := reply.Body.(*codec.MultiResponse)
	if !ok {
		return nil, err
	}
	return resp.Results, err
}

// Close begins a graceful session close: it marks the session closing
// so the read loop exits after the CLOSE_SESSION round trip completes,
// then submits the close request itself.
func (c *Client) Close(ctx context.Context) error {
	c.session.BeginClosing()
	c.session.CancelPingScheduler()
	_, err := c.submit(ctx, codec.OpCloseSession, &codec.CloseSessionRequest{})
	return err
}
