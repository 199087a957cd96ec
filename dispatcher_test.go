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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sagernet/zkconn/codec"
)

// fakeTransport implements Transport entirely in memory: Submit's
// writes land on outbound, and the test drives replies by pushing onto
// inbound. This exercises the dispatcher's framing-agnostic logic
// without a real socket.
type fakeTransport struct {
	inbound  chan []byte
	outbound chan []byte
	closed   chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound:  make(chan []byte, 16),
		outbound: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (f *fakeTransport) Next(ctx context.Context) ([]byte, error) {
	select {
	case buf, ok := <-f.inbound:
		if !ok {
			return nil, errors.New("fake: connection closed")
		}
		return buf, nil
	case <-f.closed:
		return nil, errors.New("fake: connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) WriteFrame(ctx context.Context, payload []byte) error {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	select {
	case f.outbound <- buf:
		return nil
	case <-f.closed:
		return errors.New("fake: connection closed")
	}
}

func (f *fakeTransport) pushReply(buf []byte) { f.inbound <- buf }
func (f *fakeTransport) close()               { close(f.closed) }

func newTestDispatcher() (*Dispatcher, *fakeTransport, *Session, *Registry, *ConnState) {
	ft := newFakeTransport()
	d := NewDispatcher(ft, nil)
	session := NewSession()
	registry := NewRegistry()
	conn := NewConnState()
	d.Configure(Managers{Conn: conn, Session: session, Watch: registry})
	d.ConfigureDone()
	return d, ft, session, registry, conn
}

func encodeReply(t *testing.T, xid int32, errCode codec.ErrCode, body codec.Encodable) []byte {
	t.Helper()
	w := codec.NewWriter()
	w.WriteInt32(xid)
	w.WriteInt64(0)
	w.WriteInt32(int32(errCode))
	if body != nil {
		body.Encode(w)
	}
	return w.Bytes()
}

// getDataReply writes the server's side of a GetData reply body: the
// data buffer followed by an all-zero Stat, which is what
// codec.GetDataResponse.Decode reads back.
type getDataReply struct {
	data []byte
}

func (r *getDataReply) Encode(w *codec.Writer) {
	w.WriteBuffer(r.data)
	w.WriteInt64(0) // Czxid
	w.WriteInt64(0) // Mzxid
	w.WriteInt64(0) // Ctime
	w.WriteInt64(0) // Mtime
	w.WriteInt32(0) // Version
	w.WriteInt32(0) // Cversion
	w.WriteInt32(0) // Aversion
	w.WriteInt64(0) // EphemeralOwner
	w.WriteInt32(0) // DataLength
	w.WriteInt32(0) // NumChildren
	w.WriteInt64(0) // Pzxid
}

func TestSubmitCorrelatesReplyByXid(t *testing.T) {
	d, ft, _, _, _ := newTestDispatcher()

	resultCh := make(chan ReplyPacket, 1)
	errCh := make(chan error, 1)
	go func() {
		reply, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpGetData, &codec.GetDataRequest{Path: "/a"}))
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- reply
	}()

	<-ft.outbound // consume the written request

	ft.pushReply(encodeReply(t, 1, codec.ErrOk, &getDataReply{data: []byte("v")}))

	select {
	case reply := <-resultCh:
		resp, ok := reply.Body.(*codec.GetDataResponse)
		require.True(t, ok)
		require.Equal(t, []byte("v"), resp.Data)
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestBodyDecodeErrorOnlyAffectsMatchedSlot(t *testing.T) {
	d, ft, _, _, conn := newTestDispatcher()

	errCh1 := make(chan error, 1)
	go func() {
		_, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpGetData, &codec.GetDataRequest{Path: "/a"}))
		errCh1 <- err
	}()
	<-ft.outbound

	resultCh2 := make(chan ReplyPacket, 1)
	errCh2 := make(chan error, 1)
	go func() {
		reply, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpGetData, &codec.GetDataRequest{Path: "/b"}))
		if err != nil {
			errCh2 <- err
			return
		}
		resultCh2 <- reply
	}()
	<-ft.outbound

	// Header matches the first request's xid, but the body is truncated
	// (no Data buffer, no Stat): GetDataResponse.Decode fails partway
	// through, after the header has already been matched.
	ft.pushReply(encodeReply(t, 1, codec.ErrOk, nil))

	err1 := <-errCh1
	require.Error(t, err1)
	var derr *DecodeError
	require.ErrorAs(t, err1, &derr)
	require.Equal(t, DecodeStageBody, derr.Stage)

	// The dispatcher must still be alive to serve the second request.
	ft.pushReply(encodeReply(t, 2, codec.ErrOk, &getDataReply{data: []byte("v")}))

	select {
	case reply := <-resultCh2:
		resp, ok := reply.Body.(*codec.GetDataResponse)
		require.True(t, ok)
		require.Equal(t, []byte("v"), resp.Data)
	case err := <-errCh2:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the second request's reply")
	}

	require.False(t, d.Failed())
	require.True(t, conn.Valid())
}

func TestXidMismatchFailsDispatcherAndCancelsAllPending(t *testing.T) {
	d, ft, _, _, conn := newTestDispatcher()

	errCh1 := make(chan error, 1)
	errCh2 := make(chan error, 1)
	go func() {
		_, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpGetData, &codec.GetDataRequest{Path: "/a"}))
		errCh1 <- err
	}()
	<-ft.outbound

	go func() {
		_, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpGetData, &codec.GetDataRequest{Path: "/b"}))
		errCh2 <- err
	}()
	<-ft.outbound

	// Reply claims xid 99, which matches neither pending request.
	ft.pushReply(encodeReply(t, 99, codec.ErrOk, &getDataReply{}))

	err1 := <-errCh1
	require.Error(t, err1)
	err2 := <-errCh2
	require.Error(t, err2)

	require.True(t, d.Failed())
	require.False(t, conn.Valid())
}

func TestWatchNotificationDoesNotConsumeQueue(t *testing.T) {
	d, ft, session, registry, _ := newTestDispatcher()
	_ = session

	pendingErrCh := make(chan error, 1)
	pendingResultCh := make(chan ReplyPacket, 1)
	go func() {
		reply, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpGetData, &codec.GetDataRequest{Path: "/watched"}))
		if err != nil {
			pendingErrCh <- err
			return
		}
		pendingResultCh <- reply
	}()
	<-ft.outbound

	watchCh := registry.Register("/watched", watchData)

	w := codec.NewWriter()
	w.WriteInt32(-1) // xid: watch notification
	w.WriteInt64(0)  // zxid
	w.WriteInt32(0)  // err
	w.WriteInt32(int32(codec.EventNodeDataChanged))
	w.WriteInt32(int32(codec.StateConnected))
	w.WriteString("/watched")
	ft.pushReply(w.Bytes())

	select {
	case ev := <-watchCh:
		require.Equal(t, "/watched", ev.Path)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	ft.pushReply(encodeReply(t, 1, codec.ErrOk, &getDataReply{data: []byte("v")}))

	select {
	case reply := <-pendingResultCh:
		resp := reply.Body.(*codec.GetDataResponse)
		require.Equal(t, []byte("v"), resp.Data)
	case err := <-pendingErrCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the request the watch event should not have consumed")
	}
}

func TestFailDrainsAllPendingRequests(t *testing.T) {
	d, ft, _, _, conn := newTestDispatcher()

	n := 3
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpGetData, &codec.GetDataRequest{Path: "/x"}))
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		<-ft.outbound
	}

	ft.close()

	for i := 0; i < n; i++ {
		err := <-errs
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrDispatcherFailed))
	}
	require.True(t, d.Failed())
	require.False(t, conn.Valid())
}

func TestSubmitAfterFailureReturnsImmediately(t *testing.T) {
	d, ft, _, _, _ := newTestDispatcher()
	ft.close()

	// Force a failed read to flip has_failed.
	go d.readLoop()
	time.Sleep(50 * time.Millisecond)

	_, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpPing, &codec.PingRequest{}))
	require.ErrorIs(t, err, ErrDispatcherFailed)
}

func TestPingReplyCorrelatesAgainstHeadOfQueue(t *testing.T) {
	d, ft, _, _, _ := newTestDispatcher()

	resultCh := make(chan ReplyPacket, 1)
	go func() {
		reply, err := d.Submit(context.Background(), NewProtocolRequest(codec.OpPing, &codec.PingRequest{}))
		require.NoError(t, err)
		resultCh <- reply
	}()
	<-ft.outbound

	w := codec.NewWriter()
	w.WriteInt32(-2)
	w.WriteInt64(0)
	w.WriteInt32(0)
	ft.pushReply(w.Bytes())

	select {
	case <-resultCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ping reply")
	}
}
