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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sagernet/zkconn/codec"
)

func newTestClient() (*Client, *fakeTransport) {
	d, ft, session, registry, conn := newTestDispatcher()
	return newClient(d, session, registry, conn), ft
}

func TestClientCreateUnwrapsPath(t *testing.T) {
	c, ft := newTestClient()

	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		path, err := c.Create(context.Background(), "/a", []byte("x"), []codec.ACL{{Perms: 31, Scheme: "world", ID: "anyone"}}, 0)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- path
	}()

	<-ft.outbound
	w := codec.NewWriter()
	w.WriteInt32(1)
	w.WriteInt64(0)
	w.WriteInt32(0)
	w.WriteString("/a")
	ft.pushReply(w.Bytes())

	select {
	case path := <-resultCh:
		require.Equal(t, "/a", path)
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestClientGetRegistersWatchOnRequest(t *testing.T) {
	c, ft := newTestClient()

	resultCh := make(chan []byte, 1)
	errCh := make(chan error, 1)
	var watchCh <-chan WatchEvent
	go func() {
		data, _, ch, err := c.Get(context.Background(), "/a", true)
		watchCh = ch
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- data
	}()

	<-ft.outbound
	w := codec.NewWriter()
	w.WriteInt32(1)
	w.WriteInt64(0)
	w.WriteInt32(0)
	w.WriteBuffer([]byte("value"))
	for i := 0; i < 4; i++ {
		w.WriteInt64(0)
	}
	w.WriteInt32(0)
	w.WriteInt32(0)
	w.WriteInt32(0)
	w.WriteInt64(0)
	w.WriteInt32(0)
	w.WriteInt32(0)
	w.WriteInt64(0)
	ft.pushReply(w.Bytes())

	select {
	case data := <-resultCh:
		require.Equal(t, []byte("value"), data)
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}

	// The watch channel was registered before the server ever answered
	// the request, so it is already live for a later notification.
	require.NotNil(t, watchCh)
}

func TestClientDeleteHeaderOnlyReply(t *testing.T) {
	c, ft := newTestClient()

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Delete(context.Background(), "/a", -1)
	}()

	<-ft.outbound
	w := codec.NewWriter()
	w.WriteInt32(1)
	w.WriteInt64(0)
	w.WriteInt32(0)
	ft.pushReply(w.Bytes())

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestClientGetSurfacesServerError(t *testing.T) {
	c, ft := newTestClient()

	errCh := make(chan error, 1)
	go func() {
		_, _, _, err := c.Get(context.Background(), "/missing", false)
		errCh <- err
	}()

	<-ft.outbound
	w := codec.NewWriter()
	w.WriteInt32(1)
	w.WriteInt64(0)
	w.WriteInt32(int32(codec.ErrNoNode))
	ft.pushReply(w.Bytes())

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestClientMultiSurfacesPartialResultsOnFailure(t *testing.T) {
	c, ft := newTestClient()

	resultCh := make(chan []codec.MultiOpResult, 1)
	errCh := make(chan error, 1)
	go func() {
		results, err := c.Multi(context.Background(), []codec.MultiOp{
			{Type: codec.MultiOpCreate, Create: &codec.CreateRequest{Path: "/a"}},
			{Type: codec.MultiOpCheck, Check: &codec.CheckVersionRequest{Path: "/b", Version: 5}},
		})
		if err != nil {
			errCh <- err
			resultCh <- results
			return
		}
		resultCh <- results
	}()

	<-ft.outbound
	w := codec.NewWriter()
	w.WriteInt32(1)
	w.WriteInt64(0)
	w.WriteInt32(int32(codec.ErrBadVersion))

	multiHdr := func(t codec.MultiOpType, done bool, e codec.ErrCode) {
		w.WriteInt32(int32(t))
		w.WriteBool(done)
		w.WriteInt32(int32(e))
	}
	multiHdr(codec.MultiOpCreate, false, codec.ErrOk)
	w.WriteString("/a")
	multiHdr(codec.MultiOpCheck, false, codec.ErrBadVersion)
	multiHdr(-1, true, codec.ErrOk)

	ft.pushReply(w.Bytes())

	select {
	case results := <-resultCh:
		require.Len(t, results, 2)
		require.Equal(t, codec.ErrBadVersion, results[1].Err)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
	select {
	case err := <-errCh:
		require.Error(t, err)
	default:
	}
}
