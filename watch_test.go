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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagernet/zkconn/codec"
)

func TestRegistryFansOutAndFiresOnce(t *testing.T) {
	r := NewRegistry()
	ch := r.Register("/a", watchData)

	r.Process(WatchEvent{Type: codec.EventNodeDataChanged, Path: "/a"})

	ev, ok := <-ch
	require.True(t, ok)
	require.Equal(t, "/a", ev.Path)

	_, ok = <-ch
	require.False(t, ok, "watch channel should close after firing once")
}

func TestRegistryMultipleSubscribersAllFire(t *testing.T) {
	r := NewRegistry()
	ch1 := r.Register("/a", watchChild)
	ch2 := r.Register("/a", watchChild)

	r.Process(WatchEvent{Type: codec.EventNodeChildrenChanged, Path: "/a"})

	ev1 := <-ch1
	ev2 := <-ch2
	require.Equal(t, "/a", ev1.Path)
	require.Equal(t, "/a", ev2.Path)
}

func TestRegistryIgnoresSessionEvents(t *testing.T) {
	r := NewRegistry()
	ch := r.Register("/a", watchData)

	r.Process(WatchEvent{Type: codec.EventSession, Path: ""})

	select {
	case <-ch:
		t.Fatal("session event should not fire a path watch")
	default:
	}
}

func TestRegistryUnrelatedPathDoesNotFire(t *testing.T) {
	r := NewRegistry()
	ch := r.Register("/a", watchData)

	r.Process(WatchEvent{Type: codec.EventNodeDataChanged, Path: "/b"})

	select {
	case <-ch:
		t.Fatal("unrelated path should not fire this watch")
	default:
	}
}
