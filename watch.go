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
	"sync"

	"github.com/sagernet/zkconn/codec"
)

// watchKind distinguishes the three registration tables kept per path:
// data watches (Client.Get), exist watches (Client.Exists), and child
// watches (Client.Children). All three fire on the same WatchEvent
// types; the registry keys subscribers by (path, kind), keeps every
// channel registered under a key, and fans out to all of them on an
// event at that path.
type watchKind int

const (
	watchData watchKind = iota
	watchExist
	watchChild
)

// Registry is the concrete WatchRegistry: a path-keyed table of
// one-shot notification channels, consumed exactly once per
// ZooKeeper's own watch semantics (a watch fires at most once, then is
// dropped). A mutex-guarded map plus remove-on-fire bookkeeping, the
// same shape smux uses for its own stream table.
type Registry struct {
	mu   sync.Mutex
	subs map[string][]chan WatchEvent
}

// NewRegistry constructs an empty watch registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string][]chan WatchEvent)}
}

// key folds kind into the path so separate tables don't need separate
// maps; ZooKeeper never registers a data and an exist watch on the
// same path-kind pair at once in a way that would collide here.
func key(path string, kind watchKind) string {
	switch kind {
	case watchData:
		return "d:" + path
	case watchExist:
		return "e:" + path
	default:
		return "c:" + path
	}
}

// Register returns a channel that receives exactly one WatchEvent the
// next time the server reports a non-session event at path; the event
// type is not checked against kind. The
// channel is buffered so Process never blocks on a slow or abandoned
// subscriber.
func (r *Registry) Register(path string, kind watchKind) <-chan WatchEvent {
	ch := make(chan WatchEvent, 1)
	r.mu.Lock()
	k := key(path, kind)
	r.subs[k] = append(r.subs[k], ch)
	r.mu.Unlock()
	return ch
}

// Process fans ev out to every watcher registered on its path across
// all three tables (a NodeDataChanged can satisfy both a data watch and
// an exist watch registered earlier), then drops them — a ZooKeeper
// watch is one-shot by design.
func (r *Registry) Process(ev WatchEvent) {
	if ev.Type == codec.EventSession {
		// session-level events carry no path; nothing registered here
		// to fan out to.
		return
	}

	r.mu.Lock()
	var fired []chan WatchEvent
	for _, kind := range []watchKind{watchData, watchExist, watchChild} {
		k := key(ev.Path, kind)
		if chans, ok := r.subs[k]; ok {
			fired = append(fired, chans...)
			delete(r.subs, k)
		}
	}
	r.mu.Unlock()

	for _, ch := range fired {
		ch <- ev
		close(ch)
	}
}
