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

package codec

// EventType identifies what kind of change a watch notification reports.
type EventType int32

const (
	EventNodeCreated         EventType = 1
	EventNodeDeleted         EventType = 2
	EventNodeDataChanged     EventType = 3
	EventNodeChildrenChanged EventType = 4
	EventSession             EventType = -1
	EventNotWatching         EventType = -2
)

// State is the session state carried on session-level watch events and
// set on the session manager when it changes.
type State int32

const (
	StateDisconnected State = 0
	StateConnecting   State = 1
	StateConnected    State = 3
	StateHasSession   State = 4
	StateExpired      State = -112
	StateAuthFailed   State = -113
)

// WatcherEvent is the body of an unsolicited notification: a decoded
// reply header with Xid == -1 carries one of these as its payload.
type WatcherEvent struct {
	Type  EventType
	State State
	Path  string
}

// DecodeWatcherEvent reads a watch event body. It has no length prefix
// of its own — the frame boundary already delimits it.
func DecodeWatcherEvent(c *Cursor) (WatcherEvent, error) {
	var ev WatcherEvent
	t, err := c.ReadInt32()
	if err != nil {
		return ev, err
	}
	s, err := c.ReadInt32()
	if err != nil {
		return ev, err
	}
	p, err := c.ReadString()
	if err != nil {
		return ev, err
	}
	ev.Type = EventType(t)
	ev.State = State(s)
	ev.Path = p
	return ev, nil
}
