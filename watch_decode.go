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

// decodeWatchEvent is the Watch-Event Decoder (C4): triggered whenever
// a decoded reply header carries xid -1. It never touches the pending
// queue (I2/P3) — the caller hands the result straight to the session
// manager and watch registry.
func decodeWatchEvent(rest []byte) (WatchEvent, error) {
	ev, err := codec.DecodeWatcherEvent(codec.NewCursor(rest))
	if err != nil {
		return WatchEvent{}, err
	}
	return WatchEvent{Type: ev.Type, State: ev.State, Path: ev.Path}, nil
}
