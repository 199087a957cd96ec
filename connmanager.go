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

import "sync/atomic"

// ConnState is the concrete ConnManager: the dispatcher's only point of
// contact with connection lifecycle, reduced to a single atomic
// validity flag it flips on dispatcher failure. A coarse, monotonic
// one-way flag rather than a full state machine, the same way smux
// tracks a dying atomic.Bool on Session instead of modeling a richer
// lifecycle.
type ConnState struct {
	valid atomic.Bool
}

// NewConnState constructs a ConnState marked valid.
func NewConnState() *ConnState {
	c := &ConnState{}
	c.valid.Store(true)
	return c
}

// Invalidate marks the connection unusable. Called by Dispatcher.fail;
// idempotent.
func (c *ConnState) Invalidate() { c.valid.Store(false) }

// Valid reports whether the connection is still usable.
func (c *ConnState) Valid() bool { return c.valid.Load() }
