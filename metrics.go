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

// metrics holds the dispatcher's lifetime counters as atomics rather
// than a mutex-guarded struct, since they're read far more often than
// written — the same tradeoff smux makes for its own byte/frame
// counters on Session.
type metrics struct {
	repliesDelivered atomic.Int64
	watchesDelivered atomic.Int64
	failures         atomic.Int64
}

func newMetrics() *metrics {
	return &metrics{}
}

// Stats is the read-only snapshot exposed to callers.
type Stats struct {
	RepliesDelivered int64
	WatchesDelivered int64
	Failures         int64
	Pending          int
}

// Stats reports a point-in-time snapshot of the dispatcher's counters
// and current queue depth.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		RepliesDelivered: d.metrics.repliesDelivered.Load(),
		WatchesDelivered: d.metrics.watchesDelivered.Load(),
		Failures:         d.metrics.failures.Load(),
		Pending:          d.queue.len(),
	}
}
