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
	"errors"
	"fmt"
)

// ErrDispatcherFailed is the cause wrapped into every pending slot's
// cancellation once the dispatcher enters its terminal failed state,
// and the error every subsequent Submit returns immediately.
var ErrDispatcherFailed = errors.New("zkconn: dispatcher has failed")

// ErrAssociation is returned when a decoded reply cannot be associated
// with the pending request it claims to answer: the head-of-queue
// record's xid does not match, or a ping/protocol reply arrives on an
// empty queue. This is always fatal — it indicates the reply stream
// has desynchronized and no further reply can be trusted to belong to
// the request it appears to answer.
var ErrAssociation = errors.New("zkconn: reply could not be associated with a pending request")

// TransportErrorKind classifies a transport-layer failure so the
// dispatcher knows whether to fail wholesale or cancel a single
// request.
type TransportErrorKind int

const (
	// TransportChannelError is a broken-connection class error (EOF,
	// closed socket) seen on either read or write. Always fails the
	// dispatcher.
	TransportChannelError TransportErrorKind = iota
	// TransportWriteError is a write-side failure. Always fails the
	// dispatcher.
	TransportWriteError
	// TransportOther is anything else (read timeouts, caller context
	// cancellation). On write it cancels only the affected request; on
	// read the front request receives it and the dispatcher still fails.
	TransportOther
)

func (k TransportErrorKind) String() string {
	switch k {
	case TransportChannelError:
		return "channel"
	case TransportWriteError:
		return "write"
	case TransportOther:
		return "other"
	default:
		return "unknown"
	}
}

// TransportError wraps an underlying transport failure with its
// dispatch-relevant classification.
type TransportError struct {
	Kind  TransportErrorKind
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("zkconn: transport %s error: %v", e.Kind, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// DecodeStage identifies which decoder produced a DecodeError, since
// the disposition differs: a header-stage failure re-interprets the
// buffer as a watch notification before giving up, while a body-stage
// failure after a matched header is delivered only to that request.
type DecodeStage int

const (
	DecodeStageHeader DecodeStage = iota
	DecodeStageBody
	DecodeStageWatch
)

func (s DecodeStage) String() string {
	switch s {
	case DecodeStageHeader:
		return "header"
	case DecodeStageBody:
		return "body"
	case DecodeStageWatch:
		return "watch"
	default:
		return "unknown"
	}
}

// DecodeError wraps a codec failure with the stage it occurred at.
type DecodeError struct {
	Stage DecodeStage
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("zkconn: %s decode error: %v", e.Stage, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }
