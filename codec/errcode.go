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

import (
	"errors"
	"fmt"
)

// ErrCode is the server-reported status carried in a reply header. Zero
// means success; it is data, never a transport or decode failure.
type ErrCode int32

const (
	ErrOk                      ErrCode = 0
	ErrSystemError             ErrCode = -1
	ErrRuntimeInconsistency    ErrCode = -2
	ErrDataInconsistency       ErrCode = -3
	ErrConnectionLoss          ErrCode = -4
	ErrMarshallingError        ErrCode = -5
	ErrUnimplemented           ErrCode = -6
	ErrOperationTimeout        ErrCode = -7
	ErrBadArguments            ErrCode = -8
	ErrAPIError                ErrCode = -100
	ErrNoNode                  ErrCode = -101
	ErrNoAuth                  ErrCode = -102
	ErrBadVersion              ErrCode = -103
	ErrNoChildrenForEphemerals ErrCode = -108
	ErrNodeExists              ErrCode = -110
	ErrNotEmpty                ErrCode = -111
	ErrSessionExpired          ErrCode = -112
	ErrInvalidCallback         ErrCode = -113
	ErrInvalidACL              ErrCode = -114
	ErrAuthFailed              ErrCode = -115
	ErrClosing                 ErrCode = -116
	ErrNothing                 ErrCode = -117
	ErrSessionMoved            ErrCode = -118
)

var errMessages = map[ErrCode]string{
	ErrSystemError:             "system error",
	ErrRuntimeInconsistency:    "runtime inconsistency",
	ErrDataInconsistency:       "data inconsistency",
	ErrConnectionLoss:          "connection loss",
	ErrMarshallingError:        "marshalling error",
	ErrUnimplemented:           "unimplemented",
	ErrOperationTimeout:        "operation timeout",
	ErrBadArguments:            "bad arguments",
	ErrAPIError:                "api error",
	ErrNoNode:                  "no node",
	ErrNoAuth:                  "not authenticated",
	ErrBadVersion:              "bad version",
	ErrNoChildrenForEphemerals: "ephemeral nodes may not have children",
	ErrNodeExists:              "node exists",
	ErrNotEmpty:                "node has children",
	ErrSessionExpired:          "session expired",
	ErrInvalidCallback:         "invalid callback",
	ErrInvalidACL:              "invalid ACL",
	ErrAuthFailed:              "authentication failed",
	ErrClosing:                 "server closing",
	ErrNothing:                 "no server responses to process",
	ErrSessionMoved:            "session moved to another server",
}

// ToError converts a server-reported status into a Go error, or nil for
// ErrOk. This is a data conversion, never a dispatcher failure.
func (e ErrCode) ToError() error {
	if e == ErrOk {
		return nil
	}
	if msg, ok := errMessages[e]; ok {
		return errors.New("zkconn: " + msg)
	}
	return fmt.Errorf("zkconn: unrecognized server error code %d", int32(e))
}
