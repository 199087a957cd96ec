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

// Opcode identifies the shape of a request/response pair on the wire.
// Values match the ZooKeeper protocol's own opcode assignment.
type Opcode int32

const (
	OpNotify        Opcode = 0
	OpCreate        Opcode = 1
	OpDelete        Opcode = 2
	OpExists        Opcode = 3
	OpGetData       Opcode = 4
	OpSetData       Opcode = 5
	OpGetACL        Opcode = 6
	OpSetACL        Opcode = 7
	OpGetChildren   Opcode = 8
	OpSync          Opcode = 9
	OpPing          Opcode = 11
	OpGetChildren2  Opcode = 12
	OpCheck         Opcode = 13
	OpMulti         Opcode = 14
	OpAuth          Opcode = 100
	OpSetWatches    Opcode = 101
	OpCreateSession Opcode = -10
	OpCloseSession  Opcode = -11
)

var opcodeNames = map[Opcode]string{
	OpNotify:        "notify",
	OpCreate:        "create",
	OpDelete:        "delete",
	OpExists:        "exists",
	OpGetData:       "getData",
	OpSetData:       "setData",
	OpGetACL:        "getACL",
	OpSetACL:        "setACL",
	OpGetChildren:   "getChildren",
	OpSync:          "sync",
	OpPing:          "ping",
	OpGetChildren2:  "getChildren2",
	OpCheck:         "check",
	OpMulti:         "multi",
	OpAuth:          "auth",
	OpSetWatches:    "setWatches",
	OpCreateSession: "createSession",
	OpCloseSession:  "closeSession",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "unknown"
}
