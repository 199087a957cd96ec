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

// packetKind tags the four shapes a RequestPacket can take, making the
// dispatcher's submission path an exhaustive switch instead of a set of
// nilable fields.
type packetKind int

const (
	kindProtocol packetKind = iota
	kindConnect
	kindConfigureManagers
	kindConfigureDone
)

// RequestPacket is the unit submitted to the dispatcher: a protocol
// request (header + body), the headerless session-connect request, or
// one of the two control packets that bypass the pending queue
// entirely.
type RequestPacket struct {
	kind     packetKind
	opcode   codec.Opcode
	body     codec.Encodable
	managers *Managers
}

// NewProtocolRequest builds a RequestPacket carrying a header and an
// opcode-specific body, to be assigned an xid and enqueued on submit.
func NewProtocolRequest(opcode codec.Opcode, body codec.Encodable) RequestPacket {
	return RequestPacket{kind: kindProtocol, opcode: opcode, body: body}
}

// NewConnectRequest builds the headerless session-establishment
// request. Its pending record carries no xid (RequestRecord.HasXid ==
// false): the server's reply has no header either, and the dispatcher
// decodes it directly as a ConnectResponse.
func NewConnectRequest(body *codec.ConnectRequest) RequestPacket {
	return RequestPacket{kind: kindConnect, opcode: codec.OpCreateSession, body: body}
}

// NewConfigureManagersPacket attaches the connection/session/watch
// manager handles the dispatcher needs for correlation side effects.
// It bypasses the pending queue.
func NewConfigureManagersPacket(m Managers) RequestPacket {
	return RequestPacket{kind: kindConfigureManagers, managers: &m}
}

// NewConfigureDonePacket signals that setup is complete. The dispatcher
// reads the session through the session manager handle attached by the
// configure packet, so this packet changes no state. It bypasses the
// pending queue and carries no body.
func NewConfigureDonePacket() RequestPacket {
	return RequestPacket{kind: kindConfigureDone}
}

// ReplyPacket is what a submission resolves to: the reply header plus
// an opcode-specific body, or a nil body when the opcode is
// header-only, the server reported an error, or (transiently, for
// PING) no body ever applies.
type ReplyPacket struct {
	Header codec.ReplyHeader
	Body   any
}

// RequestRecord is the correlation record kept in the pending queue
// alongside a result slot. Xid is meaningless unless HasXid is true —
// the session-connect record is the only one without an xid, since its
// request has no header to carry one.
type RequestRecord struct {
	Opcode codec.Opcode
	Xid    int32
	HasXid bool
}

// WatchEvent is the decoded payload of an unsolicited notification,
// handed to the session manager (for state bookkeeping) and the watch
// registry (for fan-out) but never matched against the pending queue.
type WatchEvent struct {
	Type  codec.EventType
	State codec.State
	Path  string
}
