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
	"context"
	"fmt"

	"github.com/sagernet/zkconn/codec"
)

// encodePacketPayload serializes a RequestPacket's wire form (header
// inline when the packet has one), without the length prefix — that
// belongs to the transport, not the writer.
func encodePacketPayload(p RequestPacket, xid int32) ([]byte, error) {
	w := codec.NewWriter()
	switch p.kind {
	case kindProtocol:
		codec.EncodeRequestHeader(w, xid, p.opcode)
	case kindConnect:
		// headerless: nothing to prepend.
	default:
		return nil, fmt.Errorf("zkconn: packet kind %d has no wire form", p.kind)
	}
	if p.body != nil {
		p.body.Encode(w)
	}
	return w.Bytes(), nil
}

// writePacket serializes the full wire form and hands it to the
// transport, translating a write failure into the dispatcher's
// transport-error taxonomy.
func writePacket(ctx context.Context, t Transport, p RequestPacket, xid int32) error {
	payload, err := encodePacketPayload(p, xid)
	if err != nil {
		return err
	}
	if err := t.WriteFrame(ctx, payload); err != nil {
		return classifyWriteError(err)
	}
	return nil
}
