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

// ReplyHeader is the fixed-shape prefix carried by every reply except
// CREATE_SESSION (which has no header at all). Its
// Xid encodes which of the three reply classes this is: -1 for a watch
// notification, -2 for a ping reply, anything else a correlated reply.
type ReplyHeader struct {
	Xid  int32
	Zxid int64
	Err  ErrCode
}

// DecodeReplyHeader reads the fixed 16-byte header prefix and returns
// the unread remainder for the body decoder. header.Err != 0 is still
// returned successfully: a server-reported error is data, and the
// caller decides whether to skip body decoding.
func DecodeReplyHeader(buf []byte) (ReplyHeader, []byte, error) {
	c := NewCursor(buf)
	var h ReplyHeader
	xid, err := c.ReadInt32()
	if err != nil {
		return h, nil, err
	}
	zxid, err := c.ReadInt64()
	if err != nil {
		return h, nil, err
	}
	ec, err := c.ReadInt32()
	if err != nil {
		return h, nil, err
	}
	h.Xid = xid
	h.Zxid = zxid
	h.Err = ErrCode(ec)
	return h, c.Remainder(), nil
}

// EncodeRequestHeader appends the fixed request header (xid, opcode)
// that precedes every protocol request body except the session-connect
// request, which has none.
func EncodeRequestHeader(w *Writer, xid int32, opcode Opcode) {
	w.WriteInt32(xid)
	w.WriteInt32(int32(opcode))
}
