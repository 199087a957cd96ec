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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeRequestHeader(t *testing.T) {
	w := NewWriter()
	EncodeRequestHeader(w, 42, OpGetData)

	// A request header (xid int32, opcode int32) has a different shape
	// from a reply header (xid int32, zxid int64, err int32), so it is
	// read back field by field rather than through DecodeReplyHeader.
	c := NewCursor(w.Bytes())
	xid, err := c.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(42), xid)
	op, err := c.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(OpGetData), op)
}

func TestDecodeReplyHeader(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(7)
	w.WriteInt64(99)
	w.WriteInt32(int32(ErrNoNode))
	w.WriteString("trailing")

	hdr, rest, err := DecodeReplyHeader(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, int32(7), hdr.Xid)
	require.Equal(t, int64(99), hdr.Zxid)
	require.Equal(t, ErrNoNode, hdr.Err)

	c := NewCursor(rest)
	s, err := c.ReadString()
	require.NoError(t, err)
	require.Equal(t, "trailing", s)
}

func TestDecodeReplyHeaderTruncated(t *testing.T) {
	_, _, err := DecodeReplyHeader([]byte{0, 0, 0, 1})
	require.Error(t, err)
}
