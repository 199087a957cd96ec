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

// Package codec implements the ZooKeeper wire encoding: fixed-shape
// headers, per-opcode request/response bodies, and the watch-event
// payload, each as pure functions over a byte cursor. It has no
// knowledge of transports, pending requests, or correlation — that is
// the dispatcher's job, one layer up.
package codec

import (
	"encoding/binary"
	"fmt"
)

// Cursor reads big-endian, length-prefixed fields out of a fixed byte
// slice, advancing an internal offset. It never copies the slice itself.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor wraps buf for sequential decoding starting at offset zero.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

func (c *Cursor) remaining() int { return len(c.buf) - c.off }

func (c *Cursor) need(n int) error {
	if c.remaining() < n {
		return fmt.Errorf("codec: need %d bytes, have %d", n, c.remaining())
	}
	return nil
}

// ReadInt32 decodes a big-endian 4-byte signed integer.
func (c *Cursor) ReadInt32() (int32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(c.buf[c.off:]))
	c.off += 4
	return v, nil
}

// ReadInt64 decodes a big-endian 8-byte signed integer.
func (c *Cursor) ReadInt64() (int64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(c.buf[c.off:]))
	c.off += 8
	return v, nil
}

// ReadBool decodes a single non-zero byte as true.
func (c *Cursor) ReadBool() (bool, error) {
	if err := c.need(1); err != nil {
		return false, err
	}
	v := c.buf[c.off] != 0
	c.off++
	return v, nil
}

// ReadBuffer decodes a length-prefixed byte buffer. A negative length
// (the wire's representation of a null buffer) decodes to a nil slice.
func (c *Cursor) ReadBuffer() ([]byte, error) {
	n, err := c.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if err := c.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[c.off:c.off+int(n)])
	c.off += int(n)
	return out, nil
}

// ReadString decodes a length-prefixed UTF-8 string.
func (c *Cursor) ReadString() (string, error) {
	b, err := c.ReadBuffer()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Remainder returns the unread tail of the buffer without copying.
func (c *Cursor) Remainder() []byte { return c.buf[c.off:] }

// Len reports the number of unread bytes.
func (c *Cursor) Len() int { return c.remaining() }
