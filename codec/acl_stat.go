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

// ACL is one access-control entry: a permission bitmask plus a
// scheme-dependent identity.
type ACL struct {
	Perms  int32
	Scheme string
	ID     string
}

// Encode appends the wire form of a single ACL entry.
func (a *ACL) Encode(w *Writer) {
	w.WriteInt32(a.Perms)
	w.WriteString(a.Scheme)
	w.WriteString(a.ID)
}

// DecodeACL reads a single ACL entry.
func DecodeACL(c *Cursor) (ACL, error) {
	var a ACL
	perms, err := c.ReadInt32()
	if err != nil {
		return a, err
	}
	scheme, err := c.ReadString()
	if err != nil {
		return a, err
	}
	id, err := c.ReadString()
	if err != nil {
		return a, err
	}
	a.Perms, a.Scheme, a.ID = perms, scheme, id
	return a, nil
}

// EncodeACLList appends a length-prefixed list of ACL entries.
func EncodeACLList(w *Writer, acl []ACL) {
	w.WriteInt32(int32(len(acl)))
	for i := range acl {
		acl[i].Encode(w)
	}
}

// DecodeACLList reads a length-prefixed list of ACL entries.
func DecodeACLList(c *Cursor) ([]ACL, error) {
	n, err := c.ReadInt32()
	if err != nil {
		return nil, err
	}
	out := make([]ACL, 0, n)
	for i := int32(0); i < n; i++ {
		a, err := DecodeACL(c)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Stat is the znode metadata record appended to most data-bearing
// responses.
type Stat struct {
	Czxid          int64
	Mzxid          int64
	Ctime          int64
	Mtime          int64
	Version        int32
	Cversion       int32
	Aversion       int32
	EphemeralOwner int64
	DataLength     int32
	NumChildren    int32
	Pzxid          int64
}

// DecodeStat reads the fixed-shape Stat record.
func DecodeStat(c *Cursor) (Stat, error) {
	var s Stat
	var err error
	if s.Czxid, err = c.ReadInt64(); err != nil {
		return s, err
	}
	if s.Mzxid, err = c.ReadInt64(); err != nil {
		return s, err
	}
	if s.Ctime, err = c.ReadInt64(); err != nil {
		return s, err
	}
	if s.Mtime, err = c.ReadInt64(); err != nil {
		return s, err
	}
	if s.Version, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.Cversion, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.Aversion, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.EphemeralOwner, err = c.ReadInt64(); err != nil {
		return s, err
	}
	if s.DataLength, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.NumChildren, err = c.ReadInt32(); err != nil {
		return s, err
	}
	if s.Pzxid, err = c.ReadInt64(); err != nil {
		return s, err
	}
	return s, nil
}
