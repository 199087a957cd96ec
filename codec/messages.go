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

// CreateRequest is the body of an OpCreate request.
type CreateRequest struct {
	Path  string
	Data  []byte
	Acl   []ACL
	Flags int32
}

func (r *CreateRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteBuffer(r.Data)
	EncodeACLList(w, r.Acl)
	w.WriteInt32(r.Flags)
}

// CreateResponse is the body of an OpCreate reply.
type CreateResponse struct {
	Path string
}

func (r *CreateResponse) Decode(c *Cursor) error {
	p, err := c.ReadString()
	if err != nil {
		return err
	}
	r.Path = p
	return nil
}

// DeleteRequest is the body of an OpDelete request. OpDelete replies
// carry no body.
type DeleteRequest struct {
	Path    string
	Version int32
}

func (r *DeleteRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteInt32(r.Version)
}

// ExistsRequest is the body of an OpExists request.
type ExistsRequest struct {
	Path  string
	Watch bool
}

func (r *ExistsRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteBool(r.Watch)
}

// ExistsResponse is the body of an OpExists reply.
type ExistsResponse struct {
	Stat Stat
}

func (r *ExistsResponse) Decode(c *Cursor) error {
	s, err := DecodeStat(c)
	if err != nil {
		return err
	}
	r.Stat = s
	return nil
}

// GetDataRequest is the body of an OpGetData request.
type GetDataRequest struct {
	Path  string
	Watch bool
}

func (r *GetDataRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteBool(r.Watch)
}

// GetDataResponse is the body of an OpGetData reply.
type GetDataResponse struct {
	Data []byte
	Stat Stat
}

func (r *GetDataResponse) Decode(c *Cursor) error {
	d, err := c.ReadBuffer()
	if err != nil {
		return err
	}
	s, err := DecodeStat(c)
	if err != nil {
		return err
	}
	r.Data, r.Stat = d, s
	return nil
}

// SetDataRequest is the body of an OpSetData request.
type SetDataRequest struct {
	Path    string
	Data    []byte
	Version int32
}

func (r *SetDataRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteBuffer(r.Data)
	w.WriteInt32(r.Version)
}

// SetDataResponse is the body of an OpSetData reply.
type SetDataResponse struct {
	Stat Stat
}

func (r *SetDataResponse) Decode(c *Cursor) error {
	s, err := DecodeStat(c)
	if err != nil {
		return err
	}
	r.Stat = s
	return nil
}

// GetACLRequest is the body of an OpGetACL request.
type GetACLRequest struct {
	Path string
}

func (r *GetACLRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
}

// GetACLResponse is the body of an OpGetACL reply.
type GetACLResponse struct {
	Acl  []ACL
	Stat Stat
}

func (r *GetACLResponse) Decode(c *Cursor) error {
	acl, err := DecodeACLList(c)
	if err != nil {
		return err
	}
	s, err := DecodeStat(c)
	if err != nil {
		return err
	}
	r.Acl, r.Stat = acl, s
	return nil
}

// SetACLRequest is the body of an OpSetACL request.
type SetACLRequest struct {
	Path    string
	Acl     []ACL
	Version int32
}

func (r *SetACLRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	EncodeACLList(w, r.Acl)
	w.WriteInt32(r.Version)
}

// SetACLResponse is the body of an OpSetACL reply.
type SetACLResponse struct {
	Stat Stat
}

func (r *SetACLResponse) Decode(c *Cursor) error {
	s, err := DecodeStat(c)
	if err != nil {
		return err
	}
	r.Stat = s
	return nil
}

// GetChildrenRequest is the body of an OpGetChildren request.
type GetChildrenRequest struct {
	Path  string
	Watch bool
}

func (r *GetChildrenRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteBool(r.Watch)
}

// GetChildrenResponse is the body of an OpGetChildren reply.
type GetChildrenResponse struct {
	Children []string
}

func (r *GetChildrenResponse) Decode(c *Cursor) error {
	children, err := decodeStringList(c)
	if err != nil {
		return err
	}
	r.Children = children
	return nil
}

// GetChildren2Request is the body of an OpGetChildren2 request.
type GetChildren2Request struct {
	Path  string
	Watch bool
}

func (r *GetChildren2Request) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteBool(r.Watch)
}

// GetChildren2Response is the body of an OpGetChildren2 reply: like
// GetChildren but with the parent's Stat appended.
type GetChildren2Response struct {
	Children []string
	Stat     Stat
}

func (r *GetChildren2Response) Decode(c *Cursor) error {
	children, err := decodeStringList(c)
	if err != nil {
		return err
	}
	st, err := DecodeStat(c)
	if err != nil {
		return err
	}
	r.Children, r.Stat = children, st
	return nil
}

// SyncRequest is the body of an OpSync request.
type SyncRequest struct {
	Path string
}

func (r *SyncRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
}

// SyncResponse is the body of an OpSync reply.
type SyncResponse struct {
	Path string
}

func (r *SyncResponse) Decode(c *Cursor) error {
	p, err := c.ReadString()
	if err != nil {
		return err
	}
	r.Path = p
	return nil
}

// SetWatchesRequest re-registers watches on the new connection after a
// reconnect. OpSetWatches replies carry no body.
type SetWatchesRequest struct {
	RelativeZxid int64
	DataWatches  []string
	ExistWatches []string
	ChildWatches []string
}

func (r *SetWatchesRequest) Encode(w *Writer) {
	w.WriteInt64(r.RelativeZxid)
	encodeStringList(w, r.DataWatches)
	encodeStringList(w, r.ExistWatches)
	encodeStringList(w, r.ChildWatches)
}

// AuthRequest is the body of an OpAuth request. OpAuth replies carry no
// body.
type AuthRequest struct {
	Type   int32
	Scheme string
	Auth   []byte
}

func (r *AuthRequest) Encode(w *Writer) {
	w.WriteInt32(r.Type)
	w.WriteString(r.Scheme)
	w.WriteBuffer(r.Auth)
}

// PingRequest is the body of an OpPing request: empty.
type PingRequest struct{}

func (r *PingRequest) Encode(w *Writer) {}

// CloseSessionRequest is the body of an OpCloseSession request: empty.
type CloseSessionRequest struct{}

func (r *CloseSessionRequest) Encode(w *Writer) {}

// ConnectRequest is the headerless session-establishment request.
type ConnectRequest struct {
	ProtocolVersion int32
	LastZxidSeen    int64
	Timeout         int32
	SessionID       int64
	Passwd          []byte
}

func (r *ConnectRequest) Encode(w *Writer) {
	w.WriteInt32(r.ProtocolVersion)
	w.WriteInt64(r.LastZxidSeen)
	w.WriteInt32(r.Timeout)
	w.WriteInt64(r.SessionID)
	w.WriteBuffer(r.Passwd)
}

// ConnectResponse is the headerless session-establishment reply.
type ConnectResponse struct {
	ProtocolVersion int32
	Timeout         int32
	SessionID       int64
	Passwd          []byte
}

func (r *ConnectResponse) Decode(c *Cursor) error {
	pv, err := c.ReadInt32()
	if err != nil {
		return err
	}
	to, err := c.ReadInt32()
	if err != nil {
		return err
	}
	sid, err := c.ReadInt64()
	if err != nil {
		return err
	}
	pw, err := c.ReadBuffer()
	if err != nil {
		return err
	}
	r.ProtocolVersion, r.Timeout, r.SessionID, r.Passwd = pv, to, sid, pw
	return nil
}

func encodeStringList(w *Writer, list []string) {
	w.WriteInt32(int32(len(list)))
	for _, s := range list {
		w.WriteString(s)
	}
}

func decodeStringList(c *Cursor) ([]string, error) {
	n, err := c.ReadInt32()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		s, err := c.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
