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

// MultiOpType identifies one sub-operation inside a MULTI transaction.
type MultiOpType int32

const (
	MultiOpCreate  MultiOpType = 1
	MultiOpDelete  MultiOpType = 2
	MultiOpSetData MultiOpType = 5
	MultiOpCheck   MultiOpType = 13
	multiOpDone    MultiOpType = -1
)

// CheckVersionRequest asserts a znode's version without mutating it;
// used as a guard inside a MULTI transaction.
type CheckVersionRequest struct {
	Path    string
	Version int32
}

func (r *CheckVersionRequest) Encode(w *Writer) {
	w.WriteString(r.Path)
	w.WriteInt32(r.Version)
}

// MultiOp is one sub-operation of a MultiRequest. Exactly one of the
// pointer fields matching Type is populated.
type MultiOp struct {
	Type    MultiOpType
	Create  *CreateRequest
	Delete  *DeleteRequest
	SetData *SetDataRequest
	Check   *CheckVersionRequest
}

type multiHeader struct {
	Type MultiOpType
	Done bool
	Err  ErrCode
}

func (h *multiHeader) Encode(w *Writer) {
	w.WriteInt32(int32(h.Type))
	w.WriteBool(h.Done)
	w.WriteInt32(int32(h.Err))
}

func decodeMultiHeader(c *Cursor) (multiHeader, error) {
	var h multiHeader
	t, err := c.ReadInt32()
	if err != nil {
		return h, err
	}
	d, err := c.ReadBool()
	if err != nil {
		return h, err
	}
	e, err := c.ReadInt32()
	if err != nil {
		return h, err
	}
	h.Type, h.Done, h.Err = MultiOpType(t), d, ErrCode(e)
	return h, nil
}

// MultiRequest is the body of an OpMulti request: a sequence of
// sub-operations terminated by a "done" header.
type MultiRequest struct {
	Ops []MultiOp
}

func (r *MultiRequest) Encode(w *Writer) {
	for _, op := range r.Ops {
		(&multiHeader{Type: op.Type}).Encode(w)
		switch op.Type {
		case MultiOpCreate:
			op.Create.Encode(w)
		case MultiOpDelete:
			op.Delete.Encode(w)
		case MultiOpSetData:
			op.SetData.Encode(w)
		case MultiOpCheck:
			op.Check.Encode(w)
		}
	}
	(&multiHeader{Type: multiOpDone, Done: true}).Encode(w)
}

// MultiOpResult is the per-sub-operation outcome inside a MultiResponse.
type MultiOpResult struct {
	Type MultiOpType
	Err  ErrCode
	Path string // populated for MultiOpCreate
	Stat Stat   // populated for MultiOpSetData
}

// MultiResponse is the body of an OpMulti reply. Per-operation results
// are always decoded, even when the aggregate reply header carries a
// non-zero error: ZooKeeper's MULTI wire format appends one result per
// sub-operation regardless of the transaction's overall outcome, so a
// caller can see exactly which sub-operation failed.
type MultiResponse struct {
	Results []MultiOpResult
}

// DecodeMultiResponse reads a sequence of per-operation results
// terminated by a "done" header.
func DecodeMultiResponse(c *Cursor) (*MultiResponse, error) {
	resp := &MultiResponse{}
	for {
		hdr, err := decodeMultiHeader(c)
		if err != nil {
			return resp, err
		}
		if hdr.Done {
			break
		}
		res := MultiOpResult{Type: hdr.Type, Err: hdr.Err}
		if hdr.Err == ErrOk {
			switch hdr.Type {
			case MultiOpCreate:
				p, err := c.ReadString()
				if err != nil {
					return resp, err
				}
				res.Path = p
			case MultiOpSetData:
				s, err := DecodeStat(c)
				if err != nil {
					return resp, err
				}
				res.Stat = s
			}
		}
		resp.Results = append(resp.Results, res)
	}
	return resp, nil
}
