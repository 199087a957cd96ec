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
	"fmt"

	"github.com/sagernet/zkconn/codec"
)

// headerOnlyOpcodes lists the opcodes whose replies never carry a
// body. CREATE_SESSION is deliberately absent: it
// isn't reached through this table at all, since its reply has no
// header to look an opcode up from in the first place — the read loop
// special-cases it before header decode ever runs.
var headerOnlyOpcodes = map[codec.Opcode]bool{
	codec.OpAuth:         true,
	codec.OpPing:         true,
	codec.OpCloseSession: true,
	codec.OpDelete:       true,
	codec.OpSetWatches:   true,
}

// bodyDecoder decodes one opcode's reply body from the bytes following
// the reply header.
type bodyDecoder func(c *codec.Cursor) (any, error)

// bodyDecoders is the body decoder table: keyed by opcode, built once
// at init. MULTI is handled separately in decodeBody because its body
// is read regardless of header.Err.
var bodyDecoders = map[codec.Opcode]bodyDecoder{
	codec.OpCreate: func(c *codec.Cursor) (any, error) {
		r := &codec.CreateResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpExists: func(c *codec.Cursor) (any, error) {
		r := &codec.ExistsResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpSetData: func(c *codec.Cursor) (any, error) {
		r := &codec.SetDataResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpGetData: func(c *codec.Cursor) (any, error) {
		r := &codec.GetDataResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpSync: func(c *codec.Cursor) (any, error) {
		r := &codec.SyncResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpSetACL: func(c *codec.Cursor) (any, error) {
		r := &codec.SetACLResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpGetACL: func(c *codec.Cursor) (any, error) {
		r := &codec.GetACLResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpGetChildren: func(c *codec.Cursor) (any, error) {
		r := &codec.GetChildrenResponse{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
	codec.OpGetChildren2: func(c *codec.Cursor) (any, error) {
		r := &codec.GetChildren2Response{}
		if err := r.Decode(c); err != nil {
			return nil, err
		}
		return r, nil
	},
}

// decodeBody applies the body decoder table policy: header-only
// opcodes never decode a body; MULTI always decodes its per-operation
// results regardless of the aggregate error; everything else returns
// an empty body when header.Err != 0, and otherwise looks up and runs
// its opcode's decoder.
func decodeBody(op codec.Opcode, errCode codec.ErrCode, rest []byte) (any, error) {
	if headerOnlyOpcodes[op] {
		return nil, nil
	}
	cur := codec.NewCursor(rest)
	if op == codec.OpMulti {
		return codec.DecodeMultiResponse(cur)
	}
	if errCode != 0 {
		return nil, nil
	}
	dec, ok := bodyDecoders[op]
	if !ok {
		return nil, fmt.Errorf("zkconn: no body decoder registered for opcode %s", op)
	}
	return dec(cur)
}
