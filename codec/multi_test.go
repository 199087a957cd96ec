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

func TestMultiRequestEncode(t *testing.T) {
	req := &MultiRequest{Ops: []MultiOp{
		{Type: MultiOpCreate, Create: &CreateRequest{Path: "/a", Data: nil, Acl: nil, Flags: 0}},
		{Type: MultiOpCheck, Check: &CheckVersionRequest{Path: "/a", Version: 0}},
	}}
	w := NewWriter()
	req.Encode(w)
	require.NotEmpty(t, w.Bytes())
}

func TestDecodeMultiResponseSurfacesPartialResultsOnAggregateError(t *testing.T) {
	w := NewWriter()
	(&multiHeader{Type: MultiOpCreate, Err: ErrOk}).Encode(w)
	w.WriteString("/a")
	(&multiHeader{Type: MultiOpSetData, Err: ErrBadVersion}).Encode(w)
	(&multiHeader{Type: multiOpDone, Done: true}).Encode(w)

	resp, err := DecodeMultiResponse(NewCursor(w.Bytes()))
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.Equal(t, ErrOk, resp.Results[0].Err)
	require.Equal(t, "/a", resp.Results[0].Path)
	require.Equal(t, ErrBadVersion, resp.Results[1].Err)
}

func TestDecodeMultiResponseTruncated(t *testing.T) {
	_, err := DecodeMultiResponse(NewCursor([]byte{0, 0, 0, 1}))
	require.Error(t, err)
}
