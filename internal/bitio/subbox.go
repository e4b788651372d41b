// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package bitio

import "github.com/bep/heifwriter/internal/herr"

// BoxHeader is the result of extracting one box header from a
// byte-aligned read cursor.
type BoxHeader struct {
	Tag       [4]byte
	Size      uint64 // total box size including header, 0 means "extends to EOF"
	HeaderLen int    // number of bytes occupied by size+tag(+largesize); a uuid box's usertype is not read and stays in the payload
}

// ExtractSubBox reads a 32/64-bit size and 4-byte tag at the reader's
// current (byte-aligned) position, and returns a new Reader positioned
// over exactly the payload range, having advanced r past the whole box.
func ExtractSubBox(r *Reader) (BoxHeader, *Reader, error) {
	start := r.bytePos
	size32, err := r.ReadU32()
	if err != nil {
		return BoxHeader{}, nil, err
	}
	tagBytes, err := r.ReadBytes(4)
	if err != nil {
		return BoxHeader{}, nil, err
	}
	var tag [4]byte
	copy(tag[:], tagBytes)

	size := uint64(size32)
	headerLen := 8
	if size32 == 1 {
		size, err = r.ReadU64()
		if err != nil {
			return BoxHeader{}, nil, err
		}
		headerLen = 16
	}

	var payloadLen int
	if size == 0 {
		payloadLen = len(r.buf) - r.bytePos
	} else {
		if size < uint64(headerLen) {
			return BoxHeader{}, nil, herr.NewParse("", int64(start), "box size smaller than its own header")
		}
		payloadLen = int(size) - headerLen
	}
	payload, err := r.ReadBytes(payloadLen)
	if err != nil {
		return BoxHeader{}, nil, err
	}
	return BoxHeader{Tag: tag, Size: size, HeaderLen: headerLen}, NewReader(payload), nil
}
