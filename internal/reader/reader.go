// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package reader implements C11, the reader-side stream abstraction: a
// byte-addressable view over a written file used by tests and by
// inspection tooling to recover the box tree a writer produced (§8's
// "Re-reading the produced file and listing its boxes by tag recovers
// the set of boxes the writer emitted"). It is built directly on the
// same bitio.ExtractSubBox primitive the box package uses to parse
// payloads, rather than on the teacher's panic/recover streamReader
// (io.go), because that abstraction is tied to the teacher's EXIF/JPEG
// decode() pipeline and buffers full sub-reader payloads through a pool
// sized for metadata blobs, not multi-gigabyte mdat payloads.
package reader

import (
	"io"
	"os"

	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/herr"
)

// Box is one top-level box recovered from a file: its tag, its absolute
// byte range, and (for container boxes worth descending into) its parsed
// children. Payload bytes are not retained; callers that need them can
// re-open the file at [Start+HeaderLen, Start+Size).
type Box struct {
	Tag      string
	Start    int64
	Size     int64
	Children []Box
}

// containerTags names the top-level and second-level box types whose
// payload is itself a sequence of boxes, so ListFile can recurse into
// them far enough to support the round-trip property over meta's and
// moov's immediate children without having to know every leaf box's
// internal layout.
var containerTags = map[string]bool{
	"meta": true,
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"stbl": true,
	"iprp": true,
	"ipco": true,
	"grpl": true,
	"edts": true,
	"mvex": true,
	"dinf": true,
}

// meta's version/flags prefix (FullBox) sits before its children; these
// tags are FullBoxes whose payload must be skipped past 4 bytes before
// the child-box scan begins.
var fullBoxTags = map[string]bool{
	"meta": true,
}

// ListFile opens path and returns the top-level boxes it contains, in
// file order, recursing into known container boxes.
func ListFile(path string) ([]Box, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herr.NewFileIO(path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, herr.NewFileIO(path, err)
	}
	return ListBytes(data)
}

// ListBytes parses buf as a top-level box sequence, recursing into
// container boxes the same way ListFile does.
func ListBytes(buf []byte) ([]Box, error) {
	r := bitio.NewReader(buf)
	return scanBoxes(r, 0)
}

// scanBoxes reads consecutive boxes from r until it is exhausted,
// tagging each returned Box's Start as baseOffset plus its position
// within r.
func scanBoxes(r *bitio.Reader, baseOffset int64) ([]Box, error) {
	var out []Box
	for r.Remaining() > 0 {
		start := baseOffset + r.BytePos()
		hdr, payload, err := bitio.ExtractSubBox(r)
		if err != nil {
			return nil, err
		}
		tag := string(hdr.Tag[:])

		b := Box{
			Tag:   tag,
			Start: start,
			Size:  int64(hdr.Size),
		}
		if b.Size == 0 {
			b.Size = int64(hdr.HeaderLen) + int64(payload.Remaining()/8)
		}

		if containerTags[tag] {
			childBase := start + int64(hdr.HeaderLen)
			if fullBoxTags[tag] {
				if _, err := payload.ReadU32(); err != nil {
					return nil, err
				}
				childBase += 4
			}
			children, err := scanBoxes(payload, childBase)
			if err != nil {
				return nil, err
			}
			b.Children = children
		}

		out = append(out, b)
	}
	return out, nil
}

// Tags flattens boxes (including all descendants) into their tag names,
// in depth-first file order, for the round-trip "recovers the set of
// boxes the writer emitted" comparison in §8.
func Tags(boxes []Box) []string {
	var out []string
	for _, b := range boxes {
		out = append(out, b.Tag)
		out = append(out, Tags(b.Children)...)
	}
	return out
}
