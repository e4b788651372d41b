// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package reader_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/planner"
	"github.com/bep/heifwriter/internal/reader"
)

func hevcSample(t *testing.T, dir, name string) string {
	t.Helper()
	startCode := []byte{0x00, 0x00, 0x00, 0x01}
	var data []byte
	data = append(data, startCode...)
	data = append(data, 0x40, 0x01, 0x0C) // VPS
	data = append(data, startCode...)
	data = append(data, 0x42, 0x01, 0x03, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0) // SPS
	data = append(data, startCode...)
	data = append(data, 0x44, 0x01, 0xC1) // PPS
	data = append(data, startCode...)
	data = append(data, 0x26, 0x01, 0xAA, 0xBB) // VCL slice

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestListFileRecoversTopLevelBoxes drives the §8 round-trip property:
// re-reading the produced file and listing its boxes by tag recovers the
// set of boxes the writer emitted.
func TestListFileRecoversTopLevelBoxes(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	src := hevcSample(t, dir, "sample.265")
	out := filepath.Join(dir, "out.heic")
	prim := uint32(1)

	cfg := &config.Configuration{
		General: config.General{
			OutputFile: out,
			Brands:     config.Brands{Major: "heic", Other: []string{"heic", "mif1"}},
			PrimRefr:   &prim,
			PrimIndx:   1,
		},
		Content: []config.Content{{
			Master: config.Master{
				UniqBsid: 1,
				FilePath: src,
				HdlrType: "pict",
				CodeType: "hvc1",
				EncpType: "meta",
				DispXdim: 1920,
				DispYdim: 1080,
			},
		}},
	}

	_, err := planner.WriteFile(cfg)
	c.Assert(err, qt.IsNil)

	boxes, err := reader.ListFile(out)
	c.Assert(err, qt.IsNil)
	c.Assert(len(boxes), qt.Equals, 3) // ftyp, meta, mdat

	c.Assert(boxes[0].Tag, qt.Equals, "ftyp")
	c.Assert(boxes[1].Tag, qt.Equals, "meta")
	c.Assert(boxes[2].Tag, qt.Equals, "mdat")

	tags := reader.Tags(boxes)
	c.Assert(tags, qt.Contains, "iinf")
	c.Assert(tags, qt.Contains, "iloc")
	c.Assert(tags, qt.Contains, "iprp")
	c.Assert(tags, qt.Contains, "hvcC")
	c.Assert(tags, qt.Contains, "ispe")

	// Every box's recorded range stays within the file.
	total := int64(0)
	for _, b := range boxes {
		c.Assert(b.Start, qt.Equals, total)
		total += b.Size
	}
	info, err := os.Stat(out)
	c.Assert(err, qt.IsNil)
	c.Assert(total, qt.Equals, info.Size())
}

func TestListBytesRejectsTruncatedHeader(t *testing.T) {
	c := qt.New(t)
	_, err := reader.ListBytes([]byte{0x00, 0x00, 0x00, 0x10, 'f', 't'})
	c.Assert(err, qt.Not(qt.IsNil))
}
