// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package planner_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/planner"
)

// hevcSample writes a minimal Annex-B HEVC elementary stream (VPS, SPS,
// PPS, one VCL slice) to dir/name, mirroring the fixture bytes used in
// internal/nalstream's own tests.
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
	data = append(data, 0x26, 0x01, 0xAA, 0xBB) // VCL slice (nal_unit_type 19 = IDR_W_RADL)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestWriteFileSingleMasterProducesExpectedTopLevelBoxes drives scenario
// 1 from §8: a single HEVC master with a declared primary item.
func TestWriteFileSingleMasterProducesExpectedTopLevelBoxes(t *testing.T) {
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

	res, err := planner.WriteFile(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(res.OutputPath, qt.Equals, out)

	written, err := os.ReadFile(out)
	c.Assert(err, qt.IsNil)
	c.Assert(int64(len(written)), qt.Equals, res.Size)

	// ftyp is always the first box; its tag sits at bytes 4:8.
	c.Assert(string(written[4:8]), qt.Equals, "ftyp")
	c.Assert(string(written[8:12]), qt.Equals, "heic") // major_brand

	// meta immediately follows ftyp; find its tag via the ftyp box's own
	// size field (bytes 0:4, big-endian u32).
	ftypSize := uint32(written[0])<<24 | uint32(written[1])<<16 | uint32(written[2])<<8 | uint32(written[3])
	metaStart := int(ftypSize)
	c.Assert(string(written[metaStart+4:metaStart+8]), qt.Equals, "meta")

	// mdat appears somewhere after meta, and the file contains no moov
	// (this Content never set encp_type "trak" or make_vide).
	c.Assert(containsTag(written, "mdat"), qt.IsTrue)
	c.Assert(containsTag(written, "moov"), qt.IsFalse)
	c.Assert(containsTag(written, "hvcC"), qt.IsTrue)
	c.Assert(containsTag(written, "ispe"), qt.IsTrue)
}

func TestWriteFileRejectsInvalidConfiguration(t *testing.T) {
	c := qt.New(t)
	_, err := planner.WriteFile(&config.Configuration{})
	c.Assert(err, qt.Not(qt.IsNil))
}

func containsTag(data []byte, tag string) bool {
	tb := []byte(tag)
	for i := 0; i+4 <= len(data); i++ {
		if string(data[i:i+4]) == string(tb) {
			return true
		}
	}
	return false
}
