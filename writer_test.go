// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package heifwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter"
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

// TestWriteProducesAFileFromThePublicAPI exercises the package's only
// entry point end to end, the same scenario internal/planner tests at
// its own layer.
func TestWriteProducesAFileFromThePublicAPI(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	src := hevcSample(t, dir, "sample.265")
	out := filepath.Join(dir, "out.heic")
	prim := uint32(1)

	cfg := heifwriter.Configuration{
		General: heifwriter.General{
			OutputFile: out,
			Brands:     heifwriter.Brands{Major: "heic", Other: []string{"heic", "mif1"}},
			PrimRefr:   &prim,
			PrimIndx:   1,
		},
		Content: []heifwriter.Content{{
			Master: heifwriter.Master{
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

	res, err := heifwriter.Write(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(res.OutputPath, qt.Equals, out)

	info, err := os.Stat(out)
	c.Assert(err, qt.IsNil)
	c.Assert(res.Size, qt.Equals, info.Size())
}

func TestWriteRejectsEmptyConfiguration(t *testing.T) {
	c := qt.New(t)
	_, err := heifwriter.Write(heifwriter.Configuration{})
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(err, qt.ErrorMatches, "config invalid:.*")
}
