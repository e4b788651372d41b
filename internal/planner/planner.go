// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package planner implements writeFile (§4.8), the single entry point
// that turns a normalized config.Configuration into bytes on disk: it
// drives every content writer through its two phases, assembles mdat,
// resolves absolute offsets, and emits ftyp/meta/moov/mdat in order.
package planner

import (
	"os"

	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/content"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/herr"
	"github.com/bep/heifwriter/internal/identity"
	"github.com/bep/heifwriter/internal/mdat"
)

// buildVersion stamps the compatibility string the first mdat carries
// (§4.8 "First-mdat marker").
const buildVersion = "0.1.0"

// maxOffsetFixpointIterations bounds the reassign-reserialize loop below:
// a field only ever promotes once (32-bit -> 64-bit), so re-measuring
// after one promotion cannot change size again (§4.8 step 9).
const maxOffsetFixpointIterations = 2

// Result summarizes a completed write.
type Result struct {
	OutputPath string
	Size       int64
}

// WriteFile implements §4.8's algorithm end to end.
func WriteFile(cfg *config.Configuration) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc := identity.New()
	writers := content.BuildWriters(cfg, svc)

	for _, w := range writers {
		if err := w.Init(svc); err != nil {
			return nil, err
		}
	}

	meta := content.NewMetaAssembly()
	moov := content.NewMoovAssembly()
	var contributions []content.Contribution
	for _, w := range writers {
		contribs, err := w.Compose(svc, meta, moov)
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, contribs...)
	}

	if cfg.General.PrimRefr != nil {
		if err := content.ResolvePrimaryItem(svc, meta, *cfg.General.PrimRefr, cfg.General.PrimIndx); err != nil {
			return nil, err
		}
	}

	ftyp := buildFtyp(cfg.General.Brands)
	metaBox := meta.Build()
	moovBox := moov.Build() // nil when no track was built

	sFtyp, err := serializedSize(ftyp)
	if err != nil {
		return nil, err
	}

	assembler := mdat.New("HEIF writer build " + buildVersion)
	extents := make([]mdat.Extent, len(contributions))
	for i, c := range contributions {
		extents[i] = assembler.Append(c.ContextID, c.Bytes)
	}

	headerLens := make([]int64, assembler.MdatCount())
	for i := range headerLens {
		scratch := bitio.NewWriter()
		hl, err := assembler.WriteMdat(scratch, i)
		if err != nil {
			return nil, err
		}
		headerLens[i] = int64(hl)
	}

	sMeta, err := serializedSize(metaBox)
	if err != nil {
		return nil, err
	}
	var sMoov int64
	if moovBox != nil {
		if sMoov, err = serializedSize(moovBox); err != nil {
			return nil, err
		}
	}

	for iter := 0; ; iter++ {
		mdatStarts := computeMdatStarts(sFtyp+sMeta+sMoov, assembler, headerLens)
		for i, c := range contributions {
			ext := extents[i]
			abs := uint64(mdatStarts[ext.MdatIndex]) + uint64(headerLens[ext.MdatIndex]) + ext.Offset
			c.SetOffset(abs)
		}

		newSMeta, err := serializedSize(metaBox)
		if err != nil {
			return nil, err
		}
		var newSMoov int64
		if moovBox != nil {
			if newSMoov, err = serializedSize(moovBox); err != nil {
				return nil, err
			}
		}
		if newSMeta == sMeta && newSMoov == sMoov {
			break
		}
		sMeta, sMoov = newSMeta, newSMoov
		if iter >= maxOffsetFixpointIterations {
			return nil, herr.NewInconsistent("offset resolution did not converge after %d passes", maxOffsetFixpointIterations)
		}
	}

	out := bitio.NewWriter()
	if err := box.New(ftyp).Write(out); err != nil {
		return nil, err
	}
	if err := box.New(metaBox).Write(out); err != nil {
		return nil, err
	}
	if moovBox != nil {
		if err := box.New(moovBox).Write(out); err != nil {
			return nil, err
		}
	}
	for i := 0; i < assembler.MdatCount(); i++ {
		if _, err := assembler.WriteMdat(out, i); err != nil {
			return nil, err
		}
	}

	if err := writeAtomically(cfg.General.OutputFile, out.Bytes()); err != nil {
		return nil, err
	}

	return &Result{OutputPath: cfg.General.OutputFile, Size: int64(len(out.Bytes()))}, nil
}

func buildFtyp(b config.Brands) *boxes.Ftyp {
	ftyp := &boxes.Ftyp{MajorBrand: fourcc.Parse(b.Major)}
	for _, c := range b.Other {
		ftyp.CompatibleBrands = append(ftyp.CompatibleBrands, fourcc.Parse(c))
	}
	return ftyp
}

// computeMdatStarts lays out `prefixSize | mdat_0 | mdat_1 | …` (§4.8 step
// 8), returning each mdat's absolute start offset.
func computeMdatStarts(prefixSize int64, assembler *mdat.Assembler, headerLens []int64) []int64 {
	starts := make([]int64, assembler.MdatCount())
	cur := prefixSize
	for i := range starts {
		starts[i] = cur
		cur += headerLens[i] + int64(assembler.MdatPayloadSize(i))
	}
	return starts
}

// serializedSize writes p to a scratch buffer and returns its length,
// used both for the ftyp/meta/moov first-pass sizing and for re-measuring
// after offsets are patched in (§4.8 steps 6 and 9): rather than
// reimplement each box's size arithmetic, this reuses the same
// box.Write path that produces the final bytes, so "measured size" and
// "written size" can never drift apart.
func serializedSize(p box.Payload) (int64, error) {
	w := bitio.NewWriter()
	if err := box.New(p).Write(w); err != nil {
		return 0, err
	}
	return w.Pos(), nil
}

// writeAtomically writes data to path via a temp file plus rename, so a
// failure partway through never leaves a truncated or partially-written
// file at path (§5 "a failure during phase C leaves no partial file").
func writeAtomically(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return herr.NewFileIO(tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return herr.NewFileIO(path, err)
	}
	return nil
}
