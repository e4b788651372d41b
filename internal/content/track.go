// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/identity"
)

// trackTimescale is the movie/media timescale this writer assigns every
// track: one tick per sample, so sample_delta is always 1 and duration
// equals the sample count. A Content block carrying disp_rate/tick_rate
// would refine this, but no writer in this package currently threads
// those fields through to buildTrack.
const trackTimescale = 1

// buildTrack assembles a single-sample-description, one-sample-per-chunk
// video track around samples, returning the trak plus one mdat
// Contribution per sample whose SetOffset closure patches the matching
// stco entry once the planner knows its absolute offset (§4.6 "Track
// writers").
//
// This writer always addresses track media through stco: no Content
// block in this writer's scope produces a single track whose samples
// exceed 4GB, so co64 promotion is not implemented at the track layer
// (unlike iloc at the item layer, whose offset fields widen to 8 bytes). This is an
// accepted, documented limitation rather than an oversight.
func buildTrack(ctxID identity.ContextId, trackID uint32, handlerType, sampleType fourcc.Type, width, height uint32, cfg box.Payload, samples [][]byte, editList *config.EditList) (*boxes.Trak, []Contribution) {
	entry := &boxes.VisualSampleEntry{
		TagV:               sampleType,
		DataReferenceIndex: 1,
		Width:              clampU16(width),
		Height:             clampU16(height),
		HorizResolution:    0x00480000,
		VertResolution:     0x00480000,
		FrameCount:         1,
		Depth:              0x0018,
		Config:             box.New(cfg),
	}

	stco := &boxes.Stco{ChunkOffsets: make([]uint32, len(samples))}
	contributions := make([]Contribution, len(samples))
	stsz := &boxes.Stsz{SampleCount: uint32(len(samples))}
	uniform := true
	for i, s := range samples {
		if i > 0 && len(s) != len(samples[0]) {
			uniform = false
		}
	}
	if uniform && len(samples) > 0 {
		stsz.SampleSize = uint32(len(samples[0]))
	} else {
		for _, s := range samples {
			stsz.EntrySizes = append(stsz.EntrySizes, uint32(len(s)))
		}
	}

	for i, s := range samples {
		idx := i
		contributions[i] = Contribution{
			ContextID: ctxID,
			Bytes:     s,
			SetOffset: func(abs uint64) { stco.ChunkOffsets[idx] = uint32(abs) },
		}
	}

	stbl := &boxes.Stbl{
		Stsd: &boxes.Stsd{Entries: []*box.Box{box.New(entry)}},
		Stts: &boxes.Stts{Entries: []struct{ SampleCount, SampleDelta uint32 }{{SampleCount: uint32(len(samples)), SampleDelta: 1}}},
		Stsc: &boxes.Stsc{Entries: []struct{ FirstChunk, SamplesPerChunk, SampleDescriptionIndex uint32 }{{FirstChunk: 1, SamplesPerChunk: 1, SampleDescriptionIndex: 1}}},
		Stsz: stsz,
		Stco: stco,
	}

	minf := &boxes.Minf{Dinf: boxes.DefaultDinf(), Stbl: stbl}
	switch handlerType {
	case fourcc.HandlerSoun:
		minf.Smhd = &boxes.Smhd{}
	case fourcc.HandlerVide, fourcc.HandlerAuxv:
		minf.Vmhd = &boxes.Vmhd{}
	default:
		minf.Nmhd = &boxes.Nmhd{}
	}

	mdia := &boxes.Mdia{
		Mdhd: &boxes.Mdhd{Timescale: trackTimescale, Duration: uint64(len(samples)), Language: "und"},
		Hdlr: &boxes.Hdlr{HandlerType: handlerType},
		Minf: minf,
	}

	trak := &boxes.Trak{
		Tkhd: &boxes.Tkhd{TrackID: trackID, Duration: uint64(len(samples)), Width: width << 16, Height: height << 16},
		Mdia: mdia,
	}
	if editList != nil && len(editList.Entries) > 0 {
		elst := &boxes.Elst{}
		for _, e := range editList.Entries {
			elst.Entries = append(elst.Entries, struct {
				SegmentDuration                     uint64
				MediaTime                           int64
				MediaRateInteger, MediaRateFraction int16
			}{e.SegmentDuration, e.MediaTime, e.MediaRateInteger, e.MediaRateFraction})
		}
		trak.Edts = &boxes.Edts{Elst: elst}
	}

	return trak, contributions
}

func clampU16(v uint32) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
