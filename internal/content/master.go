// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/herr"
	"github.com/bep/heifwriter/internal/identity"
	"github.com/bep/heifwriter/internal/nalstream"
)

// MasterWriter is the base-image writer (§4.6 "Master writer"): it parses
// one Annex-B bitstream and emits one item per access unit, all sharing a
// single ispe and decoder-configuration property.
type MasterWriter struct {
	cfg    config.Master
	ctxID  identity.ContextId
	stream *nalstream.Stream
}

// NewMasterWriter returns a MasterWriter bound to ctxID, not yet
// initialized.
func NewMasterWriter(cfg config.Master, ctxID identity.ContextId) *MasterWriter {
	return &MasterWriter{cfg: cfg, ctxID: ctxID}
}

func (w *MasterWriter) ContextID() identity.ContextId { return w.ctxID }

func (w *MasterWriter) Init(svc *identity.Service) error {
	s, err := nalstream.Open(w.cfg.FilePath)
	if err != nil {
		return err
	}
	w.stream = s
	return nil
}

// decoderConfigProperty builds the hvcC/avcC/vvcC property box for the
// parsed stream (§4.5).
func decoderConfigProperty(s *nalstream.Stream) (box.Payload, error) {
	switch s.Codec {
	case nalstream.CodecVVC:
		cfg := &boxes.VvcC{
			GeneralProfileIdc: s.SPSInfo.ProfileIdc,
			GeneralTierFlag:   s.SPSInfo.TierFlag,
			GeneralLevelIdc:   s.SPSInfo.LevelIdc,
			ChromaFormat:      s.SPSInfo.ChromaFormatIdc,
			BitDepthMinus8:    s.SPSInfo.BitDepthLumaMinus8,
		}
		// VVC NAL unit types per H.266 Table 5: VPS_NUT=14, SPS_NUT=15,
		// PPS_NUT=16 (nalstream keeps these unexported; mirrored here).
		if len(s.VPS) > 0 {
			cfg.Arrays = append(cfg.Arrays, boxes.VvcNalArray{NalUnitType: 14, Nalus: s.VPS})
		}
		if len(s.SPS) > 0 {
			cfg.Arrays = append(cfg.Arrays, boxes.VvcNalArray{NalUnitType: 15, Nalus: s.SPS})
		}
		if len(s.PPS) > 0 {
			cfg.Arrays = append(cfg.Arrays, boxes.VvcNalArray{NalUnitType: 16, Nalus: s.PPS})
		}
		return cfg, nil
	case nalstream.CodecHEVC:
		cfg := &boxes.HvcC{
			GeneralProfileSpace: 0,
			GeneralTierFlag:     s.SPSInfo.TierFlag,
			GeneralProfileIdc:   s.SPSInfo.ProfileIdc,
			GeneralLevelIdc:     s.SPSInfo.LevelIdc,
			ChromaFormat:        s.SPSInfo.ChromaFormatIdc,
			BitDepthLumaMinus8:  s.SPSInfo.BitDepthLumaMinus8,
			BitDepthChromaMinus8: s.SPSInfo.BitDepthChromaMinus8,
			NumTemporalLayers:   s.SPSInfo.NumTemporalLayers,
			TemporalIdNested:    1,
		}
		if len(s.VPS) > 0 {
			cfg.Arrays = append(cfg.Arrays, boxes.HevcNalArray{ArrayCompleteness: true, NalUnitType: 32, Nalus: s.VPS})
		}
		if len(s.SPS) > 0 {
			cfg.Arrays = append(cfg.Arrays, boxes.HevcNalArray{ArrayCompleteness: true, NalUnitType: 33, Nalus: s.SPS})
		}
		if len(s.PPS) > 0 {
			cfg.Arrays = append(cfg.Arrays, boxes.HevcNalArray{ArrayCompleteness: true, NalUnitType: 34, Nalus: s.PPS})
		}
		return cfg, nil
	case nalstream.CodecAVC:
		cfg := &boxes.AvcC{
			Profile:       s.SPSInfo.ProfileIdc,
			ProfileCompat: 0,
			Level:         s.SPSInfo.LevelIdc,
			SPS:           s.SPS,
			PPS:           s.PPS,
		}
		if isAvcHighProfile(cfg.Profile) {
			cfg.HighProfileFields = &boxes.AvcCHighProfileFields{
				ChromaFormat:         s.SPSInfo.ChromaFormatIdc,
				BitDepthLumaMinus8:   s.SPSInfo.BitDepthLumaMinus8,
				BitDepthChromaMinus8: s.SPSInfo.BitDepthChromaMinus8,
			}
		}
		return cfg, nil
	default:
		return nil, herr.NewUnsupportedCodec("unknown")
	}
}

func isAvcHighProfile(profile uint8) bool {
	switch profile {
	case 100, 110, 122, 144:
		return true
	}
	return false
}

func itemTypeForCodec(codecType string, codec nalstream.Codec) fourcc.Type {
	if codecType != "" {
		return fourcc.Parse(codecType)
	}
	switch codec {
	case nalstream.CodecHEVC:
		return fourcc.Hvc1
	case nalstream.CodecAVC:
		return fourcc.Avc1
	case nalstream.CodecVVC:
		return fourcc.Vvc1
	}
	return fourcc.Avc1
}

func (w *MasterWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	cfgBox, err := decoderConfigProperty(w.stream)
	if err != nil {
		return nil, err
	}
	itemType := itemTypeForCodec(w.cfg.CodeType, w.stream.Codec)

	// A "trak" master never becomes meta items: its samples go straight
	// into a movie track, and entity groups address it via item_index 0
	// (§4.4) rather than through resolveRefSet.
	if w.cfg.EncpType == "trak" {
		trackID := moov.AllocTrackID()
		trak, contribs := buildTrack(w.ctxID, trackID, fourcc.Parse(w.cfg.HdlrType), itemType, w.cfg.DispXdim, w.cfg.DispYdim, cfgBox, w.stream.Samples, w.cfg.EditList)
		moov.AddTrak(trak)
		publishTrackID(svc, w.ctxID, trackID)
		publishItemIDs(svc, w.ctxID, nil)
		return contribs, nil
	}

	cfgIdx := meta.AddProperty(cfgBox)
	// ispe carries the declared display dimensions (disp_xdim/disp_ydim),
	// not the bitstream's own coded SPS size: a master can crop or rescale
	// what it declares to readers (§4.5).
	ispeIdx := meta.AddProperty(&boxes.Ispe{Width: w.cfg.DispXdim, Height: w.cfg.DispYdim})

	var contributions []Contribution
	var itemIDs []uint32
	for _, sample := range w.stream.Samples {
		itemID := meta.AllocItemID()
		itemIDs = append(itemIDs, itemID)

		meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: itemType, Hidden: w.cfg.Hidden})
		meta.AssociateProperty(itemID, ispeIdx, false)
		meta.AssociateProperty(itemID, cfgIdx, true)

		item := &boxes.IlocItem{
			ItemID:             itemID,
			DataReferenceIndex: 0,
			Extents:            []boxes.IlocExtent{{Length: uint64(len(sample))}},
		}
		meta.AddIlocItem(item)

		contributions = append(contributions, Contribution{
			ContextID: w.ctxID,
			Bytes:     sample,
			SetOffset: func(abs uint64) { item.Extents[0].Offset = abs },
		})
	}
	publishItemIDs(svc, w.ctxID, itemIDs)

	// write_alternates declares every item this master produced as
	// interchangeable alternatives of one another (§4.4 altr semantics: a
	// reader picks exactly one member to process).
	if w.cfg.WriteAlternates && len(itemIDs) > 1 {
		meta.AddEntityGroup(fourcc.Altr, itemIDs)
	}

	if w.cfg.MakeVide {
		trackID := moov.AllocTrackID()
		trak, trackContribs := buildTrack(w.ctxID, trackID, fourcc.HandlerVide, itemType, w.cfg.DispXdim, w.cfg.DispYdim, cfgBox, w.stream.Samples, w.cfg.EditList)
		moov.AddTrak(trak)
		publishTrackID(svc, w.ctxID, trackID)
		contributions = append(contributions, trackContribs...)
	}

	return contributions, nil
}
