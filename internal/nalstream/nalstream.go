// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package nalstream reads an Annex-B elementary stream (AVC, HEVC, or
// VVC), memory-mapping the input file the way saferwall-pe's PE dumper
// maps binaries for zero-copy inspection, and produces the parameter sets
// and SPS fields a decoder configuration record is built from, plus a
// sequence of length-prefixed samples (§4.5).
package nalstream

import (
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/herr"
)

// Codec identifies the detected elementary-stream codec.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecAVC
	CodecHEVC
	CodecVVC
)

// AVC/HEVC/VVC NAL unit type constants, per §4.5.
const (
	avcNalSPS  = 7
	avcNalPPS  = 8
	hevcNalVPS = 32
	hevcNalSPS = 33
	hevcNalPPS = 34
	vvcNalVPS  = 14
	vvcNalSPS  = 15
	vvcNalPPS  = 16
)

// SPSInfo is the subset of SPS fields the decoder-config builder needs.
type SPSInfo struct {
	ProfileIdc         uint8
	TierFlag            uint8
	LevelIdc            uint8
	ChromaFormatIdc     uint8
	BitDepthLumaMinus8  uint8
	BitDepthChromaMinus8 uint8
	Width, Height       uint32
	NumTemporalLayers   uint8
}

// Stream is the result of scanning one Annex-B file: the detected codec,
// its parameter-set NAL units grouped by type, the parsed SPS fields, and
// the VCL samples in presentation order.
type Stream struct {
	Codec   Codec
	VPS     [][]byte // HEVC and VVC only
	SPS     [][]byte
	PPS     [][]byte
	SPSInfo SPSInfo

	// Samples holds one length-prefixed (4-byte big-endian length + bytes)
	// buffer per access unit.
	Samples [][]byte
}

// Open memory-maps path and scans it as an Annex-B stream.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herr.NewFileIO(path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, herr.NewFileIO(path, err)
	}
	defer m.Unmap()

	return Parse(path, []byte(m))
}

// Parse scans data (already resident in memory, e.g. from mmap) as an
// Annex-B stream.
func Parse(path string, data []byte) (*Stream, error) {
	spans := bitio.SplitNALUnits(data)
	if len(spans) == 0 {
		return nil, herr.NewParse(path, 0, "no Annex-B start code found")
	}

	s := &Stream{}
	var curSample []byte
	flushSample := func() {
		if len(curSample) > 0 {
			s.Samples = append(s.Samples, curSample)
			curSample = nil
		}
	}

	for _, span := range spans {
		nal := data[span[0]:span[1]]
		if len(nal) == 0 {
			continue
		}

		var nalType uint8
		if s.Codec == CodecUnknown {
			var codec Codec
			codec, nalType = classify(nal)
			if codec != CodecUnknown {
				s.Codec = codec
			}
		} else {
			nalType = typeForCodec(s.Codec, nal)
		}

		switch s.Codec {
		case CodecAVC:
			switch nalType {
			case avcNalSPS:
				s.SPS = append(s.SPS, append([]byte(nil), nal...))
				info, err := parseAVCSPS(bitio.StripEmulationPrevention(nal[1:]))
				if err != nil {
					return nil, herr.NewParsef(path, int64(span[0]), "avc sps: %v", err)
				}
				s.SPSInfo = info
				continue
			case avcNalPPS:
				s.PPS = append(s.PPS, append([]byte(nil), nal...))
				continue
			}
		case CodecHEVC:
			switch nalType {
			case hevcNalVPS:
				s.VPS = append(s.VPS, append([]byte(nil), nal...))
				continue
			case hevcNalSPS:
				s.SPS = append(s.SPS, append([]byte(nil), nal...))
				info, err := parseHEVCSPS(bitio.StripEmulationPrevention(nal[2:]))
				if err != nil {
					return nil, herr.NewParsef(path, int64(span[0]), "hevc sps: %v", err)
				}
				s.SPSInfo = info
				continue
			case hevcNalPPS:
				s.PPS = append(s.PPS, append([]byte(nil), nal...))
				continue
			}
		case CodecVVC:
			switch nalType {
			case vvcNalVPS:
				s.VPS = append(s.VPS, append([]byte(nil), nal...))
				continue
			case vvcNalSPS:
				s.SPS = append(s.SPS, append([]byte(nil), nal...))
				info, err := parseVVCSPS(bitio.StripEmulationPrevention(nal[2:]))
				if err != nil {
					return nil, herr.NewParsef(path, int64(span[0]), "vvc sps: %v", err)
				}
				s.SPSInfo = info
				continue
			case vvcNalPPS:
				s.PPS = append(s.PPS, append([]byte(nil), nal...))
				continue
			}
		}

		if isAccessUnitDelimiter(s.Codec, nalType) {
			flushSample()
			continue
		}
		if isVCL(s.Codec, nalType) {
			curSample = appendLengthPrefixed(curSample, nal)
		}
	}
	flushSample()

	if s.Codec == CodecUnknown {
		return nil, herr.NewUnsupportedCodec("unknown")
	}
	return s, nil
}

func appendLengthPrefixed(dst, nal []byte) []byte {
	var length [4]byte
	n := uint32(len(nal))
	length[0] = byte(n >> 24)
	length[1] = byte(n >> 16)
	length[2] = byte(n >> 8)
	length[3] = byte(n)
	dst = append(dst, length[:]...)
	dst = append(dst, nal...)
	return dst
}

// classify inspects a NAL unit's header byte(s) to determine codec family
// and NAL unit type, per §4.5 step 3. AVC, HEVC, and VVC all require
// forbidden_zero_bit == 0, so it isn't diagnostic on its own; instead
// parameter-set NAL unit type ranges differ enough between the three
// (AVC caps nal_unit_type at 5 bits with SPS=7/PPS=8; HEVC's 6-bit type
// sits in the first byte's top bits with its parameter sets at 32-34;
// VVC's 5-bit type sits in the second byte with its parameter sets at
// 14-16) that reading the header each of the three ways and checking
// which interpretation lands on a known parameter-set type picks the
// right family on the first SPS/PPS/VPS NAL. Once Stream.Codec is set,
// later NALs reuse it directly.
func classify(nal []byte) (Codec, uint8) {
	if len(nal) == 0 {
		return CodecUnknown, 0
	}
	avcType := nal[0] & 0x1F
	if len(nal) >= 2 {
		hevcType := (nal[0] >> 1) & 0x3F
		switch hevcType {
		case hevcNalVPS, hevcNalSPS, hevcNalPPS:
			return CodecHEVC, hevcType
		}
		vvcType := (nal[1] >> 3) & 0x1F
		switch vvcType {
		case vvcNalVPS, vvcNalSPS, vvcNalPPS:
			return CodecVVC, vvcType
		}
	}
	return CodecAVC, avcType
}

// typeForCodec extracts nal_unit_type once the stream's codec family is
// already known. HEVC packs its 6-bit type into the top bits of the
// first header byte; VVC instead packs a 5-bit type into the top bits
// of the second header byte (nuh_layer_id occupies the rest of the
// first byte).
func typeForCodec(codec Codec, nal []byte) uint8 {
	switch codec {
	case CodecHEVC:
		if len(nal) < 2 {
			return 0
		}
		return (nal[0] >> 1) & 0x3F
	case CodecVVC:
		if len(nal) < 2 {
			return 0
		}
		return (nal[1] >> 3) & 0x1F
	default:
		return nal[0] & 0x1F
	}
}

func isAccessUnitDelimiter(codec Codec, nalType uint8) bool {
	switch codec {
	case CodecAVC:
		return nalType == 9
	case CodecHEVC:
		return nalType == 35
	case CodecVVC:
		return nalType == 20
	}
	return false
}

func isVCL(codec Codec, nalType uint8) bool {
	switch codec {
	case CodecAVC:
		return nalType <= 5
	case CodecHEVC:
		return nalType <= 31
	case CodecVVC:
		return nalType <= 10
	}
	return false
}

// parseAVCSPS extracts the decoder-config-relevant fields from an AVC SPS
// RBSP (the NAL header byte already stripped).
func parseAVCSPS(rbsp []byte) (SPSInfo, error) {
	r := bitio.NewReader(rbsp)
	var info SPSInfo

	profile, err := r.ReadU8()
	if err != nil {
		return info, err
	}
	info.ProfileIdc = profile
	if _, err = r.ReadU8(); err != nil { // constraint flags + reserved
		return info, err
	}
	level, err := r.ReadU8()
	if err != nil {
		return info, err
	}
	info.LevelIdc = level
	if _, err = r.ReadUnsignedExpGolomb(); err != nil { // seq_parameter_set_id
		return info, err
	}

	info.ChromaFormatIdc = 1 // 4:2:0 default when not signaled
	switch profile {
	case 100, 110, 122, 244, 44, 83, 86, 118, 128, 138, 139, 134, 135:
		chroma, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		info.ChromaFormatIdc = uint8(chroma)
		if chroma == 3 {
			if _, err = r.ReadBits(1); err != nil { // separate_colour_plane_flag
				return info, err
			}
		}
		lumaBD, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		info.BitDepthLumaMinus8 = uint8(lumaBD)
		chromaBD, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		info.BitDepthChromaMinus8 = uint8(chromaBD)
		if _, err = r.ReadBits(1); err != nil { // qpprime_y_zero_transform_bypass_flag
			return info, err
		}
		seqScaling, err := r.ReadBits(1)
		if err != nil {
			return info, err
		}
		if seqScaling == 1 {
			// Scaling list parsing is not needed for the config record;
			// bail out here rather than walking the full matrix.
			return info, nil
		}
	}

	if _, err = r.ReadUnsignedExpGolomb(); err != nil { // log2_max_frame_num_minus4
		return info, err
	}
	picOrderCntType, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	if picOrderCntType == 0 {
		if _, err = r.ReadUnsignedExpGolomb(); err != nil {
			return info, err
		}
	} else if picOrderCntType == 1 {
		return info, nil // rare path, not needed for the config record
	}
	if _, err = r.ReadUnsignedExpGolomb(); err != nil { // max_num_ref_frames
		return info, err
	}
	if _, err = r.ReadBits(1); err != nil { // gaps_in_frame_num_value_allowed_flag
		return info, err
	}
	widthInMbsMinus1, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	heightInMapUnitsMinus1, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	info.Width = (widthInMbsMinus1 + 1) * 16
	info.Height = (heightInMapUnitsMinus1 + 1) * 16

	frameMbsOnly, err := r.ReadBits(1)
	if err != nil {
		return info, err
	}
	if frameMbsOnly == 0 {
		info.Height *= 2
		if _, err = r.ReadBits(1); err != nil { // mb_adaptive_frame_field_flag
			return info, err
		}
	}
	if _, err = r.ReadBits(1); err != nil { // direct_8x8_inference_flag
		return info, err
	}
	cropping, err := r.ReadBits(1)
	if err != nil {
		return info, err
	}
	if cropping == 1 {
		left, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		right, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		top, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		bottom, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		cropUnitX, cropUnitY := uint32(2), uint32(2)
		if info.ChromaFormatIdc == 0 {
			cropUnitX, cropUnitY = 1, 1
		}
		info.Width -= cropUnitX * (left + right)
		info.Height -= cropUnitY * (top + bottom)
	}
	info.NumTemporalLayers = 1
	return info, nil
}

// parseHEVCSPS extracts the decoder-config-relevant fields from an HEVC
// SPS RBSP (the 2-byte NAL header already stripped).
func parseHEVCSPS(rbsp []byte) (SPSInfo, error) {
	r := bitio.NewReader(rbsp)
	var info SPSInfo

	if _, err := r.ReadBits(4); err != nil { // sps_video_parameter_set_id
		return info, err
	}
	maxSubLayersMinus1, err := r.ReadBits(3)
	if err != nil {
		return info, err
	}
	info.NumTemporalLayers = uint8(maxSubLayersMinus1) + 1
	if _, err = r.ReadBits(1); err != nil { // sps_temporal_id_nesting_flag
		return info, err
	}

	// profile_tier_level: general_profile_space(2), general_tier_flag(1),
	// general_profile_idc(5), 32-bit compatibility flags, 48-bit
	// constraint flags, general_level_idc(8).
	v, err := r.ReadBits(8)
	if err != nil {
		return info, err
	}
	info.TierFlag = uint8((v >> 5) & 1)
	info.ProfileIdc = v & 0x1F
	if _, err = r.ReadBits(32); err != nil {
		return info, err
	}
	if _, err = r.ReadBits(32); err != nil {
		return info, err
	}
	if _, err = r.ReadBits(16); err != nil {
		return info, err
	}
	level, err := r.ReadU8()
	if err != nil {
		return info, err
	}
	info.LevelIdc = level
	// Sub-layer profile/level flags (maxSubLayersMinus1 entries of 2 bits
	// each, plus padding) are skipped: not needed for the config record
	// and their presence doesn't shift anything we still read below in a
	// way that matters once we stop at chroma_format_idc, which comes
	// right after this block in the bitstream only when
	// maxSubLayersMinus1 == 0; for higher sub-layer counts the full
	// sub-layer table would need walking, which this parser does not do
	// (Non-goal: decoding content, only enough SPS fields to build hvcC).
	if maxSubLayersMinus1 > 0 {
		return info, nil
	}

	if _, err = r.ReadUnsignedExpGolomb(); err != nil { // sps_seq_parameter_set_id
		return info, err
	}
	chroma, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	info.ChromaFormatIdc = uint8(chroma)
	if chroma == 3 {
		if _, err = r.ReadBits(1); err != nil { // separate_colour_plane_flag
			return info, err
		}
	}
	width, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	info.Width = width
	height, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	info.Height = height

	conformanceWindow, err := r.ReadBits(1)
	if err != nil {
		return info, err
	}
	if conformanceWindow == 1 {
		left, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		right, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		top, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		bottom, err := r.ReadUnsignedExpGolomb()
		if err != nil {
			return info, err
		}
		subWidthC, subHeightC := uint32(2), uint32(2)
		if info.ChromaFormatIdc == 0 {
			subWidthC, subHeightC = 1, 1
		}
		info.Width -= subWidthC * (left + right)
		info.Height -= subHeightC * (top + bottom)
	}

	lumaBD, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	info.BitDepthLumaMinus8 = uint8(lumaBD)
	chromaBD, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return info, err
	}
	info.BitDepthChromaMinus8 = uint8(chromaBD)
	return info, nil
}
