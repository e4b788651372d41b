// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package nalstream_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/nalstream"
)

func startCode() []byte { return []byte{0x00, 0x00, 0x00, 0x01} }

func TestParseAVCStreamDetectsCodecAndGroupsSamples(t *testing.T) {
	c := qt.New(t)

	var data []byte
	// SPS (nal_unit_type 7): baseline profile, trivial 16x16 picture.
	// The trailing 0xFB, 0x80 bytes encode (all as exp-Golomb zero, i.e.
	// a single '1' bit each) seq_parameter_set_id,
	// log2_max_frame_num_minus4, pic_order_cnt_type=0,
	// log2_max_pic_order_cnt_lsb_minus4, max_num_ref_frames, then
	// gaps_in_frame_num_value_allowed_flag=0,
	// pic_width_in_mbs_minus1=0 (width=16), pic_height_in_map_units_minus1=0
	// (height=16), frame_mbs_only_flag=1, direct_8x8_inference_flag=0,
	// frame_cropping_flag=0.
	sps := []byte{0x67, 0x42, 0x00, 0x0A, 0xFB, 0x80}
	data = append(data, startCode()...)
	data = append(data, sps...)
	// PPS (nal_unit_type 8).
	pps := []byte{0x68, 0xCE, 0x3C, 0x80}
	data = append(data, startCode()...)
	data = append(data, pps...)
	// One VCL slice NAL (nal_unit_type 1).
	slice := []byte{0x21, 0xAA, 0xBB}
	data = append(data, startCode()...)
	data = append(data, slice...)

	s, err := nalstream.Parse("test.264", data)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Codec, qt.Equals, nalstream.CodecAVC)
	c.Assert(len(s.SPS), qt.Equals, 1)
	c.Assert(len(s.PPS), qt.Equals, 1)
	c.Assert(len(s.Samples), qt.Equals, 1)
}

func TestParseNoStartCodeIsParseError(t *testing.T) {
	c := qt.New(t)
	_, err := nalstream.Parse("empty.264", []byte{0x01, 0x02, 0x03})
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestParseHEVCStreamDetectsVPSSPSPPS(t *testing.T) {
	c := qt.New(t)

	var data []byte
	vps := []byte{0x40, 0x01, 0x0C}
	data = append(data, startCode()...)
	data = append(data, vps...)
	// header(2 bytes) + 1 byte of (vps_id/max_sub_layers_minus1/nesting)
	// with max_sub_layers_minus1=1 so the parser takes its early-return
	// path right after profile_tier_level, plus 12 placeholder
	// profile_tier_level bytes.
	sps := []byte{
		0x42, 0x01,
		0x03,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	data = append(data, startCode()...)
	data = append(data, sps...)
	pps := []byte{0x44, 0x01, 0xC1}
	data = append(data, startCode()...)
	data = append(data, pps...)

	s, err := nalstream.Parse("test.265", data)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Codec, qt.Equals, nalstream.CodecHEVC)
	c.Assert(len(s.VPS), qt.Equals, 1)
	c.Assert(len(s.PPS), qt.Equals, 1)
}

func TestParseVVCStreamDetectsVPSSPSPPS(t *testing.T) {
	c := qt.New(t)

	var data []byte
	// VVC's 2-byte NAL header packs nal_unit_type into the top 5 bits of
	// the second byte (forbidden_zero_bit/reserved/layer_id occupy the
	// first byte): byte1 = nal_unit_type<<3 | temporal_id_plus1.
	vps := []byte{0x00, 0x71, 0x00} // VPS_NUT=14 -> 14<<3|1 = 0x71
	data = append(data, startCode()...)
	data = append(data, vps...)
	// SPS_NUT=15 -> 15<<3|1 = 0x79. RBSP byte 0 packs
	// sps_seq_parameter_set_id(4)=0 and sps_video_parameter_set_id(4)=0;
	// byte 1 packs sps_max_sublayers_minus1(3)=0,
	// sps_chroma_format_idc(2)=1 (4:2:0), sps_log2_ctu_size_minus5(2)=0,
	// sps_ptl_dpb_hrd_params_present_flag(1)=0, which sends the parser
	// down its early-return path right after the flag.
	sps := []byte{0x00, 0x79, 0x00, 0x08}
	data = append(data, startCode()...)
	data = append(data, sps...)
	pps := []byte{0x00, 0x81, 0x00} // PPS_NUT=16 -> 16<<3|1 = 0x81
	data = append(data, startCode()...)
	data = append(data, pps...)

	s, err := nalstream.Parse("test.266", data)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Codec, qt.Equals, nalstream.CodecVVC)
	c.Assert(len(s.VPS), qt.Equals, 1)
	c.Assert(len(s.PPS), qt.Equals, 1)
	c.Assert(s.SPSInfo.ChromaFormatIdc, qt.Equals, uint8(1))
}
