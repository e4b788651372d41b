// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package nalstream

import "github.com/bep/heifwriter/internal/bitio"

// parseVVCSPS extracts the decoder-config-relevant fields from a VVC SPS
// RBSP (the 2-byte NAL header already stripped). It walks only as far as
// the profile/tier/level record that vvcC needs: sps_seq_parameter_set_id,
// sps_video_parameter_set_id, sps_max_sublayers_minus1, chroma_format_idc,
// and (when present) the leading profile_tier_level fields. VVC's
// general_constraint_info() that follows general_level_idc is a long,
// conditionally-present bit vector not needed for the config record, so
// this parser bails out right after general_level_idc rather than walking
// it (mirrors parseHEVCSPS's early bail for higher sub-layer counts:
// decoding content is a non-goal, only enough SPS fields to build vvcC).
func parseVVCSPS(rbsp []byte) (SPSInfo, error) {
	r := bitio.NewReader(rbsp)
	var info SPSInfo

	if _, err := r.ReadBits(4); err != nil { // sps_seq_parameter_set_id
		return info, err
	}
	if _, err := r.ReadBits(4); err != nil { // sps_video_parameter_set_id
		return info, err
	}
	maxSublayersMinus1, err := r.ReadBits(3)
	if err != nil {
		return info, err
	}
	info.NumTemporalLayers = uint8(maxSublayersMinus1) + 1

	chroma, err := r.ReadBits(2)
	if err != nil {
		return info, err
	}
	info.ChromaFormatIdc = uint8(chroma)

	if _, err = r.ReadBits(2); err != nil { // sps_log2_ctu_size_minus5
		return info, err
	}
	ptlPresent, err := r.ReadBits(1)
	if err != nil {
		return info, err
	}
	if ptlPresent == 0 {
		return info, nil
	}

	profile, err := r.ReadBits(7) // general_profile_idc
	if err != nil {
		return info, err
	}
	info.ProfileIdc = uint8(profile)
	tier, err := r.ReadBits(1) // general_tier_flag
	if err != nil {
		return info, err
	}
	info.TierFlag = uint8(tier)
	level, err := r.ReadU8() // general_level_idc
	if err != nil {
		return info, err
	}
	info.LevelIdc = level

	return info, nil
}
