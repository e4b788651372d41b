// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/fourcc"
)

// HevcNalArray is one num_of_arrays entry of hvcC: a NAL unit type and the
// parameter-set NAL units of that type.
type HevcNalArray struct {
	ArrayCompleteness bool
	NalUnitType       uint8 // 6 bits
	Nalus             [][]byte
}

// HvcC is the HEVC decoder configuration record (§4.5).
type HvcC struct {
	GeneralProfileSpace              uint8
	GeneralTierFlag                  uint8
	GeneralProfileIdc                uint8
	GeneralProfileCompatibilityFlags uint32
	GeneralConstraintIndicatorFlags  uint64 // 48 bits
	GeneralLevelIdc                  uint8
	MinSpatialSegmentationIdc        uint16 // 12 bits
	ParallelismType                  uint8  // 2 bits
	ChromaFormat                     uint8  // 2 bits
	BitDepthLumaMinus8               uint8  // 3 bits
	BitDepthChromaMinus8             uint8  // 3 bits
	AvgFrameRate                     uint16
	ConstantFrameRate                uint8 // 2 bits
	NumTemporalLayers                uint8 // 3 bits
	TemporalIdNested                 uint8 // 1 bit
	Arrays                           []HevcNalArray
}

func (b *HvcC) Tag() fourcc.Type { return fourcc.HvcC }

func (b *HvcC) SerializePayload(w *bitio.Writer) error {
	w.WriteU8(1) // configurationVersion
	w.WriteBits(uint32(b.GeneralProfileSpace), 2)
	w.WriteBits(uint32(b.GeneralTierFlag), 1)
	w.WriteBits(uint32(b.GeneralProfileIdc), 5)
	w.WriteBits(b.GeneralProfileCompatibilityFlags, 32)
	// constraint_indicator_flags: 48 bits, written as 6 bytes.
	w.WriteBits(uint32(b.GeneralConstraintIndicatorFlags>>16), 32)
	w.WriteBits(uint32(b.GeneralConstraintIndicatorFlags&0xFFFF), 16)
	w.WriteU8(b.GeneralLevelIdc)
	w.WriteBits(0xF, 4) // reserved '1111'
	w.WriteBits(uint32(b.MinSpatialSegmentationIdc), 12)
	w.WriteBits(0x3F, 6) // reserved '111111'
	w.WriteBits(uint32(b.ParallelismType), 2)
	w.WriteBits(0x3F, 6) // reserved
	w.WriteBits(uint32(b.ChromaFormat), 2)
	w.WriteBits(0x1F, 5) // reserved
	w.WriteBits(uint32(b.BitDepthLumaMinus8), 3)
	w.WriteBits(0x1F, 5) // reserved
	w.WriteBits(uint32(b.BitDepthChromaMinus8), 3)
	w.WriteU16(b.AvgFrameRate)
	w.WriteBits(uint32(b.ConstantFrameRate), 2)
	w.WriteBits(uint32(b.NumTemporalLayers), 3)
	w.WriteBits(uint32(b.TemporalIdNested), 1)
	w.WriteBits(3, 2) // lengthSizeMinusOne = 3 (4-byte NAL lengths)
	w.WriteU8(uint8(len(b.Arrays)))
	for _, arr := range b.Arrays {
		completeness := uint32(0)
		if arr.ArrayCompleteness {
			completeness = 1
		}
		w.WriteBits(completeness, 1)
		w.WriteBits(0, 1) // reserved
		w.WriteBits(uint32(arr.NalUnitType), 6)
		w.WriteU16(uint16(len(arr.Nalus)))
		for _, nal := range arr.Nalus {
			w.WriteU16(uint16(len(nal)))
			w.WriteBytes(nal)
		}
	}
	return nil
}

func (b *HvcC) ParsePayload(r *bitio.Reader) error {
	if _, err := r.ReadU8(); err != nil { // configurationVersion
		return err
	}
	v, err := r.ReadBits(8)
	if err != nil {
		return err
	}
	b.GeneralProfileSpace = uint8(v >> 6)
	b.GeneralTierFlag = uint8((v >> 5) & 1)
	b.GeneralProfileIdc = uint8(v & 0x1F)
	b.GeneralProfileCompatibilityFlags, err = r.ReadU32()
	if err != nil {
		return err
	}
	hi, err := r.ReadBits(32)
	if err != nil {
		return err
	}
	lo, err := r.ReadBits(16)
	if err != nil {
		return err
	}
	b.GeneralConstraintIndicatorFlags = uint64(hi)<<16 | uint64(lo)
	levelIdc, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.GeneralLevelIdc = levelIdc
	if _, err = r.ReadBits(4); err != nil {
		return err
	}
	minSpat, err := r.ReadBits(12)
	if err != nil {
		return err
	}
	b.MinSpatialSegmentationIdc = uint16(minSpat)
	if _, err = r.ReadBits(6); err != nil {
		return err
	}
	par, err := r.ReadBits(2)
	if err != nil {
		return err
	}
	b.ParallelismType = uint8(par)
	if _, err = r.ReadBits(6); err != nil {
		return err
	}
	chroma, err := r.ReadBits(2)
	if err != nil {
		return err
	}
	b.ChromaFormat = uint8(chroma)
	if _, err = r.ReadBits(5); err != nil {
		return err
	}
	lumaBD, err := r.ReadBits(3)
	if err != nil {
		return err
	}
	b.BitDepthLumaMinus8 = uint8(lumaBD)
	if _, err = r.ReadBits(5); err != nil {
		return err
	}
	chromaBD, err := r.ReadBits(3)
	if err != nil {
		return err
	}
	b.BitDepthChromaMinus8 = uint8(chromaBD)
	b.AvgFrameRate, err = r.ReadU16()
	if err != nil {
		return err
	}
	cfr, err := r.ReadBits(2)
	if err != nil {
		return err
	}
	b.ConstantFrameRate = uint8(cfr)
	numTemporal, err := r.ReadBits(3)
	if err != nil {
		return err
	}
	b.NumTemporalLayers = uint8(numTemporal)
	nested, err := r.ReadBits(1)
	if err != nil {
		return err
	}
	b.TemporalIdNested = uint8(nested)
	if _, err = r.ReadBits(2); err != nil { // lengthSizeMinusOne
		return err
	}
	numArrays, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.Arrays = nil
	for i := uint8(0); i < numArrays; i++ {
		completeness, err := r.ReadBits(1)
		if err != nil {
			return err
		}
		if _, err = r.ReadBits(1); err != nil {
			return err
		}
		nut, err := r.ReadBits(6)
		if err != nil {
			return err
		}
		numNalus, err := r.ReadU16()
		if err != nil {
			return err
		}
		arr := HevcNalArray{ArrayCompleteness: completeness == 1, NalUnitType: uint8(nut)}
		for j := uint16(0); j < numNalus; j++ {
			length, err := r.ReadU16()
			if err != nil {
				return err
			}
			nal, err := r.ReadBytes(int(length))
			if err != nil {
				return err
			}
			arr.Nalus = append(arr.Nalus, append([]byte(nil), nal...))
		}
		b.Arrays = append(b.Arrays, arr)
	}
	return nil
}

// AvcC is the AVC decoder configuration record (§4.5).
type AvcC struct {
	Profile, ProfileCompat, Level uint8
	SPS, PPS                      [][]byte
	// HighProfileFields is set when Profile is one of 100/110/122/144,
	// carrying the extra chroma/bit-depth/SPS_ext fields.
	HighProfileFields *AvcCHighProfileFields
}

// AvcCHighProfileFields are the additional fields avcC carries for
// High-profile-family SPS (§4.5).
type AvcCHighProfileFields struct {
	ChromaFormat         uint8 // 2 bits
	BitDepthLumaMinus8   uint8 // 3 bits
	BitDepthChromaMinus8 uint8 // 3 bits
	SPSExt               [][]byte
}

func (b *AvcC) Tag() fourcc.Type { return fourcc.AvcC }

func (b *AvcC) SerializePayload(w *bitio.Writer) error {
	w.WriteU8(1) // configurationVersion
	w.WriteU8(b.Profile)
	w.WriteU8(b.ProfileCompat)
	w.WriteU8(b.Level)
	w.WriteBits(0x3F, 6) // reserved '111111'
	w.WriteBits(3, 2)    // lengthSizeMinusOne = 3
	w.WriteBits(0x7, 3)  // reserved '111'
	w.WriteBits(uint32(len(b.SPS)), 5)
	for _, sps := range b.SPS {
		w.WriteU16(uint16(len(sps)))
		w.WriteBytes(sps)
	}
	w.WriteU8(uint8(len(b.PPS)))
	for _, pps := range b.PPS {
		w.WriteU16(uint16(len(pps)))
		w.WriteBytes(pps)
	}
	if isHighProfile(b.Profile) && b.HighProfileFields != nil {
		hp := b.HighProfileFields
		w.WriteBits(0x3F, 6)
		w.WriteBits(uint32(hp.ChromaFormat), 2)
		w.WriteBits(0x1F, 5)
		w.WriteBits(uint32(hp.BitDepthLumaMinus8), 3)
		w.WriteBits(0x1F, 5)
		w.WriteBits(uint32(hp.BitDepthChromaMinus8), 3)
		w.WriteU8(uint8(len(hp.SPSExt)))
		for _, ext := range hp.SPSExt {
			w.WriteU16(uint16(len(ext)))
			w.WriteBytes(ext)
		}
	}
	return nil
}

func isHighProfile(profile uint8) bool {
	switch profile {
	case 100, 110, 122, 144:
		return true
	}
	return false
}

func (b *AvcC) ParsePayload(r *bitio.Reader) error {
	if _, err := r.ReadU8(); err != nil {
		return err
	}
	var err error
	if b.Profile, err = r.ReadU8(); err != nil {
		return err
	}
	if b.ProfileCompat, err = r.ReadU8(); err != nil {
		return err
	}
	if b.Level, err = r.ReadU8(); err != nil {
		return err
	}
	if _, err = r.ReadBits(6); err != nil {
		return err
	}
	if _, err = r.ReadBits(2); err != nil { // lengthSizeMinusOne
		return err
	}
	if _, err = r.ReadBits(3); err != nil {
		return err
	}
	numSPS, err := r.ReadBits(5)
	if err != nil {
		return err
	}
	b.SPS = nil
	for i := uint32(0); i < numSPS; i++ {
		length, err := r.ReadU16()
		if err != nil {
			return err
		}
		sps, err := r.ReadBytes(int(length))
		if err != nil {
			return err
		}
		b.SPS = append(b.SPS, append([]byte(nil), sps...))
	}
	numPPS, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.PPS = nil
	for i := uint8(0); i < numPPS; i++ {
		length, err := r.ReadU16()
		if err != nil {
			return err
		}
		pps, err := r.ReadBytes(int(length))
		if err != nil {
			return err
		}
		b.PPS = append(b.PPS, append([]byte(nil), pps...))
	}
	if isHighProfile(b.Profile) && r.Remaining() >= 8 {
		hp := &AvcCHighProfileFields{}
		if _, err = r.ReadBits(6); err != nil {
			return err
		}
		chroma, err := r.ReadBits(2)
		if err != nil {
			return err
		}
		hp.ChromaFormat = uint8(chroma)
		if _, err = r.ReadBits(5); err != nil {
			return err
		}
		lumaBD, err := r.ReadBits(3)
		if err != nil {
			return err
		}
		hp.BitDepthLumaMinus8 = uint8(lumaBD)
		if _, err = r.ReadBits(5); err != nil {
			return err
		}
		chromaBD, err := r.ReadBits(3)
		if err != nil {
			return err
		}
		hp.BitDepthChromaMinus8 = uint8(chromaBD)
		numExt, err := r.ReadU8()
		if err != nil {
			return err
		}
		for i := uint8(0); i < numExt; i++ {
			length, err := r.ReadU16()
			if err != nil {
				return err
			}
			ext, err := r.ReadBytes(int(length))
			if err != nil {
				return err
			}
			hp.SPSExt = append(hp.SPSExt, append([]byte(nil), ext...))
		}
		b.HighProfileFields = hp
	}
	return nil
}

// VvcNalArray mirrors HevcNalArray for VVC parameter sets.
type VvcNalArray struct {
	NalUnitType uint8
	Nalus       [][]byte
}

// VvcC is a minimal VVC decoder configuration record: version and an
// embedded profile/tier/level summary, plus NAL unit arrays indexed by
// VVC NAL-unit type (§4.5: "analogous" to hvcC).
type VvcC struct {
	GeneralProfileIdc uint8
	GeneralTierFlag   uint8
	GeneralLevelIdc   uint8
	ChromaFormat      uint8
	BitDepthMinus8    uint8
	Arrays            []VvcNalArray
}

func (b *VvcC) Tag() fourcc.Type { return fourcc.VvcC }

func (b *VvcC) SerializePayload(w *bitio.Writer) error {
	w.WriteU8(1) // configurationVersion (LengthSizeMinusOne etc. folded below)
	w.WriteBits(3, 2) // lengthSizeMinusOne
	w.WriteBits(uint32(b.ChromaFormat), 2)
	w.WriteBits(uint32(b.BitDepthMinus8), 4)
	w.WriteBits(uint32(b.GeneralTierFlag), 1)
	w.WriteBits(uint32(b.GeneralProfileIdc), 7)
	w.WriteU8(b.GeneralLevelIdc)
	w.WriteU8(uint8(len(b.Arrays)))
	for _, arr := range b.Arrays {
		w.WriteBits(uint32(arr.NalUnitType), 6)
		w.WriteBits(0, 2)
		w.WriteU16(uint16(len(arr.Nalus)))
		for _, nal := range arr.Nalus {
			w.WriteU16(uint16(len(nal)))
			w.WriteBytes(nal)
		}
	}
	return nil
}

func (b *VvcC) ParsePayload(r *bitio.Reader) error {
	if _, err := r.ReadU8(); err != nil {
		return err
	}
	if _, err := r.ReadBits(2); err != nil {
		return err
	}
	chroma, err := r.ReadBits(2)
	if err != nil {
		return err
	}
	b.ChromaFormat = uint8(chroma)
	bd, err := r.ReadBits(4)
	if err != nil {
		return err
	}
	b.BitDepthMinus8 = uint8(bd)
	tier, err := r.ReadBits(1)
	if err != nil {
		return err
	}
	b.GeneralTierFlag = uint8(tier)
	profile, err := r.ReadBits(7)
	if err != nil {
		return err
	}
	b.GeneralProfileIdc = uint8(profile)
	level, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.GeneralLevelIdc = level
	numArrays, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.Arrays = nil
	for i := uint8(0); i < numArrays; i++ {
		nut, err := r.ReadBits(6)
		if err != nil {
			return err
		}
		if _, err = r.ReadBits(2); err != nil {
			return err
		}
		numNalus, err := r.ReadU16()
		if err != nil {
			return err
		}
		arr := VvcNalArray{NalUnitType: uint8(nut)}
		for j := uint16(0); j < numNalus; j++ {
			length, err := r.ReadU16()
			if err != nil {
				return err
			}
			nal, err := r.ReadBytes(int(length))
			if err != nil {
				return err
			}
			arr.Nalus = append(arr.Nalus, append([]byte(nil), nal...))
		}
		b.Arrays = append(b.Arrays, arr)
	}
	return nil
}
