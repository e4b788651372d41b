// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package bitio

// NextStartCode returns the byte offset and length of the next Annex-B
// start code (any number of leading 0x00 bytes >= 2, followed by 0x01) at
// or after from. ok is false if none is found.
func NextStartCode(data []byte, from int) (offset, length int, ok bool) {
	i := from
	for i+2 < len(data) {
		if data[i] != 0 {
			i++
			continue
		}
		// count run of zero bytes starting at i
		zeros := 0
		j := i
		for j < len(data) && data[j] == 0 {
			zeros++
			j++
		}
		if zeros >= 2 && j < len(data) && data[j] == 1 {
			return i, zeros + 1, true
		}
		i = j
	}
	return 0, 0, false
}

// SplitNALUnits scans data for Annex-B start codes and returns the byte
// range of each NAL unit (exclusive of its leading start code, and
// exclusive of any trailing zero bytes belonging to the next start code).
func SplitNALUnits(data []byte) [][2]int {
	var spans [][2]int
	off, length, ok := NextStartCode(data, 0)
	if !ok {
		return spans
	}
	cur := off + length
	for {
		nextOff, nextLen, found := NextStartCode(data, cur)
		end := len(data)
		if found {
			end = nextOff
		}
		if end > cur {
			spans = append(spans, [2]int{cur, end})
		}
		if !found {
			break
		}
		cur = nextOff + nextLen
	}
	return spans
}

// StripEmulationPrevention converts an Annex-B NAL payload (still carrying
// emulation-prevention bytes) into RBSP by removing any 0x03 byte that
// immediately follows two 0x00 bytes.
func StripEmulationPrevention(nal []byte) []byte {
	out := make([]byte, 0, len(nal))
	zeros := 0
	for _, b := range nal {
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		out = append(out, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}

// InsertEmulationPrevention is the inverse of StripEmulationPrevention: it
// inserts 0x03 after any 0x00 0x00 run whenever the following byte is in
// {0,1,2,3}, so that the result never contains a spurious start-code-like
// sequence. Used by round-trip tests (§8: "emulation-prevention removal is
// an involution").
func InsertEmulationPrevention(rbsp []byte) []byte {
	out := make([]byte, 0, len(rbsp)+len(rbsp)/100+8)
	zeros := 0
	for _, b := range rbsp {
		if zeros >= 2 && b <= 3 {
			out = append(out, 0x03)
			zeros = 0
		}
		out = append(out, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
