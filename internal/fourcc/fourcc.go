// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package fourcc implements the 4-byte box/item type tags used throughout
// ISOBMFF and HEIF.
package fourcc

// Type is a 4-byte box or item type, stored as a big-endian uint32 so that
// equality and ordering are plain integer comparisons.
type Type uint32

// New builds a Type from exactly four ASCII bytes.
func New(a, b, c, d byte) Type {
	return Type(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

// Parse builds a Type from a 4-byte string. Panics if s is not length 4;
// callers only ever pass constant literals.
func Parse(s string) Type {
	if len(s) != 4 {
		panic("fourcc: Parse requires a 4-byte string, got " + s)
	}
	return New(s[0], s[1], s[2], s[3])
}

// String renders the tag back to its 4-character form.
func (t Type) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Bytes returns the tag as a 4-byte big-endian array.
func (t Type) Bytes() [4]byte {
	return [4]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)}
}

// Well-known box and item type tags used by the HEIF writer. Grouped by
// container the way the teacher groups its own fourCC vocabulary.
var (
	Ftyp = Parse("ftyp")
	Meta = Parse("meta")
	Mdat = Parse("mdat")
	Free = Parse("free")
	Skip = Parse("skip")

	Hdlr = Parse("hdlr")
	Iinf = Parse("iinf")
	Infe = Parse("infe")
	Iloc = Parse("iloc")
	Iref = Parse("iref")
	Iprp = Parse("iprp")
	Ipco = Parse("ipco")
	Ipma = Parse("ipma")
	Idat = Parse("idat")
	Pitm = Parse("pitm")
	Grpl = Parse("grpl")

	Thmb = Parse("thmb")
	Auxl = Parse("auxl")
	Dimg = Parse("dimg")
	Cdsc = Parse("cdsc")
	Base = Parse("base")
	Altr = Parse("altr")

	Hvc1 = Parse("hvc1")
	Avc1 = Parse("avc1")
	Vvc1 = Parse("vvc1")
	Lhv1 = Parse("lhv1")
	Mp4a = Parse("mp4a")
	Grid = Parse("grid")
	Iovl = Parse("iovl")
	Iden = Parse("iden")

	Exif = Parse("Exif")
	Mime = Parse("mime")

	HvcC = Parse("hvcC")
	AvcC = Parse("avcC")
	VvcC = Parse("vvcC")
	Esds = Parse("esds")
	Ccst = Parse("ccst")

	Ispe = Parse("ispe")
	Pasp = Parse("pasp")
	Colr = Parse("colr")
	Pixi = Parse("pixi")
	Irot = Parse("irot")
	Imir = Parse("imir")
	Clap = Parse("clap")
	Rloc = Parse("rloc")
	AuxC = Parse("auxC")
	Rotn = Parse("rotn")
	Rwpk = Parse("rwpk")
	Covi = Parse("covi")
	Lsel = Parse("lsel")
	Tols = Parse("tols")

	Moov = Parse("moov")
	Mvhd = Parse("mvhd")
	Trak = Parse("trak")
	Tkhd = Parse("tkhd")
	Tref = Parse("tref")
	Edts = Parse("edts")
	Elst = Parse("elst")
	Mdia = Parse("mdia")
	Mdhd = Parse("mdhd")
	Minf = Parse("minf")
	Stbl = Parse("stbl")
	Stsd = Parse("stsd")
	Stco = Parse("stco")
	Co64 = Parse("co64")
	Stsc = Parse("stsc")
	Stsz = Parse("stsz")
	Stts = Parse("stts")
	Stss = Parse("stss")
	Ctts = Parse("ctts")
	Sgpd = Parse("sgpd")
	Sbgp = Parse("sbgp")
	Trex = Parse("trex")
	Mehd = Parse("mehd")
	Mvex = Parse("mvex")
	Moof = Parse("moof")
	Mfhd = Parse("mfhd")
	Traf = Parse("traf")
	Tfhd = Parse("tfhd")
	Tfdt = Parse("tfdt")
	Trun = Parse("trun")
	Vmhd = Parse("vmhd")
	Smhd = Parse("smhd")
	Nmhd = Parse("nmhd")
	Dinf = Parse("dinf")
	Dref = Parse("dref")
	Url  = Parse("url ")
	Urn  = Parse("urn ")
)

// Handler type tags (values carried inside hdlr, not box tags).
var (
	HandlerPict = Parse("pict")
	HandlerAuxv = Parse("auxv")
	HandlerVide = Parse("vide")
	HandlerSoun = Parse("soun")
)
