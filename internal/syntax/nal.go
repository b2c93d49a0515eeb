/*
DESCRIPTION
  nal.go provides the network abstraction layer unit types the encoder
  emits, mirroring the field layout of the teacher decoder's NALUnit in
  codec/h264/h264dec/nalunit.go but in the write direction, and restricted
  to the Baseline-profile subset (no SVC/MVC/3D-AVC extensions).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package syntax provides write-direction H.264 Baseline-profile syntax
// structures: NAL unit headers, sequence and picture parameter sets, and
// slice headers, together with the bitio.Writer-based serialization of
// each as specified in ITU-T H.264 section 7.3.
package syntax

import "github.com/ausocean/avcenc/internal/bitio"

// NAL unit types referenced from table 7-1 that a Baseline-profile encoder
// can emit.
const (
	NALTypeNonIDRSlice = 1
	NALTypeIDRSlice    = 5
	NALTypeSEI         = 6
	NALTypeSPS         = 7
	NALTypePPS         = 8
	NALTypeAUD         = 9
	NALTypeEndOfSeq    = 10
	NALTypeEndOfStream = 11
)

// NALHeader describes a NAL unit header as defined in section 7.3.1,
// restricted to the forbidden_zero_bit/nal_ref_idc/nal_unit_type fields a
// Baseline-profile bitstream uses (no extension flags).
type NALHeader struct {
	RefIdc uint8
	Type   uint8
}

// Write serializes the NAL unit header. forbidden_zero_bit is always 0.
func (h NALHeader) Write(w *bitio.Writer) {
	w.WriteBits(0, 1)
	w.WriteBits(uint32(h.RefIdc), 2)
	w.WriteBits(uint32(h.Type), 5)
}

// RefIdcFor returns the nal_ref_idc value conventionally used for a NAL of
// the given type: 0 for non-reference slices, 3 for everything that
// participates in prediction or parameter signalling.
func RefIdcFor(nalType uint8, isReference bool) uint8 {
	switch nalType {
	case NALTypeSPS, NALTypePPS, NALTypeIDRSlice:
		return 3
	case NALTypeNonIDRSlice:
		if isReference {
			return 2
		}
		return 0
	default:
		return 0
	}
}
