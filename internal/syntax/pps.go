/*
DESCRIPTION
  pps.go provides the picture parameter set structure and its write-
  direction serialization, as defined in section 7.3.2.2 of the
  specifications, trimmed to the Baseline-profile CAVLC subset: no slice
  groups (num_slice_groups_minus1 always 0), no weighted prediction, no
  8x8 transform or picture-level scaling matrices. Field layout follows
  the teacher decoder's PPS struct in codec/h264/h264dec/pps.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package syntax

import "github.com/ausocean/avcenc/internal/bitio"

// PPS describes a picture parameter set as defined in section 7.3.2.2.
type PPS struct {
	ID, SPSID uint32

	// entropy_coding_mode_flag, false selects CAVLC (the only mode a
	// Baseline-profile encoder may use).
	EntropyCodingMode bool

	BottomFieldPicOrderInFramePresent bool

	// num_ref_idx_l0_default_active_minus1; Baseline P slices use a single
	// reference, so this is always 0.
	NumRefIdxL0DefaultActiveMinus1 uint32
	NumRefIdxL1DefaultActiveMinus1 uint32

	WeightedPred   bool
	WeightedBipred uint32

	// pic_init_qp_minus26 and pic_init_qs_minus26 give the initial slice QP
	// (eq 7-30); the encoder's rate controller overrides QP per-slice via
	// the slice header delta, but this sets the stream-level default.
	PicInitQPMinus26 int32
	PicInitQSMinus26 int32

	ChromaQPIndexOffset int32

	DeblockingFilterControlPresent bool
	ConstrainedIntraPred            bool
	RedundantPicCntPresent          bool
}

// Write serializes the PPS RBSP as defined in section 7.3.2.2, with
// num_slice_groups_minus1 fixed at 0 (single slice group) so the slice
// group map syntax is never emitted.
func (p *PPS) Write(w *bitio.Writer) {
	w.WriteUe(p.ID)
	w.WriteUe(p.SPSID)
	w.WriteBit(p.EntropyCodingMode)
	w.WriteBit(p.BottomFieldPicOrderInFramePresent)
	w.WriteUe(0) // num_slice_groups_minus1

	w.WriteUe(p.NumRefIdxL0DefaultActiveMinus1)
	w.WriteUe(p.NumRefIdxL1DefaultActiveMinus1)
	w.WriteBit(p.WeightedPred)
	w.WriteBits(p.WeightedBipred, 2)
	w.WriteSe(p.PicInitQPMinus26)
	w.WriteSe(p.PicInitQSMinus26)
	w.WriteSe(p.ChromaQPIndexOffset)
	w.WriteBit(p.DeblockingFilterControlPresent)
	w.WriteBit(p.ConstrainedIntraPred)
	w.WriteBit(p.RedundantPicCntPresent)

	w.RBSPTrailingBits()
}

// NewBaselinePPS returns a PPS populated for CAVLC Baseline-profile
// encoding referencing sps.
func NewBaselinePPS(id uint32, sps *SPS, initQP int32) *PPS {
	return &PPS{
		ID:                   id,
		SPSID:                sps.SPSID,
		EntropyCodingMode:    false,
		PicInitQPMinus26:     initQP - 26,
		ConstrainedIntraPred: false,
	}
}
