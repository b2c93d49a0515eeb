/*
DESCRIPTION
  slice.go provides the slice header structure and its write-direction
  serialization, as defined in section 7.3.3 of the specifications. Field
  selection mirrors the subset of the teacher decoder's SliceHeader parsing
  in codec/h264/h264dec/slice.go that applies to I and P slices under
  pic_order_cnt_type 2, num_slice_groups_minus1 0, and a single reference
  picture (no reference picture list reordering, no weighted prediction,
  no memory management control operations beyond implicit sliding window).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package syntax

import "github.com/ausocean/avcenc/internal/bitio"

// SliceType values as defined in table 7-6, restricted to the two types a
// Baseline CAVLC P/I encoder emits.
const (
	SliceTypeP = 0
	SliceTypeI = 2
)

// SliceHeader describes a slice header as defined in section 7.3.3.
type SliceHeader struct {
	// first_mb_in_slice; the encoder always emits one slice per picture, so
	// this is always 0.
	FirstMbInSlice uint32

	SliceType uint32

	PPSID uint32

	// frame_num, eq 7-10, identifies the picture for reference management.
	FrameNum uint32

	// idr_pic_id, only present when the NAL unit type is 5 (IDR).
	IsIDR    bool
	IDRPicID uint32

	// num_ref_idx_active_override_flag is never set: PPS defaults apply.
	NumRefIdxActiveOverride bool

	// no_output_of_prior_pics_flag and long_term_reference_flag, only
	// present for IDR slices.
	NoOutputOfPriorPics bool
	LongTermReference   bool

	// adaptive_ref_pic_marking_mode_flag, only present for non-IDR
	// reference slices; the encoder relies on the implicit sliding window
	// process (section 8.2.5.3) so this is always false.
	AdaptiveRefPicMarkingMode bool

	// slice_qp_delta, eq 7-31, the per-slice QP offset from PPS pic_init_qp.
	SliceQPDelta int32

	// disable_deblocking_filter_idc selects the deblocking filter mode
	// (table 7-7): 0 enabled, 1 disabled, 2 disabled across slice
	// boundaries. The encoder runs one slice per picture so 0 and 2 are
	// equivalent; the value comes from Config.DisableDeblockIdc.
	DisableDeblockingFilterIdc uint32
	SliceAlphaC0OffsetDiv2     int32
	SliceBetaOffsetDiv2        int32
}

// Write serializes the slice header using log2MaxFrameNum bits for
// frame_num, as derived from the active SPS (log2_max_frame_num_minus4 + 4),
// following the field order of section 7.3.3.
func (h *SliceHeader) Write(w *bitio.Writer, pps *PPS, log2MaxFrameNum uint, nalType uint8) {
	w.WriteUe(h.FirstMbInSlice)
	w.WriteUe(h.SliceType)
	w.WriteUe(h.PPSID)
	w.WriteBits(h.FrameNum, int(log2MaxFrameNum))

	if nalType == NALTypeIDRSlice {
		w.WriteUe(h.IDRPicID)
	}

	// pic_order_cnt_type 2 contributes no additional syntax elements here.

	if h.SliceType != SliceTypeI {
		w.WriteBit(h.NumRefIdxActiveOverride)
		w.WriteBit(false) // ref_pic_list_modification_flag_l0: no reordering.
	}

	if nalType == NALTypeIDRSlice {
		w.WriteBit(h.NoOutputOfPriorPics)
		w.WriteBit(h.LongTermReference)
	} else if nalRefIdcIsReference(nalType) {
		w.WriteBit(h.AdaptiveRefPicMarkingMode)
	}

	w.WriteSe(h.SliceQPDelta)

	if pps.DeblockingFilterControlPresent {
		w.WriteUe(h.DisableDeblockingFilterIdc)
		if h.DisableDeblockingFilterIdc != 1 {
			w.WriteSe(h.SliceAlphaC0OffsetDiv2)
			w.WriteSe(h.SliceBetaOffsetDiv2)
		}
	}
}

func nalRefIdcIsReference(nalType uint8) bool {
	return nalType == NALTypeNonIDRSlice
}
