/*
DESCRIPTION
  sps.go provides the sequence parameter set structure and its write-
  direction serialization, as defined in section 7.3.2.1.1 of the
  specifications. Field commentary is adapted from the teacher decoder's
  SPS struct in codec/h264/h264dec/sps.go, trimmed to the subset a
  Baseline-profile, 4:2:0, progressive-scan encoder populates: no separate
  colour planes, no sequence scaling matrices (Flat_4x4_16/Flat_8x8_16 are
  always inferred), and pic_order_cnt_type fixed per-stream rather than
  parsed generically.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package syntax

import "github.com/ausocean/avcenc/internal/bitio"

// Baseline profile_idc, as assigned in table A-1.
const ProfileIDCBaseline = 66

// SPS describes a sequence parameter set as defined by section 7.3.2.1.1.
// For field semantics see section 7.4.2.1.
type SPS struct {
	// profile_idc and level_idc indicate the profile and level to which the
	// coded video sequence conforms.
	ProfileIDC uint8
	LevelIDC   uint8

	// The constraint_setx_flag flags specify the constraints defined in A.2.
	// Constraint1 (constraint_set1_flag) is always set for a Baseline stream
	// that is also compliant with the Constrained Baseline profile.
	Constraint0, Constraint1, Constraint2, Constraint3 bool

	// seq_parameter_set_id identifies this sequence parameter set.
	SPSID uint32

	// log2_max_frame_num_minus4 allows derivation of MaxFrameNum (eq 7-10).
	Log2MaxFrameNumMinus4 uint32

	// pic_order_cnt_type specifies the method used to decode picture order
	// count. The encoder always emits type 2, which derives POC directly
	// from frame_num and needs no additional syntax elements.
	PicOrderCntType uint32

	// log2_max_pic_order_cnt_lsb_minus4, only present when PicOrderCntType==0.
	Log2MaxPicOrderCntLsbMinus4 uint32

	// max_num_ref_frames specifies the maximum number of short-term and
	// long-term reference frames; the Baseline single-reference DPB model
	// fixes this at 1.
	MaxNumRefFrames uint32

	// gaps_in_frame_num_value_allowed_flag.
	GapsInFrameNumAllowed bool

	// pic_width_in_mbs_minus1 and pic_height_in_map_units_minus1 give the
	// frame dimensions in macroblocks (eq 7-13, 7-14, 7-15).
	PicWidthInMbsMinus1       uint32
	PicHeightInMapUnitsMinus1 uint32

	// frame_mbs_only_flag is always true: the encoder never produces field
	// pictures or macroblock-adaptive frame/field coding.
	FrameMbsOnlyFlag bool

	// direct_8x8_inference_flag, irrelevant without B slices but still
	// signalled for conformance.
	Direct8x8InferenceFlag bool

	// frame_cropping_flag and the four crop offsets, used when the coded
	// picture size (always a multiple of 16) exceeds the true frame size.
	FrameCroppingFlag  bool
	CropLeft, CropRight,
	CropTop, CropBottom uint32

	// vui_parameters_present_flag; the encoder never emits VUI parameters.
	VUIParametersPresent bool
}

// Write serializes the SPS RBSP as defined in section 7.3.2.1.1.
func (s *SPS) Write(w *bitio.Writer) {
	w.WriteBits(uint32(s.ProfileIDC), 8)
	w.WriteBit(s.Constraint0)
	w.WriteBit(s.Constraint1)
	w.WriteBit(s.Constraint2)
	w.WriteBit(s.Constraint3)
	w.WriteBits(0, 4) // reserved_zero_4bits
	w.WriteBits(uint32(s.LevelIDC), 8)
	w.WriteUe(s.SPSID)

	w.WriteUe(s.Log2MaxFrameNumMinus4)
	w.WriteUe(s.PicOrderCntType)
	if s.PicOrderCntType == 0 {
		w.WriteUe(s.Log2MaxPicOrderCntLsbMinus4)
	}

	w.WriteUe(s.MaxNumRefFrames)
	w.WriteBit(s.GapsInFrameNumAllowed)
	w.WriteUe(s.PicWidthInMbsMinus1)
	w.WriteUe(s.PicHeightInMapUnitsMinus1)
	w.WriteBit(s.FrameMbsOnlyFlag)
	if !s.FrameMbsOnlyFlag {
		w.WriteBit(false) // mb_adaptive_frame_field_flag, unused
	}
	w.WriteBit(s.Direct8x8InferenceFlag)

	w.WriteBit(s.FrameCroppingFlag)
	if s.FrameCroppingFlag {
		w.WriteUe(s.CropLeft)
		w.WriteUe(s.CropRight)
		w.WriteUe(s.CropTop)
		w.WriteUe(s.CropBottom)
	}

	w.WriteBit(s.VUIParametersPresent)
	w.RBSPTrailingBits()
}

// WidthSamples and HeightSamples return the coded picture dimensions in
// luma samples, per equations 7-13 and 7-15 (frame_mbs_only_flag==1).
func (s *SPS) WidthSamples() int {
	return int(s.PicWidthInMbsMinus1+1) * 16
}

func (s *SPS) HeightSamples() int {
	return int(s.PicHeightInMapUnitsMinus1+1) * 16
}

// NewBaselineSPS returns an SPS populated for a progressive, 4:2:0,
// single-reference Baseline stream of the given coded dimensions in
// macroblocks, with pic_order_cnt_type fixed at 2 (section 8.2.1.3) so no
// additional POC syntax elements are required per picture.
func NewBaselineSPS(id uint32, mbWidth, mbHeight int, levelIDC uint8) *SPS {
	return &SPS{
		ProfileIDC:              ProfileIDCBaseline,
		Constraint0:              true,
		Constraint1:              true,
		LevelIDC:                 levelIDC,
		SPSID:                    id,
		Log2MaxFrameNumMinus4:    4,
		PicOrderCntType:          2,
		MaxNumRefFrames:          1,
		PicWidthInMbsMinus1:      uint32(mbWidth - 1),
		PicHeightInMapUnitsMinus1: uint32(mbHeight - 1),
		FrameMbsOnlyFlag:         true,
		Direct8x8InferenceFlag:   true,
	}
}
