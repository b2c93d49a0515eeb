/*
DESCRIPTION
  config.go defines the caller-facing Config a session is initialized
  with, covering the option table of section 6 of the specifications:
  picture geometry and timing, rate control targets, IDR cadence, the
  POC and reference/slice-group constraints this Baseline, single-
  reference, single-slice-group encoder enforces, and the deblocking
  and parameter-set delivery switches.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package avcenc

// Config holds the parameters a session is initialized with. Zero values
// are not valid for Width, Height and FrameRate; every other field has a
// documented default behaviour when left at its zero value.
type Config struct {
	// Width and Height are the luma picture dimensions in samples, and
	// must be positive multiples of 16 (macroblock size); the encoder
	// does not crop, so non-multiple-of-16 sources must be padded by the
	// caller before SetInput.
	Width, Height int

	// FrameRate is the nominal input frame rate in frames per second,
	// used as the rate controller's bits-per-frame budget denominator
	// and to map Frame.Timestamp to frame slots; the SPS carries no
	// timing information.
	FrameRate float64

	// BitRate is the target coded bitrate in bits per second. Ignored
	// when RateControl is false.
	BitRate int

	// CPBSize is the coded picture buffer capacity in bits, bounding how
	// far actual frame sizes may drift from the bitrate target before
	// the rate controller starts skipping or aggressively requantizing
	// frames.
	CPBSize int

	// InitCBPRemovalDelay is the initial CPB removal delay in 90kHz
	// clock ticks, carried for HRD-conformant muxing; the encoder itself
	// does not emit buffering period SEI messages and does not read this
	// field.
	InitCBPRemovalDelay int

	// RateControl enables the CPB-driven QP controller. When false,
	// every frame is coded at InitQP (or 26, if InitQP is 0).
	RateControl bool

	// InitQP is the starting/fixed quantization parameter, in [0, 51].
	// Zero selects an automatic starting point (26).
	InitQP int

	// IDRPeriod controls how often an IDR picture is forced: -1 codes
	// exactly one IDR (the first picture) and no more; 0 codes every
	// picture as IDR (intra-only); N > 0 forces an IDR every N pictures.
	IDRPeriod int

	// IntraMBRefresh is the number of macroblocks per picture forced to
	// Intra_16x16/Intra_4x4 in a P slice on a rotating basis, spreading
	// intra refresh across pictures instead of concentrating it at IDR
	// boundaries. 0 disables rolling refresh. Rolling refresh is not
	// implemented, so IntraMBRefresh > 0 is rejected at New (see
	// DESIGN.md).
	IntraMBRefresh int

	// NumRefFrame must be 1: this encoder keeps a single short-term
	// reference picture (DPB sliding window of size 1).
	NumRefFrame int

	// NumSliceGroup must be 1: FMO is out of scope.
	NumSliceGroup int

	// POCType selects pic_order_cnt_type (section 8.2.1). Only type 2
	// (POC derived directly from frame_num, no extra syntax) is
	// supported; 0 (the zero value) is accepted and coded as type 2, and
	// other values are rejected at New.
	POCType int

	// OutOfBandParamSet, when true, excludes the SPS and PPS NAL units
	// from the EncodeNAL stream; callers must instead fetch them once
	// via (*Encoder).ParameterSets and deliver them to the decoder by an
	// out-of-band channel (e.g. an RTP fmtp line or container metadata).
	OutOfBandParamSet bool

	// UseOverrunBuffer is accepted but has no effect. EncodeNAL always
	// keeps the pending NAL unit and returns BitstreamBufferFull when
	// called with a buffer smaller than that unit, whatever this flag
	// says; no secondary overrun buffer exists.
	UseOverrunBuffer bool

	// DisableDeblockIdc sets disable_deblocking_filter_idc (table 7-7):
	// 0 enables, 1 disables, 2 disables across slice boundaries only.
	// This encoder runs one slice per picture, so 0 and 2 behave
	// identically, both running internal/deblock's in-loop filter over
	// the reconstructed picture before it becomes a reference; 1 skips
	// that pass entirely.
	DisableDeblockIdc uint32

	// AlphaOffset and BetaOffset carry slice_alpha_c0_offset_div2 and
	// slice_beta_offset_div2 (each in [-6, 6]) through to the slice
	// header for a decoder's deblocking stage.
	AlphaOffset, BetaOffset int32

	// ConstrainedIntraPred sets constrained_intra_pred_flag (section
	// 7.4.2.2): when true, Intra_4x4/Intra_16x16 prediction may not
	// reference samples from neighbouring inter-coded macroblocks. This
	// encoder does not implement the constraint: the PPS always carries
	// 0 for the flag, and setting it is rejected at New, since honouring it would
	// require re-deriving intra neighbour availability against mb_type,
	// which the current neighbour model does not track.
	ConstrainedIntraPred bool

	// AutoSCD enables lightweight scene-cut detection: SetInput forces
	// an IDR early, ahead of the next scheduled IDRPeriod boundary, when
	// the input frame differs sharply from the current reference.
	AutoSCD bool

	// LogFilePath and Debug configure the session's structured logger;
	// see internal/logging.Config.
	LogFilePath string
	Debug       bool
}

func (c Config) mbWidth() int  { return c.Width / 16 }
func (c Config) mbHeight() int { return c.Height / 16 }
