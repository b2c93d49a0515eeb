/*
DESCRIPTION
  frame.go provides the Frame type tying together a picture's luma and
  chroma planes, plus the single-short-term-reference decoded picture
  buffer (DPB) the Baseline encoder's frame controller uses, as specified
  in section 8.2.5 (decoded reference picture marking process) restricted
  to the one-reference, no-long-term-reference sliding window used here.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package picture

// Frame is one coded picture's sample planes, in 4:2:0 chroma subsampling.
type Frame struct {
	Y, Cb, Cr *Plane

	// FrameNum is the frame_num value (section 7.4.3) this picture was
	// coded or will be coded with.
	FrameNum uint32

	// POC is the picture order count derived for this frame under
	// pic_order_cnt_type 2 (section 8.2.1.3): simply 2*FrameNum.
	POC int

	// IsIDR marks a frame that starts a new coded video sequence.
	IsIDR bool

	// Timestamp is the frame's presentation time in seconds since the
	// start of the session, supplied by the caller. A caller that leaves
	// it at the zero value opts out of wall-clock admission entirely
	// (every frame handed to SetInput is admitted in arrival order,
	// subject only to the CPB-overflow guard); a caller that sets it is
	// asking SetInput to reject input arriving later than its target
	// frame slot (Timestamp * Config.FrameRate) as stale, per section
	// 4.2's frame admission contract.
	Timestamp float64
}

// NewFrame allocates a Frame with 4:2:0 chroma planes for a luma plane of
// the given dimensions (which must already be macroblock-aligned, i.e.
// multiples of 16).
func NewFrame(width, height int) *Frame {
	return &Frame{
		Y:  NewPlane(width, height),
		Cb: NewPlane(width/2, height/2),
		Cr: NewPlane(width/2, height/2),
	}
}

// ExtendBorders pads all three planes, readying the frame to serve as a
// motion-compensation reference.
func (f *Frame) ExtendBorders() {
	f.Y.ExtendBorders()
	f.Cb.ExtendBorders()
	f.Cr.ExtendBorders()
}

// DPB is the decoded picture buffer. The Baseline profile as scoped here
// keeps at most one short-term reference picture (section 8.2.5.3's
// sliding window with max_num_ref_frames == 1): each new reference simply
// replaces the previous one.
type DPB struct {
	ref *Frame
}

// Reference returns the current short-term reference picture, or nil if
// the stream has not yet coded an IDR picture.
func (d *DPB) Reference() *Frame {
	return d.ref
}

// Store replaces the reference picture with f, after f has had its
// borders extended by the caller.
func (d *DPB) Store(f *Frame) {
	d.ref = f
}

// Reset drops any stored reference, as required when an IDR picture
// begins a new coded video sequence (section 7.4.3's frame_num reset and
// the implicit DPB flush of an IDR access unit).
func (d *DPB) Reset() {
	d.ref = nil
}
