/*
DESCRIPTION
  ratectrl.go implements the TMN8-style frame-level rate control loop
  referenced in original_source/rate_control.cpp: a leaky-bucket coded
  picture buffer (CPB) occupancy model, a circular history of recent
  (QP, actual bits, MAD) samples, and a QP selection process that finds
  the history sample whose MAD best matches the frame about to be coded,
  estimates a target quantization step from the ratio of that sample's
  rate-distortion figure to the current target's, and converts the
  result back to a QP through the standard six-entry Qstep table. A
  borrow/repay counter pair tracks bits spent ahead of or saved against
  the moving target, the way TMN8's active rate control folds previous
  over/undershoot back into later frames' targets.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package ratectrl implements CPB-buffer-driven frame-level rate control
// for the Baseline-profile encoder.
package ratectrl

import "math"

// Config holds the static rate control parameters derived from the
// encoder's target bitrate and frame rate.
type Config struct {
	BitRate       int     // target bits per second.
	FrameRate     float64 // frames per second.
	CPBSize       int     // coded picture buffer capacity, in bits.
	InitialQP     int
	MinQP, MaxQP  int
	IFrameQPDelta int // QP offset applied to I frames relative to P frames.
}

// sample is one entry of the MAD-indexed history QPForFrame searches for
// the nearest match to the frame it is about to pick a QP for.
type sample struct {
	qp   int
	bits int
	mad  float64
}

// historyLen is the size of the circular (QP, bits, MAD) sample window;
// 16 frames gives the nearest-MAD search enough recent texture variety
// without tracking the whole sequence.
const historyLen = 16

// counterCap bounds counterBTsrc/counterBTdst. Per a long-running
// session (broadcast-length capture, not a single test clip) these
// borrow/repay counters would otherwise accumulate without bound and
// risk overflowing a 32-bit accumulator after a couple of billion
// frames; capping trades unbounded carry-forward for a ceiling on how
// much credit/debt a session can bank, which is the simplest of the two
// fixes (cap or widen) available for that failure mode.
const counterCap = int64(1) << 40

// qstepRel holds the six Qstep values, relative to the base step at
// QP%6==4, that the QP/Qstep relation Qstep = qstepRel[QP%6] *
// 2^(QP/6-4) cycles through for one octave of QP.
var qstepRel = [6]float64{0.625, 0.6875, 0.8125, 0.875, 1.0, 1.125}

// qpToQstep converts a QP in [0, 51] to its quantization step size.
func qpToQstep(qp int) float64 {
	if qp < 0 {
		qp = 0
	}
	if qp > 51 {
		qp = 51
	}
	return qstepRel[qp%6] * math.Pow(2, float64(qp/6-4))
}

// qstepToQP inverts qpToQstep by nearest match; the relation isn't
// monotonic-invertible in closed form because of the %6/÷6 split, but a
// linear scan over the 52 legal QPs is cheap and exact.
func qstepToQP(qstep float64) int {
	bestQP, bestDiff := 0, math.Inf(1)
	for qp := 0; qp <= 51; qp++ {
		d := math.Abs(qpToQstep(qp) - qstep)
		if d < bestDiff {
			bestDiff, bestQP = d, qp
		}
	}
	return bestQP
}

// Controller tracks CPB occupancy, the moving bit target and its
// accumulated deviation, the borrow/repay counter pair, and a recent
// (QP, bits, MAD) sample history, choosing a QP for each upcoming frame.
type Controller struct {
	cfg Config

	targetBitsPerFrame float64
	cpbOccupancy       float64

	// tmnW is the accumulated deviation between actual and target bits
	// across recent frames (TMN_W); tmnTH - tmnW is this frame's target
	// bit budget T.
	tmnW float64

	// counterBTsrc is bits borrowed from the budget (spent over target
	// and not yet repaid); counterBTdst is bits banked as credit (spent
	// under target, repayable via active protection).
	counterBTsrc, counterBTdst int64

	history    [historyLen]sample
	historyLen int
	historyPos int

	lastQP int
}

// NewController returns a Controller configured per cfg, with the CPB
// initialized to one third full, the hypothetical-reference-decoder
// startup fullness used when there's no prior frame to measure.
func NewController(cfg Config) *Controller {
	if cfg.MinQP == 0 && cfg.MaxQP == 0 {
		cfg.MinQP, cfg.MaxQP = 0, 51
	}
	return &Controller{
		cfg:                cfg,
		targetBitsPerFrame: float64(cfg.BitRate) / cfg.FrameRate,
		cpbOccupancy:       float64(cfg.CPBSize) / 3,
		lastQP:             cfg.InitialQP,
	}
}

// nearestSample returns the history entry whose MAD is closest to mad,
// and whether the history holds any entries yet.
func (c *Controller) nearestSample(mad float64) (sample, bool) {
	if c.historyLen == 0 {
		return sample{}, false
	}
	best := c.history[0]
	bestDiff := math.Abs(best.mad - mad)
	for i := 1; i < c.historyLen; i++ {
		d := math.Abs(c.history[i].mad - mad)
		if d < bestDiff {
			bestDiff, best = d, c.history[i]
		}
	}
	return best, true
}

// QPForFrame returns the quantization parameter to use for the next
// frame, given whether it is an I frame and mad, the frame's mean
// absolute difference computed during analysis (motion estimation for
// inter frames, intra-complexity estimation for intra ones).
//
// The target bits T = TMN_TH - TMN_W (the per-frame bit budget less
// recent accumulated deviation) are compared against the nearest
// history sample's rate-distortion figure bits/MAD to estimate a target
// Qstep: prevQstep scaled by (sqrt(ratio)+ratio)/2 when the ratio of
// previous to current RD falls in [0.5, 2], and by ratio's cube root
// outside that well-behaved window, matching the piecewise blend TMN8
// uses to avoid the sqrt approximation's error at extreme ratios.
func (c *Controller) QPForFrame(isI bool, mad float64) int {
	if mad <= 0 {
		mad = 1
	}

	target := c.targetBitsPerFrame - c.tmnW
	if target < 1 {
		target = 1
	}

	qp := c.lastQP
	if prev, ok := c.nearestSample(mad); ok && prev.mad > 0 && prev.bits > 0 {
		prevQstep := qpToQstep(prev.qp)
		prevRD := float64(prev.bits) / prev.mad
		currRD := target / mad
		if currRD <= 0 {
			currRD = 1
		}
		ratio := prevRD / currRD
		var qstep float64
		if ratio >= 0.5 && ratio <= 2 {
			qstep = prevQstep * (math.Sqrt(ratio) + ratio) / 2
		} else {
			qstep = prevQstep * math.Cbrt(ratio)
		}
		qp = qstepToQP(qstep)
	}

	// CPB fullness still acts as a hard safety net on top of the
	// Qstep/MAD estimate: a controller that trusts the model alone can
	// still walk the buffer into overflow if MAD tracking lags a sudden
	// complexity jump.
	fullness := c.cpbOccupancy / float64(c.cfg.CPBSize)
	switch {
	case fullness > 0.85:
		qp += 2
	case fullness < 0.15:
		qp--
	}

	if isI {
		qp += c.cfg.IFrameQPDelta
	} else {
		qp = c.applyActiveProtection(qp)
	}

	if qp < c.cfg.MinQP {
		qp = c.cfg.MinQP
	}
	if qp > c.cfg.MaxQP {
		qp = c.cfg.MaxQP
	}
	return qp
}

// applyActiveProtection relaxes qp by one step and draws down banked
// credit when the CPB is comfortably under its target fullness and
// recent frames have banked a counterBTdst surplus, the TMN8 behaviour
// of spending saved bits back into quality once it's safe to.
func (c *Controller) applyActiveProtection(qp int) int {
	if c.counterBTdst <= 0 || c.cpbOccupancy > float64(c.cfg.CPBSize)*0.3 {
		return qp
	}
	repay := int64(c.targetBitsPerFrame * 0.1)
	if repay > c.counterBTdst {
		repay = c.counterBTdst
	}
	c.counterBTdst -= repay
	c.counterBTsrc += repay
	return qp - 1
}

// Update records the actual size in bits of the frame just encoded at qp
// with mean absolute difference mad, updating CPB occupancy, the
// TMN_W deviation accumulator, the borrow/repay counters and the
// MAD-indexed sample history.
func (c *Controller) Update(actualBits int, qp int, mad float64) {
	c.lastQP = qp

	c.cpbOccupancy += float64(actualBits) - c.targetBitsPerFrame
	if c.cpbOccupancy < 0 {
		c.cpbOccupancy = 0
	}
	if c.cpbOccupancy > float64(c.cfg.CPBSize) {
		c.cpbOccupancy = float64(c.cfg.CPBSize)
	}

	deviation := float64(actualBits) - c.targetBitsPerFrame
	c.tmnW = (c.tmnW + deviation) * 0.9

	switch {
	case deviation > 0:
		c.counterBTsrc += int64(deviation)
	case deviation < 0:
		credit := int64(-deviation)
		if credit > c.counterBTsrc {
			c.counterBTdst += credit - c.counterBTsrc
			c.counterBTsrc = 0
		} else {
			c.counterBTsrc -= credit
		}
	}
	if c.counterBTsrc > counterCap {
		c.counterBTsrc = counterCap
	}
	if c.counterBTdst > counterCap {
		c.counterBTdst = counterCap
	}

	c.history[c.historyPos] = sample{qp: qp, bits: actualBits, mad: mad}
	c.historyPos = (c.historyPos + 1) % historyLen
	if c.historyLen < historyLen {
		c.historyLen++
	}
}

// ShouldSkip reports whether the next frame should be dropped entirely
// rather than coded, the standard TMN8 guard against CPB overflow: when
// occupancy is already within 5% of capacity, coding another frame at
// even the minimum QP risks violating the CPB buffering model, so the
// frame is skipped and occupancy is left to drain.
func (c *Controller) ShouldSkip() bool {
	return c.cpbOccupancy/float64(c.cfg.CPBSize) > 0.95
}

// Lambda returns the Lagrangian multiplier for mode-decision cost
// functions at the given QP, per the common lambda = 0.85 * 2^((QP-12)/3)
// relation used by rate-distortion-optimized H.264 encoders.
func Lambda(qp int) float64 {
	return 0.85 * math.Pow(2, (float64(qp)-12)/3)
}
