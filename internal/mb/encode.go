/*
DESCRIPTION
  encode.go implements macroblock_layer() and residual() (sections 7.3.5
  and 7.3.5.3) in the write direction: per-macroblock mode decision
  between Intra_4x4 and Intra_16x16 candidates for I slices, between
  P_Skip and P_L0_16x16 for P slices (a P-slice macroblock whose block
  boundary error exceeds abeIntraThreshold runs the intra candidates
  instead), followed by the transform/quantize/
  reconstruct pass for whichever mode wins and the final CAVLC-coded
  bitstream emission in the field order macroblock_layer() specifies.
  The encode-measure-pick-cheapest structure follows the per-macroblock
  loop of original_source/AVCEncoder.cpp, supplemented into SPEC_FULL.md
  and re-expressed in Go against this package's own intra/transform/mc/me
  building blocks rather than translated from the original's C++.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package mb

import (
	"github.com/ausocean/avcenc/internal/bitio"
	"github.com/ausocean/avcenc/internal/cavlc"
	"github.com/ausocean/avcenc/internal/intra"
	"github.com/ausocean/avcenc/internal/mc"
	"github.com/ausocean/avcenc/internal/me"
	"github.com/ausocean/avcenc/internal/picture"
	"github.com/ausocean/avcenc/internal/syntax"
	"github.com/ausocean/avcenc/internal/transform"
)

// blk4x4Order maps luma4x4BlkIdx (section 6.4.3's inverse 4x4 luma block
// scan) to its (bx, by) position in 4x4 units within the macroblock.
var blk4x4Order = [16][2]int{
	{0, 0}, {1, 0}, {0, 1}, {1, 1},
	{2, 0}, {3, 0}, {2, 1}, {3, 1},
	{0, 2}, {1, 2}, {0, 3}, {1, 3},
	{2, 2}, {3, 2}, {2, 3}, {3, 3},
}

// chromaBlkOrder maps a chroma AC block index (0..3) to its (bx, by)
// position in 4x4 units within an 8x8 chroma component.
var chromaBlkOrder = [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// blockPlan is the CAVLC-ready outcome of transforming and quantizing one
// 4x4 block: its zig-zag coefficients and whether any are non-zero.
type blockPlan struct {
	coeffs     [16]int32
	nonzero    bool
	totalCoeff int
}

// macroblockPlan collects everything writeMacroblock needs to emit
// macroblock_layer() and residual() for one macroblock, and everything
// the iterator needs folded into neighbour context afterwards.
type macroblockPlan struct {
	Type           MBType
	Intra16x16Mode intra.Intra16x16Mode
	ChromaMode     intra.ChromaMode
	Intra4x4Modes  MBIntra4x4Modes
	MV             me.MV

	// IntraInPSlice marks a macroblock coded in an intra mode (Intra_4x4
	// or Intra_16x16) within a P slice, after per-macroblock ABE
	// arbitration flagged it as poorly predicted from ref: mb_type then
	// needs table 7-13's P-slice intra offset rather than table 7-11's
	// I-slice numbering.
	IntraInPSlice bool

	LumaDC blockPlan    // Intra16x16 only.
	LumaAC [16]blockPlan // index by blk4x4Order position; DC zeroed for Intra16x16.
	ChromaDC [2]blockPlan
	ChromaAC [2][4]blockPlan
}

// Encoder drives the macroblock-layer encode pass for a slice, holding
// the Iterator that threads neighbour context from one macroblock to the
// next.
type Encoder struct {
	It             *Iterator
	PPS            *syntax.PPS
	ChromaQPOffset int

	mbInfo []MBInfo
}

// MBInfo is the per-macroblock summary the deblocking filter's boundary
// strength derivation (section 8.7.2.1) needs: whether the macroblock
// was coded in an intra mode, its motion vector (zero for intra), and
// whether each of its sixteen 4x4 luma blocks, indexed in raster order
// (by*4+bx) within the macroblock, carries a non-zero residual.
type MBInfo struct {
	IsIntra bool
	MV      me.MV
	LumaNZ  [16]bool
}

// NewEncoder returns an Encoder for a picture of mbWidth x mbHeight
// macroblocks coded against pps.
func NewEncoder(mbWidth, mbHeight int, pps *syntax.PPS) *Encoder {
	return &Encoder{
		It:             NewIterator(mbWidth, mbHeight),
		PPS:            pps,
		ChromaQPOffset: int(pps.ChromaQPIndexOffset),
		mbInfo:         make([]MBInfo, mbWidth*mbHeight),
	}
}

// MBInfo returns the per-macroblock summary recorded during the most
// recent EncodeSlice call, in raster order.
func (e *Encoder) MBInfo() []MBInfo {
	return e.mbInfo
}

func clip255i32(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// EncodeSlice codes one full picture as a single I or P slice into w,
// writing the slice header followed by slice_data() (section 7.3.4):
// macroblock_layer() for every macroblock, interleaved with mb_skip_run
// for P slices. rec receives the reconstructed samples; ref is nil for I
// slices.
func (e *Encoder) EncodeSlice(w *bitio.Writer, header *syntax.SliceHeader, log2MaxFrameNum uint, nalType uint8, src, rec, ref *picture.Frame, qp int, lambda float64, firstInterFrame bool) int {
	header.Write(w, e.PPS, log2MaxFrameNum, nalType)

	isIntra := header.SliceType == syntax.SliceTypeI
	mbWidth, mbHeight := e.It.MBWidth, e.It.MBHeight

	if header.IsIDR {
		e.It.ResetSequence()
	}
	e.It.Reset()
	skipRun := uint32(0)
	for addr := 0; addr < mbWidth*mbHeight; addr++ {
		mbX, mbY := e.It.MBX, e.It.MBY
		e.It.BeginMacroblock()

		exhaustive := firstInterFrame && mbY == 0
		plan := e.encodeMacroblock(src, rec, ref, mbX, mbY, isIntra, exhaustive, qp, lambda)

		info := MBInfo{IsIntra: plan.Type == MBTypeI4x4 || plan.Type == MBTypeI16x16, MV: plan.MV}
		for idx, p := range plan.LumaAC {
			bx, by := blk4x4Order[idx][0], blk4x4Order[idx][1]
			info.LumaNZ[by*4+bx] = p.nonzero
		}
		e.mbInfo[addr] = info

		if plan.Type == MBTypePSkip {
			skipRun++
			e.It.EndMacroblock(nil, plan.MV)
			continue
		}

		w.WriteUe(skipRun)
		skipRun = 0
		e.writeMacroblock(w, plan, qp)

		var intraPtr *MBIntra4x4Modes
		if plan.Type == MBTypeI4x4 {
			intraPtr = &plan.Intra4x4Modes
		}
		e.It.EndMacroblock(intraPtr, plan.MV)
	}
	if !isIntra {
		w.WriteUe(skipRun)
	}
	w.RBSPTrailingBits()
	return w.Len()*8 + w.BitsPending()
}

// encodeMacroblock runs mode decision, reconstructs the winning
// candidate's samples into rec, and returns the plan writeMacroblock
// needs to serialize it.
// abeIntraThreshold is the per-macroblock average-boundary-error level
// above which a P-slice macroblock is flagged by mode decision to run
// the intra search alongside (rather than skip it in favour of) the
// usual inter path, per the per-macroblock ABE arbitration described
// for the analysis phase: a macroblock this poorly correlated with ref
// is unlikely to win a motion search cheaply enough to beat intra.
const abeIntraThreshold = 20.0

func (e *Encoder) encodeMacroblock(src, rec, ref *picture.Frame, mbX, mbY int, isIntraSlice, exhaustive bool, qp int, lambda float64) macroblockPlan {
	haveLeft, haveTop, _, haveTopRight := e.It.Available()

	var srcY [256]uint8
	for y := 0; y < 16; y++ {
		copy(srcY[y*16:y*16+16], src.Y.Row(mbY*16+y)[mbX*16:mbX*16+16])
	}

	abeFlaggedIntra := false
	if !isIntraSlice && ref != nil && me.BlockABE(src.Y, ref.Y, mbX, mbY) > abeIntraThreshold {
		abeFlaggedIntra = true
	}

	if !isIntraSlice && !abeFlaggedIntra && ref != nil {
		predMV := e.It.PredictMV()

		skipY := mc.LumaBlock(ref.Y, mbX*16, mbY*16, 16, 16, predMV.X, predMV.Y)
		if allZeroResidual(srcY, skipY) {
			plan := e.commitInter(src, rec, ref, mbX, mbY, predMV, qp)
			// P_Skip carries no residual, so it is kept only when the
			// committed plan (chroma included) quantizes to nothing.
			if luma, chroma := deriveCBP(plan); luma == 0 && chroma == 0 {
				plan.Type = MBTypePSkip
				return plan
			}
		}

		candidates := e.It.CandidateMVs(predMV)
		res := me.SearchBlock(srcY[:], 16, 16, ref.Y, mbX*16, mbY*16, predMV, candidates, lambda, exhaustive)
		plan := e.commitInter(src, rec, ref, mbX, mbY, res.MV, qp)
		plan.Type = MBTypeP16x16
		return plan
	}

	i16Cost, i16Mode, i16Pred := e.planIntra16x16(srcY, rec, mbX, mbY, haveLeft, haveTop, lambda)
	i4Cost, i4Modes, i4Recon, i4Plans := e.planIntra4x4(srcY, rec, mbX, mbY, haveLeft, haveTop, haveTopRight, qp, lambda)

	var plan macroblockPlan
	plan.IntraInPSlice = !isIntraSlice
	if i4Cost < i16Cost {
		plan.Type = MBTypeI4x4
		plan.Intra4x4Modes = i4Modes
		plan.LumaAC = i4Plans
		for idx, pos := range blk4x4Order {
			bx, by := pos[0], pos[1]
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					rec.Y.Set(mbX*16+bx*4+x, mbY*16+by*4+y, i4Recon[idx][y*4+x])
				}
			}
			e.It.SetLumaNZ(bx, by, i4Plans[idx].totalCoeff)
		}
	} else {
		plan.Type = MBTypeI16x16
		plan.Intra16x16Mode = i16Mode
		dc, ac, recon := e.commitIntra16x16(srcY, i16Pred, qp)
		plan.LumaDC = dc
		plan.LumaAC = ac
		for idx, pos := range blk4x4Order {
			bx, by := pos[0], pos[1]
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					rec.Y.Set(mbX*16+bx*4+x, mbY*16+by*4+y, recon[idx][y*4+x])
				}
			}
			e.It.SetLumaNZ(bx, by, ac[idx].totalCoeff)
		}
	}

	mode, dc, ac := e.commitChroma(src, rec, mbX, mbY, haveLeft, haveTop, qp)
	plan.ChromaMode = mode
	plan.ChromaDC = dc
	plan.ChromaAC = ac
	return plan
}

func allZeroResidual(src [256]uint8, pred []uint8) bool {
	// An approximate skip test: treat the macroblock as all-zero residual
	// once SATD falls under a small threshold relative to block size,
	// avoiding a full transform/quantize trial for the common case where
	// the predicted block is an obvious non-match.
	satd := intra.SATD(16, src[:], pred)
	return satd < 16
}

// ---- Intra_4x4 ----

func (e *Encoder) planIntra4x4(srcY [256]uint8, rec *picture.Frame, mbX, mbY int, haveLeft, haveTop, haveTopRight bool, qp int, lambda float64) (float64, MBIntra4x4Modes, [16][16]uint8, [16]blockPlan) {
	var modes MBIntra4x4Modes
	var recon [16][16]uint8
	var plans [16]blockPlan
	var totalCost float64

	for idx, pos := range blk4x4Order {
		bx, by := pos[0], pos[1]
		raster := by*4 + bx
		nb := luma4x4Neighbors(rec.Y, mbX, mbY, bx, by, haveLeft, haveTop, haveLeft && haveTop, haveTopRight)
		predMode := e.It.PredIntra4x4Mode(bx, by, &modes)

		var srcBlk [16]uint8
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				srcBlk[y*4+x] = srcY[(by*4+y)*16+bx*4+x]
			}
		}

		bestCost := -1.0
		var bestMode intra.Intra4x4Mode
		var bestRecon [16]uint8
		var bestPlan blockPlan
		for m := intra.I4Vertical; m <= intra.I4HorizontalUp; m++ {
			if !intra4x4ModeValid(m, nb.HaveLeft, nb.HaveTop) {
				continue
			}
			predBlk := intra.Predict4x4(m, nb)
			bits := 1
			if int(m) != predMode {
				bits = 4
			}
			cost := intra.RDCost(intra.SATD4x4(srcBlk, predBlk), bits, lambda)
			if bestCost < 0 || cost < bestCost {
				rb, plan := quantizeLuma4x4(srcBlk, predBlk, qp)
				bestCost, bestMode, bestRecon, bestPlan = cost, m, rb, plan
			}
		}

		modes[raster] = int8(bestMode)
		recon[idx] = bestRecon
		plans[idx] = bestPlan
		totalCost += bestCost

		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				rec.Y.Set(mbX*16+bx*4+x, mbY*16+by*4+y, bestRecon[y*4+x])
			}
		}
	}
	return totalCost, modes, recon, plans
}

func intra4x4ModeValid(m intra.Intra4x4Mode, haveLeft, haveTop bool) bool {
	switch m {
	case intra.I4Vertical, intra.I4DiagonalDownLeft, intra.I4VerticalLeft:
		return haveTop
	case intra.I4Horizontal, intra.I4HorizontalUp:
		return haveLeft
	case intra.I4DC:
		return true
	default: // DiagonalDownRight, VerticalRight, HorizontalDown.
		return haveLeft && haveTop
	}
}

// quantizeLuma4x4 transforms, quantizes and reconstructs one 4x4 luma (or
// inter-coded) residual block against pred, used by both Intra_4x4 and
// P_L0_16x16 macroblocks (neither splits its DC coefficient out from the
// rest, unlike Intra_16x16's commitIntra16x16).
func quantizeLuma4x4(src, pred [16]uint8, qp int) ([16]uint8, blockPlan) {
	var res transform.Block4x4
	for i := range res {
		res[i] = int32(src[i]) - int32(pred[i])
	}
	coeffs := transform.Forward4x4(res)
	q := transform.QuantizeBlock(coeffs, qp)
	zz := transform.Scan(q)

	var plan blockPlan
	plan.coeffs = zz
	for _, c := range zz {
		if c != 0 {
			plan.nonzero = true
			plan.totalCoeff++
		}
	}

	deq := transform.DequantizeBlock(q, qp)
	rres := transform.Inverse4x4(deq)
	var recon [16]uint8
	for i := range recon {
		recon[i] = clip255i32(int32(pred[i]) + rres[i])
	}
	return recon, plan
}

// ---- Intra_16x16 ----

// planIntra16x16 picks the cheapest of the four whole-macroblock
// prediction modes by SATD, without yet transforming/quantizing (that
// happens in commitIntra16x16 once this mode wins mode decision).
func (e *Encoder) planIntra16x16(srcY [256]uint8, rec *picture.Frame, mbX, mbY int, haveLeft, haveTop bool, lambda float64) (float64, intra.Intra16x16Mode, []uint8) {
	nb := blockNeighbors(rec.Y, mbX*16, mbY*16, 16, haveLeft, haveTop)

	bestCost := -1.0
	var bestMode intra.Intra16x16Mode
	var bestPred []uint8
	for m := intra.I16Vertical; m <= intra.I16Plane; m++ {
		if (m == intra.I16Vertical && !haveTop) || (m == intra.I16Horizontal && !haveLeft) || (m == intra.I16Plane && (!haveLeft || !haveTop)) {
			continue
		}
		pred := intra.Predict16x16(m, nb)
		cost := intra.RDCost(intra.SATD(16, srcY[:], pred), 2, lambda)
		if bestCost < 0 || cost < bestCost {
			bestCost, bestMode, bestPred = cost, m, pred
		}
	}
	return bestCost, bestMode, bestPred
}

// commitIntra16x16 runs the DC/AC split transform-quantize-reconstruct
// pass for the winning Intra_16x16 mode's prediction, per section
// 8.5.10: each 4x4 block's transform DC coefficient is pulled out,
// Hadamard-transformed and quantized separately from its 15 AC
// coefficients.
func (e *Encoder) commitIntra16x16(srcY [256]uint8, pred []uint8, qp int) (blockPlan, [16]blockPlan, [16][16]uint8) {
	var dcBlock transform.Block4x4
	var acPlans [16]blockPlan
	var acDeq [16]transform.Block4x4

	for idx, pos := range blk4x4Order {
		bx, by := pos[0], pos[1]
		var srcBlk, predBlk [16]uint8
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				srcBlk[y*4+x] = srcY[(by*4+y)*16+bx*4+x]
				predBlk[y*4+x] = pred[(by*4+y)*16+bx*4+x]
			}
		}
		var res transform.Block4x4
		for i := range res {
			res[i] = int32(srcBlk[i]) - int32(predBlk[i])
		}
		fwd := transform.Forward4x4(res)
		dcBlock[by*4+bx] = fwd[0]

		q := transform.QuantizeBlock(fwd, qp)
		q[0] = 0
		zz := transform.Scan(q)
		var plan blockPlan
		plan.coeffs = zz
		for _, c := range zz {
			if c != 0 {
				plan.nonzero = true
				plan.totalCoeff++
			}
		}
		acPlans[idx] = plan

		deq := transform.DequantizeBlock(q, qp)
		deq[0] = 0
		acDeq[idx] = deq
	}

	dcHad := transform.Hadamard4x4(dcBlock)
	var dcQ transform.Block4x4
	for i, c := range dcHad {
		dcQ[i] = transform.QuantizeDC(c, qp)
	}
	var dcDequant transform.Block4x4
	for i, c := range dcQ {
		dcDequant[i] = transform.DequantizeDC(c, qp)
	}
	dcRecon := transform.InverseHadamard4x4(dcDequant, 2)

	zz := transform.Scan(dcQ)
	var dcPlan blockPlan
	dcPlan.coeffs = zz
	for _, c := range zz {
		if c != 0 {
			dcPlan.nonzero = true
			dcPlan.totalCoeff++
		}
	}

	var recon [16][16]uint8
	for idx, pos := range blk4x4Order {
		bx, by := pos[0], pos[1]
		residual := transform.Inverse4x4(acDeq[idx])
		dcVal := dcRecon[by*4+bx]
		var predBlk [16]uint8
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				predBlk[y*4+x] = pred[(by*4+y)*16+bx*4+x]
			}
		}
		var rb [16]uint8
		for i := range rb {
			rb[i] = clip255i32(int32(predBlk[i]) + residual[i] + dcVal)
		}
		recon[idx] = rb
	}

	return dcPlan, acPlans, recon
}

// ---- Chroma (shared by intra and inter macroblocks) ----

func (e *Encoder) commitChroma(src, rec *picture.Frame, mbX, mbY int, haveLeft, haveTop bool, qp int) (intra.ChromaMode, [2]blockPlan, [2][4]blockPlan) {
	nbCb := blockNeighbors(rec.Cb, mbX*8, mbY*8, 8, haveLeft, haveTop)
	nbCr := blockNeighbors(rec.Cr, mbX*8, mbY*8, 8, haveLeft, haveTop)

	var srcCb, srcCr [64]uint8
	for y := 0; y < 8; y++ {
		copy(srcCb[y*8:y*8+8], src.Cb.Row(mbY*8+y)[mbX*8:mbX*8+8])
		copy(srcCr[y*8:y*8+8], src.Cr.Row(mbY*8+y)[mbX*8:mbX*8+8])
	}

	bestSATD := -1
	var bestMode intra.ChromaMode
	var bestCb, bestCr []uint8
	for m := intra.ChromaDC; m <= intra.ChromaPlane; m++ {
		if (m == intra.ChromaHorizontal && !haveLeft) || (m == intra.ChromaVertical && !haveTop) || (m == intra.ChromaPlane && (!haveLeft || !haveTop)) {
			continue
		}
		predCb := intra.PredictChroma(m, nbCb)
		predCr := intra.PredictChroma(m, nbCr)
		satd := intra.SATD(8, srcCb[:], predCb) + intra.SATD(8, srcCr[:], predCr)
		if bestSATD < 0 || satd < bestSATD {
			bestSATD, bestMode, bestCb, bestCr = satd, m, predCb, predCr
		}
	}

	qpc := transform.ChromaQP(qp, e.ChromaQPOffset)
	var dcOut [2]blockPlan
	var acOut [2][4]blockPlan
	srcPlanes := [2][]uint8{srcCb[:], srcCr[:]}
	predPlanes := [2][]uint8{bestCb, bestCr}
	outPlanes := [2]*picture.Plane{rec.Cb, rec.Cr}

	for c := 0; c < 2; c++ {
		dc, ac := e.commitChromaComponent(srcPlanes[c], predPlanes[c], outPlanes[c], mbX, mbY, qpc)
		dcOut[c] = dc
		acOut[c] = ac
		for idx, pos := range chromaBlkOrder {
			e.It.SetChromaNZ(c, pos[0], pos[1], ac[idx].totalCoeff)
		}
	}
	return bestMode, dcOut, acOut
}

func (e *Encoder) commitChromaComponent(src, pred []uint8, out *picture.Plane, mbX, mbY int, qpc int) (blockPlan, [4]blockPlan) {
	var dc [4]int32
	var acPlans [4]blockPlan
	var acDeq [4]transform.Block4x4

	for idx, pos := range chromaBlkOrder {
		bx, by := pos[0], pos[1]
		var srcBlk, predBlk [16]uint8
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				srcBlk[y*4+x] = src[(by*4+y)*8+bx*4+x]
				predBlk[y*4+x] = pred[(by*4+y)*8+bx*4+x]
			}
		}
		var res transform.Block4x4
		for i := range res {
			res[i] = int32(srcBlk[i]) - int32(predBlk[i])
		}
		fwd := transform.Forward4x4(res)
		dc[idx] = fwd[0]

		q := transform.QuantizeBlock(fwd, qpc)
		q[0] = 0
		zz := transform.Scan(q)
		var plan blockPlan
		plan.coeffs = zz
		for _, v := range zz {
			if v != 0 {
				plan.nonzero = true
				plan.totalCoeff++
			}
		}
		acPlans[idx] = plan

		deq := transform.DequantizeBlock(q, qpc)
		deq[0] = 0
		acDeq[idx] = deq
	}

	dcHad := transform.HadamardChromaDC(dc)
	var dcQ [4]int32
	for i, v := range dcHad {
		dcQ[i] = transform.QuantizeDC(v, qpc)
	}
	var dcDeq [4]int32
	for i, v := range dcQ {
		dcDeq[i] = transform.DequantizeDC(v, qpc)
	}
	dcReconArr := transform.HadamardChromaDC(dcDeq)
	for i := range dcReconArr {
		dcReconArr[i] = dcReconArr[i] >> 5
	}

	var dcPlan blockPlan
	dcPlan.coeffs[0], dcPlan.coeffs[1], dcPlan.coeffs[2], dcPlan.coeffs[3] = dcQ[0], dcQ[1], dcQ[2], dcQ[3]
	for _, v := range dcQ {
		if v != 0 {
			dcPlan.nonzero = true
			dcPlan.totalCoeff++
		}
	}

	for idx, pos := range chromaBlkOrder {
		bx, by := pos[0], pos[1]
		residual := transform.Inverse4x4(acDeq[idx])
		dcVal := dcReconArr[by*2+bx]
		var predBlk [16]uint8
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				predBlk[y*4+x] = pred[(by*4+y)*8+bx*4+x]
			}
		}
		var rb [16]uint8
		for i := range rb {
			rb[i] = clip255i32(int32(predBlk[i]) + residual[i] + dcVal)
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				out.Set(mbX*8+bx*4+x, mbY*8+by*4+y, rb[y*4+x])
			}
		}
	}
	return dcPlan, acPlans
}

// ---- Inter (P_L0_16x16 and P_Skip) ----

// commitInter runs motion-compensated prediction, transform, quantize
// and reconstruction for mv, writing the result into rec immediately
// (both P_Skip and P_L0_16x16 commit unconditionally once chosen: skip
// is only chosen after allZeroResidual confirms there is nothing to gain
// by re-deriving a non-zero residual).
func (e *Encoder) commitInter(src, rec, ref *picture.Frame, mbX, mbY int, mv me.MV, qp int) macroblockPlan {
	var srcY [256]uint8
	for y := 0; y < 16; y++ {
		copy(srcY[y*16:y*16+16], src.Y.Row(mbY*16+y)[mbX*16:mbX*16+16])
	}
	predY := mc.LumaBlock(ref.Y, mbX*16, mbY*16, 16, 16, mv.X, mv.Y)

	var plan macroblockPlan
	plan.MV = mv

	for idx, pos := range blk4x4Order {
		bx, by := pos[0], pos[1]
		var srcBlk, predBlk [16]uint8
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				srcBlk[y*4+x] = srcY[(by*4+y)*16+bx*4+x]
				predBlk[y*4+x] = predY[(by*4+y)*16+bx*4+x]
			}
		}
		recon, bp := quantizeLuma4x4(srcBlk, predBlk, qp)
		plan.LumaAC[idx] = bp
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				rec.Y.Set(mbX*16+bx*4+x, mbY*16+by*4+y, recon[y*4+x])
			}
		}
		e.It.SetLumaNZ(bx, by, bp.totalCoeff)
	}

	qpc := transform.ChromaQP(qp, e.ChromaQPOffset)
	refPlanes := [2]*picture.Plane{ref.Cb, ref.Cr}
	srcPlanesFrame := [2]*picture.Plane{src.Cb, src.Cr}
	outPlanes := [2]*picture.Plane{rec.Cb, rec.Cr}
	for c := 0; c < 2; c++ {
		predC := mc.ChromaBlock(refPlanes[c], mbX*8, mbY*8, 8, 8, mv.X, mv.Y)
		var srcC [64]uint8
		for y := 0; y < 8; y++ {
			copy(srcC[y*8:y*8+8], srcPlanesFrame[c].Row(mbY*8+y)[mbX*8:mbX*8+8])
		}
		dc, ac := e.commitChromaComponent(srcC[:], predC, outPlanes[c], mbX, mbY, qpc)
		plan.ChromaDC[c] = dc
		plan.ChromaAC[c] = ac
		for idx, pos := range chromaBlkOrder {
			e.It.SetChromaNZ(c, pos[0], pos[1], ac[idx].totalCoeff)
		}
	}
	return plan
}

// ---- macroblock_layer() / residual() bitstream emission ----

// writeMacroblock serializes plan's syntax elements in macroblock_layer()
// field order, using internal/cavlc for every residual_block_cavlc call.
func (e *Encoder) writeMacroblock(w *bitio.Writer, plan macroblockPlan, qp int) {
	lumaCBP, chromaCBP := deriveCBP(plan)

	// intraOffset is table 7-13's P-slice intra mb_type shift: a
	// macroblock coded in Intra_4x4 or Intra_16x16 inside a P slice uses
	// table 7-11's I-slice numbering shifted by 5 (mb_type values 0-4 are
	// reserved for the inter prediction modes in that table).
	intraOffset := uint32(0)
	if plan.IntraInPSlice {
		intraOffset = 5
	}

	switch plan.Type {
	case MBTypeI4x4:
		w.WriteUe(intraOffset)
		for _, pos := range blk4x4Order {
			bx, by := pos[0], pos[1]
			raster := by*4 + bx
			pred := e.It.PredIntra4x4Mode(bx, by, &plan.Intra4x4Modes)
			actual := int(plan.Intra4x4Modes[raster])
			if actual == pred {
				w.WriteBit(true)
			} else {
				w.WriteBit(false)
				rem := actual
				if actual > pred {
					rem--
				}
				w.WriteBits(uint32(rem), 3)
			}
		}
		w.WriteUe(uint32(plan.ChromaMode))
	case MBTypeI16x16:
		lumaNonzero := lumaCBP != 0
		w.WriteUe(intraOffset + mbIntraIndex(int(chromaCBP), int(plan.Intra16x16Mode), lumaNonzero))
		w.WriteUe(uint32(plan.ChromaMode))
	case MBTypeP16x16:
		w.WriteUe(0)
		// mvd_l0 is the difference from the predicted motion vector.
		pred := e.It.PredictMV()
		w.WriteSe(int32(plan.MV.X - pred.X))
		w.WriteSe(int32(plan.MV.Y - pred.Y))
	}

	if plan.Type != MBTypeI16x16 {
		inter := plan.Type == MBTypeP16x16
		code, ok := cavlc.CBPCodeNum(uint(lumaCBP)|uint(chromaCBP)<<4, inter, cavlc.Chroma420Or422)
		if ok {
			w.WriteUe(code)
		} else {
			w.WriteUe(0)
		}
	}

	if lumaCBP != 0 || chromaCBP != 0 || plan.Type == MBTypeI16x16 {
		w.WriteSe(0) // mb_qp_delta: rate control operates per-picture here, not per-macroblock.
		e.writeResidual(w, plan, lumaCBP, chromaCBP)
	}
}

// deriveCBP computes coded_block_pattern's luma (4 bits, one per 8x8
// group) and chroma (0/1/2) components from the per-block non-zero
// flags already recorded during the encode/reconstruct pass.
func deriveCBP(plan macroblockPlan) (luma uint8, chroma uint8) {
	if plan.Type == MBTypeI16x16 {
		for _, p := range plan.LumaAC {
			if p.nonzero {
				luma = 15
				break
			}
		}
	} else {
		for g := 0; g < 4; g++ {
			for i := 0; i < 4; i++ {
				if plan.LumaAC[g*4+i].nonzero {
					luma |= 1 << uint(g)
					break
				}
			}
		}
	}

	anyAC := false
	anyDC := false
	for c := 0; c < 2; c++ {
		if plan.ChromaDC[c].nonzero {
			anyDC = true
		}
		for _, p := range plan.ChromaAC[c] {
			if p.nonzero {
				anyAC = true
			}
		}
	}
	switch {
	case anyAC:
		chroma = 2
	case anyDC:
		chroma = 1
	default:
		chroma = 0
	}
	return luma, chroma
}

// writeResidual emits residual() (section 7.3.5.3): Intra16x16DCLevel
// (Intra_16x16 only), the sixteen luma 4x4/AC blocks gated by lumaCBP,
// then the chroma DC and AC blocks gated by chromaCBP.
func (e *Encoder) writeResidual(w *bitio.Writer, plan macroblockPlan, lumaCBP, chromaCBP uint8) {
	if plan.Type == MBTypeI16x16 {
		blk := cavlc.BlockFromScan(toIntSlice(plan.LumaDC.coeffs[:16]))
		// Intra16x16DCLevel's nC uses the same left/top TotalCoeff averaging
		// rule as a normal 4x4 block (section 9.2.1), evaluated at the
		// macroblock's top-left corner.
		cavlc.WriteResidualBlock(w, blk, e.It.NCLuma(0, 0), 16)
	}

	for idx, pos := range blk4x4Order {
		bx, by := pos[0], pos[1]
		group := idx / 4
		if lumaCBP&(1<<uint(group)) == 0 {
			continue
		}
		nC := e.It.NCLuma(bx, by)
		coeffs := plan.LumaAC[idx].coeffs[:]
		maxCoeff := 16
		if plan.Type == MBTypeI16x16 {
			coeffs = coeffs[1:16]
			maxCoeff = 15
		}
		blk := cavlc.BlockFromScan(toIntSlice(coeffs))
		cavlc.WriteResidualBlock(w, blk, nC, maxCoeff)
	}

	if chromaCBP == 0 {
		return
	}
	for c := 0; c < 2; c++ {
		blk := cavlc.BlockFromScan(toIntSlice(plan.ChromaDC[c].coeffs[:4]))
		cavlc.WriteResidualBlock(w, blk, -1, 4)
	}
	if chromaCBP != 2 {
		return
	}
	for c := 0; c < 2; c++ {
		for idx, pos := range chromaBlkOrder {
			nC := e.It.NCChroma(c, pos[0], pos[1])
			blk := cavlc.BlockFromScan(toIntSlice(plan.ChromaAC[c][idx].coeffs[1:16]))
			cavlc.WriteResidualBlock(w, blk, nC, 15)
		}
	}
}

func toIntSlice(zz []int32) []int {
	out := make([]int, len(zz))
	for i, v := range zz {
		out[i] = int(v)
	}
	return out
}
