/*
DESCRIPTION
  iterator.go tracks the macroblock-to-macroblock neighbour context the
  encoder needs while sweeping a slice in raster order: availability of
  the left/top/top-left/top-right macroblocks, the per-4x4-block non-zero
  coefficient counts used to derive CAVLC's nC context (section 9.2.1),
  and the intra prediction mode history used to derive predIntra4x4PredMode
  (section 8.3.1.1). The left/top context arrays and reset-per-row
  structure follow the teacher pack's deepteams-webp
  internal/lossy/encode_iterator.go MBIterator, adapted from WebP's
  segment/proba bookkeeping to H.264's CAVLC nC and intra-mode-prediction
  bookkeeping.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package mb implements the per-macroblock encode pass: mode decision
// across intra and inter candidates, residual coding via internal/cavlc,
// and the neighbour-context bookkeeping CAVLC and intra prediction need.
package mb

import "github.com/ausocean/avcenc/internal/me"

// Iterator walks a slice's macroblocks in raster order, maintaining the
// left-column and top-row context arrays needed by CAVLC nC derivation
// and intra 4x4 mode prediction.
type Iterator struct {
	MBWidth, MBHeight int
	MBX, MBY          int

	// topNZLuma holds, for every macroblock column, the TotalCoeff of its
	// bottom-row 4x4 luma blocks, so the next row down can use them as top
	// context. leftNZLuma holds the current macroblock row's right-column
	// 4x4 blocks for the same purpose along a row.
	topNZLuma  []int8 // mbWidth*4 entries.
	leftNZLuma [4]int8

	topNZChroma  [2][]int8 // per chroma component, mbWidth*2 entries.
	leftNZChroma [2][2]int8

	// curNZLuma and curNZChroma hold the sixteen luma and four-per-
	// component chroma 4x4 block TotalCoeff values for the macroblock
	// currently being encoded, populated block-by-block via SetLumaNZ and
	// SetChromaNZ as CAVLC codes them, so that later blocks within the same
	// macroblock can derive nC from earlier ones.
	curNZLuma   [16]int8
	curNZChroma [2][4]int8

	topIntra4x4  []Intra4x4Modes // one per macroblock column.
	leftIntra4x4 Intra4x4Modes

	haveLeft     bool
	haveTop      bool
	haveTopLeft  bool
	haveTopRight bool

	// leftMV and topMV hold the motion vector (zero for intra or
	// unavailable macroblocks) last coded to the left and above each
	// column, used as a simplified median motion vector predictor
	// (section 8.4.1.3 uses the neighbouring partitions' motion vectors
	// directly; this encoder, coding only a single 16x16 partition per
	// macroblock, keeps one MV per macroblock position instead).
	leftMV me.MV
	topMV  []me.MV

	// colocatedMV holds the previous frame's per-macroblock motion
	// vectors, indexed by mbY*MBWidth+mbX, used as a temporal search
	// candidate. Unlike topMV/leftMV it survives across Reset (a new
	// picture), since the previous picture's field is exactly what it
	// needs to remember; ResetSequence clears it for a new IDR sequence
	// where the previous picture's vectors no longer apply.
	colocatedMV     []me.MV
	nextColocatedMV []me.MV
}

// Intra4x4Modes holds the four bottom-row (for a macroblock supplying
// "top" context) or right-column (for "left" context) Intra_4x4 mode
// indices of a neighbouring macroblock, or -1 where the block was coded
// in a non-Intra_4x4 mode (predIntra4x4PredMode then falls back to DC,
// per section 8.3.1.1).
type Intra4x4Modes [4]int8

// MBIntra4x4Modes holds all sixteen Intra_4x4 mode indices (raster order
// within the macroblock) of the macroblock currently being coded, or -1
// at positions coded in a different mode.
type MBIntra4x4Modes [16]int8

// NewIterator returns an Iterator for a slice covering the full picture
// of mbWidth x mbHeight macroblocks (the Baseline encoder here always
// codes one slice per picture).
func NewIterator(mbWidth, mbHeight int) *Iterator {
	it := &Iterator{MBWidth: mbWidth, MBHeight: mbHeight}
	it.topNZLuma = make([]int8, mbWidth*4)
	it.topNZChroma[0] = make([]int8, mbWidth*2)
	it.topNZChroma[1] = make([]int8, mbWidth*2)
	it.topIntra4x4 = make([]Intra4x4Modes, mbWidth)
	it.topMV = make([]me.MV, mbWidth)
	it.colocatedMV = make([]me.MV, mbWidth*mbHeight)
	it.nextColocatedMV = make([]me.MV, mbWidth*mbHeight)
	it.Reset()
	return it
}

// ResetSequence drops the colocated-MV grid, for the start of a new IDR
// sequence where the previous picture (if any) is no longer a valid
// temporal predictor source.
func (it *Iterator) ResetSequence() {
	for i := range it.colocatedMV {
		it.colocatedMV[i] = me.MV{}
	}
}

// Reset repositions the iterator at macroblock (0,0) and clears all
// neighbour context, for encoding a new picture.
func (it *Iterator) Reset() {
	it.colocatedMV, it.nextColocatedMV = it.nextColocatedMV, it.colocatedMV
	it.MBX, it.MBY = 0, 0
	for i := range it.topNZLuma {
		it.topNZLuma[i] = -1
	}
	for c := range it.topNZChroma {
		for i := range it.topNZChroma[c] {
			it.topNZChroma[c][i] = -1
		}
	}
	for i := range it.topIntra4x4 {
		for j := range it.topIntra4x4[i] {
			it.topIntra4x4[i][j] = -1
		}
	}
	for i := range it.topMV {
		it.topMV[i] = me.MV{}
	}
	it.BeginRow()
}

// BeginRow resets left-column context at the start of a new macroblock
// row, per section 6.4.9's neighbour-unavailability-at-slice/row-boundary
// rules (the encoder runs one slice per picture, so this triggers once
// per row rather than per slice).
func (it *Iterator) BeginRow() {
	it.leftNZLuma = [4]int8{-1, -1, -1, -1}
	it.leftNZChroma = [2][2]int8{{-1, -1}, {-1, -1}}
	for i := range it.leftIntra4x4 {
		it.leftIntra4x4[i] = -1
	}
	it.leftMV = me.MV{}
	it.haveLeft = false
}

// BeginMacroblock clears the per-macroblock scratch NZ arrays before
// CAVLC starts coding the macroblock at the iterator's current position.
func (it *Iterator) BeginMacroblock() {
	for i := range it.curNZLuma {
		it.curNZLuma[i] = 0
	}
	for c := range it.curNZChroma {
		for i := range it.curNZChroma[c] {
			it.curNZChroma[c][i] = 0
		}
	}
}

// EndMacroblock folds the macroblock just coded into the left-column and
// top-row context arrays for its right and bottom neighbours, and
// advances to the next raster position. It returns false once the
// picture is exhausted. intra4x4 is nil for macroblocks not coded in
// Intra_4x4 mode.
func (it *Iterator) EndMacroblock(intra4x4 *MBIntra4x4Modes, mv me.MV) bool {
	for by := 0; by < 4; by++ {
		it.leftNZLuma[by] = it.curNZLuma[by*4+3]
	}
	for bx := 0; bx < 4; bx++ {
		it.topNZLuma[it.MBX*4+bx] = it.curNZLuma[3*4+bx]
	}
	for c := 0; c < 2; c++ {
		it.leftNZChroma[c][0] = it.curNZChroma[c][1]
		it.leftNZChroma[c][1] = it.curNZChroma[c][3]
		it.topNZChroma[c][it.MBX*2+0] = it.curNZChroma[c][2]
		it.topNZChroma[c][it.MBX*2+1] = it.curNZChroma[c][3]
	}
	if intra4x4 != nil {
		it.leftIntra4x4 = Intra4x4Modes{intra4x4[3], intra4x4[7], intra4x4[11], intra4x4[15]}
		it.topIntra4x4[it.MBX] = Intra4x4Modes{intra4x4[12], intra4x4[13], intra4x4[14], intra4x4[15]}
	} else {
		it.leftIntra4x4 = Intra4x4Modes{-1, -1, -1, -1}
		it.topIntra4x4[it.MBX] = Intra4x4Modes{-1, -1, -1, -1}
	}
	it.leftMV = mv
	it.topMV[it.MBX] = mv
	it.nextColocatedMV[it.MBY*it.MBWidth+it.MBX] = mv

	it.MBX++
	if it.MBX >= it.MBWidth {
		it.MBX = 0
		it.MBY++
		it.BeginRow()
	}
	it.haveLeft = it.MBX > 0
	it.haveTop = it.MBY > 0
	it.haveTopLeft = it.MBX > 0 && it.MBY > 0
	it.haveTopRight = it.MBY > 0 && it.MBX < it.MBWidth-1
	return it.MBY < it.MBHeight
}

// Available reports whether the macroblock at (MBX, MBY) has left, top,
// top-left and top-right neighbours available within the current slice.
func (it *Iterator) Available() (left, top, topLeft, topRight bool) {
	return it.haveLeft, it.haveTop, it.haveTopLeft, it.haveTopRight
}

// SetLumaNZ records the TotalCoeff of the 4x4 luma block at local
// position (bx, by) within the macroblock currently being coded.
func (it *Iterator) SetLumaNZ(bx, by, totalCoeff int) {
	it.curNZLuma[by*4+bx] = int8(totalCoeff)
}

// SetChromaNZ records the TotalCoeff of the chroma AC block at local
// position (bx, by) of chroma component c (0 == Cb, 1 == Cr).
func (it *Iterator) SetChromaNZ(c, bx, by, totalCoeff int) {
	it.curNZChroma[c][by*2+bx] = int8(totalCoeff)
}

// NCLuma derives nC (section 9.2.1) for the 4x4 luma block at local
// position (bx, by) within the current macroblock (0..3 each), from the
// TotalCoeff recorded for its left and top neighbouring 4x4 blocks.
func (it *Iterator) NCLuma(bx, by int) int {
	var left, top int
	var haveLeftBlk, haveTopBlk bool

	if bx == 0 {
		if it.haveLeft {
			left, haveLeftBlk = int(it.leftNZLuma[by]), true
		}
	} else {
		left, haveLeftBlk = int(it.curNZLuma[by*4+bx-1]), true
	}

	if by == 0 {
		if it.haveTop {
			top, haveTopBlk = int(it.topNZLuma[it.MBX*4+bx]), true
		}
	} else {
		top, haveTopBlk = int(it.curNZLuma[(by-1)*4+bx]), true
	}

	switch {
	case haveLeftBlk && haveTopBlk:
		return (left + top + 1) >> 1
	case haveLeftBlk:
		return left
	case haveTopBlk:
		return top
	default:
		return 0
	}
}

// NCChroma derives nC for the chroma AC block at local position (bx, by)
// (0..1 each) of chroma component c, analogous to NCLuma.
func (it *Iterator) NCChroma(c, bx, by int) int {
	var left, top int
	var haveLeftBlk, haveTopBlk bool

	if bx == 0 {
		if it.haveLeft {
			left, haveLeftBlk = int(it.leftNZChroma[c][by]), true
		}
	} else {
		left, haveLeftBlk = int(it.curNZChroma[c][by*2]), true
	}

	if by == 0 {
		if it.haveTop {
			top, haveTopBlk = int(it.topNZChroma[c][it.MBX*2+bx]), true
		}
	} else {
		top, haveTopBlk = int(it.curNZChroma[c][bx]), true
	}

	switch {
	case haveLeftBlk && haveTopBlk:
		return (left + top + 1) >> 1
	case haveLeftBlk:
		return left
	case haveTopBlk:
		return top
	default:
		return 0
	}
}

// PredIntra4x4Mode derives predIntra4x4PredMode (section 8.3.1.1) for the
// 4x4 luma block at local position (bx, by), from the Intra_4x4 modes of
// its left and top neighbouring blocks (within this macroblock or the
// recorded neighbour context), defaulting to DC (mode 2) wherever a
// neighbour is unavailable or was coded in a different mode.
func (it *Iterator) PredIntra4x4Mode(bx, by int, cur *MBIntra4x4Modes) int {
	const modeDC = 2
	left, top := modeDC, modeDC
	haveLeftBlk, haveTopBlk := false, false

	if bx == 0 {
		if it.haveLeft {
			if m := it.leftIntra4x4[by]; m >= 0 {
				left, haveLeftBlk = int(m), true
			} else {
				haveLeftBlk = true
			}
		}
	} else {
		if m := cur[by*4+bx-1]; m >= 0 {
			left, haveLeftBlk = int(m), true
		} else {
			haveLeftBlk = true
		}
	}

	if by == 0 {
		if it.haveTop {
			if m := it.topIntra4x4[it.MBX][bx]; m >= 0 {
				top, haveTopBlk = int(m), true
			} else {
				haveTopBlk = true
			}
		}
	} else {
		if m := cur[(by-1)*4+bx]; m >= 0 {
			top, haveTopBlk = int(m), true
		} else {
			haveTopBlk = true
		}
	}

	if !haveLeftBlk || !haveTopBlk {
		return modeDC
	}
	if left < top {
		return left
	}
	return top
}

// PredictMV returns a simplified median motion vector predictor (section
// 8.4.1.3) for the macroblock's single 16x16 partition, from the left,
// top and top-right neighbours' recorded motion vectors. Unavailable or
// intra-coded neighbours contribute a zero vector, an approximation of
// the specification's fuller neighbour-availability substitution rules
// which this single-partition-per-macroblock encoder does not need to
// reproduce exactly.
func (it *Iterator) PredictMV() me.MV {
	var left, top, topRight me.MV
	if it.haveLeft {
		left = it.leftMV
	}
	if it.haveTop {
		top = it.topMV[it.MBX]
	}
	if it.haveTopRight {
		topRight = it.topMV[it.MBX+1]
	} else if it.haveTopLeft {
		// C unavailable: use D (top-left), per 8.4.1.3.2's substitution.
		topRight = it.topMV[it.MBX-1]
	}
	if !it.haveTop && !it.haveTopRight && it.haveLeft {
		return left
	}
	return me.MV{X: medianOf3(left.X, top.X, topRight.X), Y: medianOf3(left.Y, top.Y, topRight.Y)}
}

// ColocatedMV returns the previous picture's motion vector at the same
// macroblock position, the temporal search candidate.
func (it *Iterator) ColocatedMV() me.MV {
	return it.colocatedMV[it.MBY*it.MBWidth+it.MBX]
}

// CandidateMVs returns the de-duplicatable seed list SearchBlock clusters
// before searching: the true predictor (median of left/top/top-right),
// the zero vector, each available spatial neighbour individually, and
// the co-located vector from the previous picture.
func (it *Iterator) CandidateMVs(pred me.MV) []me.MV {
	cands := make([]me.MV, 0, 6)
	cands = append(cands, pred, me.MV{}, it.ColocatedMV())
	if it.haveLeft {
		cands = append(cands, it.leftMV)
	}
	if it.haveTop {
		cands = append(cands, it.topMV[it.MBX])
	}
	if it.haveTopRight {
		cands = append(cands, it.topMV[it.MBX+1])
	}
	return cands
}

func medianOf3(a, b, c int) int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}
