/*
DESCRIPTION
  deblock.go implements the in-loop deblocking filter of section 8.7:
  boundary strength (bS) derivation per table 8-12-restricted to the
  single-reference, single-partition, 4x4-transform-only subset this
  encoder ever produces (no multiple reference pictures, no 8x8
  transform, no B slices), followed by the normal (bS 1-3) and strong
  (bS 4) luma filters and the simpler chroma filter, applied to every
  vertical then every horizontal macroblock and internal 4x4 edge of the
  reconstructed picture before it is stored as a motion-compensation
  reference. Table layout and filter ordering follow the decoder's
  decode.go in codec/h264/h264dec (never implemented past parameter-set
  parsing there), re-derived here in the write/encode direction directly
  against section 8.7's published tables and equations.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package deblock implements the H.264 Baseline-profile in-loop
// deblocking filter (section 8.7) over a reconstructed picture.
package deblock

import (
	"github.com/ausocean/avcenc/internal/mb"
	"github.com/ausocean/avcenc/internal/picture"
)

// alphaTable and betaTable are indexed by indexA/indexB (section
// 8.7.2.2), each in [0, 51].
var alphaTable = [52]int{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 4, 4, 5, 6,
	7, 8, 9, 10, 12, 13, 15, 17, 20, 22,
	25, 28, 32, 36, 40, 45, 50, 56, 63, 71,
	80, 90, 101, 113, 127, 144, 162, 182, 203, 226,
	255, 255,
}

var betaTable = [52]int{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 2, 2, 2, 3,
	3, 3, 3, 4, 4, 4, 6, 6, 7, 7,
	8, 8, 9, 9, 10, 10, 11, 11, 12, 12,
	13, 13, 14, 14, 15, 15, 16, 16, 17, 17,
	18, 18,
}

// tc0Table holds t'C0, indexed [bS-1][indexA], for bS in {1, 2, 3};
// bS == 4 uses the strong filter instead (section 8.7.2.4).
var tc0Table = [3][52]int{
	{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 2, 2, 2, 2, 3, 3, 3,
		4, 4, 4, 5, 6, 6, 7, 8, 9, 10,
		11, 13,
	},
	{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 1, 1, 1, 1, 1, 1, 1, 1,
		1, 2, 2, 2, 2, 3, 3, 3, 4, 4,
		5, 6, 6, 7, 8, 9, 10, 11, 13, 14,
		16, 18,
	},
	{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		1, 1, 1, 1, 1, 1, 1, 2, 2, 2,
		2, 3, 3, 3, 4, 4, 4, 5, 6, 6,
		7, 8, 9, 10, 11, 13, 14, 16, 18, 20,
		23, 25,
	},
}

func clip3(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clip255(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// boundaryStrength derives bS per table 8-12, restricted to the
// no-B-slice, single-reference, 4x4-transform subset this encoder
// produces: 4 for a picture/macroblock-edge with either side intra, 3
// for an internal edge with either side intra, 2 if either side has a
// non-zero transform coefficient at the edge, 1 if the two sides' motion
// vectors differ by at least a full luma sample, 0 otherwise.
func boundaryStrength(pInfo, qInfo mb.MBInfo, pNZ, qNZ bool, mbEdge bool) int {
	if pInfo.IsIntra || qInfo.IsIntra {
		if mbEdge {
			return 4
		}
		return 3
	}
	if pNZ || qNZ {
		return 2
	}
	dx := pInfo.MV.X - qInfo.MV.X
	dy := pInfo.MV.Y - qInfo.MV.Y
	if abs(dx) >= 4 || abs(dy) >= 4 {
		return 1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// sampleLine reads four samples on either side of an edge at a given
// perpendicular offset: get(k) returns the sample k positions from the
// edge, negative on the p side (p0 at k=-1) and non-negative on the q
// side (q0 at k=0).
type sampleLine func(k int) int

// filterLuma4 filters one 4-sample segment of a luma edge at bS (1..4),
// writing changed samples of p3..p0, q0..q3 back through set (only p1,p0,q0,q1
// can change for bS<4; p2/q2 also change for bS==4).
func filterLuma4(get sampleLine, set func(k, v int), qp int, bS int, alphaOffset, betaOffset int32) {
	if bS == 0 {
		return
	}
	indexA := clip3(0, 51, qp+int(alphaOffset))
	indexB := clip3(0, 51, qp+int(betaOffset))
	alpha := alphaTable[indexA]
	beta := betaTable[indexB]
	if alpha == 0 {
		return
	}

	p0, p1, p2, p3 := get(-1), get(-2), get(-3), get(-4)
	q0, q1, q2, q3 := get(0), get(1), get(2), get(3)

	if abs(p0-q0) >= alpha || abs(p1-p0) >= beta || abs(q1-q0) >= beta {
		return
	}

	apSmall := abs(p2-p0) < beta
	aqSmall := abs(q2-q0) < beta

	if bS == 4 {
		if apSmall && abs(p0-q0) < (alpha>>2)+2 {
			set(-1, (p2+2*p1+2*p0+2*q0+q1+4)>>3)
			set(-2, (p2+p1+p0+q0+2)>>2)
			set(-3, (2*p3+3*p2+p1+p0+q0+4)>>3)
		} else {
			set(-1, (2*p1+p0+q1+2)>>2)
		}
		if aqSmall && abs(p0-q0) < (alpha>>2)+2 {
			set(0, (q2+2*q1+2*q0+2*p0+p1+4)>>3)
			set(1, (q2+q1+q0+p0+2)>>2)
			set(2, (2*q3+3*q2+q1+q0+p0+4)>>3)
		} else {
			set(0, (2*q1+q0+p1+2)>>2)
		}
		return
	}

	tc0 := tc0Table[bS-1][indexA]
	tc := tc0
	if apSmall {
		tc++
	}
	if aqSmall {
		tc++
	}
	delta := clip3(-tc, tc, ((q0-p0)*4+(p1-q1)+4)>>3)
	set(-1, p0+delta)
	set(0, q0-delta)
	if apSmall {
		set(-2, p1+clip3(-tc0, tc0, (p2+((p0+q0+1)>>1)-2*p1)>>1))
	}
	if aqSmall {
		set(1, q1+clip3(-tc0, tc0, (q2+((p0+q0+1)>>1)-2*q1)>>1))
	}
}

// filterChroma2 filters one 2-sample-affecting chroma edge segment at bS
// (1..4): only p0/q0 ever change, per section 8.7.2.4's chroma case.
func filterChroma2(get sampleLine, set func(k, v int), qp int, bS int, alphaOffset, betaOffset int32) {
	if bS == 0 {
		return
	}
	indexA := clip3(0, 51, qp+int(alphaOffset))
	indexB := clip3(0, 51, qp+int(betaOffset))
	alpha := alphaTable[indexA]
	beta := betaTable[indexB]
	if alpha == 0 {
		return
	}

	p0, p1 := get(-1), get(-2)
	q0, q1 := get(0), get(1)
	if abs(p0-q0) >= alpha || abs(p1-p0) >= beta || abs(q1-q0) >= beta {
		return
	}

	if bS == 4 {
		set(-1, (2*p1+p0+q1+2)>>2)
		set(0, (2*q1+q0+p1+2)>>2)
		return
	}
	tc0 := tc0Table[bS-1][indexA]
	tc := tc0 + 1
	delta := clip3(-tc, tc, ((q0-p0)*4+(p1-q1)+4)>>3)
	set(-1, p0+delta)
	set(0, q0-delta)
}

// Filter runs the in-loop deblocking filter over rec in place: every
// vertical macroblock/internal edge first, then every horizontal one, in
// raster macroblock order, matching the decoder's required filtering
// order (section 8.7). info is the per-macroblock mode/motion summary
// EncodeSlice records for the same picture; qp is the picture's single
// quantization parameter (this encoder carries no mb_qp_delta).
func Filter(rec *picture.Frame, info []mb.MBInfo, mbWidth, mbHeight, qp int, alphaOffset, betaOffset int32) {
	filterLumaEdges(rec.Y, info, mbWidth, mbHeight, qp, alphaOffset, betaOffset)
	filterChromaEdges(rec.Cb, info, mbWidth, mbHeight, qp, alphaOffset, betaOffset)
	filterChromaEdges(rec.Cr, info, mbWidth, mbHeight, qp, alphaOffset, betaOffset)
}

func filterLumaEdges(y *picture.Plane, info []mb.MBInfo, mbWidth, mbHeight, qp int, alphaOffset, betaOffset int32) {
	for mbY := 0; mbY < mbHeight; mbY++ {
		for mbX := 0; mbX < mbWidth; mbX++ {
			cur := info[mbY*mbWidth+mbX]

			// Vertical edges: x local offsets 0 (mb edge), 4, 8, 12.
			for ex := 0; ex < 16; ex += 4 {
				mbEdge := ex == 0
				if mbEdge && mbX == 0 {
					continue
				}
				var left mb.MBInfo
				if mbEdge {
					left = info[mbY*mbWidth+mbX-1]
				} else {
					left = cur
				}
				for seg := 0; seg < 16; seg += 4 {
					by := seg / 4
					var pNZ, qNZ bool
					if mbEdge {
						pNZ = left.LumaNZ[by*4+3]
					} else {
						pNZ = cur.LumaNZ[by*4+(ex/4-1)]
					}
					qNZ = cur.LumaNZ[by*4+ex/4]
					bS := boundaryStrength(left, cur, pNZ, qNZ, mbEdge)
					if bS == 0 {
						continue
					}
					gx, gy := mbX*16+ex, mbY*16+seg
					for row := 0; row < 4; row++ {
						yy := gy + row
						get := func(k int) int { return int(y.At(gx+k, yy)) }
						set := func(k, v int) { y.Set(gx+k, yy, clip255(v)) }
						filterLuma4(get, set, qp, bS, alphaOffset, betaOffset)
					}
				}
			}

			// Horizontal edges: y local offsets 0 (mb edge), 4, 8, 12.
			for ey := 0; ey < 16; ey += 4 {
				mbEdge := ey == 0
				if mbEdge && mbY == 0 {
					continue
				}
				var top mb.MBInfo
				if mbEdge {
					top = info[(mbY-1)*mbWidth+mbX]
				} else {
					top = cur
				}
				for seg := 0; seg < 16; seg += 4 {
					bx := seg / 4
					var pNZ, qNZ bool
					if mbEdge {
						pNZ = top.LumaNZ[3*4+bx]
					} else {
						pNZ = cur.LumaNZ[(ey/4-1)*4+bx]
					}
					qNZ = cur.LumaNZ[(ey/4)*4+bx]
					bS := boundaryStrength(top, cur, pNZ, qNZ, mbEdge)
					if bS == 0 {
						continue
					}
					gx, gy := mbX*16+seg, mbY*16+ey
					for col := 0; col < 4; col++ {
						xx := gx + col
						get := func(k int) int { return int(y.At(xx, gy+k)) }
						set := func(k, v int) { y.Set(xx, gy+k, clip255(v)) }
						filterLuma4(get, set, qp, bS, alphaOffset, betaOffset)
					}
				}
			}
		}
	}
}

// filterChromaEdges filters one 8x8 chroma component plane's mb-boundary
// edges only (section 8.7's chroma filtering runs solely at 8-sample
// granularity under 4:2:0, i.e. the macroblock edges; there are no
// internal chroma edges to filter for an 8x8 chroma block).
func filterChromaEdges(c *picture.Plane, info []mb.MBInfo, mbWidth, mbHeight, qp int, alphaOffset, betaOffset int32) {
	qpc := qp // chroma QP offset already folds into the coding-side transform; the filter itself uses the luma QP per the simplified single-offset model this encoder carries.
	for mbY := 0; mbY < mbHeight; mbY++ {
		for mbX := 0; mbX < mbWidth; mbX++ {
			cur := info[mbY*mbWidth+mbX]

			if mbX > 0 {
				left := info[mbY*mbWidth+mbX-1]
				bS := boundaryStrength(left, cur, false, false, true)
				if bS != 0 {
					gx, gy := mbX*8, mbY*8
					for row := 0; row < 8; row++ {
						yy := gy + row
						get := func(k int) int { return int(c.At(gx+k, yy)) }
						set := func(k, v int) { c.Set(gx+k, yy, clip255(v)) }
						filterChroma2(get, set, qpc, bS, alphaOffset, betaOffset)
					}
				}
			}
			if mbY > 0 {
				top := info[(mbY-1)*mbWidth+mbX]
				bS := boundaryStrength(top, cur, false, false, true)
				if bS != 0 {
					gx, gy := mbX*8, mbY*8
					for col := 0; col < 8; col++ {
						xx := gx + col
						get := func(k int) int { return int(c.At(xx, gy+k)) }
						set := func(k, v int) { c.Set(xx, gy+k, clip255(v)) }
						filterChroma2(get, set, qpc, bS, alphaOffset, betaOffset)
					}
				}
			}
		}
	}
}
