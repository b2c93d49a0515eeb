/*
DESCRIPTION
  me.go implements block motion estimation: a predictor candidate list
  (the zero vector, the median predictor, each spatial neighbour, and the
  co-located macroblock's motion vector from the previous frame) reduced
  by a Manhattan-distance dedup radius before each surviving candidate
  seeds an integer-pel diamond search, a first-row-after-IDR exhaustive
  window search where temporal/spatial prediction context is weakest,
  and a two-stage half-pel-then-quarter-pel SATD refinement around the
  best integer match. The average-boundary-error (ABE) scene-change and
  per-macroblock intra/inter heuristics follow AVCEncoder.cpp's scene
  change detection, supplemented from original_source/ per SPEC_FULL.md,
  re-expressed in Go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package me implements block motion estimation for the Baseline-profile
// encoder: candidate-seeded diamond search, sub-pel refinement, frame
// and per-macroblock complexity estimation (MAD/ABE), and scene-change
// detection.
package me

import (
	"github.com/ausocean/avcenc/internal/intra"
	"github.com/ausocean/avcenc/internal/mc"
	"github.com/ausocean/avcenc/internal/picture"
)

// MV is a motion vector in quarter-luma-sample units, as stored in the
// bitstream (section 7.4.5.1).
type MV struct {
	X, Y int
}

// SearchResult is the outcome of motion estimation for one macroblock
// partition.
type SearchResult struct {
	MV   MV
	Cost int
}

// SearchRange bounds the integer-pel search around each candidate, in
// full luma samples.
const SearchRange = 16

// candidateDedupRadius is the Manhattan distance, in quarter-pel units,
// within which two candidate predictors are treated as the same seed: a
// simple single-pass clustering ("k-means candidate reduction" in
// spirit, without the iterative centroid refinement a true k-means pass
// would do) that keeps the candidate list small when several neighbours
// agree on roughly the same vector.
const candidateDedupRadius = 4

var largeDiamond = [8][2]int{
	{0, -2}, {1, -1}, {2, 0}, {1, 1}, {0, 2}, {-1, 1}, {-2, 0}, {-1, -1},
}

var smallDiamond = [4][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

// sad computes the sum of absolute differences between an w x h block of
// src (row-major, stride w) and the reference block at (x, y) offset by
// integer motion vector (mvX, mvY).
func sad(src []uint8, w, h int, ref *picture.Plane, x, y, mvX, mvY int) int {
	sum := 0
	for j := 0; j < h; j++ {
		row := src[j*w : j*w+w]
		for i := 0; i < w; i++ {
			d := int(row[i]) - int(ref.At(x+mvX+i, y+mvY+j))
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return sum
}

// mvBits estimates Exp-Golomb cost of the MV difference crudely as
// proportional to its magnitude, enough to bias the search away from
// large, marginally-better vectors without a full CAVLC trial per
// candidate.
func mvBits(dx, dy int) int {
	return egBits(dx) + egBits(dy)
}

func egBits(v int) int {
	u := v
	if u < 0 {
		u = -u
	}
	n := 1
	for t := 2*u + 1; t > 1; t >>= 1 {
		n += 2
	}
	return n
}

// dedupCandidates greedily clusters cands by Manhattan distance,
// returning one representative (the first seen) per cluster within
// candidateDedupRadius of each other.
func dedupCandidates(cands []MV) []MV {
	out := make([]MV, 0, len(cands))
	for _, c := range cands {
		dup := false
		for _, o := range out {
			if abs(c.X-o.X)+abs(c.Y-o.Y) <= candidateDedupRadius {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// diamondSearch runs the large-then-small diamond integer-pel search
// starting from (startX, startY) (full luma samples), returning the best
// position found and its Lagrangian cost.
func diamondSearch(src []uint8, w, h int, ref *picture.Plane, x, y, startX, startY int, pred MV, lambda float64) (int, int, int) {
	bestX, bestY := startX, startY
	bestCost := sad(src, w, h, ref, x, y, bestX, bestY) + int(lambda*float64(mvBits(bestX*4-pred.X, bestY*4-pred.Y)))

	improved := true
	for improved {
		improved = false
		for _, d := range largeDiamond {
			cx, cy := bestX+d[0], bestY+d[1]
			if cx < -SearchRange || cx > SearchRange || cy < -SearchRange || cy > SearchRange {
				continue
			}
			c := sad(src, w, h, ref, x, y, cx, cy) + int(lambda*float64(mvBits(cx*4-pred.X, cy*4-pred.Y)))
			if c < bestCost {
				bestCost, bestX, bestY = c, cx, cy
				improved = true
			}
		}
	}
	for _, d := range smallDiamond {
		cx, cy := bestX+d[0], bestY+d[1]
		c := sad(src, w, h, ref, x, y, cx, cy) + int(lambda*float64(mvBits(cx*4-pred.X, cy*4-pred.Y)))
		if c < bestCost {
			bestCost, bestX, bestY = c, cx, cy
		}
	}
	return bestX, bestY, bestCost
}

// exhaustiveSearch evaluates every integer-pel position in [-SearchRange,
// SearchRange]^2, used for the first macroblock row of the first inter
// frame following an IDR, where there is no temporal co-located vector
// and no top neighbour to seed a diamond search from.
func exhaustiveSearch(src []uint8, w, h int, ref *picture.Plane, x, y int, pred MV, lambda float64) (int, int, int) {
	bestX, bestY, bestCost := 0, 0, -1
	for cy := -SearchRange; cy <= SearchRange; cy++ {
		for cx := -SearchRange; cx <= SearchRange; cx++ {
			c := sad(src, w, h, ref, x, y, cx, cy) + int(lambda*float64(mvBits(cx*4-pred.X, cy*4-pred.Y)))
			if bestCost < 0 || c < bestCost {
				bestCost, bestX, bestY = c, cx, cy
			}
		}
	}
	return bestX, bestY, bestCost
}

// satdCost returns the SATD between src and the motion-compensated
// prediction at mv, plus the Lagrangian bit cost of coding mv against
// pred. Falls back to SAD for block shapes SATD's 4x4-Hadamard tiling
// doesn't cover (non-square or not a multiple of 4), which this
// encoder's 16x16-partition-only mode decision never exercises.
func satdCost(src []uint8, w, h int, ref *picture.Plane, x, y int, mv MV, pred MV, lambda float64) int {
	pb := mc.LumaBlock(ref, x, y, w, h, mv.X, mv.Y)
	var dist int
	if w == h && w%4 == 0 {
		dist = intra.SATD(w, src, pb)
	} else {
		for i := range pb {
			d := int(src[i]) - int(pb[i])
			if d < 0 {
				d = -d
			}
			dist += d
		}
	}
	return dist + int(lambda*float64(mvBits(mv.X-pred.X, mv.Y-pred.Y)))
}

// halfPelOffsets and quarterPelOffsets are the eight surrounding
// positions evaluated at each sub-pel refinement stage, in their
// respective step sizes (2 quarter-samples == one half-sample; 1
// quarter-sample the final step).
var halfPelOffsets = [8][2]int{{2, 0}, {-2, 0}, {0, 2}, {0, -2}, {2, 2}, {2, -2}, {-2, 2}, {-2, -2}}
var quarterPelOffsets = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// SearchBlock motion-estimates an w x h block of src against ref,
// starting at origin (x, y) in the current picture. candidates seeds the
// integer-pel search (after Manhattan-distance dedup); pred is the
// actual motion vector predictor used to cost the MVD the bitstream will
// carry, which may differ from every search seed. When exhaustive is
// set, an additional full-window integer-pel search runs regardless of
// how the candidates perform. Sub-pel refinement runs in two stages,
// first locking in the best half-pel position by SATD, then the best
// quarter-pel position around it.
func SearchBlock(src []uint8, w, h int, ref *picture.Plane, x, y int, pred MV, candidates []MV, lambda float64, exhaustive bool) SearchResult {
	seeds := dedupCandidates(candidates)

	bestX, bestY, bestCost := 0, 0, -1
	for _, seed := range seeds {
		cx, cy, cost := diamondSearch(src, w, h, ref, x, y, seed.X/4, seed.Y/4, pred, lambda)
		if bestCost < 0 || cost < bestCost {
			bestX, bestY, bestCost = cx, cy, cost
		}
	}
	if exhaustive {
		if cx, cy, cost := exhaustiveSearch(src, w, h, ref, x, y, pred, lambda); cost < bestCost {
			bestX, bestY, bestCost = cx, cy, cost
		}
	}

	// Stage 1: half-pel SATD refinement around the best integer match.
	bestMV := MV{bestX * 4, bestY * 4}
	bestSubCost := satdCost(src, w, h, ref, x, y, bestMV, pred, lambda)
	for _, d := range halfPelOffsets {
		cand := MV{bestMV.X + d[0], bestMV.Y + d[1]}
		if c := satdCost(src, w, h, ref, x, y, cand, pred, lambda); c < bestSubCost {
			bestSubCost, bestMV = c, cand
		}
	}

	// Stage 2: quarter-pel SATD refinement around the winning half-pel
	// position.
	for _, d := range quarterPelOffsets {
		cand := MV{bestMV.X + d[0], bestMV.Y + d[1]}
		if c := satdCost(src, w, h, ref, x, y, cand, pred, lambda); c < bestSubCost {
			bestSubCost, bestMV = c, cand
		}
	}

	return SearchResult{MV: bestMV, Cost: bestSubCost}
}

// AverageBoundaryError computes the whole-picture ABE scene-change
// heuristic: the mean absolute difference between cur's macroblock-
// boundary samples and the co-located samples in ref. A large value
// indicates the two pictures are poorly correlated and the current
// picture is better coded as an I frame.
func AverageBoundaryError(cur, ref *picture.Plane, mbWidth, mbHeight int) float64 {
	var sum int64
	var count int64
	for my := 0; my < mbHeight; my++ {
		for mx := 0; mx < mbWidth; mx++ {
			s, n := blockBoundaryError(cur, ref, mx, my)
			sum += s
			count += n
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// BlockABE computes the same boundary-error heuristic as
// AverageBoundaryError restricted to the single macroblock at (mbX,
// mbY), used to flag individual macroblocks within a P slice whose
// prediction from ref is poor enough that an intra mode is likely to
// win mode decision (the per-macroblock analogue of the whole-picture
// scene-change check).
func BlockABE(cur, ref *picture.Plane, mbX, mbY int) float64 {
	sum, count := blockBoundaryError(cur, ref, mbX, mbY)
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func blockBoundaryError(cur, ref *picture.Plane, mbX, mbY int) (sum int64, count int64) {
	x0, y0 := mbX*16, mbY*16
	for i := 0; i < 16; i++ {
		sum += int64(abs(int(cur.At(x0+i, y0)) - int(ref.At(x0+i, y0))))
		sum += int64(abs(int(cur.At(x0+i, y0+15)) - int(ref.At(x0+i, y0+15))))
		sum += int64(abs(int(cur.At(x0, y0+i)) - int(ref.At(x0, y0+i))))
		sum += int64(abs(int(cur.At(x0+15, y0+i)) - int(ref.At(x0+15, y0+i))))
		count += 4
	}
	return sum, count
}

// FrameMAD estimates the frame-level mean absolute difference rate
// control's Qstep/QP model needs: for an inter frame, the mean absolute
// zero-motion luma difference against ref (a fast proxy for true
// motion-compensated MAD, standing in for the per-macroblock motion
// search result TMN8 itself would only have after the analysis pass
// completes); for an intra frame (ref == nil), the mean absolute
// deviation of each luma sample from the picture's own mean, a cheap
// intra-complexity estimate.
func FrameMAD(cur *picture.Frame, ref *picture.Frame) float64 {
	y := cur.Y
	if ref == nil {
		var sum int64
		var n int64
		for j := 0; j < y.Height; j++ {
			row := y.Row(j)
			for i := 0; i < y.Width; i++ {
				sum += int64(row[i])
				n++
			}
		}
		if n == 0 {
			return 1
		}
		mean := float64(sum) / float64(n)
		var dev float64
		for j := 0; j < y.Height; j++ {
			row := y.Row(j)
			for i := 0; i < y.Width; i++ {
				d := float64(row[i]) - mean
				if d < 0 {
					d = -d
				}
				dev += d
			}
		}
		return dev / float64(n)
	}

	var sum int64
	var n int64
	ry := ref.Y
	for j := 0; j < y.Height; j++ {
		row := y.Row(j)
		for i := 0; i < y.Width; i++ {
			d := int(row[i]) - int(ry.At(i, j))
			if d < 0 {
				d = -d
			}
			sum += int64(d)
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return float64(sum) / float64(n)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
