/*
DESCRIPTION
  me_test.go provides testing for me.go: the Manhattan-distance candidate
  dedup, the search-range bound SearchBlock's returned motion vector must
  respect even after sub-pel refinement, and the frame/block complexity
  estimators (FrameMAD, AverageBoundaryError, BlockABE) rate control and
  per-macroblock mode decision depend on.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package me

import (
	"testing"

	"github.com/ausocean/avcenc/internal/picture"
)

func TestDedupCandidates(t *testing.T) {
	cands := []MV{{0, 0}, {1, 1}, {100, 100}, {102, 99}, {0, 0}}
	out := dedupCandidates(cands)

	if len(out) != 2 {
		t.Fatalf("dedupCandidates(%v) = %v, want 2 clusters", cands, out)
	}
	if out[0] != (MV{0, 0}) {
		t.Errorf("first cluster representative = %v, want {0 0}", out[0])
	}
}

func TestDedupCandidatesEmpty(t *testing.T) {
	if out := dedupCandidates(nil); len(out) != 0 {
		t.Errorf("dedupCandidates(nil) = %v, want empty", out)
	}
}

// fillPlane writes a deterministic synthetic pattern into a plane so
// motion search has real structure to lock onto rather than flat data.
func fillPlane(p *picture.Plane, phaseX, phaseY int) {
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		for x := 0; x < p.Width; x++ {
			row[x] = uint8((x+phaseX)*7 + (y+phaseY)*13)
		}
	}
	p.ExtendBorders()
}

// TestSearchBlockMVWithinRange checks that SearchBlock's returned motion
// vector, in quarter-pel units, never exceeds the integer search range
// (SearchRange full-pel samples) plus the one full-pel of slack the
// half-pel and quarter-pel refinement stages can add on top of the best
// integer match.
func TestSearchBlockMVWithinRange(t *testing.T) {
	ref := picture.NewPlane(64, 64)
	fillPlane(ref, 0, 0)

	var src [256]uint8
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src[y*16+x] = ref.At(32+x, 32+y)
		}
	}

	pred := MV{0, 0}
	candidates := []MV{{0, 0}}
	res := SearchBlock(src[:], 16, 16, ref, 32, 32, pred, candidates, 1.0, false)

	maxMV := (SearchRange + 1) * 4
	if abs(res.MV.X) > maxMV || abs(res.MV.Y) > maxMV {
		t.Errorf("SearchBlock MV = %v, want within +/-%d quarter-pel units", res.MV, maxMV)
	}
}

// TestSearchBlockFindsExactMatch checks that when the reference truly
// contains a shifted copy of the source block within the search window,
// SearchBlock locks onto the exact integer-pel displacement.
func TestSearchBlockFindsExactMatch(t *testing.T) {
	ref := picture.NewPlane(64, 64)
	fillPlane(ref, 0, 0)

	const dx, dy = 5, -3
	var src [256]uint8
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src[y*16+x] = ref.At(32+dx+x, 32+dy+y)
		}
	}

	pred := MV{0, 0}
	candidates := []MV{{0, 0}}
	res := SearchBlock(src[:], 16, 16, ref, 32, 32, pred, candidates, 1.0, false)

	if res.MV.X != dx*4 || res.MV.Y != dy*4 {
		t.Errorf("SearchBlock MV = %v, want {%d %d}", res.MV, dx*4, dy*4)
	}
}

func TestFrameMADIdenticalIsZero(t *testing.T) {
	cur := picture.NewFrame(32, 32)
	ref := picture.NewFrame(32, 32)
	fillPlane(cur.Y, 1, 2)
	fillPlane(ref.Y, 1, 2)

	if got := FrameMAD(cur, ref); got != 0 {
		t.Errorf("FrameMAD(identical frames) = %v, want 0", got)
	}
}

func TestFrameMADIntraNonNegative(t *testing.T) {
	cur := picture.NewFrame(32, 32)
	fillPlane(cur.Y, 3, 5)

	if got := FrameMAD(cur, nil); got < 0 {
		t.Errorf("FrameMAD(intra) = %v, want >= 0", got)
	}
}

func TestBlockABEIdenticalIsZero(t *testing.T) {
	cur := picture.NewPlane(32, 32)
	ref := picture.NewPlane(32, 32)
	fillPlane(cur, 4, 4)
	fillPlane(ref, 4, 4)

	if got := BlockABE(cur, ref, 0, 0); got != 0 {
		t.Errorf("BlockABE(identical planes) = %v, want 0", got)
	}
}

func TestAverageBoundaryErrorMatchesBlockABESingleMB(t *testing.T) {
	cur := picture.NewPlane(16, 16)
	ref := picture.NewPlane(16, 16)
	fillPlane(cur, 0, 0)
	fillPlane(ref, 2, 0)

	whole := AverageBoundaryError(cur, ref, 1, 1)
	single := BlockABE(cur, ref, 0, 0)
	if whole != single {
		t.Errorf("AverageBoundaryError (1x1 MB grid) = %v, BlockABE = %v; want equal", whole, single)
	}
}
