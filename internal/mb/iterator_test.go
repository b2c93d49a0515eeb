/*
DESCRIPTION
  iterator_test.go provides testing for iterator.go: neighbour
  availability transitions across a picture sweep, the nC derivation
  rules CAVLC depends on, and the candidate motion vector list (spatial
  neighbours, co-located, predictor and zero vector) SearchBlock clusters
  before searching.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package mb

import (
	"testing"

	"github.com/ausocean/avcenc/internal/me"
)

func sweepOnce(it *Iterator) {
	for addr := 0; addr < it.MBWidth*it.MBHeight; addr++ {
		it.BeginMacroblock()
		it.EndMacroblock(nil, me.MV{})
	}
}

// TestAvailabilityAcrossFirstRow checks that only the first macroblock of
// a picture has no left neighbour, and that no macroblock in the first
// row has a top neighbour.
func TestAvailabilityAcrossFirstRow(t *testing.T) {
	it := NewIterator(4, 3)

	left, top, _, _ := it.Available()
	if left || top {
		t.Fatalf("Available() at (0,0) before any macroblock = (%v, %v), want (false, false)", left, top)
	}

	for x := 0; x < 4; x++ {
		it.BeginMacroblock()
		it.EndMacroblock(nil, me.MV{})
		left, top, _, _ := it.Available()
		wantLeft := x < 3 // after coding mb x, the next mb is x+1; left available once x+1 > 0.
		if left != wantLeft {
			t.Errorf("after coding mb %d: Available().left = %v, want %v", x, left, wantLeft)
		}
		// Coding the last column wraps the iterator onto row 1, which does
		// have a top neighbour; only columns that stay within row 0 should
		// report top unavailable.
		if x < 3 && top {
			t.Errorf("after coding mb %d in first row: Available().top = true, want false", x)
		}
	}
}

// TestAvailabilitySecondRowHasTop checks that every macroblock in the
// second row onward reports a top neighbour available.
func TestAvailabilitySecondRowHasTop(t *testing.T) {
	it := NewIterator(3, 2)
	sweepOnce(it) // finishes row 0, wraps into row 1.

	_, top, _, _ := it.Available()
	if !top {
		t.Error("Available().top at start of second row = false, want true")
	}
}

// TestNCLumaNoNeighboursIsZero checks that nC derivation falls back to 0
// when neither a left nor top 4x4 block is available, as section 9.2.1
// requires for the top-left corner of a picture.
func TestNCLumaNoNeighboursIsZero(t *testing.T) {
	it := NewIterator(2, 2)
	it.BeginMacroblock()
	if got := it.NCLuma(0, 0); got != 0 {
		t.Errorf("NCLuma(0,0) at picture origin = %d, want 0", got)
	}
}

// TestNCLumaAveragesLeftAndTop checks the (left+top+1)>>1 averaging rule
// when both neighbouring 4x4 blocks are available.
func TestNCLumaAveragesLeftAndTop(t *testing.T) {
	it := NewIterator(2, 2)
	it.BeginMacroblock()
	it.SetLumaNZ(0, 0, 3)
	// Block (1,0) has a left neighbour (0,0) within the same macroblock
	// with TotalCoeff 3; give it a top neighbour too via topNZLuma.
	it.topNZLuma[it.MBX*4+1] = 5
	it.haveTop = true

	got := it.NCLuma(1, 0)
	want := (3 + 5 + 1) >> 1
	if got != want {
		t.Errorf("NCLuma(1,0) = %d, want %d", got, want)
	}
}

// TestCandidateMVsIncludesPredictorAndZero checks that CandidateMVs
// always includes the supplied predictor and the zero vector, regardless
// of neighbour availability.
func TestCandidateMVsIncludesPredictorAndZero(t *testing.T) {
	it := NewIterator(4, 4)
	pred := me.MV{X: 12, Y: -8}
	cands := it.CandidateMVs(pred)

	var havePred, haveZero bool
	for _, c := range cands {
		if c == pred {
			havePred = true
		}
		if c == (me.MV{}) {
			haveZero = true
		}
	}
	if !havePred {
		t.Errorf("CandidateMVs(%v) = %v, missing predictor", pred, cands)
	}
	if !haveZero {
		t.Errorf("CandidateMVs(%v) = %v, missing zero vector", pred, cands)
	}
}

// TestCandidateMVsIncludesSpatialNeighbours checks that once left and top
// neighbours have been coded with distinct motion vectors, both appear
// in the candidate list for the next macroblock.
func TestCandidateMVsIncludesSpatialNeighbours(t *testing.T) {
	it := NewIterator(3, 2)

	leftMV := me.MV{X: 4, Y: 4}
	it.BeginMacroblock()
	it.EndMacroblock(nil, leftMV) // codes mb (0,0), advances to (1,0).

	cands := it.CandidateMVs(me.MV{})
	var haveLeft bool
	for _, c := range cands {
		if c == leftMV {
			haveLeft = true
		}
	}
	if !haveLeft {
		t.Errorf("CandidateMVs after left neighbour coded with %v = %v, missing it", leftMV, cands)
	}
}

// TestColocatedMVSurvivesReset checks that the motion vector recorded for
// a macroblock position persists into ColocatedMV after Reset starts the
// next picture, and is cleared by ResetSequence at a new IDR.
func TestColocatedMVSurvivesReset(t *testing.T) {
	it := NewIterator(2, 1)
	mv := me.MV{X: 9, Y: -2}
	it.BeginMacroblock()
	it.EndMacroblock(nil, mv)

	it.Reset()
	if got := it.ColocatedMV(); got != mv {
		t.Errorf("ColocatedMV() after Reset = %v, want %v", got, mv)
	}

	it.ResetSequence()
	it.Reset()
	if got := it.ColocatedMV(); got != (me.MV{}) {
		t.Errorf("ColocatedMV() after ResetSequence = %v, want zero vector", got)
	}
}
