/*
DESCRIPTION
  deblock_test.go provides testing for deblock.go: boundary strength
  derivation per table 8-12's restricted cases, and Filter's behaviour on
  a flat picture (nothing to smooth) versus one with a genuine step edge
  at a macroblock boundary.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package deblock

import (
	"testing"

	"github.com/ausocean/avcenc/internal/mb"
	"github.com/ausocean/avcenc/internal/me"
	"github.com/ausocean/avcenc/internal/picture"
)

func TestBoundaryStrengthIntraMBEdge(t *testing.T) {
	p := mb.MBInfo{IsIntra: true}
	q := mb.MBInfo{IsIntra: false}
	if got := boundaryStrength(p, q, false, false, true); got != 4 {
		t.Errorf("boundaryStrength(intra, mb edge) = %d, want 4", got)
	}
}

func TestBoundaryStrengthIntraInternalEdge(t *testing.T) {
	p := mb.MBInfo{IsIntra: true}
	q := mb.MBInfo{IsIntra: true}
	if got := boundaryStrength(p, q, false, false, false); got != 3 {
		t.Errorf("boundaryStrength(intra, internal edge) = %d, want 3", got)
	}
}

func TestBoundaryStrengthNonZeroCoeff(t *testing.T) {
	p := mb.MBInfo{}
	q := mb.MBInfo{}
	if got := boundaryStrength(p, q, true, false, false); got != 2 {
		t.Errorf("boundaryStrength(nonzero coeff) = %d, want 2", got)
	}
}

func TestBoundaryStrengthMVDiff(t *testing.T) {
	p := mb.MBInfo{MV: me.MV{X: 0, Y: 0}}
	q := mb.MBInfo{MV: me.MV{X: 4, Y: 0}}
	if got := boundaryStrength(p, q, false, false, false); got != 1 {
		t.Errorf("boundaryStrength(MV diff 1 full pel) = %d, want 1", got)
	}
}

func TestBoundaryStrengthNone(t *testing.T) {
	p := mb.MBInfo{MV: me.MV{X: 1, Y: 1}}
	q := mb.MBInfo{MV: me.MV{X: 2, Y: 1}}
	if got := boundaryStrength(p, q, false, false, false); got != 0 {
		t.Errorf("boundaryStrength(near-identical MV, no coeff) = %d, want 0", got)
	}
}

// TestFilterFlatPictureUnchanged checks that Filter leaves a perfectly
// flat reconstructed picture untouched: every edge's abs(p0-q0) is zero,
// so every filtering decision in filterLuma4/filterChroma2 short-circuits
// before modifying any sample.
func TestFilterFlatPictureUnchanged(t *testing.T) {
	const mbW, mbH = 2, 2
	rec := picture.NewFrame(mbW*16, mbH*16)
	for y := 0; y < rec.Y.Height; y++ {
		row := rec.Y.Row(y)
		for x := range row {
			row[x] = 128
		}
	}
	for y := 0; y < rec.Cb.Height; y++ {
		for x := 0; x < rec.Cb.Width; x++ {
			rec.Cb.Set(x, y, 128)
			rec.Cr.Set(x, y, 128)
		}
	}
	rec.ExtendBorders()

	info := make([]mb.MBInfo, mbW*mbH)
	for i := range info {
		info[i] = mb.MBInfo{IsIntra: true} // worst case for bS, still must not move a flat signal.
	}

	Filter(rec, info, mbW, mbH, 28, 0, 0)

	for y := 0; y < rec.Y.Height; y++ {
		for _, v := range rec.Y.Row(y) {
			if v != 128 {
				t.Fatalf("Filter modified a flat luma picture: sample = %d, want 128", v)
			}
		}
	}
}

// TestFilterSmoothsStepEdgeAtMBBoundary checks that a genuine step
// discontinuity at a macroblock boundary, coded with a boundary strength
// that enables filtering, is smoothed: the two samples nearest the edge
// move toward each other.
func TestFilterSmoothsStepEdgeAtMBBoundary(t *testing.T) {
	const mbW, mbH = 2, 1
	rec := picture.NewFrame(mbW*16, mbH*16)
	for y := 0; y < rec.Y.Height; y++ {
		row := rec.Y.Row(y)
		for x := 0; x < 16; x++ {
			row[x] = 100
		}
		for x := 16; x < 32; x++ {
			row[x] = 140
		}
	}
	for y := 0; y < rec.Cb.Height; y++ {
		for x := 0; x < rec.Cb.Width; x++ {
			rec.Cb.Set(x, y, 128)
			rec.Cr.Set(x, y, 128)
		}
	}
	rec.ExtendBorders()

	before0, before1 := rec.Y.At(15, 0), rec.Y.At(16, 0)

	info := []mb.MBInfo{
		{IsIntra: true}, // forces bS 4 at the shared mb edge.
		{IsIntra: true},
	}
	Filter(rec, info, mbW, mbH, 40, 0, 0)

	after0, after1 := rec.Y.At(15, 0), rec.Y.At(16, 0)
	if after0 == before0 && after1 == before1 {
		t.Fatal("Filter left a 40-level step edge at a forced-bS4 macroblock boundary untouched")
	}
	if after0 < before0 || after1 > before1 {
		t.Errorf("edge samples moved the wrong direction: (%d,%d) -> (%d,%d), want p0 to rise and q0 to fall",
			before0, before1, after0, after1)
	}
}
