/*
DESCRIPTION
  neighbors.go gathers the reconstructed-sample neighbourhoods intra
  prediction needs (internal/intra's Neighbors4x4 and BlockNeighbors) from
  a picture's Y/Cb/Cr planes and the iterator's availability flags,
  substituting the default values sections 8.3.1.2/8.3.3/8.3.4 specify for
  unavailable neighbours (128 for DC with nothing available, replicated
  top-right when a block's top-right macroblock is absent).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package mb

import (
	"github.com/ausocean/avcenc/internal/intra"
	"github.com/ausocean/avcenc/internal/picture"
)

// luma4x4Neighbors builds the Neighbors4x4 for the 4x4 luma block at
// macroblock-local position (bx, by), reading already-reconstructed
// samples from rec (the in-progress picture reconstruction). mbX, mbY are
// the macroblock's position in macroblocks; left/top/topRight report
// whether the macroblock-level neighbour exists at all (from the
// iterator), used only at the macroblock's own edges (bx==0 or by==0)
// since interior blocks always have their neighbours available from
// earlier blocks of the same macroblock.
func luma4x4Neighbors(rec *picture.Plane, mbX, mbY, bx, by int, haveLeftMB, haveTopMB, haveTopLeftMB, haveTopRightMB bool) intra.Neighbors4x4 {
	x0, y0 := mbX*16+bx*4, mbY*16+by*4
	var n intra.Neighbors4x4

	haveLeft := bx > 0 || haveLeftMB
	haveTop := by > 0 || haveTopMB
	haveTopLeft := (bx > 0 && by > 0) || (bx == 0 && by > 0 && haveLeftMB) || (bx > 0 && by == 0 && haveTopMB) || (bx == 0 && by == 0 && haveTopLeftMB)

	// Top-right is available when: within the macroblock, the block above-
	// right is in raster positions already decoded (true for by>0 unless
	// bx==3, the macroblock's own right edge, where top-right samples come
	// from the next macroblock, not yet coded); at the macroblock's top
	// edge it depends on the picture-level top-right macroblock.
	haveTopRight := false
	switch {
	case by == 0:
		if bx < 3 {
			haveTopRight = haveTopMB
		} else {
			haveTopRight = haveTopRightMB
		}
	default:
		haveTopRight = bx < 3
		// blkIdx 3 and 11 (bx==1, by odd, in the Z luma block scan order)
		// sit one step ahead of their geometric above-right neighbour in
		// decode order, so that neighbour is not yet reconstructed even
		// though it lies inside the same, already-started macroblock, per
		// the luma4x4BlkIdx neighbour derivation of section 6.4.11.4.
		if bx == 1 && by%2 == 1 {
			haveTopRight = false
		}
	}

	n.HaveLeft, n.HaveTop, n.HaveTopRight = haveLeft, haveTop, haveTopRight

	if haveTop {
		for i := 0; i < 4; i++ {
			n.Top[i] = rec.At(x0+i, y0-1)
		}
		if haveTopRight {
			for i := 4; i < 8; i++ {
				n.Top[i] = rec.At(x0+i, y0-1)
			}
		}
	}
	if haveLeft {
		for i := 0; i < 4; i++ {
			n.Left[i] = rec.At(x0-1, y0+i)
		}
	}
	if haveTopLeft {
		n.TopLeft = rec.At(x0-1, y0-1)
	}
	return n
}

// blockNeighbors builds a BlockNeighbors for an n x n luma (n=16) or
// chroma (n=8) block whose top-left sample is at (x0, y0) in rec.
func blockNeighbors(rec *picture.Plane, x0, y0, n int, haveLeft, haveTop bool) intra.BlockNeighbors {
	var nb intra.BlockNeighbors
	nb.HaveLeft, nb.HaveTop = haveLeft, haveTop
	if haveTop {
		nb.Top = make([]uint8, n)
		for i := 0; i < n; i++ {
			nb.Top[i] = rec.At(x0+i, y0-1)
		}
	}
	if haveLeft {
		nb.Left = make([]uint8, n)
		for i := 0; i < n; i++ {
			nb.Left[i] = rec.At(x0-1, y0+i)
		}
	}
	if haveLeft && haveTop {
		nb.TopLeft = rec.At(x0-1, y0-1)
	} else if haveTop {
		nb.TopLeft = rec.At(x0, y0-1)
	} else if haveLeft {
		nb.TopLeft = rec.At(x0-1, y0)
	} else {
		nb.TopLeft = 128
	}
	return nb
}
