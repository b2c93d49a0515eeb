/*
DESCRIPTION
  mc.go implements quarter-sample luma interpolation (section 8.4.2.2.1,
  the 6-tap [1,-5,20,20,-5,1] filter) and eighth-sample chroma
  interpolation (section 8.4.2.2.2, bilinear), producing motion-compensated
  prediction blocks from a padded reference Plane for a given motion
  vector.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package mc implements H.264 Baseline-profile motion compensation: luma
// quarter-pel and chroma eighth-pel interpolation from a reference frame.
package mc

import "github.com/ausocean/avcenc/internal/picture"

// clip255 saturates an intermediate filter sum to [0, 255].
func clip255(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// tap6 applies the 6-tap half-pel filter [1,-5,20,20,-5,1] to six
// consecutive samples and returns the unclipped, unrounded intermediate
// sum (section 8.4.2.2.1's b/h/m/s intermediate values).
func tap6(a, b, c, d, e, f int32) int32 {
	return a - 5*b + 20*c + 20*d - 5*e + f
}

// LumaBlock computes an w x h luma prediction block with top-left corner
// at integer sample position (x, y) in ref, offset by the quarter-sample
// motion vector (mvX, mvY) (in quarter-sample units), per section
// 8.4.2.2.1.
func LumaBlock(ref *picture.Plane, x, y, w, h int, mvX, mvY int) []uint8 {
	out := make([]uint8, w*h)

	fullX, fracX := x+mvX>>2, mvX&3
	fullY, fracY := y+mvY>>2, mvY&3

	switch {
	case fracX == 0 && fracY == 0:
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				out[j*w+i] = ref.At(fullX+i, fullY+j)
			}
		}
	case fracY == 0:
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				out[j*w+i] = halfOrQuarterH(ref, fullX+i, fullY+j, fracX)
			}
		}
	case fracX == 0:
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				out[j*w+i] = halfOrQuarterV(ref, fullX+i, fullY+j, fracY)
			}
		}
	default:
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				out[j*w+i] = quarterDiagonal(ref, fullX+i, fullY+j, fracX, fracY)
			}
		}
	}
	return out
}

// halfPelH returns the horizontal half-pel sample (H.264 "b" position) at
// integer coordinates (x, y), per equation 8-231.
func halfPelH(ref *picture.Plane, x, y int) uint8 {
	s := tap6(
		int32(ref.At(x-2, y)), int32(ref.At(x-1, y)), int32(ref.At(x, y)),
		int32(ref.At(x+1, y)), int32(ref.At(x+2, y)), int32(ref.At(x+3, y)),
	)
	return clip255((s + 16) >> 5)
}

func halfPelV(ref *picture.Plane, x, y int) uint8 {
	s := tap6(
		int32(ref.At(x, y-2)), int32(ref.At(x, y-1)), int32(ref.At(x, y)),
		int32(ref.At(x, y+1)), int32(ref.At(x, y+2)), int32(ref.At(x, y+3)),
	)
	return clip255((s + 16) >> 5)
}

// halfOrQuarterH handles fracY==0 cases: frac==2 is the half-pel "b"
// sample; frac==1/3 average the integer sample with the half-pel sample
// ("a"/"c" positions per section 8.4.2.2.1).
func halfOrQuarterH(ref *picture.Plane, x, y, frac int) uint8 {
	if frac == 2 {
		return halfPelH(ref, x, y)
	}
	b := halfPelH(ref, x, y)
	var g uint8
	if frac == 1 {
		g = ref.At(x, y)
	} else {
		g = ref.At(x+1, y)
	}
	return uint8((int(g) + int(b) + 1) >> 1)
}

func halfOrQuarterV(ref *picture.Plane, x, y, frac int) uint8 {
	if frac == 2 {
		return halfPelV(ref, x, y)
	}
	h := halfPelV(ref, x, y)
	var g uint8
	if frac == 1 {
		g = ref.At(x, y)
	} else {
		g = ref.At(x, y+1)
	}
	return uint8((int(g) + int(h) + 1) >> 1)
}

// quarterDiagonal handles the remaining positions of figure 8-4 where both
// fracX and fracY are non-zero (section 8.4.2.2.1). With b/s the
// horizontal half-pel samples of rows y/y+1, h/m the vertical half-pel
// samples of columns x/x+1 and j the centre half-pel sample: j is
// returned as is; f, q average j with b or s; i, k average j with h or m;
// e, g, p, r average the nearer of b/s with the nearer of h/m.
func quarterDiagonal(ref *picture.Plane, x, y, fracX, fracY int) uint8 {
	bs := halfPelH(ref, x, y+stepY(fracY))
	hm := halfPelV(ref, x+stepX(fracX), y)
	if fracX != 2 && fracY != 2 {
		return uint8((int(bs) + int(hm) + 1) >> 1)
	}

	// Centre "j" position, computed across the full 2-D 6-tap filter
	// (section 8.4.2.2.1, j).
	var col [6]int32
	for i := -2; i <= 3; i++ {
		col[i+2] = tap6(
			int32(ref.At(x-2, y+i)), int32(ref.At(x-1, y+i)), int32(ref.At(x, y+i)),
			int32(ref.At(x+1, y+i)), int32(ref.At(x+2, y+i)), int32(ref.At(x+3, y+i)),
		)
	}
	s := tap6(col[0], col[1], col[2], col[3], col[4], col[5])
	j := clip255((s + 512) >> 10)
	switch {
	case fracX == 2 && fracY == 2:
		return j
	case fracX == 2:
		return uint8((int(j) + int(bs) + 1) >> 1)
	default:
		return uint8((int(j) + int(hm) + 1) >> 1)
	}
}

func stepX(frac int) int {
	if frac == 3 {
		return 1
	}
	return 0
}

func stepY(frac int) int {
	if frac == 3 {
		return 1
	}
	return 0
}

// ChromaBlock computes a w x h chroma prediction block using bilinear
// eighth-sample interpolation, per section 8.4.2.2.2. mvX/mvY are in
// quarter-luma-sample units as stored in the bitstream; for 4:2:0 chroma
// this corresponds directly to eighth-chroma-sample units without further
// scaling.
func ChromaBlock(ref *picture.Plane, x, y, w, h int, mvX, mvY int) []uint8 {
	out := make([]uint8, w*h)
	fullX, fracX := x+mvX>>3, mvX&7
	fullY, fracY := y+mvY>>3, mvY&7

	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			a := int32(ref.At(fullX+i, fullY+j))
			b := int32(ref.At(fullX+i+1, fullY+j))
			c := int32(ref.At(fullX+i, fullY+j+1))
			d := int32(ref.At(fullX+i+1, fullY+j+1))
			sum := (int32(8-fracX)*int32(8-fracY)*a +
				int32(fracX)*int32(8-fracY)*b +
				int32(8-fracX)*int32(fracY)*c +
				int32(fracX)*int32(fracY)*d + 32) >> 6
			out[j*w+i] = clip255(sum)
		}
	}
	return out
}
