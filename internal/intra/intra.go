/*
DESCRIPTION
  intra.go implements the Intra_4x4, Intra_16x16 and intra chroma
  prediction modes of sections 8.3.1, 8.3.3 and 8.3.4, operating directly
  on reconstructed neighbour samples (left column, top row, and top-left
  corner) rather than a full picture buffer, so the macroblock encoder can
  call these predictors in raster mb order and supply whatever neighbour
  context is currently available.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package intra implements H.264 Baseline-profile intra prediction: the
// nine Intra_4x4 modes, the four Intra_16x16 modes, and the four intra
// chroma modes.
package intra

// Intra4x4Mode enumerates the nine 4x4 luma prediction modes of table 8-2.
type Intra4x4Mode int

const (
	I4Vertical Intra4x4Mode = iota
	I4Horizontal
	I4DC
	I4DiagonalDownLeft
	I4DiagonalDownRight
	I4VerticalRight
	I4HorizontalDown
	I4VerticalLeft
	I4HorizontalUp
)

// Neighbors4x4 holds the reconstructed samples available to predict a 4x4
// luma block: p[-1][-1..7] along the top (including the top-right 4
// samples used by diagonal modes) and p[-1..3][-1] along the left.
type Neighbors4x4 struct {
	Top      [8]uint8 // top row, samples (0..7, -1), i.e. including top-right.
	Left     [4]uint8 // left column, samples (-1, 0..3).
	TopLeft  uint8
	HaveTop, HaveLeft, HaveTopRight bool
}

// Predict4x4 computes the predicted 4x4 luma block for the given mode,
// per section 8.3.1.2. Output is row-major, 16 samples.
func Predict4x4(mode Intra4x4Mode, n Neighbors4x4) [16]uint8 {
	var out [16]uint8
	top := n.Top
	if !n.HaveTopRight {
		for i := 4; i < 8; i++ {
			top[i] = top[3]
		}
	}

	set := func(x, y int, v uint8) { out[y*4+x] = v }

	switch mode {
	case I4Vertical:
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				set(x, y, top[x])
			}
		}
	case I4Horizontal:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				set(x, y, n.Left[y])
			}
		}
	case I4DC:
		var sum, cnt int
		if n.HaveTop {
			for x := 0; x < 4; x++ {
				sum += int(top[x])
			}
			cnt += 4
		}
		if n.HaveLeft {
			for y := 0; y < 4; y++ {
				sum += int(n.Left[y])
			}
			cnt += 4
		}
		var dc uint8
		if cnt == 0 {
			dc = 128
		} else {
			dc = uint8((sum + cnt/2) / cnt)
		}
		for i := range out {
			out[i] = dc
		}
	case I4DiagonalDownLeft:
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				i := x + y
				if i == 6 {
					set(x, y, avg3(top[6], top[7], top[7]))
				} else {
					set(x, y, avg3(top[i], top[i+1], top[i+2]))
				}
			}
		}
	case I4DiagonalDownRight:
		left := func(i int) uint8 {
			if i < 0 {
				return n.TopLeft
			}
			return n.Left[i]
		}
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				switch {
				case x > y:
					i := x - y - 1
					var a, b, c uint8
					if i == 0 {
						a, b, c = n.TopLeft, top[0], top[1]
					} else {
						a, b, c = top[i-1], top[i], top[i+1]
					}
					set(x, y, avg3(a, b, c))
				case x < y:
					i := y - x - 1
					a, b, c := left(i-1), left(i), left(i+1)
					if i == 0 {
						a = n.TopLeft
					}
					set(x, y, avg3(a, b, c))
				default:
					set(x, y, avg3(top[0], n.TopLeft, n.Left[0]))
				}
			}
		}
	case I4VerticalRight:
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				zVR := 2*x - y
				switch {
				case zVR >= 0 && zVR%2 == 0:
					i := x - (y >> 1) - 1
					a, b := n.TopLeft, top[0]
					if i >= 0 {
						a, b = top[i], top[i+1]
					}
					set(x, y, avg2(a, b))
				case zVR >= 0:
					i := x - (y >> 1) - 1
					var a, b, c uint8
					switch {
					case i < 0:
						a, b, c = n.Left[0], n.TopLeft, top[0]
					case i == 0:
						a, b, c = n.TopLeft, top[0], top[1]
					default:
						a, b, c = top[i-1], top[i], top[i+1]
					}
					set(x, y, avg3(a, b, c))
				case zVR == -1:
					set(x, y, avg3(n.Left[0], n.TopLeft, top[0]))
				default:
					i := y - 2*x - 2
					a, b, c := nLeft(n, i-1), nLeft(n, i), nLeft(n, i+1)
					set(x, y, avg3(a, b, c))
				}
			}
		}
	case I4HorizontalDown:
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				zHD := 2*y - x
				switch {
				case zHD >= 0 && zHD%2 == 0:
					i := y - (x >> 1) - 1
					a, b := n.TopLeft, n.Left[0]
					if i >= 0 {
						a, b = nLeft(n, i), nLeft(n, i+1)
					}
					set(x, y, avg2(a, b))
				case zHD >= 0:
					i := y - (x >> 1) - 1
					var a, b, c uint8
					if i < 0 {
						a, b, c = top[0], n.TopLeft, n.Left[0]
					} else {
						a, b, c = nLeft(n, i-1), nLeft(n, i), nLeft(n, i+1)
						if i == 0 {
							a = n.TopLeft
						}
					}
					set(x, y, avg3(a, b, c))
				case zHD == -1:
					set(x, y, avg3(n.Left[0], n.TopLeft, top[0]))
				default:
					i := x - 2*y - 2
					a := n.TopLeft
					if i > 0 {
						a = top[i-1]
					}
					set(x, y, avg3(a, top[i], top[i+1]))
				}
			}
		}
	case I4VerticalLeft:
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				i := x + (y >> 1)
				if y%2 == 0 {
					set(x, y, avg2(top[i], top[i+1]))
				} else {
					set(x, y, avg3(top[i], top[i+1], top[i+2]))
				}
			}
		}
	case I4HorizontalUp:
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				zHU := x + 2*y
				switch {
				case zHU > 5:
					set(x, y, n.Left[3])
				case zHU == 5:
					set(x, y, avg3(n.Left[2], n.Left[3], n.Left[3]))
				case zHU%2 == 0:
					i := y + (x >> 1)
					set(x, y, avg2(n.Left[i], n.Left[i+1]))
				default:
					i := y + (x >> 1)
					set(x, y, avg3(n.Left[i], n.Left[i+1], n.Left[i+2]))
				}
			}
		}
	}
	return out
}

func nLeft(n Neighbors4x4, i int) uint8 {
	if i < 0 {
		return n.TopLeft
	}
	if i > 3 {
		return n.Left[3]
	}
	return n.Left[i]
}

func avg2(a, b uint8) uint8 {
	return uint8((int(a) + int(b) + 1) >> 1)
}

func avg3(a, b, c uint8) uint8 {
	return uint8((int(a) + 2*int(b) + int(c) + 2) >> 2)
}
