/*
DESCRIPTION
  intra16.go implements the four Intra_16x16 luma prediction modes and the
  four intra chroma prediction modes of sections 8.3.3 and 8.3.4, sharing
  the Vertical/Horizontal/DC/Plane structure between the two block sizes
  since the specification defines them identically up to block dimension.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package intra

// Intra16x16Mode enumerates the four Intra_16x16 prediction modes of
// table 7-11.
type Intra16x16Mode int

const (
	I16Vertical Intra16x16Mode = iota
	I16Horizontal
	I16DC
	I16Plane
)

// ChromaMode enumerates the four intra chroma prediction modes of table
// 8-7. They are numbered differently from Intra16x16Mode (DC is mode 0
// for chroma), and kept as a distinct type to avoid cross-use.
type ChromaMode int

const (
	ChromaDC ChromaMode = iota
	ChromaHorizontal
	ChromaVertical
	ChromaPlane
)

// BlockNeighbors holds the reconstructed top row and left column used by
// both Intra_16x16 and chroma prediction (sized to the block's dimension,
// 16 for luma, 8 for chroma).
type BlockNeighbors struct {
	Top, Left       []uint8
	TopLeft         uint8
	HaveTop, HaveLeft bool
}

// predictDC fills an n x n block with the DC value averaged from
// available top/left neighbours, defaulting to 128 when neither is
// available, per sections 8.3.3.1/8.3.4.1.
func predictDC(n int, nb BlockNeighbors) []uint8 {
	out := make([]uint8, n*n)
	var sum, cnt int
	if nb.HaveTop {
		for _, v := range nb.Top {
			sum += int(v)
		}
		cnt += n
	}
	if nb.HaveLeft {
		for _, v := range nb.Left {
			sum += int(v)
		}
		cnt += n
	}
	var dc uint8
	switch {
	case cnt == 0:
		dc = 128
	default:
		dc = uint8((sum + cnt/2) / cnt)
	}
	for i := range out {
		out[i] = dc
	}
	return out
}

func predictVertical(n int, top []uint8) []uint8 {
	out := make([]uint8, n*n)
	for y := 0; y < n; y++ {
		copy(out[y*n:y*n+n], top)
	}
	return out
}

func predictHorizontal(n int, left []uint8) []uint8 {
	out := make([]uint8, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = left[y]
		}
	}
	return out
}

// predictPlane implements the Intra_16x16/chroma Plane mode of sections
// 8.3.3.4 and 8.3.4.4: a linear ramp fit through the neighbour samples
// using the H/V gradient sums defined there.
func predictPlane(n int, nb BlockNeighbors) []uint8 {
	half := n / 2
	// Index -1 of the top row and left column is the top-left sample.
	top := func(i int) int {
		if i < 0 {
			return int(nb.TopLeft)
		}
		return int(nb.Top[i])
	}
	left := func(i int) int {
		if i < 0 {
			return int(nb.TopLeft)
		}
		return int(nb.Left[i])
	}
	var h, v int
	for x := 0; x < half; x++ {
		wx := x + 1
		h += wx * (top(half+x) - top(half-2-x))
	}
	for y := 0; y < half; y++ {
		wy := y + 1
		v += wy * (left(half+y) - left(half-2-y))
	}

	var mulH, mulV, shift int
	if n == 16 {
		mulH, mulV, shift = 5, 5, 6
	} else {
		mulH, mulV, shift = 34, 34, 6
	}

	b := (mulH*h + 32) >> shift
	c := (mulV*v + 32) >> shift
	a := 16 * (int(nb.Top[n-1]) + int(nb.Left[n-1]))

	out := make([]uint8, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			val := (a + b*(x-(half-1)) + c*(y-(half-1)) + 16) >> 5
			out[y*n+x] = clip255(val)
		}
	}
	return out
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

// Predict16x16 computes the predicted 16x16 luma block for the given mode.
func Predict16x16(mode Intra16x16Mode, nb BlockNeighbors) []uint8 {
	switch mode {
	case I16Vertical:
		return predictVertical(16, nb.Top)
	case I16Horizontal:
		return predictHorizontal(16, nb.Left)
	case I16Plane:
		return predictPlane(16, nb)
	default:
		return predictDC(16, nb)
	}
}

// PredictChroma computes one 8x8 chroma component's predicted block for
// the given mode.
func PredictChroma(mode ChromaMode, nb BlockNeighbors) []uint8 {
	switch mode {
	case ChromaHorizontal:
		return predictHorizontal(8, nb.Left)
	case ChromaVertical:
		return predictVertical(8, nb.Top)
	case ChromaPlane:
		return predictPlane(8, nb)
	default:
		return predictDC(8, nb)
	}
}
