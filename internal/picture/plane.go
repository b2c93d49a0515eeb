/*
DESCRIPTION
  plane.go provides the sample-plane storage used for luma and chroma
  planes of a picture, including the padded-border representation the
  motion compensation and estimation stages read out-of-frame samples
  from. The padding-by-replication scheme follows section 8.4.2.2.1 of the
  specifications (reference picture edge extension).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package picture provides the decoded/reconstructed picture buffer and
// reference picture store (DPB) the encoder operates on.
package picture

// PadSize is the number of extra samples replicated on each edge of a
// reference plane, sized to cover the 6-tap luma interpolation filter's
// reach (2 samples either side) plus slack for motion vectors that search
// slightly beyond the padded border.
const PadSize = 32

// Plane is a single padded 2-D sample plane. Stride accounts for the left
// and right padding; (0,0) in sample-space maps to index
// (PadSize*Stride + PadSize) in Data.
type Plane struct {
	Data          []uint8
	Width, Height int
	Stride        int
}

// NewPlane allocates a plane of the given unpadded dimensions, with
// PadSize samples of border on every side.
func NewPlane(width, height int) *Plane {
	stride := width + 2*PadSize
	return &Plane{
		Data:   make([]uint8, stride*(height+2*PadSize)),
		Width:  width,
		Height: height,
		Stride: stride,
	}
}

// At returns the sample at (x, y), where x and y may range from -PadSize
// to Width/Height+PadSize-1 once ExtendBorders has been called.
func (p *Plane) At(x, y int) uint8 {
	return p.Data[(y+PadSize)*p.Stride+(x+PadSize)]
}

// Set writes the sample at (x, y), x and y in [0, Width) and [0, Height).
func (p *Plane) Set(x, y int, v uint8) {
	p.Data[(y+PadSize)*p.Stride+(x+PadSize)] = v
}

// Row returns a slice covering one full row of unpadded samples starting
// at sample x=0.
func (p *Plane) Row(y int) []uint8 {
	off := (y + PadSize) * p.Stride + PadSize
	return p.Data[off : off+p.Width]
}

// ExtendBorders replicates edge samples into the padding region, per the
// reference picture edge extension of section 8.4.2.2.1, so that motion
// compensation can read samples slightly outside the frame without
// special-casing every block near a picture edge.
func (p *Plane) ExtendBorders() {
	// Extend left and right on each real row.
	for y := 0; y < p.Height; y++ {
		rowOff := (y + PadSize) * p.Stride
		left := p.Data[rowOff+PadSize]
		right := p.Data[rowOff+PadSize+p.Width-1]
		for x := 0; x < PadSize; x++ {
			p.Data[rowOff+x] = left
			p.Data[rowOff+PadSize+p.Width+x] = right
		}
	}
	// Extend top and bottom using the now-fully-extended rows.
	topRow := p.Data[PadSize*p.Stride : PadSize*p.Stride+p.Stride]
	bottomRow := p.Data[(PadSize+p.Height-1)*p.Stride : (PadSize+p.Height-1)*p.Stride+p.Stride]
	for y := 0; y < PadSize; y++ {
		copy(p.Data[y*p.Stride:(y+1)*p.Stride], topRow)
		off := (PadSize + p.Height + y) * p.Stride
		copy(p.Data[off:off+p.Stride], bottomRow)
	}
}

// CopyFrom copies sample values from src into the unpadded region of p.
// Dimensions must match.
func (p *Plane) CopyFrom(src *Plane) {
	for y := 0; y < p.Height; y++ {
		copy(p.Row(y), src.Row(y))
	}
}
