/*
DESCRIPTION
  quant.go implements forward and inverse scalar quantization of the H.264
  4x4 transform coefficients, per section 8.5.9 and 8.5.12.1. The
  multiplicative quant_coef/dequant_coef table structure and the
  QuantizeBlock/DequantizeBlock naming follow the teacher pack's
  deepteams-webp internal/dsp/quantize.go, adapted from WebP's simple
  divide-based quantizer to H.264's per-QP%6 multiplier tables.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package transform

// quantCoef holds, for each of the 6 values of QP%6, the three distinct
// forward-quantization multipliers assigned to transform coefficient
// positions by table grouping: position (0,0),(0,2),(2,0),(2,2) use column
// 0; (1,1),(1,3),(3,1),(3,3) use column 1; everything else uses column 2.
var quantCoef = [6][3]int32{
	{13107, 5243, 8066},
	{11916, 4660, 7490},
	{10082, 4194, 6554},
	{9362, 3647, 5825},
	{8192, 3355, 5243},
	{7282, 2893, 4559},
}

// dequantCoef holds the corresponding inverse-quantization multipliers.
var dequantCoef = [6][3]int32{
	{10, 16, 13},
	{11, 18, 14},
	{13, 20, 16},
	{14, 23, 18},
	{16, 25, 20},
	{18, 29, 23},
}

// coefGroup classifies each of the 16 4x4 positions (row-major) into the
// 0/1/2 multiplier group used by quantCoef/dequantCoef.
var coefGroup = [16]int32{
	0, 2, 0, 2,
	2, 1, 2, 1,
	0, 2, 0, 2,
	2, 1, 2, 1,
}

// QuantizeBlock quantizes the 16 unnormalized forward-transform
// coefficients in blk at the given luma/chroma QP, per section 8.5.9
// (equation 8-262): the intermediate shift is qp/6 + 15, with qp%6
// selecting the multiplier column.
func QuantizeBlock(blk Block4x4, qp int) Block4x4 {
	col := qp % 6
	shift := uint(15 + qp/6)
	var out Block4x4
	for i, c := range blk {
		mult := quantCoef[col][coefGroup[i]]
		v := int64(c) * int64(mult)
		if v >= 0 {
			out[i] = int32((v + (1 << (shift - 1))) >> shift)
		} else {
			out[i] = -int32((-v + (1 << (shift - 1))) >> shift)
		}
	}
	return out
}

// DequantizeBlock scales quantized coefficients back up per section
// 8.5.12.1 (equation 8-313): for qp >= 24 the dequantCoef multiplier is
// shifted left by qp/6 - 4; for qp < 24 it is shifted right by 4 - qp/6
// with rounding.
func DequantizeBlock(blk Block4x4, qp int) Block4x4 {
	col := qp % 6
	shiftUp := qp/6 - 4
	var out Block4x4
	for i, c := range blk {
		mult := dequantCoef[col][coefGroup[i]]
		if shiftUp >= 0 {
			out[i] = c * mult << uint(shiftUp)
		} else {
			shift := uint(-shiftUp)
			round := int32(1) << (shift - 1)
			out[i] = (c*mult + round) >> shift
		}
	}
	return out
}

// QuantizeDC quantizes a single Hadamard-transformed DC coefficient
// (luma Intra_16x16 DC or chroma DC), per the DC-specific scaling of
// section 8.5.10/8.5.11 (an extra factor of 2 relative to an AC
// coefficient, folded into the shift here).
func QuantizeDC(c int32, qp int) int32 {
	col := qp % 6
	shift := uint(16 + qp/6)
	mult := quantCoef[col][0]
	v := int64(c) * int64(mult)
	if v >= 0 {
		return int32((v + (1 << (shift - 1))) >> shift)
	}
	return -int32((-v + (1 << (shift - 1))) >> shift)
}

// DequantizeDC scales a quantized DC coefficient back up, the DC
// counterpart of DequantizeBlock.
func DequantizeDC(c int32, qp int) int32 {
	col := qp % 6
	mult := dequantCoef[col][0]
	shiftUp := qp/6 - 6
	if shiftUp >= 0 {
		return c * mult << uint(shiftUp)
	}
	shift := uint(-shiftUp)
	round := int32(1) << (shift - 1)
	return (c*mult + round) >> shift
}

// chromaQPTable implements table 8-15's non-linear mapping from qPI
// (luma QP plus chroma_qp_index_offset, clipped to [0,51]) to QPc, for
// qPI in [30,51]; below 30 QPc == qPI.
var chromaQPTable = [22]int{
	29, 30, 31, 32, 32, 33, 34, 34, 35, 35, 36,
	36, 37, 37, 37, 38, 38, 38, 39, 39, 39, 39,
}

// ChromaQP derives QPc (section 8.5.8) from the luma QP and the active
// PPS's chroma_qp_index_offset.
func ChromaQP(qpY, offset int) int {
	qPI := qpY + offset
	if qPI < 0 {
		qPI = 0
	}
	if qPI > 51 {
		qPI = 51
	}
	if qPI < 30 {
		return qPI
	}
	return chromaQPTable[qPI-30]
}

// ZigZag4x4 maps a 4x4 block's row-major index to its zig-zag scan
// position, per the scan order of figure 8-8 (frame macroblocks).
var ZigZag4x4 = [16]int{
	0, 1, 4, 8,
	5, 2, 3, 6,
	9, 12, 13, 10,
	7, 11, 14, 15,
}

// Scan reorders blk from row-major to zig-zag order.
func Scan(blk Block4x4) [16]int32 {
	var out [16]int32
	for raster, zz := range ZigZag4x4 {
		out[zz] = blk[raster]
	}
	return out
}

// InverseScan reorders a zig-zag ordered coefficient array back to
// row-major order.
func InverseScan(zz [16]int32) Block4x4 {
	var out Block4x4
	for raster, z := range ZigZag4x4 {
		out[raster] = zz[z]
	}
	return out
}
