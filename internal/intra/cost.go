/*
DESCRIPTION
  cost.go provides the sum-of-absolute-transformed-differences (SATD) cost
  function used to choose among intra prediction modes, and the Lagrangian
  combination with the mode's signalling bit cost, following the rate-
  distortion mode decision style of the original encoder (AVCEncoder.cpp /
  intra_est.cpp) referenced in SPEC_FULL.md's supplemented-features
  section, expressed here as plain Go rather than translated C++.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package intra

// SATD4x4 computes the sum of absolute values of the Hadamard-transformed
// difference between pred and src (both 16 samples, row-major 4x4),
// divided by 4 with rounding ((sum+2)>>2), a cheap approximation to transform-domain rate-distortion cost that
// avoids a full quantize/entropy-code trial per candidate mode.
func SATD4x4(src, pred [16]uint8) int {
	var diff [16]int32
	for i := range diff {
		diff[i] = int32(src[i]) - int32(pred[i])
	}
	h := hadamard4x4Flat(diff)
	var sum int
	for _, v := range h {
		if v < 0 {
			sum -= int(v)
		} else {
			sum += int(v)
		}
	}
	return (sum + 2) >> 2
}

// SATD computes SATD over an n x n block (n a multiple of 4) by summing
// the per-4x4-subblock SATD.
func SATD(n int, src, pred []uint8) int {
	var total int
	for by := 0; by < n; by += 4 {
		for bx := 0; bx < n; bx += 4 {
			var s, p [16]uint8
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					s[y*4+x] = src[(by+y)*n+bx+x]
					p[y*4+x] = pred[(by+y)*n+bx+x]
				}
			}
			total += SATD4x4(s, p)
		}
	}
	return total
}

func hadamard4x4Flat(in [16]int32) [16]int32 {
	var tmp, out [16]int32
	for i := 0; i < 4; i++ {
		s0, s1, s2, s3 := in[i*4+0], in[i*4+1], in[i*4+2], in[i*4+3]
		a0, a1 := s0+s2, s0-s2
		a2, a3 := s1-s3, s1+s3
		tmp[i*4+0] = a0 + a3
		tmp[i*4+1] = a1 + a2
		tmp[i*4+2] = a1 - a2
		tmp[i*4+3] = a0 - a3
	}
	for i := 0; i < 4; i++ {
		s0, s1, s2, s3 := tmp[0*4+i], tmp[1*4+i], tmp[2*4+i], tmp[3*4+i]
		a0, a1 := s0+s2, s0-s2
		a2, a3 := s1-s3, s1+s3
		out[0*4+i] = a0 + a3
		out[1*4+i] = a1 + a2
		out[2*4+i] = a1 - a2
		out[3*4+i] = a0 - a3
	}
	return out
}

// RDCost combines a SATD distortion estimate with a mode's bit cost under
// Lagrangian multiplier lambda, the standard J = D + lambda*R mode
// decision criterion.
func RDCost(distortion, bits int, lambda float64) float64 {
	return float64(distortion) + lambda*float64(bits)
}
