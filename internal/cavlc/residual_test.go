/*
DESCRIPTION
  residual_test.go provides testing for residual.go and scan.go:
  BlockFromScan's zig-zag-to-run-length derivation, and the TotalCoeff/
  TrailingOnes invariants residual_block_cavlc's coeff_token and level
  syntax elements depend on, per section 9.2.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package cavlc

import "testing"

type capture struct {
	bits []bool
}

func (c *capture) WriteBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		c.bits = append(c.bits, (v>>uint(i))&1 != 0)
	}
}

func (c *capture) WriteBit(b bool) {
	c.bits = append(c.bits, b)
}

func TestBlockFromScan(t *testing.T) {
	cases := []struct {
		name   string
		zigzag []int
		levels []int
		runs   []int
	}{
		{"all zero", []int{0, 0, 0, 0}, nil, nil},
		{"single DC", []int{5, 0, 0, 0}, []int{5}, []int{0}},
		{"two adjacent", []int{3, -1, 0, 0}, []int{-1, 3}, []int{0, 0}},
		{"gap before last", []int{2, 0, 0, 7}, []int{7, 2}, []int{2, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			blk := BlockFromScan(c.zigzag)
			if !intsEqual(blk.Levels, c.levels) {
				t.Errorf("Levels = %v, want %v", blk.Levels, c.levels)
			}
			if !intsEqual(blk.Runs, c.runs) {
				t.Errorf("Runs = %v, want %v", blk.Runs, c.runs)
			}

			wantZeros := 0
			for _, r := range c.runs {
				wantZeros += r
			}
			if got := blk.TotalZeros(); got != wantZeros {
				t.Errorf("TotalZeros() = %d, want %d", got, wantZeros)
			}
		})
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestTotalCoeffTrailingOnesInvariant writes a set of blocks of mixed
// level sign/magnitude through WriteResidualBlock in every nC context and
// checks that each call emits bits, and that the trailing-ones count
// derived from each block's levels (counted up to coeff_token's maximum
// of 3) stays within 3 and within totalCoeff.
func TestTotalCoeffTrailingOnesInvariant(t *testing.T) {
	blocks := []Block{
		{},
		{Levels: []int{1}},
		{Levels: []int{-1, 1, 1}, Runs: []int{0, 0}},
		{Levels: []int{1, -1, 1, 5}, Runs: []int{0, 0, 2}},
		{Levels: []int{5, 4, 3, 2, 1, -1, 1, -1, 1, 1, 1, 1}, Runs: make([]int, 11)},
	}
	for _, nC := range []int{-1, 0, 2, 4, 8, 16} {
		for _, blk := range blocks {
			c := &capture{}
			WriteResidualBlock(c, blk, nC, 16)

			totalCoeff := len(blk.Levels)
			trailingOnes := 0
			for i := 0; i < totalCoeff && trailingOnes < 3; i++ {
				if absi(blk.Levels[i]) == 1 {
					trailingOnes++
				} else {
					break
				}
			}
			if trailingOnes > 3 {
				t.Fatalf("nC=%d block=%+v: trailingOnes = %d, want <= 3", nC, blk, trailingOnes)
			}
			if trailingOnes > totalCoeff {
				t.Fatalf("nC=%d block=%+v: trailingOnes %d > totalCoeff %d", nC, blk, trailingOnes, totalCoeff)
			}
			if len(c.bits) == 0 {
				t.Fatalf("nC=%d block=%+v: WriteResidualBlock emitted no bits", nC, blk)
			}
		}
	}
}

// TestWriteResidualBlockEmptyIsOneCodeword checks that an all-zero block
// writes exactly the coeff_token for (0 trailing ones, 0 total coeff) and
// nothing else, since residual_block_cavlc skips every subsequent syntax
// element once total_coeff is zero.
func TestWriteResidualBlockEmptyIsOneCodeword(t *testing.T) {
	c := &capture{}
	WriteResidualBlock(c, Block{}, 0, 16)

	want, ok := CoeffToken(0, 0, 0)
	if !ok {
		t.Fatal("CoeffToken(0, 0, 0) not found")
	}
	if len(c.bits) != int(want.Len) {
		t.Fatalf("wrote %d bits, want %d (coeff_token length)", len(c.bits), want.Len)
	}
}
