/*
DESCRIPTION
  residual.go implements residual_block_cavlc, the context-adaptive
  variable-length coding of a block of quantized transform coefficients, as
  specified in section 9.2 of the specifications. It is the write-direction
  counterpart of the teacher decoder's parseTotalCoeffAndTrailingOnes,
  readCoeffToken, parseLevelInformation and combineLevelRunInfo in cavlc.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package cavlc

import "github.com/ausocean/avcenc/internal/bitio"

// Writer is the minimal bit-sink interface residual.go needs from
// internal/bitio.Writer, kept narrow so tests can substitute a fake.
type Writer interface {
	WriteBits(v uint32, n int)
	WriteBit(b bool)
}

var _ Writer = (*bitio.Writer)(nil)

// BlockKind selects which of table 9-5's maxNumCoeff/nC conventions apply
// to the block being written.
type BlockKind int

const (
	// Luma4x4 is a 4x4 luma (or Intra16x16AC/DC treated as 4x4) residual block.
	Luma4x4 BlockKind = iota
	// ChromaDC420 is the 2x2 chroma DC block for ChromaArrayType 1.
	ChromaDC420
	// ChromaDC422 is the 2x4 chroma DC block for ChromaArrayType 2.
	ChromaDC422
)

func (k BlockKind) maxNumCoeff() int {
	switch k {
	case ChromaDC420:
		return 4
	case ChromaDC422:
		return 8
	default:
		return 16
	}
}

// Block is the fully-derived representation residual_block_cavlc needs:
// non-zero coefficient levels in reverse scan order (highest frequency
// first, matching the order the decoder's combineLevelRunInfo produces)
// plus the run of zeros preceding each one, as the forward transform/scan
// stage (internal/transform, internal/mb) computes them directly from the
// quantized coefficient array.
type Block struct {
	// Levels holds the non-zero coefficient levels, highest scan-index first.
	Levels []int
	// Runs[i] is the number of zero coefficients between Levels[i] and
	// Levels[i+1] (or, for i == len(Levels)-1, before the DC end of block).
	Runs []int
}

// TotalZeros sums Runs to yield total_zeros for the block.
func (b Block) TotalZeros() int {
	sum := 0
	for _, r := range b.Runs {
		sum += r
	}
	return sum
}

// WriteResidualBlock writes residual_block_cavlc for blk using the derived
// nC context value, following section 9.2.
func WriteResidualBlock(w Writer, blk Block, nC, maxNumCoeff int) {
	totalCoeff := len(blk.Levels)
	trailingOnes := 0
	for i := 0; i < totalCoeff && trailingOnes < 3; i++ {
		if absi(blk.Levels[i]) == 1 {
			trailingOnes++
		} else {
			break
		}
	}

	code, ok := CoeffToken(trailingOnes, totalCoeff, nC)
	if !ok {
		code, _ = CoeffToken(0, 0, nC)
	}
	w.WriteBits(code.Code, int(code.Len))

	if totalCoeff == 0 {
		return
	}

	suffixLength := 0
	if totalCoeff > 10 && trailingOnes < 3 {
		suffixLength = 1
	}

	for i := 0; i < totalCoeff; i++ {
		level := blk.Levels[i]
		if i < trailingOnes {
			// trailing_ones_sign_flag: 0 for +1, 1 for -1.
			w.WriteBit(level < 0)
			continue
		}
		writeLevel(w, level, i, trailingOnes, &suffixLength)
	}

	if totalCoeff < maxNumCoeff {
		totalZeros := blk.TotalZeros()
		tzCode, ok := TotalZeros(totalCoeff, totalZeros, maxNumCoeff)
		if ok {
			w.WriteBits(tzCode.Code, int(tzCode.Len))
		}
		zerosLeft := totalZeros
		for i := 0; i < totalCoeff-1 && zerosLeft > 0; i++ {
			run := blk.Runs[i]
			rbCode, ok := RunBefore(zerosLeft, run)
			if ok {
				w.WriteBits(rbCode.Code, int(rbCode.Len))
			}
			zerosLeft -= run
		}
	}
}

// writeLevel writes level_prefix, and level_suffix if required, for a
// single non-trailing-ones coefficient level, per section 9.2.2, updating
// suffixLength per the adaptation rule in 9.2.2.1.
func writeLevel(w Writer, level, idx, trailingOnes int, suffixLength *int) {
	levelCode := absToLevelCode(level, idx, trailingOnes)

	prefix := levelCode >> uint(*suffixLength)
	if *suffixLength == 0 && levelCode >= 14 {
		prefix = 14
		if levelCode >= 30 {
			prefix = 15
		}
	}

	writeUnary(w, prefix)

	switch {
	case prefix == 14 && *suffixLength == 0:
		w.WriteBits(uint32(levelCode-14), 4)
	case prefix >= 15:
		escape := levelCode - ((1 << uint(*suffixLength)) * mini(prefix, 15))
		size := prefix - 3
		if size < 0 {
			size = 0
		}
		w.WriteBits(uint32(escape), size)
	default:
		if *suffixLength > 0 {
			suffix := levelCode & ((1 << uint(*suffixLength)) - 1)
			w.WriteBits(uint32(suffix), *suffixLength)
		}
	}

	if *suffixLength == 0 {
		*suffixLength = 1
	}
	if absi(level) > (3 << uint(*suffixLength-1)) {
		*suffixLength++
	}
	if *suffixLength > 6 {
		*suffixLength = 6
	}
}

// absToLevelCode maps a signed coefficient level back to level_code, the
// inverse of the decoder's combineLevelRunInfo even/odd mapping, adjusted
// for the first level after trailing ones per 9.2.2.
func absToLevelCode(level, idx, trailingOnes int) int {
	var levelCode int
	if level > 0 {
		levelCode = 2*level - 2
	} else {
		levelCode = -2*level - 1
	}
	if idx == trailingOnes && trailingOnes < 3 {
		levelCode -= 2
	}
	return levelCode
}

func writeUnary(w Writer, prefix int) {
	for i := 0; i < prefix; i++ {
		w.WriteBit(false)
	}
	w.WriteBit(true)
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absi(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
