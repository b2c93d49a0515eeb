/*
DESCRIPTION
  tables.go provides the CAVLC variable-length code tables used to write
  residual_block_cavlc: coeff_token (table 9-5), total_zeros (tables 9-7
  through 9-9) and run_before (table 9-10). The teacher's decoder builds an
  equivalent coeff_token map at init time from a CSV-embedded table (see
  formCoeffTokenMap in the original decoder); the encoder needs the reverse
  mapping; (TrailingOnes, TotalCoeff) -> codeword, so the tables here are
  expressed directly as vlcCode entries keyed the same way.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package cavlc

// vlcCode is a variable-length codeword: the low Len bits of Code, written
// most-significant-bit first.
type vlcCode struct {
	Code uint32
	Len  uint8
}

// nCColumn selects which column of table 9-5 applies, mirroring the
// decoder's coeffTokenMaps indexing.
type nCColumn int

const (
	nCCol0to2 nCColumn = iota // 0 <= nC < 2
	nCCol2to4                 // 2 <= nC < 4
	nCCol4to8                 // 4 <= nC < 8
	nCColGE8                  // nC >= 8, fixed length
	nCColChromaDC420          // nC == -1
	nCColChromaDC422          // nC == -2
)

// NCColumnFor maps a derived nC value (section 9.2.1) to its table 9-5
// column, with -1 and -2 reserved for the chroma DC special cases.
func NCColumnFor(nC int) nCColumn {
	switch {
	case nC == -1:
		return nCColChromaDC420
	case nC == -2:
		return nCColChromaDC422
	case nC < 2:
		return nCCol0to2
	case nC < 4:
		return nCCol2to4
	case nC < 8:
		return nCCol4to8
	default:
		return nCColGE8
	}
}

// coeffTokenKey indexes a coeff_token table by (TrailingOnes, TotalCoeff).
type coeffTokenKey struct {
	T1, TC int
}

// coeffTokenTables holds table 9-5, one map per nC column, keyed by
// (TrailingOnes, TotalCoeff).
var coeffTokenTables [6]map[coeffTokenKey]vlcCode

func init() {
	coeffTokenTables[nCCol0to2] = map[coeffTokenKey]vlcCode{
		{0, 0}: {0b1, 1},
		{0, 1}: {0b000101, 6}, {1, 1}: {0b01, 2},
		{0, 2}: {0b00000111, 8}, {1, 2}: {0b000100, 6}, {2, 2}: {0b001, 3},
		{0, 3}: {0b000000111, 9}, {1, 3}: {0b00000110, 8}, {2, 3}: {0b0000101, 7}, {3, 3}: {0b00011, 5},
		{0, 4}: {0b0000000111, 10}, {1, 4}: {0b000000110, 9}, {2, 4}: {0b00000101, 8}, {3, 4}: {0b000011, 6},
		{0, 5}: {0b00000000111, 11}, {1, 5}: {0b0000000110, 10}, {2, 5}: {0b000000101, 9}, {3, 5}: {0b0000100, 7},
		{0, 6}: {0b0000000001111, 13}, {1, 6}: {0b00000000110, 11}, {2, 6}: {0b0000000101, 10}, {3, 6}: {0b00000100, 8},
		{0, 7}: {0b0000000001011, 13}, {1, 7}: {0b0000000001110, 13}, {2, 7}: {0b00000000101, 11}, {3, 7}: {0b000000100, 9},
		{0, 8}: {0b0000000001000, 13}, {1, 8}: {0b0000000001010, 13}, {2, 8}: {0b0000000001101, 13}, {3, 8}: {0b0000000100, 10},
		{0, 9}: {0b00000000001111, 14}, {1, 9}: {0b00000000001110, 14}, {2, 9}: {0b0000000001001, 13}, {3, 9}: {0b00000000100, 11},
		{0, 10}: {0b00000000001011, 14}, {1, 10}: {0b00000000001010, 14}, {2, 10}: {0b00000000001101, 14}, {3, 10}: {0b0000000001100, 13},
		{0, 11}: {0b000000000001111, 15}, {1, 11}: {0b000000000001110, 15}, {2, 11}: {0b00000000001001, 14}, {3, 11}: {0b00000000001100, 14},
		{0, 12}: {0b000000000001011, 15}, {1, 12}: {0b000000000001010, 15}, {2, 12}: {0b000000000001101, 15}, {3, 12}: {0b00000000001000, 14},
		{0, 13}: {0b0000000000001111, 16}, {1, 13}: {0b000000000000001, 15}, {2, 13}: {0b000000000001001, 15}, {3, 13}: {0b000000000001100, 15},
		{0, 14}: {0b0000000000001011, 16}, {1, 14}: {0b0000000000001110, 16}, {2, 14}: {0b0000000000001101, 16}, {3, 14}: {0b000000000001000, 15},
		{0, 15}: {0b0000000000000111, 16}, {1, 15}: {0b0000000000001010, 16}, {2, 15}: {0b0000000000001001, 16}, {3, 15}: {0b0000000000001100, 16},
		{0, 16}: {0b0000000000000100, 16}, {1, 16}: {0b0000000000000110, 16}, {2, 16}: {0b0000000000000101, 16}, {3, 16}: {0b0000000000001000, 16},
	}
	coeffTokenTables[nCCol2to4] = map[coeffTokenKey]vlcCode{
		{0, 0}: {0b11, 2},
		{0, 1}: {0b001011, 6}, {1, 1}: {0b10, 2},
		{0, 2}: {0b000111, 6}, {1, 2}: {0b00111, 5}, {2, 2}: {0b011, 3},
		{0, 3}: {0b0000111, 7}, {1, 3}: {0b001010, 6}, {2, 3}: {0b001001, 6}, {3, 3}: {0b0101, 4},
		{0, 4}: {0b00000111, 8}, {1, 4}: {0b000110, 6}, {2, 4}: {0b000101, 6}, {3, 4}: {0b0100, 4},
		{0, 5}: {0b00000100, 8}, {1, 5}: {0b0000110, 7}, {2, 5}: {0b0000101, 7}, {3, 5}: {0b00110, 5},
		{0, 6}: {0b000000111, 9}, {1, 6}: {0b00000110, 8}, {2, 6}: {0b00000101, 8}, {3, 6}: {0b001000, 6},
		{0, 7}: {0b00000001111, 11}, {1, 7}: {0b000000110, 9}, {2, 7}: {0b000000101, 9}, {3, 7}: {0b000100, 6},
		{0, 8}: {0b00000001011, 11}, {1, 8}: {0b00000001110, 11}, {2, 8}: {0b00000001101, 11}, {3, 8}: {0b0000100, 7},
		{0, 9}: {0b000000001111, 12}, {1, 9}: {0b00000001010, 11}, {2, 9}: {0b00000001001, 11}, {3, 9}: {0b000000100, 9},
		{0, 10}: {0b000000001011, 12}, {1, 10}: {0b000000001110, 12}, {2, 10}: {0b000000001101, 12}, {3, 10}: {0b00000001100, 11},
		{0, 11}: {0b000000001000, 12}, {1, 11}: {0b000000001010, 12}, {2, 11}: {0b000000001001, 12}, {3, 11}: {0b00000001000, 11},
		{0, 12}: {0b0000000001111, 13}, {1, 12}: {0b0000000001110, 13}, {2, 12}: {0b0000000001101, 13}, {3, 12}: {0b000000001100, 12},
		{0, 13}: {0b0000000001011, 13}, {1, 13}: {0b0000000001010, 13}, {2, 13}: {0b0000000001001, 13}, {3, 13}: {0b0000000001100, 13},
		{0, 14}: {0b0000000000111, 13}, {1, 14}: {0b00000000001011, 14}, {2, 14}: {0b0000000000110, 13}, {3, 14}: {0b0000000001000, 13},
		{0, 15}: {0b00000000001001, 14}, {1, 15}: {0b00000000001000, 14}, {2, 15}: {0b00000000001010, 14}, {3, 15}: {0b0000000000001, 13},
		{0, 16}: {0b00000000000111, 14}, {1, 16}: {0b00000000000110, 14}, {2, 16}: {0b00000000000101, 14}, {3, 16}: {0b00000000000100, 14},
	}
	coeffTokenTables[nCCol4to8] = map[coeffTokenKey]vlcCode{
		{0, 0}: {0b1111, 4},
		{0, 1}: {0b001111, 6}, {1, 1}: {0b1110, 4},
		{0, 2}: {0b001011, 6}, {1, 2}: {0b01111, 5}, {2, 2}: {0b1101, 4},
		{0, 3}: {0b001000, 6}, {1, 3}: {0b01100, 5}, {2, 3}: {0b01110, 5}, {3, 3}: {0b1100, 4},
		{0, 4}: {0b0001111, 7}, {1, 4}: {0b01010, 5}, {2, 4}: {0b01011, 5}, {3, 4}: {0b1011, 4},
		{0, 5}: {0b0001011, 7}, {1, 5}: {0b01000, 5}, {2, 5}: {0b01001, 5}, {3, 5}: {0b1010, 4},
		{0, 6}: {0b0001001, 7}, {1, 6}: {0b001110, 6}, {2, 6}: {0b001101, 6}, {3, 6}: {0b1001, 4},
		{0, 7}: {0b0001000, 7}, {1, 7}: {0b001010, 6}, {2, 7}: {0b001001, 6}, {3, 7}: {0b1000, 4},
		{0, 8}: {0b00001111, 8}, {1, 8}: {0b0001110, 7}, {2, 8}: {0b0001101, 7}, {3, 8}: {0b01101, 5},
		{0, 9}: {0b00001011, 8}, {1, 9}: {0b00001110, 8}, {2, 9}: {0b0001010, 7}, {3, 9}: {0b001100, 6},
		{0, 10}: {0b000001111, 9}, {1, 10}: {0b00001010, 8}, {2, 10}: {0b00001101, 8}, {3, 10}: {0b0001100, 7},
		{0, 11}: {0b000001011, 9}, {1, 11}: {0b000001110, 9}, {2, 11}: {0b00001001, 8}, {3, 11}: {0b00001100, 8},
		{0, 12}: {0b000001000, 9}, {1, 12}: {0b000001010, 9}, {2, 12}: {0b000001101, 9}, {3, 12}: {0b00001000, 8},
		{0, 13}: {0b0000001101, 10}, {1, 13}: {0b000000111, 9}, {2, 13}: {0b000001001, 9}, {3, 13}: {0b000001100, 9},
		{0, 14}: {0b0000001001, 10}, {1, 14}: {0b0000001100, 10}, {2, 14}: {0b0000001011, 10}, {3, 14}: {0b0000001010, 10},
		{0, 15}: {0b0000000101, 10}, {1, 15}: {0b0000001000, 10}, {2, 15}: {0b0000000111, 10}, {3, 15}: {0b0000000110, 10},
		{0, 16}: {0b0000000001, 10}, {1, 16}: {0b0000000100, 10}, {2, 16}: {0b0000000011, 10}, {3, 16}: {0b0000000010, 10},
	}
	coeffTokenTables[nCColChromaDC420] = map[coeffTokenKey]vlcCode{
		{0, 0}: {0b01, 2},
		{0, 1}: {0b000111, 6}, {1, 1}: {0b1, 1},
		{0, 2}: {0b000100, 6}, {1, 2}: {0b000110, 6}, {2, 2}: {0b001, 3},
		{0, 3}: {0b000011, 6}, {1, 3}: {0b0000011, 7}, {2, 3}: {0b0000010, 7}, {3, 3}: {0b000101, 6},
		{0, 4}: {0b000010, 6}, {1, 4}: {0b00000011, 8}, {2, 4}: {0b00000010, 8}, {3, 4}: {0b0000000, 7},
	}
	coeffTokenTables[nCColChromaDC422] = map[coeffTokenKey]vlcCode{
		{0, 0}: {0b1, 1},
		{0, 1}: {0b0010111, 7}, {1, 1}: {0b001, 3},
		{0, 2}: {0b0010011, 7}, {1, 2}: {0b0010100, 7}, {2, 2}: {0b00011, 5},
		{0, 3}: {0b0010000, 7}, {1, 3}: {0b0010001, 7}, {2, 3}: {0b0010010, 7}, {3, 3}: {0b000101, 6},
		{0, 4}: {0b00010111, 8}, {1, 4}: {0b00010100, 8}, {2, 4}: {0b00010101, 8}, {3, 4}: {0b000100, 6},
		{0, 5}: {0b00010011, 8}, {1, 5}: {0b00010010, 8}, {2, 5}: {0b00010001, 8}, {3, 5}: {0b0000111, 7},
		{0, 6}: {0b000000111, 9}, {1, 6}: {0b00010000, 8}, {2, 6}: {0b0000100, 7}, {3, 6}: {0b0000110, 7},
		{0, 7}: {0b000000110, 9}, {1, 7}: {0b000000101, 9}, {2, 7}: {0b0000101, 7}, {3, 7}: {0b0000100, 7},
		{0, 8}: {0b0000000111, 10}, {1, 8}: {0b0000000110, 10}, {2, 8}: {0b0000000101, 10}, {3, 8}: {0b0000000100, 10},
	}
}

// flcCode returns the table 9-5 fixed-length code for nC >= 8, where
// coeff_token is always 6 bits: code = 3 for (0,0), otherwise
// (TotalCoeff-1)*4 + TrailingOnes.
func flcCode(trailingOnes, totalCoeff int) vlcCode {
	if totalCoeff == 0 {
		return vlcCode{0b000011, 6}
	}
	return vlcCode{uint32((totalCoeff-1)*4 + trailingOnes), 6}
}

// CoeffToken returns the table 9-5 codeword for the given TrailingOnes,
// TotalCoeff and derived nC value (section 9.2.1).
func CoeffToken(trailingOnes, totalCoeff, nC int) (vlcCode, bool) {
	col := NCColumnFor(nC)
	if col == nCColGE8 {
		return flcCode(trailingOnes, totalCoeff), true
	}
	v, ok := coeffTokenTables[col][coeffTokenKey{trailingOnes, totalCoeff}]
	return v, ok
}
