package cavlc

// totalZerosKey indexes table 9-7/9-8/9-9 by (TotalCoeff, TotalZeros).
type totalZerosKey struct {
	TotalCoeff, TotalZeros int
}

// totalZeros4x4 holds table 9-7/9-8 for 4x4 luma and chroma AC blocks
// (maxNumCoeff == 16), keyed by (TotalCoeff, TotalZeros).
var totalZeros4x4 map[totalZerosKey]vlcCode

// totalZerosChromaDC420 holds table 9-9(a) for a 2x2 chroma DC block
// (maxNumCoeff == 4).
var totalZerosChromaDC420 map[totalZerosKey]vlcCode

// totalZerosChromaDC422 holds table 9-9(b) for a 2x4 chroma DC block
// (maxNumCoeff == 8).
var totalZerosChromaDC422 map[totalZerosKey]vlcCode

func init() {
	totalZeros4x4 = map[totalZerosKey]vlcCode{
		{1, 0}: {0b1, 1}, {1, 1}: {0b011, 3}, {1, 2}: {0b010, 3}, {1, 3}: {0b0011, 4},
		{1, 4}: {0b0010, 4}, {1, 5}: {0b00011, 5}, {1, 6}: {0b00010, 5}, {1, 7}: {0b000011, 6},
		{1, 8}: {0b000010, 6}, {1, 9}: {0b0000011, 7}, {1, 10}: {0b0000010, 7}, {1, 11}: {0b00000011, 8},
		{1, 12}: {0b00000010, 8}, {1, 13}: {0b000000011, 9}, {1, 14}: {0b000000010, 9}, {1, 15}: {0b000000001, 9},
		{2, 0}: {0b111, 3}, {2, 1}: {0b110, 3}, {2, 2}: {0b101, 3}, {2, 3}: {0b100, 3},
		{2, 4}: {0b011, 3}, {2, 5}: {0b0101, 4}, {2, 6}: {0b0100, 4}, {2, 7}: {0b0011, 4},
		{2, 8}: {0b0010, 4}, {2, 9}: {0b00011, 5}, {2, 10}: {0b00010, 5}, {2, 11}: {0b000011, 6},
		{2, 12}: {0b000010, 6}, {2, 13}: {0b000001, 6}, {2, 14}: {0b000000, 6},
		{3, 0}: {0b0101, 4}, {3, 1}: {0b111, 3}, {3, 2}: {0b110, 3}, {3, 3}: {0b101, 3},
		{3, 4}: {0b0100, 4}, {3, 5}: {0b0011, 4}, {3, 6}: {0b100, 3}, {3, 7}: {0b011, 3},
		{3, 8}: {0b0010, 4}, {3, 9}: {0b00011, 5}, {3, 10}: {0b00010, 5}, {3, 11}: {0b000001, 6},
		{3, 12}: {0b00001, 5}, {3, 13}: {0b000000, 6},
		{4, 0}: {0b00011, 5}, {4, 1}: {0b111, 3}, {4, 2}: {0b0101, 4}, {4, 3}: {0b0100, 4},
		{4, 4}: {0b110, 3}, {4, 5}: {0b101, 3}, {4, 6}: {0b100, 3}, {4, 7}: {0b0011, 4},
		{4, 8}: {0b011, 3}, {4, 9}: {0b0010, 4}, {4, 10}: {0b00010, 5}, {4, 11}: {0b00001, 5},
		{4, 12}: {0b00000, 5},
		{5, 0}: {0b0101, 4}, {5, 1}: {0b0100, 4}, {5, 2}: {0b0011, 4}, {5, 3}: {0b111, 3},
		{5, 4}: {0b110, 3}, {5, 5}: {0b101, 3}, {5, 6}: {0b100, 3}, {5, 7}: {0b011, 3},
		{5, 8}: {0b0010, 4}, {5, 9}: {0b00001, 5}, {5, 10}: {0b0001, 4}, {5, 11}: {0b00000, 5},
		{6, 0}: {0b000001, 6}, {6, 1}: {0b00001, 5}, {6, 2}: {0b111, 3}, {6, 3}: {0b110, 3},
		{6, 4}: {0b101, 3}, {6, 5}: {0b100, 3}, {6, 6}: {0b011, 3}, {6, 7}: {0b010, 3},
		{6, 8}: {0b0001, 4}, {6, 9}: {0b001, 3}, {6, 10}: {0b000000, 6},
		{7, 0}: {0b000001, 6}, {7, 1}: {0b00001, 5}, {7, 2}: {0b101, 3}, {7, 3}: {0b100, 3},
		{7, 4}: {0b011, 3}, {7, 5}: {0b11, 2}, {7, 6}: {0b010, 3}, {7, 7}: {0b0001, 4},
		{7, 8}: {0b001, 3}, {7, 9}: {0b000000, 6},
		{8, 0}: {0b000001, 6}, {8, 1}: {0b0001, 4}, {8, 2}: {0b00001, 5}, {8, 3}: {0b011, 3},
		{8, 4}: {0b11, 2}, {8, 5}: {0b10, 2}, {8, 6}: {0b010, 3}, {8, 7}: {0b001, 3},
		{8, 8}: {0b000000, 6},
		{9, 0}: {0b000001, 6}, {9, 1}: {0b000000, 6}, {9, 2}: {0b0001, 4}, {9, 3}: {0b11, 2},
		{9, 4}: {0b10, 2}, {9, 5}: {0b001, 3}, {9, 6}: {0b01, 2}, {9, 7}: {0b00001, 5},
		{10, 0}: {0b00001, 5}, {10, 1}: {0b00000, 5}, {10, 2}: {0b001, 3}, {10, 3}: {0b11, 2},
		{10, 4}: {0b10, 2}, {10, 5}: {0b01, 2}, {10, 6}: {0b0001, 4},
		{11, 0}: {0b0000, 4}, {11, 1}: {0b0001, 4}, {11, 2}: {0b001, 3}, {11, 3}: {0b010, 3},
		{11, 4}: {0b1, 1}, {11, 5}: {0b011, 3},
		{12, 0}: {0b0000, 4}, {12, 1}: {0b0001, 4}, {12, 2}: {0b01, 2}, {12, 3}: {0b1, 1},
		{12, 4}: {0b001, 3},
		{13, 0}: {0b000, 3}, {13, 1}: {0b001, 3}, {13, 2}: {0b1, 1}, {13, 3}: {0b01, 2},
		{14, 0}: {0b00, 2}, {14, 1}: {0b01, 2}, {14, 2}: {0b1, 1},
		{15, 0}: {0b0, 1}, {15, 1}: {0b1, 1},
	}

	totalZerosChromaDC420 = map[totalZerosKey]vlcCode{
		{1, 0}: {0b1, 1}, {1, 1}: {0b01, 2}, {1, 2}: {0b001, 3}, {1, 3}: {0b000, 3},
		{2, 0}: {0b1, 1}, {2, 1}: {0b01, 2}, {2, 2}: {0b00, 2},
		{3, 0}: {0b1, 1}, {3, 1}: {0b0, 1},
	}

	totalZerosChromaDC422 = map[totalZerosKey]vlcCode{
		{1, 0}: {0b1, 1}, {1, 1}: {0b010, 3}, {1, 2}: {0b011, 3}, {1, 3}: {0b0010, 4},
		{1, 4}: {0b0011, 4}, {1, 5}: {0b0001, 4}, {1, 6}: {0b00001, 5}, {1, 7}: {0b00000, 5},
		{2, 0}: {0b000, 3}, {2, 1}: {0b01, 2}, {2, 2}: {0b001, 3}, {2, 3}: {0b100, 3},
		{2, 4}: {0b101, 3}, {2, 5}: {0b110, 3}, {2, 6}: {0b111, 3},
		{3, 0}: {0b000, 3}, {3, 1}: {0b001, 3}, {3, 2}: {0b01, 2}, {3, 3}: {0b10, 2},
		{3, 4}: {0b110, 3}, {3, 5}: {0b111, 3},
		{4, 0}: {0b110, 3}, {4, 1}: {0b00, 2}, {4, 2}: {0b01, 2}, {4, 3}: {0b10, 2},
		{4, 4}: {0b111, 3},
		{5, 0}: {0b00, 2}, {5, 1}: {0b01, 2}, {5, 2}: {0b10, 2}, {5, 3}: {0b11, 2},
		{6, 0}: {0b00, 2}, {6, 1}: {0b01, 2}, {6, 2}: {0b1, 1},
		{7, 0}: {0b0, 1}, {7, 1}: {0b1, 1},
	}
}

// TotalZeros returns the table 9-7/9-8/9-9 codeword for the given TotalCoeff,
// TotalZeros and maxNumCoeff (16 for 4x4 luma/chroma AC blocks, 4 for a
// ChromaArrayType==1 chroma DC block, 8 for ChromaArrayType==2).
func TotalZeros(totalCoeff, totalZeros, maxNumCoeff int) (vlcCode, bool) {
	key := totalZerosKey{totalCoeff, totalZeros}
	switch maxNumCoeff {
	case 4:
		v, ok := totalZerosChromaDC420[key]
		return v, ok
	case 8:
		v, ok := totalZerosChromaDC422[key]
		return v, ok
	default:
		v, ok := totalZeros4x4[key]
		return v, ok
	}
}

// runBeforeKey indexes table 9-10 by (zerosLeft, run_before); the table's
// ">6" column is stored under zerosLeft 7.
type runBeforeKey struct {
	ZerosLeft, Run int
}

var runBeforeTable map[runBeforeKey]vlcCode

func init() {
	runBeforeTable = map[runBeforeKey]vlcCode{
		{1, 0}: {0b1, 1}, {1, 1}: {0b0, 1},
		{2, 0}: {0b1, 1}, {2, 1}: {0b01, 2}, {2, 2}: {0b00, 2},
		{3, 0}: {0b11, 2}, {3, 1}: {0b10, 2}, {3, 2}: {0b01, 2}, {3, 3}: {0b00, 2},
		{4, 0}: {0b11, 2}, {4, 1}: {0b10, 2}, {4, 2}: {0b01, 2}, {4, 3}: {0b001, 3}, {4, 4}: {0b000, 3},
		{5, 0}: {0b11, 2}, {5, 1}: {0b10, 2}, {5, 2}: {0b011, 3}, {5, 3}: {0b010, 3}, {5, 4}: {0b001, 3}, {5, 5}: {0b000, 3},
		{6, 0}: {0b11, 2}, {6, 1}: {0b000, 3}, {6, 2}: {0b001, 3}, {6, 3}: {0b011, 3}, {6, 4}: {0b010, 3}, {6, 5}: {0b101, 3}, {6, 6}: {0b100, 3},
		{7, 0}: {0b111, 3}, {7, 1}: {0b110, 3}, {7, 2}: {0b101, 3}, {7, 3}: {0b100, 3}, {7, 4}: {0b011, 3}, {7, 5}: {0b010, 3}, {7, 6}: {0b001, 3}, {7, 7}: {0b0001, 4},
		{8, 0}: {0b111, 3}, {8, 1}: {0b110, 3}, {8, 2}: {0b101, 3}, {8, 3}: {0b100, 3}, {8, 4}: {0b011, 3}, {8, 5}: {0b010, 3}, {8, 6}: {0b0001, 4}, {8, 7}: {0b00001, 5}, {8, 8}: {0b00000, 5},
		{9, 0}: {0b111, 3}, {9, 1}: {0b110, 3}, {9, 2}: {0b101, 3}, {9, 3}: {0b100, 3}, {9, 4}: {0b011, 3}, {9, 5}: {0b0001, 4}, {9, 6}: {0b00001, 5}, {9, 7}: {0b000001, 6}, {9, 8}: {0b000001, 6}, {9, 9}: {0b000000, 6},
		{10, 0}: {0b111, 3}, {10, 1}: {0b110, 3}, {10, 2}: {0b101, 3}, {10, 3}: {0b100, 3}, {10, 4}: {0b0001, 4}, {10, 5}: {0b00001, 5}, {10, 6}: {0b000001, 6}, {10, 7}: {0b0000001, 7}, {10, 8}: {0b00000001, 8}, {10, 9}: {0b000000001, 9}, {10, 10}: {0b0000000001, 10},
	}
	// RunBefore looks up every zerosLeft above 6 under zerosLeft 7 (runs 0
	// to 6) or computes the code directly (runs of 7 and more); the entries
	// keyed by zerosLeft 8 to 10 are not consulted.
}

// RunBefore returns the table 9-10 codeword for run_before given the number
// of zeros left to assign. zerosLeft greater than 6 uses the shared ">6"
// column.
func RunBefore(zerosLeft, run int) (vlcCode, bool) {
	if zerosLeft > 6 {
		if run >= 7 {
			// run_before 7 and above in the ">6" column is run-4 zero bits
			// followed by a single one bit (0001 for 7, 00001 for 8, ...).
			return vlcCode{1, uint8(run - 3)}, true
		}
		v, ok := runBeforeTable[runBeforeKey{7, run}]
		return v, ok
	}
	v, ok := runBeforeTable[runBeforeKey{zerosLeft, run}]
	return v, ok
}
