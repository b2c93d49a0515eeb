/*
DESCRIPTION
  cbp.go provides the coded_block_pattern mapped Exp-Golomb table, table 9-4
  of the specifications. The table as published maps a codeNum to a CBP
  value for each of the intra and inter prediction cases; the encoder needs
  the inverse of that relation, so the table below is inverted once at
  package init into a CBP -> codeNum lookup.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package cavlc

// codedBlockPatternTable holds data from table 9-4 in ITU-T H.264 (04/2017)
// for mapping a chromaArrayType, codeNum and macroblock prediction mode to a
// coded block pattern. Index as codedBlockPatternTable[i1][codeNum][i3]
// where i1 selects chromaArrayType (0: 1 or 2, 1: 0 or 3) and i3 selects
// intra (0) or inter (1) prediction mode.
var codedBlockPatternTable = [][][2]uint{
	// Table 9-4 (a) for ChromaArrayType = 1 or 2.
	{
		{47, 0}, {31, 16}, {15, 1}, {0, 2}, {23, 4}, {27, 8}, {29, 32}, {30, 3},
		{7, 5}, {11, 10}, {13, 12}, {14, 15}, {39, 47}, {43, 7}, {45, 11}, {46, 13},
		{16, 14}, {3, 6}, {5, 9}, {10, 31}, {12, 35}, {19, 37}, {21, 42}, {26, 44},
		{28, 33}, {35, 34}, {37, 36}, {42, 40}, {44, 39}, {1, 43}, {2, 45}, {4, 46},
		{8, 17}, {17, 18}, {18, 20}, {20, 24}, {24, 19}, {6, 21}, {9, 26}, {22, 28},
		{25, 23}, {32, 27}, {33, 29}, {34, 30}, {36, 22}, {40, 25}, {38, 38}, {41, 41},
	},
	// Table 9-4 (b) for ChromaArrayType = 0 or 3.
	{
		{15, 0}, {0, 1}, {7, 2}, {11, 4}, {13, 8}, {14, 3}, {3, 5}, {5, 10}, {10, 12},
		{12, 15}, {1, 7}, {2, 11}, {4, 13}, {8, 14}, {6, 6}, {9, 9},
	},
}

// cbpCodeNum[cat][predIdx][cbp] = codeNum, the inverse of codedBlockPatternTable.
var cbpCodeNum [2][2]map[uint]uint32

func init() {
	for cat := range codedBlockPatternTable {
		cbpCodeNum[cat][0] = make(map[uint]uint32)
		cbpCodeNum[cat][1] = make(map[uint]uint32)
		for codeNum, pair := range codedBlockPatternTable[cat] {
			cbpCodeNum[cat][0][pair[0]] = uint32(codeNum)
			cbpCodeNum[cat][1][pair[1]] = uint32(codeNum)
		}
	}
}

// ChromaArrayCategory selects which half of table 9-4 applies.
type ChromaArrayCategory int

const (
	// Chroma420Or422 selects table 9-4(a), for ChromaArrayType 1 or 2.
	Chroma420Or422 ChromaArrayCategory = iota
	// MonochromeOr444 selects table 9-4(b), for ChromaArrayType 0 or 3.
	MonochromeOr444
)

// CBPCodeNum returns the mapped Exp-Golomb codeNum for the given coded
// block pattern cbp, prediction mode (inter true, else intra) and chroma
// array category, as required to write coded_block_pattern with descriptor
// me(v) per section 9.1.2.
func CBPCodeNum(cbp uint, inter bool, cat ChromaArrayCategory) (uint32, bool) {
	predIdx := 0
	if inter {
		predIdx = 1
	}
	v, ok := cbpCodeNum[cat][predIdx][cbp]
	return v, ok
}
