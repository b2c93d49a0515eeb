package cavlc

// BlockFromScan builds a Block from zigzag, a zig-zag ordered array of
// quantized transform coefficients (DC first), by walking it from the
// highest-frequency end down to the first non-zero coefficient and
// recording, for each non-zero level, the zero run between it and the
// next lower-frequency non-zero level (or the DC end). This is the
// inverse of the decoder's combineLevelRunInfo (section 9.2.4).
func BlockFromScan(zigzag []int) Block {
	last := -1
	for i := len(zigzag) - 1; i >= 0; i-- {
		if zigzag[i] != 0 {
			last = i
			break
		}
	}
	if last < 0 {
		return Block{}
	}

	var levels []int
	var runs []int
	for i := last; i >= 0; i-- {
		if zigzag[i] == 0 {
			runs[len(runs)-1]++
			continue
		}
		levels = append(levels, zigzag[i])
		runs = append(runs, 0)
	}
	// runs[k] holds the zero run immediately below levels[k] in scan
	// order. The final entry (the run below the lowest-frequency non-zero
	// coefficient) still contributes to TotalZeros, so it stays in the
	// slice; WriteResidualBlock only ever reads runs[:totalCoeff-1] when
	// emitting run_before, since that last run is inferred from
	// zerosLeft rather than transmitted (section 9.2.3).
	return Block{Levels: levels, Runs: runs}
}
