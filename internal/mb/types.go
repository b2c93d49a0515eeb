/*
DESCRIPTION
  types.go defines the macroblock type taxonomy and the per-macroblock
  decision record the encode pass threads between mode decision,
  reconstruction and the iterator's neighbour-context bookkeeping. mb_type
  value derivation follows tables 7-11 (Intra, I slices) and 7-13 (Inter,
  P slices) of the specifications, restricted to the subset a
  Baseline-profile, single-reference, single-partition encoder emits.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package mb

// MBType is the macroblock prediction mode chosen by mode decision.
type MBType int

const (
	MBTypeI4x4 MBType = iota
	MBTypeI16x16
	MBTypePSkip
	MBTypeP16x16
)

// mbIntraIndex derives mb_type for an Intra_16x16 macroblock per table
// 7-11: 1 + predMode + 4*cbpChroma, plus 12 when any luma AC/DC
// coefficient is non-zero.
func mbIntraIndex(cbpChroma int, predMode int, lumaNonzero bool) uint32 {
	idx := predMode + 4*cbpChroma
	if lumaNonzero {
		idx += 12
	}
	return uint32(idx + 1)
}
