/*
DESCRIPTION
  levels.go derives level_idc from a session's picture geometry, frame
  rate and target bitrate, an approximation of Annex A's table A-1
  bounds (MaxMBPS, MaxFS, MaxBR) restricted to the levels a Baseline-
  profile software encoder is likely to target (1.0 through 4.1). The
  API gives callers no way to request a specific level, so the
  LevelNotSupported/LevelFail error kinds of section 7 are unreachable
  through this path; see DESIGN.md.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package avcenc

// levelLimit is one row of the simplified Annex A table A-1 bound set
// this encoder checks against: MaxMBPS (macroblocks/sec), MaxFS
// (macroblocks/frame) and MaxBR (kbit/s, cbpFactor 1 for Baseline).
type levelLimit struct {
	idc            uint8
	maxMBPS, maxFS int
	maxBRKbps      int
}

var levelLimits = []levelLimit{
	{10, 1485, 99, 64},
	{11, 3000, 396, 192},
	{12, 6000, 396, 384},
	{13, 11880, 396, 768},
	{20, 11880, 396, 2000},
	{21, 19800, 792, 4000},
	{22, 20250, 1620, 4000},
	{30, 40500, 1620, 10000},
	{31, 108000, 3600, 14000},
	{32, 216000, 5120, 20000},
	{40, 245760, 8192, 20000},
	{41, 245760, 8192, 50000},
}

// deriveLevelIDC picks the lowest level in levelLimits whose bounds
// accommodate cfg's macroblock count, macroblocks/second and bitrate,
// falling back to the highest listed level if none fit.
func deriveLevelIDC(cfg Config) uint8 {
	fs := cfg.mbWidth() * cfg.mbHeight()
	mbps := int(float64(fs) * cfg.FrameRate)
	brKbps := cfg.BitRate / 1000

	for _, lv := range levelLimits {
		if fs <= lv.maxFS && mbps <= lv.maxMBPS && brKbps <= lv.maxBRKbps {
			return lv.idc
		}
	}
	return levelLimits[len(levelLimits)-1].idc
}
