/*
DESCRIPTION
  encoder.go implements the session orchestrator: the Initializing ->
  Analyzing_Frame <-> Encoding_Frame state machine of section 4.1 of the
  specifications, wiring together the rate controller
  (internal/ratectrl), the single-reference decoded picture buffer
  (internal/picture.DPB), SPS/PPS construction (internal/syntax), the
  per-macroblock slice encoder (internal/mb), and Annex-B NAL packaging
  (internal/bitio). State transition style and the Acquire/Release
  frame-store handoff follow the teacher decoder's session/frame
  separation in codec/h264/h264dec (a *Framer owning per-picture state,
  driven by an outer loop that pulls one NAL unit at a time), rerouted
  here to the write/encode direction.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package avcenc implements a software H.264/AVC Baseline-profile video
// encoder: CAVLC entropy coding, single-reference P_Skip/P_L0_16x16
// inter prediction, Intra_4x4/Intra_16x16 intra prediction, and CPB-
// driven rate control, producing an Annex-B byte stream one NAL unit
// per EncodeNAL call.
package avcenc

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ausocean/avcenc/internal/bitio"
	"github.com/ausocean/avcenc/internal/deblock"
	"github.com/ausocean/avcenc/internal/logging"
	"github.com/ausocean/avcenc/internal/mb"
	"github.com/ausocean/avcenc/internal/me"
	"github.com/ausocean/avcenc/internal/picture"
	"github.com/ausocean/avcenc/internal/ratectrl"
	"github.com/ausocean/avcenc/internal/syntax"
)

// state is the orchestrator's position in the state machine of section
// 4.1, collapsing Initializing/Encoding_SPS/Encoding_PPS into New's
// synchronous setup (this encoder builds parameter sets once, eagerly,
// rather than lazily on first pull).
type state int

const (
	stateUninitialized state = iota
	stateAnalyzingFrame
	stateEncodingFrame
)

// Encoder is an H.264 Baseline encoding session. The zero value is not
// usable; construct one with New.
type Encoder struct {
	cfg Config
	log *zap.Logger

	st state

	sps             *syntax.SPS
	pps             *syntax.PPS
	spsNAL, ppsNAL  []byte
	log2MaxFrameNum uint

	mbEnc *mb.Encoder
	rc    *ratectrl.Controller
	dpb   picture.DPB
	pool  DPBPool

	initQP         int
	frameNum       uint32
	framesSinceIDR int
	idrPicID       uint32
	nextFrameSlot  int

	pendingNALs  [][]byte
	pendingIdx   int
	pendingIsIDR bool

	curRec  *picture.Frame
	haveRec bool
}

// New validates cfg and initializes a session: it derives a level_idc,
// builds the SPS/PPS, constructs the rate controller and macroblock
// encoder, and serializes the parameter set NAL units ahead of time.
// The returned Encoder is in Analyzing_Frame, ready for SetInput.
func New(cfg Config) (*Encoder, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	initQP := cfg.InitQP
	if initQP == 0 {
		initQP = 26
	}

	mbWidth, mbHeight := cfg.mbWidth(), cfg.mbHeight()
	levelIDC := deriveLevelIDC(cfg)

	sps := syntax.NewBaselineSPS(0, mbWidth, mbHeight, levelIDC)
	pps := syntax.NewBaselinePPS(0, sps, int32(initQP))
	pps.DeblockingFilterControlPresent = cfg.DisableDeblockIdc != 0 || cfg.AlphaOffset != 0 || cfg.BetaOffset != 0

	spsW := bitio.NewWriter(64)
	sps.Write(spsW)
	spsNAL := bitio.WrapNALUnit(syntax.RefIdcFor(syntax.NALTypeSPS, true), syntax.NALTypeSPS, spsW.Bytes(), false)

	ppsW := bitio.NewWriter(32)
	pps.Write(ppsW)
	ppsNAL := bitio.WrapNALUnit(syntax.RefIdcFor(syntax.NALTypePPS, true), syntax.NALTypePPS, ppsW.Bytes(), false)

	cpbSize := cfg.CPBSize
	if cpbSize <= 0 {
		cpbSize = cfg.BitRate // a one-second buffer is the usual TMN default.
	}
	rc := ratectrl.NewController(ratectrl.Config{
		BitRate:       cfg.BitRate,
		FrameRate:     cfg.FrameRate,
		CPBSize:       cpbSize,
		InitialQP:     initQP,
		IFrameQPDelta: -2,
	})

	logger, err := logging.New(logging.Config{FilePath: cfg.LogFilePath, Debug: cfg.Debug})
	if err != nil {
		return nil, newErr(ErrFail, "logger init: %v", err)
	}

	e := &Encoder{
		cfg:             cfg,
		log:             logger,
		st:              stateAnalyzingFrame,
		sps:             sps,
		pps:             pps,
		spsNAL:          spsNAL,
		ppsNAL:          ppsNAL,
		log2MaxFrameNum: uint(sps.Log2MaxFrameNumMinus4 + 4),
		mbEnc:           mb.NewEncoder(mbWidth, mbHeight, pps),
		rc:              rc,
		pool:            newFramePool(cfg.Width, cfg.Height),
		initQP:          initQP,
	}
	e.log.Info("encoder initialized",
		zap.Int("width", cfg.Width), zap.Int("height", cfg.Height),
		zap.Uint8("level_idc", levelIDC), zap.Int("init_qp", initQP))
	return e, nil
}

// validateConfig checks cfg against every constraint this Baseline,
// single-reference, single-slice-group, single-partition-per-macroblock
// encoder enforces, returning every violated ErrorKind from section 7
// combined into one error via multierr, so a caller fixing its Config
// against one New call's error sees every violation at once rather than
// discovering them one at a time across repeated calls.
func validateConfig(cfg Config) error {
	var errs []error
	check := func(cond bool, kind ErrorKind, format string, args ...interface{}) {
		if cond {
			errs = append(errs, newErr(kind, format, args...))
		}
	}

	check(cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width%16 != 0 || cfg.Height%16 != 0,
		ErrFail, "width and height must be positive multiples of 16, got %dx%d", cfg.Width, cfg.Height)
	check(cfg.FrameRate <= 0, ErrInvalidFrameRate, "frame rate must be positive, got %v", cfg.FrameRate)
	check(cfg.NumRefFrame != 0 && cfg.NumRefFrame != 1, ErrInvalidNumRef, "num_ref_frame must be 1, got %d", cfg.NumRefFrame)
	check(cfg.NumSliceGroup != 0 && cfg.NumSliceGroup != 1, ErrInvalidNumSliceGroup, "num_slice_group must be 1, got %d", cfg.NumSliceGroup)
	check(cfg.POCType != 0 && cfg.POCType != 2, ErrInvalidPocLsb, "only poc_type 2 is supported, got %d", cfg.POCType)
	check(cfg.IntraMBRefresh != 0, ErrNotSupported, "rolling intra refresh is not supported")
	check(cfg.ConstrainedIntraPred, ErrNotSupported, "constrained_intra_pred is not implemented")
	check(cfg.DisableDeblockIdc > 2, ErrInvalidDeblockIdc, "disable_deblocking_filter_idc must be 0, 1 or 2, got %d", cfg.DisableDeblockIdc)
	check(cfg.AlphaOffset < -6 || cfg.AlphaOffset > 6, ErrInvalidAlphaOffset, "alpha offset must be in [-6, 6], got %d", cfg.AlphaOffset)
	check(cfg.BetaOffset < -6 || cfg.BetaOffset > 6, ErrInvalidBetaOffset, "beta offset must be in [-6, 6], got %d", cfg.BetaOffset)
	check(cfg.InitQP < 0 || cfg.InitQP > 51, ErrInitQpFail, "init_qp must be in [0, 51], got %d", cfg.InitQP)
	check(cfg.IDRPeriod < -1, ErrInvalidChangeRate, "idr_period must be >= -1, got %d", cfg.IDRPeriod)
	check(cfg.RateControl && cfg.BitRate <= 0, ErrFail, "bitrate must be positive when rate_control is enabled")

	return multierr.Combine(errs...)
}

// nextIsIDR decides whether the frame about to be admitted must be
// coded as an IDR picture: the very first frame of the session always
// is (the DPB starts empty), idr_period then governs subsequent ones,
// and AutoSCD can force one early on a detected scene cut.
func (e *Encoder) nextIsIDR(f *picture.Frame) bool {
	if e.frameNum == 0 {
		return true
	}
	switch {
	case e.cfg.IDRPeriod == 0:
		return true
	case e.cfg.IDRPeriod > 0 && e.framesSinceIDR >= e.cfg.IDRPeriod:
		return true
	}
	if e.cfg.AutoSCD && sceneChanged(f, e.dpb.Reference()) {
		return true
	}
	return false
}

// SetInput admits f as the next picture to encode, running admission
// and rate control, then synchronously coding the whole slice and
// queuing its NAL units (plus SPS/PPS ahead of an IDR, unless
// Config.OutOfBandParamSet) for EncodeNAL to pull one at a time.
func (e *Encoder) SetInput(f *picture.Frame) (Status, error) {
	if e.st == stateUninitialized {
		return StatusUninitialized, newErr(ErrUninitialized, "SetInput called after Cleanup or before New")
	}
	if e.st != stateAnalyzingFrame {
		return StatusWrongState, newErr(ErrWrongState, "SetInput called before the previous picture's NAL units were fully pulled")
	}
	if f == nil {
		return StatusMemoryFail, newErr(ErrMemoryFail, "nil input frame")
	}

	// Wall-clock admission: a caller supplying real timestamps gets late
	// frames rejected against the target frame slot their timestamp
	// implies, rather than coded out of cadence. A caller that never sets
	// Timestamp (it defaults to zero) opts out entirely; every frame is
	// admitted in arrival order as before.
	if f.Timestamp > 0 {
		targetSlot := int(f.Timestamp*e.cfg.FrameRate + 0.5)
		if targetSlot < e.nextFrameSlot {
			e.log.Debug("skipping late frame", zap.Float64("timestamp", f.Timestamp), zap.Int("target_slot", targetSlot), zap.Int("next_slot", e.nextFrameSlot))
			return StatusSkippedPicture, nil
		}
		e.nextFrameSlot = targetSlot + 1
	}

	isIDR := e.nextIsIDR(f)

	if e.cfg.RateControl && !isIDR && e.rc.ShouldSkip() {
		e.log.Debug("skipping frame, CPB near overflow", zap.Uint32("frame_num", e.frameNum))
		return StatusSkippedPicture, nil
	}

	if isIDR {
		e.dpb.Reset()
		e.frameNum = 0
		e.framesSinceIDR = 0
		e.idrPicID++
	}

	f.FrameNum = e.frameNum
	f.POC = 2 * int(e.frameNum)
	f.IsIDR = isIDR

	rec, ok := e.pool.Acquire()
	if !ok {
		return StatusMemoryFail, newErr(ErrMemoryFail, "reconstruction frame allocation failed")
	}
	ref := e.dpb.Reference()

	// mad is computed up front, during the analysis phase, the way
	// motion estimation (inter) or the intra search (intra) would
	// naturally produce it ahead of QP selection; see internal/me.FrameMAD.
	mad := me.FrameMAD(f, ref)
	qp := e.initQP
	if e.cfg.RateControl {
		qp = e.rc.QPForFrame(isIDR, mad)
	}
	lambda := ratectrl.Lambda(qp)

	firstInterFrame := !isIDR && e.framesSinceIDR == 1

	nalType := uint8(syntax.NALTypeNonIDRSlice)
	sliceType := uint32(syntax.SliceTypeP)
	if isIDR {
		nalType = syntax.NALTypeIDRSlice
		sliceType = syntax.SliceTypeI
	}

	header := &syntax.SliceHeader{
		SliceType:                  sliceType,
		PPSID:                      e.pps.ID,
		FrameNum:                   f.FrameNum,
		IsIDR:                      isIDR,
		IDRPicID:                   e.idrPicID,
		SliceQPDelta:               int32(qp) - (e.pps.PicInitQPMinus26 + 26),
		DisableDeblockingFilterIdc: e.cfg.DisableDeblockIdc,
		SliceAlphaC0OffsetDiv2:     e.cfg.AlphaOffset,
		SliceBetaOffsetDiv2:        e.cfg.BetaOffset,
	}

	w := bitio.NewWriter(e.cfg.Width * e.cfg.Height / 4)
	bits := e.mbEnc.EncodeSlice(w, header, e.log2MaxFrameNum, nalType, f, rec, ref, qp, lambda, firstInterFrame)

	if e.cfg.RateControl {
		e.rc.Update(bits, qp, mad)
	}

	if header.DisableDeblockingFilterIdc != 1 {
		deblock.Filter(rec, e.mbEnc.MBInfo(), e.cfg.mbWidth(), e.cfg.mbHeight(), qp, e.cfg.AlphaOffset, e.cfg.BetaOffset)
	}

	rec.ExtendBorders()
	prevRef := e.dpb.Reference()
	e.dpb.Store(rec)
	if prevRef != nil && prevRef != rec {
		e.pool.Release(prevRef)
	}
	e.curRec, e.haveRec = rec, true

	refIdc := syntax.RefIdcFor(nalType, true)
	sliceNAL := bitio.WrapNALUnit(refIdc, nalType, w.Bytes(), false)

	e.pendingNALs = e.pendingNALs[:0]
	if !e.cfg.OutOfBandParamSet && isIDR {
		e.pendingNALs = append(e.pendingNALs, e.spsNAL, e.ppsNAL)
	}
	e.pendingNALs = append(e.pendingNALs, sliceNAL)
	e.pendingIdx = 0
	e.pendingIsIDR = isIDR
	e.st = stateEncodingFrame

	e.log.Debug("frame coded",
		zap.Uint32("frame_num", f.FrameNum), zap.Bool("idr", isIDR),
		zap.Int("qp", qp), zap.Int("bits", bits))

	e.frameNum++
	e.framesSinceIDR++
	return StatusOk, nil
}

// EncodeNAL copies the next pending NAL unit into buf, returning the
// number of bytes written. Status reports PictureReady or NewIdr once
// the picture's last NAL unit has been pulled; WrongState if no NAL is
// pending; BitstreamBufferFull if buf is smaller than the next unit (the
// unit stays pending, and a retry with a buffer at least as long as the
// unit succeeds).
func (e *Encoder) EncodeNAL(buf []byte) (int, Status, error) {
	if e.st == stateUninitialized {
		return 0, StatusUninitialized, newErr(ErrUninitialized, "EncodeNAL called after Cleanup or before New")
	}
	if e.st != stateEncodingFrame || e.pendingIdx >= len(e.pendingNALs) {
		return 0, StatusWrongState, newErr(ErrWrongState, "no NAL unit pending; call SetInput first")
	}

	next := e.pendingNALs[e.pendingIdx]
	if len(buf) < len(next) {
		return 0, StatusBitstreamBufferFull, newErr(ErrBitstreamBufferFull, "need %d bytes, have %d", len(next), len(buf))
	}
	n := copy(buf, next)
	e.pendingIdx++

	if e.pendingIdx >= len(e.pendingNALs) {
		e.st = stateAnalyzingFrame
		if e.pendingIsIDR {
			return n, StatusNewIdr, nil
		}
		return n, StatusPictureReady, nil
	}
	return n, StatusOk, nil
}

// Recon returns the most recently reconstructed picture and whether one
// is available yet (false until the first SetInput has run).
func (e *Encoder) Recon() (*picture.Frame, bool) {
	return e.curRec, e.haveRec
}

// ParameterSets returns the Annex-B SPS and PPS NAL units for a caller
// using Config.OutOfBandParamSet, to deliver once by whatever channel
// the transport uses for out-of-band parameter sets.
func (e *Encoder) ParameterSets() (sps, pps []byte) {
	return e.spsNAL, e.ppsNAL
}

// Cleanup releases the session's state. The Encoder must not be used
// again afterwards except that a fresh session can be built with New.
func (e *Encoder) Cleanup() {
	if e.log != nil {
		_ = e.log.Sync()
	}
	e.st = stateUninitialized
	e.sps, e.pps = nil, nil
	e.spsNAL, e.ppsNAL = nil, nil
	e.mbEnc = nil
	e.rc = nil
	e.dpb.Reset()
	e.pool = nil
	e.pendingNALs = nil
	e.curRec, e.haveRec = nil, false
}
