/*
DESCRIPTION
  avcenc_test.go provides end-to-end testing for the session orchestrator
  in encoder.go: the full SetInput/EncodeNAL cycle over synthetic 176x144
  (QCIF) sequences, the Annex-B byte stream's start-code invariants,
  determinism across independent sessions, P_Skip behaviour on a static
  sequence, and the picture-size/IDR-cadence boundary cases section 7's
  validateConfig enforces.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package avcenc

import (
	"bytes"
	"testing"

	"github.com/ausocean/avcenc/internal/picture"
)

const (
	qcifW = 176
	qcifH = 144
)

// syntheticFrame builds a deterministic, non-flat picture so the encoder
// has real structure to code rather than an all-skip degenerate case.
func syntheticFrame(w, h int, phase int) *picture.Frame {
	f := picture.NewFrame(w, h)
	for y := 0; y < h; y++ {
		row := f.Y.Row(y)
		for x := 0; x < w; x++ {
			row[x] = uint8((x+phase)*3 + y*5)
		}
	}
	for y := 0; y < h/2; y++ {
		for x := 0; x < w/2; x++ {
			f.Cb.Set(x, y, uint8(x+y+phase))
			f.Cr.Set(x, y, uint8(x-y+phase))
		}
	}
	return f
}

func baseConfig() Config {
	return Config{
		Width:     qcifW,
		Height:    qcifH,
		FrameRate: 25,
		BitRate:   256000,
		InitQP:    28,
		IDRPeriod: 10,
	}
}

// drainNALs pulls every pending NAL unit after a SetInput call, returning
// them concatenated and the final Status EncodeNAL reported.
func drainNALs(t *testing.T, e *Encoder) ([]byte, Status) {
	t.Helper()
	var out bytes.Buffer
	buf := make([]byte, qcifW*qcifH*2)
	var last Status
	for {
		n, st, err := e.EncodeNAL(buf)
		if err != nil {
			t.Fatalf("EncodeNAL: %v", err)
		}
		out.Write(buf[:n])
		last = st
		if st == StatusPictureReady || st == StatusNewIdr {
			break
		}
	}
	return out.Bytes(), last
}

// TestEncodeSixFrameSequenceProducesIDRThenP checks the basic IDR/P
// cadence over a short QCIF sequence: the first picture is an IDR
// (NewIdr) carrying SPS/PPS ahead of the slice, subsequent pictures are
// plain P pictures (PictureReady) with no parameter sets queued.
func TestEncodeSixFrameSequenceProducesIDRThenP(t *testing.T) {
	e, err := New(baseConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Cleanup()

	for i := 0; i < 6; i++ {
		f := syntheticFrame(qcifW, qcifH, i*2)
		st, err := e.SetInput(f)
		if err != nil {
			t.Fatalf("frame %d: SetInput: %v", i, err)
		}
		if st != StatusOk {
			t.Fatalf("frame %d: SetInput status = %v, want Ok", i, st)
		}

		nal, final := drainNALs(t, e)
		if len(nal) == 0 {
			t.Fatalf("frame %d: no NAL bytes produced", i)
		}
		wantFinal := StatusPictureReady
		if i == 0 {
			wantFinal = StatusNewIdr
		}
		if final != wantFinal {
			t.Errorf("frame %d: final EncodeNAL status = %v, want %v", i, final, wantFinal)
		}
	}
}

// TestAnnexBStreamHasNoIllegalStartCode checks that across a full coded
// sequence, the only 3-byte sequences equal to 00 00 01 are the NAL
// delimiters bitio.WrapNALUnit inserts — emulation prevention must have
// escaped every other occurrence.
func TestAnnexBStreamHasNoIllegalStartCode(t *testing.T) {
	e, err := New(baseConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Cleanup()

	var stream bytes.Buffer
	for i := 0; i < 4; i++ {
		f := syntheticFrame(qcifW, qcifH, i*7+i*i)
		if _, err := e.SetInput(f); err != nil {
			t.Fatalf("frame %d: SetInput: %v", i, err)
		}
		nal, _ := drainNALs(t, e)
		stream.Write(nal)
	}

	b := stream.Bytes()
	starts := 0
	for i := 0; i+2 < len(b); i++ {
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 {
			starts++
		}
	}
	// Each picture queues at most 3 NAL units (SPS, PPS, slice) for the
	// IDR and 1 for every subsequent P picture; each is wrapped with
	// exactly one start code.
	if starts == 0 {
		t.Fatal("no start codes found in coded stream")
	}
	// Every 00 00 in the stream must be followed by 01 (a start code) or
	// 03 (an emulation_prevention_three_byte); confirm no 00 00 00 or
	// 00 00 02 survived unescaped, which would corrupt a real decoder's
	// start-code search.
	for i := 0; i+2 < len(b); i++ {
		if b[i] == 0 && b[i+1] == 0 && b[i+2] <= 2 && b[i+2] != 1 {
			t.Fatalf("unescaped illegal sequence 00 00 %02x at byte %d", b[i+2], i)
		}
	}
}

// TestEncodeDeterministic checks that two independent sessions fed the
// same input sequence produce byte-identical coded streams: no hidden
// wall-clock or map-iteration-order dependence.
func TestEncodeDeterministic(t *testing.T) {
	run := func() []byte {
		e, err := New(baseConfig())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer e.Cleanup()

		var out bytes.Buffer
		for i := 0; i < 5; i++ {
			f := syntheticFrame(qcifW, qcifH, i*3+1)
			if _, err := e.SetInput(f); err != nil {
				t.Fatalf("SetInput: %v", err)
			}
			nal, _ := drainNALs(t, e)
			out.Write(nal)
		}
		return out.Bytes()
	}

	a := run()
	b := run()
	if !bytes.Equal(a, b) {
		t.Fatalf("two sessions with identical input produced different streams (%d vs %d bytes)", len(a), len(b))
	}
}

// TestStaticSequenceStaysWithinCPBBudget checks that coding a sequence of
// identical pictures (ideal P_Skip territory) after the first IDR keeps
// per-picture coded size well under what a naive worst-case allocation
// would predict, confirming skip/rate control is doing real work rather
// than re-coding every macroblock from scratch regardless of content.
func TestStaticSequenceStaysWithinCPBBudget(t *testing.T) {
	cfg := baseConfig()
	cfg.RateControl = true
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Cleanup()

	still := syntheticFrame(qcifW, qcifH, 0)

	var idrBits, lastPBits int
	for i := 0; i < 8; i++ {
		if _, err := e.SetInput(still); err != nil {
			t.Fatalf("frame %d: SetInput: %v", i, err)
		}
		nal, _ := drainNALs(t, e)
		if i == 0 {
			idrBits = len(nal) * 8
		} else {
			lastPBits = len(nal) * 8
		}
	}
	if lastPBits == 0 {
		t.Fatal("no P picture coded")
	}
	if lastPBits >= idrBits {
		t.Errorf("static-sequence P picture coded %d bits, want fewer than the IDR's %d bits", lastPBits, idrBits)
	}
}

// TestMinimumPictureSize checks the smallest legal picture (one 16x16
// macroblock) encodes successfully end to end.
func TestMinimumPictureSize(t *testing.T) {
	cfg := Config{Width: 16, Height: 16, FrameRate: 25, InitQP: 28}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Cleanup()

	f := syntheticFrame(16, 16, 0)
	if st, err := e.SetInput(f); err != nil || st != StatusOk {
		t.Fatalf("SetInput(16x16) = %v, %v", st, err)
	}
	nal, final := drainNALs(t, e)
	if len(nal) == 0 || final != StatusNewIdr {
		t.Errorf("drainNALs(16x16) = %d bytes, %v; want non-empty, NewIdr", len(nal), final)
	}
}

// TestIDRPeriodZeroCodesEveryFrameAsIDR checks idr_period=0 (every
// picture intra-only) always reports NewIdr, never PictureReady.
func TestIDRPeriodZeroCodesEveryFrameAsIDR(t *testing.T) {
	cfg := baseConfig()
	cfg.IDRPeriod = 0
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Cleanup()

	for i := 0; i < 3; i++ {
		f := syntheticFrame(qcifW, qcifH, i)
		if _, err := e.SetInput(f); err != nil {
			t.Fatalf("frame %d: SetInput: %v", i, err)
		}
		_, final := drainNALs(t, e)
		if final != StatusNewIdr {
			t.Errorf("frame %d with idr_period=0: final status = %v, want NewIdr", i, final)
		}
	}
}

// TestPOCType2Accepted checks poc_type 2 is a legal Config value (the
// only type this encoder supports besides the default 0).
func TestPOCType2Accepted(t *testing.T) {
	cfg := baseConfig()
	cfg.POCType = 2
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New with POCType=2: %v", err)
	}
	defer e.Cleanup()

	f := syntheticFrame(qcifW, qcifH, 0)
	if st, err := e.SetInput(f); err != nil || st != StatusOk {
		t.Fatalf("SetInput with POCType=2 = %v, %v", st, err)
	}
}

// TestRejectsNonMultipleOf16Dimensions checks validateConfig's geometry
// guard.
func TestRejectsNonMultipleOf16Dimensions(t *testing.T) {
	cfg := baseConfig()
	cfg.Width = 100
	if _, err := New(cfg); err == nil {
		t.Error("New with Width=100 (not a multiple of 16) succeeded, want error")
	}
}

// TestSetInputBeforeDrainingRejected checks that calling SetInput again
// before the previous picture's NAL units are fully pulled reports
// StatusWrongState rather than silently overwriting pending state.
func TestSetInputBeforeDrainingRejected(t *testing.T) {
	e, err := New(baseConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Cleanup()

	f := syntheticFrame(qcifW, qcifH, 0)
	if _, err := e.SetInput(f); err != nil {
		t.Fatalf("SetInput: %v", err)
	}
	st, err := e.SetInput(syntheticFrame(qcifW, qcifH, 1))
	if err == nil || st != StatusWrongState {
		t.Errorf("second SetInput before draining = %v, %v, want StatusWrongState and an error", st, err)
	}
}

// TestCleanupThenSetInputRejected checks the Uninitialized terminal
// state: no call succeeds on an Encoder after Cleanup.
func TestCleanupThenSetInputRejected(t *testing.T) {
	e, err := New(baseConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Cleanup()

	st, err := e.SetInput(syntheticFrame(qcifW, qcifH, 0))
	if err == nil || st != StatusUninitialized {
		t.Errorf("SetInput after Cleanup = %v, %v, want StatusUninitialized and an error", st, err)
	}
}
