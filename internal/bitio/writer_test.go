/*
DESCRIPTION
  writer_test.go provides testing for writer.go: round-tripping every
  syntax element type through internal/bits.Reader, and checking the
  Annex-B packaging never produces an illegal start-code-like byte
  sequence inside its payload.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package bitio

import (
	"bytes"
	"testing"

	"github.com/ausocean/avcenc/internal/bits"
)

func TestWriteBitsRoundTrip(t *testing.T) {
	w := NewWriter(16)
	w.WriteBits(0x5, 3)
	w.WriteBits(0x2a, 6)
	w.WriteBits(1, 1)
	w.AlignToByte()

	r := bits.NewReader(w.Bytes())
	if v, err := r.ReadBits(3); err != nil || v != 0x5 {
		t.Fatalf("ReadBits(3) = %d, %v; want 5, nil", v, err)
	}
	if v, err := r.ReadBits(6); err != nil || v != 0x2a {
		t.Fatalf("ReadBits(6) = %d, %v; want 42, nil", v, err)
	}
	if v, err := r.ReadBits(1); err != nil || v != 1 {
		t.Fatalf("ReadBits(1) = %d, %v; want 1, nil", v, err)
	}
}

func TestWriteUeRoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 2, 3, 7, 8, 15, 16, 255, 4096}
	w := NewWriter(64)
	for _, v := range cases {
		w.WriteUe(v)
	}
	w.AlignToByte()

	r := bits.NewReader(w.Bytes())
	for _, want := range cases {
		got, err := r.ReadUe()
		if err != nil {
			t.Fatalf("ReadUe: %v", err)
		}
		if got != want {
			t.Errorf("ReadUe = %d, want %d", got, want)
		}
	}
}

func TestWriteSeRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 2, -2, 17, -17, 1000, -1000}
	w := NewWriter(64)
	for _, v := range cases {
		w.WriteSe(v)
	}
	w.AlignToByte()

	r := bits.NewReader(w.Bytes())
	for _, want := range cases {
		got, err := r.ReadSe()
		if err != nil {
			t.Fatalf("ReadSe: %v", err)
		}
		if got != want {
			t.Errorf("ReadSe = %d, want %d", got, want)
		}
	}
}

func TestWriteTeRoundTrip(t *testing.T) {
	w := NewWriter(8)
	w.WriteTe(0, 1)
	w.WriteTe(1, 1)
	w.WriteTe(5, 7)
	w.AlignToByte()

	r := bits.NewReader(w.Bytes())
	if v, err := r.ReadTe(1); err != nil || v != 0 {
		t.Fatalf("ReadTe(1) = %d, %v; want 0, nil", v, err)
	}
	if v, err := r.ReadTe(1); err != nil || v != 1 {
		t.Fatalf("ReadTe(1) = %d, %v; want 1, nil", v, err)
	}
	if v, err := r.ReadTe(7); err != nil || v != 5 {
		t.Fatalf("ReadTe(7) = %d, %v; want 5, nil", v, err)
	}
}

// TestEscapeRBSPRoundTrip checks that escaping then unescaping an RBSP
// containing every emulation-prone byte pattern recovers the original.
func TestEscapeRBSPRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x00, 0x00, 0x00},
		{0x00, 0x00, 0x01},
		{0x00, 0x00, 0x02},
		{0x00, 0x00, 0x03},
		{0x00, 0x00, 0x00, 0x00, 0x01},
		{0x01, 0x02, 0x03, 0x00, 0x00, 0x03, 0x04},
		{},
	}
	for _, rbsp := range cases {
		ebsp := EscapeRBSP(rbsp)
		got := bits.UnescapeEBSP(ebsp)
		if !bytes.Equal(got, rbsp) {
			t.Errorf("UnescapeEBSP(EscapeRBSP(%x)) = %x, want %x", rbsp, got, rbsp)
		}
	}
}

// TestEscapeRBSPNoIllegalStartCode checks that, for an RBSP containing
// deliberately adversarial runs of zero bytes, the escaped output never
// has two zero bytes followed by 00, 01 or 02; a 03 in that position is
// the emulation_prevention_three_byte itself.
func TestEscapeRBSPNoIllegalStartCode(t *testing.T) {
	rbsp := bytes.Repeat([]byte{0x00}, 64)
	rbsp = append(rbsp, 0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x03)
	ebsp := EscapeRBSP(rbsp)

	zeros := 0
	for i, b := range ebsp {
		if zeros >= 2 && b <= 0x02 {
			t.Fatalf("illegal start-code-like sequence at byte %d in escaped output: %x", i, ebsp)
		}
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
}

// TestWrapNALUnitStartCodeOnlyAtHeader checks that the only start code
// present in a wrapped NAL unit is the one WrapNALUnit itself prepends:
// the escaped payload that follows must never contain a byte sequence a
// bitstream scanner could mistake for one.
func TestWrapNALUnitStartCodeOnlyAtHeader(t *testing.T) {
	rbsp := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x01, 0xff}
	nal := WrapNALUnit(3, 1, rbsp, false)

	// Skip the leading 3-byte start code and 1-byte NAL header.
	payload := nal[4:]
	zeros := 0
	for i, b := range payload {
		if zeros >= 2 && b <= 0x01 {
			t.Fatalf("illegal start-code-like sequence at payload byte %d: %x", i, payload)
		}
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
}
