/*
DESCRIPTION
  reader.go provides a bit reader over an in-memory RBSP buffer, the
  read-side counterpart to internal/bitio.Writer. It exists so tests can
  parse back the encoder's own bitstream output and check it against the
  syntax elements that produced it, rather than only checking byte counts.
  Adapted from the teacher decoder's bits.BitReader (formerly
  codec/h264/h264dec/bits/bitreader.go, since removed, see DESIGN.md): the
  original wrapped an io.Reader and a byte-at-a-time peeker interface built
  for streaming NAL parsing; this version reads directly from a []byte
  RBSP already extracted by internal/syntax, and adds the Exp-Golomb
  readers (ReadUe, ReadSe, ReadTe) that round out section 9.1 parsing,
  mirroring bitio.Writer's WriteUe/WriteSe/WriteTe.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package bits provides a bit-level reader over an RBSP byte slice, used by
// tests to parse back bitstreams produced by internal/bitio.
package bits

import "fmt"

// Reader reads bits most-significant-bit first from an RBSP buffer.
type Reader struct {
	buf    []byte
	bitPos int // absolute bit offset of the next unread bit
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// ReadBits reads the next n bits (0 <= n <= 32) and returns them
// right-justified in the result.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("bits: invalid read width %d", n)
	}
	if r.bitPos+n > len(r.buf)*8 {
		return 0, fmt.Errorf("bits: read past end of buffer")
	}
	var v uint32
	for i := 0; i < n; i++ {
		byteIdx := r.bitPos / 8
		bitIdx := 7 - uint(r.bitPos%8)
		bit := (r.buf[byteIdx] >> bitIdx) & 1
		v = v<<1 | uint32(bit)
		r.bitPos++
	}
	return v, nil
}

// ReadBit reads a single bit as a bool.
func (r *Reader) ReadBit() (bool, error) {
	v, err := r.ReadBits(1)
	return v != 0, err
}

// ReadUe reads an unsigned Exp-Golomb coded value per section 9.1:
// leadingZeros zero bits, then a one bit, then leadingZeros suffix bits.
func (r *Reader) ReadUe() (uint32, error) {
	leadingZeros := 0
	for {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if b {
			break
		}
		leadingZeros++
		if leadingZeros > 32 {
			return 0, fmt.Errorf("bits: runaway Exp-Golomb prefix")
		}
	}
	if leadingZeros == 0 {
		return 0, nil
	}
	suffix, err := r.ReadBits(leadingZeros)
	if err != nil {
		return 0, err
	}
	return (1<<uint(leadingZeros) - 1) + suffix, nil
}

// ReadSe reads a signed Exp-Golomb coded value per section 9.1.1, the
// inverse mapping of bitio.Writer.WriteSe.
func (r *Reader) ReadSe() (int32, error) {
	codeNum, err := r.ReadUe()
	if err != nil {
		return 0, err
	}
	if codeNum%2 == 0 {
		return -int32(codeNum / 2), nil
	}
	return int32(codeNum+1) / 2, nil
}

// ReadTe reads a truncated Exp-Golomb coded value given the upper range
// bound x, the inverse of bitio.Writer.WriteTe.
func (r *Reader) ReadTe(x uint32) (uint32, error) {
	if x == 1 {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if b {
			return 0, nil
		}
		return 1, nil
	}
	return r.ReadUe()
}

// ByteAligned reports whether the next read starts on a byte boundary.
func (r *Reader) ByteAligned() bool {
	return r.bitPos%8 == 0
}

// BitPos returns the absolute bit offset of the next unread bit.
func (r *Reader) BitPos() int {
	return r.bitPos
}

// BytesRead returns the number of whole bytes consumed so far, rounding
// down a partial trailing byte.
func (r *Reader) BytesRead() int {
	return r.bitPos / 8
}

// UnescapeEBSP reverses internal/bitio.EscapeRBSP: it strips the
// emulation_prevention_three_byte inserted after any two-zero-byte run,
// recovering the original RBSP from an EBSP payload per section 7.4.1.
func UnescapeEBSP(ebsp []byte) []byte {
	out := make([]byte, 0, len(ebsp))
	zeros := 0
	for i := 0; i < len(ebsp); i++ {
		b := ebsp[i]
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		out = append(out, b)
		if b == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
