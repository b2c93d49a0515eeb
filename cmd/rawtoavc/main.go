/*
DESCRIPTION
  rawtoavc is a command-line utility that reads a raw planar 4:2:0
  YCbCr (I420) sequence and encodes it to an Annex-B H.264 Baseline
  elementary stream, using the avcenc package. Flag handling follows
  the teacher pack's stdlib flag.FlagSet convention (cmd/rv/main.go)
  rather than a third-party CLI framework, since none of the example
  pack's dependencies cover argument parsing.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// rawtoavc encodes a raw I420 video file to an Annex-B H.264 Baseline
// elementary stream.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/avcenc"
	"github.com/ausocean/avcenc/internal/picture"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rawtoavc:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inPath    = flag.String("in", "", "input raw I420 file (required)")
		outPath   = flag.String("out", "", "output .264 Annex-B file (required)")
		width     = flag.Int("width", 176, "luma width in samples, multiple of 16")
		height    = flag.Int("height", 144, "luma height in samples, multiple of 16")
		frameRate = flag.Float64("fps", 25, "frame rate")
		bitrate   = flag.Int("bitrate", 256000, "target bitrate in bits/second")
		cpbSize   = flag.Int("cpb", 0, "CPB size in bits (default: 1 second of bitrate)")
		initQP    = flag.Int("qp", 0, "fixed/initial QP, 0 for automatic")
		idrPeriod = flag.Int("idr-period", 30, "frames between IDR pictures; -1 for one IDR only, 0 for all-IDR")
		rateCtrl  = flag.Bool("rc", true, "enable CPB-driven rate control")
		autoSCD   = flag.Bool("scd", false, "force an IDR on detected scene cuts")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		flag.Usage()
		return fmt.Errorf("-in and -out are required")
	}

	in, err := os.Open(*inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := avcenc.New(avcenc.Config{
		Width:       *width,
		Height:      *height,
		FrameRate:   *frameRate,
		BitRate:     *bitrate,
		CPBSize:     *cpbSize,
		InitQP:      *initQP,
		IDRPeriod:   *idrPeriod,
		RateControl: *rateCtrl,
		AutoSCD:     *autoSCD,
		Debug:       *debug,
	})
	if err != nil {
		return fmt.Errorf("initializing encoder: %w", err)
	}
	defer enc.Cleanup()

	frameSize := *width * *height * 3 / 2
	raw := make([]byte, frameSize)
	nal := make([]byte, 1<<20)

	for frameIdx := 0; ; frameIdx++ {
		if _, err := io.ReadFull(in, raw); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		f := picture.NewFrame(*width, *height)
		loadI420(f, raw)
		f.Timestamp = float64(frameIdx) / *frameRate

		status, err := enc.SetInput(f)
		if err != nil {
			return fmt.Errorf("SetInput: %w", err)
		}
		if status == avcenc.StatusSkippedPicture {
			continue
		}

		for {
			n, status, err := enc.EncodeNAL(nal)
			if err != nil {
				return fmt.Errorf("EncodeNAL: %w", err)
			}
			if n > 0 {
				if _, err := out.Write(nal[:n]); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			if status == avcenc.StatusPictureReady || status == avcenc.StatusNewIdr {
				break
			}
		}
	}
	return nil
}

// loadI420 copies a raw I420 frame's Y, Cb and Cr planes into f.
func loadI420(f *picture.Frame, raw []byte) {
	w, h := f.Y.Width, f.Y.Height
	cw, ch := w/2, h/2

	off := 0
	for y := 0; y < h; y++ {
		copy(f.Y.Row(y), raw[off:off+w])
		off += w
	}
	for y := 0; y < ch; y++ {
		copy(f.Cb.Row(y), raw[off:off+cw])
		off += cw
	}
	for y := 0; y < ch; y++ {
		copy(f.Cr.Row(y), raw[off:off+cw])
		off += cw
	}
}
