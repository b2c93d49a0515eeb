/*
DESCRIPTION
  dpbpool.go defines DPBPool, the reconstruction-frame allocator the
  orchestrator draws from every SetInput call and returns retired
  reference pictures to, plus a sync.Pool-backed default implementation.
  The pooling idiom follows internal/arena's bucketed sync.Pool
  allocator (itself grounded on the teacher pack's deepteams-webp
  internal/pool/pool.go), adapted here to whole *picture.Frame values
  instead of byte-slice scratch, since reconstruction buffers are
  fixed-size for the life of a session and GC churn on them (one
  allocation per coded picture, otherwise) is the allocation a Go
  rewrite of the original's manual frame-store callbacks should avoid.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package avcenc

import (
	"sync"

	"github.com/ausocean/avcenc/internal/picture"
)

// DPBPool supplies reconstruction-picture storage to an Encoder session.
// Acquire must return a *picture.Frame sized to the session's configured
// dimensions; Release returns a frame the encoder no longer references
// (because the DPB's single-reference sliding window replaced it) for
// reuse by a later Acquire.
type DPBPool interface {
	Acquire() (*picture.Frame, bool)
	Release(*picture.Frame)
}

// framePool is the default DPBPool, a sync.Pool of same-sized frames.
type framePool struct {
	width, height int
	pool          sync.Pool
}

// newFramePool returns a DPBPool producing frames of the given luma
// dimensions (already macroblock-aligned).
func newFramePool(width, height int) *framePool {
	p := &framePool{width: width, height: height}
	p.pool.New = func() interface{} { return picture.NewFrame(width, height) }
	return p
}

func (p *framePool) Acquire() (*picture.Frame, bool) {
	f, ok := p.pool.Get().(*picture.Frame)
	if !ok || f == nil {
		return nil, false
	}
	return f, true
}

func (p *framePool) Release(f *picture.Frame) {
	if f == nil {
		return
	}
	p.pool.Put(f)
}
