/*
DESCRIPTION
  arena.go provides a bucketed sync.Pool allocator for the fixed-size
  per-macroblock scratch buffers the encoder otherwise would allocate
  afresh every macroblock (residual blocks, prediction blocks, bitstream
  scratch). Bucketing by size class and the Get/Put naming follow the
  teacher pack's deepteams-webp internal/pool/pool.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package arena provides pooled byte-slice allocation for the encoder's
// hot per-macroblock code paths, reducing GC pressure during a frame's
// encode pass.
package arena

import "sync"

// bucketSizes are the size classes served by the pool, sized for the
// buffers the macroblock encoder actually needs: a 4x4 residual block
// (16 ints == 64 bytes), an 8x8 chroma block (64 bytes), a 16x16 luma
// block (256 bytes), and a generous NAL-scratch size for a single slice's
// worth of CAVLC output before it is copied into the output stream.
var bucketSizes = []int{64, 256, 1024, 4096, 16384, 65536}

var pools = func() []*sync.Pool {
	ps := make([]*sync.Pool, len(bucketSizes))
	for i, sz := range bucketSizes {
		sz := sz
		ps[i] = &sync.Pool{New: func() interface{} { return make([]byte, sz) }}
	}
	return ps
}()

func bucketFor(n int) int {
	for i, sz := range bucketSizes {
		if n <= sz {
			return i
		}
	}
	return -1
}

// Get returns a []byte of length n, reused from the pool when n fits one
// of the defined bucket sizes, or freshly allocated otherwise.
func Get(n int) []byte {
	b := bucketFor(n)
	if b < 0 {
		return make([]byte, n)
	}
	buf := pools[b].Get().([]byte)
	return buf[:n]
}

// Put returns buf to the pool for reuse, if its capacity matches one of
// the bucket sizes exactly; otherwise it is left for the garbage
// collector.
func Put(buf []byte) {
	b := bucketFor(cap(buf))
	if b < 0 || cap(buf) != bucketSizes[b] {
		return
	}
	pools[b].Put(buf[:cap(buf)])
}

// Int32Pool pools []int32 scratch buffers of a single fixed size, used
// for 4x4 and 16x16 transform/quantization intermediate blocks where a
// typed slice avoids repeated byte<->int32 reinterpretation.
type Int32Pool struct {
	pool sync.Pool
	n    int
}

// NewInt32Pool returns a pool of []int32 buffers of length n.
func NewInt32Pool(n int) *Int32Pool {
	p := &Int32Pool{n: n}
	p.pool.New = func() interface{} { return make([]int32, n) }
	return p
}

// Get returns a zeroed []int32 of the pool's configured length.
func (p *Int32Pool) Get() []int32 {
	b := p.pool.Get().([]int32)
	for i := range b {
		b[i] = 0
	}
	return b
}

// Put returns buf to the pool.
func (p *Int32Pool) Put(buf []int32) {
	if len(buf) != p.n {
		return
	}
	p.pool.Put(buf)
}
