/*
DESCRIPTION
  ratectrl_test.go provides testing for ratectrl.go: the Qstep/QP
  conversion tables, the CPB-window bitrate bound ShouldSkip enforces,
  and the borrow/repay counter cap that keeps a long-running session's
  counterBTsrc/counterBTdst from growing without bound.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package ratectrl

import "testing"

func TestQstepQPRoundTrip(t *testing.T) {
	for qp := 0; qp <= 51; qp++ {
		got := qstepToQP(qpToQstep(qp))
		if got != qp {
			t.Errorf("qstepToQP(qpToQstep(%d)) = %d, want %d", qp, got, qp)
		}
	}
}

func TestQpToQstepMonotonic(t *testing.T) {
	prev := qpToQstep(0)
	for qp := 1; qp <= 51; qp++ {
		cur := qpToQstep(qp)
		if cur <= prev {
			t.Errorf("qpToQstep(%d) = %v, not greater than qpToQstep(%d) = %v", qp, cur, qp-1, prev)
		}
		prev = cur
	}
}

// TestQPForFrameStaysInBounds checks that QPForFrame never returns a QP
// outside [MinQP, MaxQP] regardless of how extreme mad or the CPB
// occupancy history is, across a run long enough to exercise the
// moving-target deviation accumulator, the nearest-MAD history search
// and both branches of active protection.
func TestQPForFrameStaysInBounds(t *testing.T) {
	c := NewController(Config{
		BitRate:       256000,
		FrameRate:     25,
		CPBSize:       256000,
		InitialQP:     26,
		MinQP:         10,
		MaxQP:         40,
		IFrameQPDelta: -2,
	})

	mads := []float64{0, 1, 5, 20, 80, 255, 1000}
	for i := 0; i < 500; i++ {
		isI := i%30 == 0
		mad := mads[i%len(mads)]
		qp := c.QPForFrame(isI, mad)
		if qp < c.cfg.MinQP || qp > c.cfg.MaxQP {
			t.Fatalf("iteration %d: QPForFrame = %d, want in [%d, %d]", i, qp, c.cfg.MinQP, c.cfg.MaxQP)
		}
		// Simulate a bitrate that swings between far over and far under
		// target to stress the borrow/repay counters.
		actualBits := int(c.targetBitsPerFrame * (0.2 + 3.0*mad/1000))
		c.Update(actualBits, qp, mad)

		if c.counterBTsrc > counterCap || c.counterBTsrc < 0 {
			t.Fatalf("iteration %d: counterBTsrc = %d out of [0, %d]", i, c.counterBTsrc, counterCap)
		}
		if c.counterBTdst > counterCap || c.counterBTdst < 0 {
			t.Fatalf("iteration %d: counterBTdst = %d out of [0, %d]", i, c.counterBTdst, counterCap)
		}
	}
}

// TestShouldSkipThreshold checks the CPB-overflow skip guard trips only
// once occupancy passes 95% of capacity, bounding how far actual coded
// size may drift from the bitrate target before frames start dropping.
func TestShouldSkipThreshold(t *testing.T) {
	c := NewController(Config{BitRate: 100000, FrameRate: 25, CPBSize: 100000, InitialQP: 26})

	c.cpbOccupancy = float64(c.cfg.CPBSize) * 0.94
	if c.ShouldSkip() {
		t.Error("ShouldSkip() = true at 94% occupancy, want false")
	}
	c.cpbOccupancy = float64(c.cfg.CPBSize) * 0.96
	if !c.ShouldSkip() {
		t.Error("ShouldSkip() = false at 96% occupancy, want true")
	}
}

// TestUpdateClampsCPBOccupancy checks CPB occupancy never goes negative
// or exceeds capacity, the leaky-bucket model's own invariant.
func TestUpdateClampsCPBOccupancy(t *testing.T) {
	c := NewController(Config{BitRate: 100000, FrameRate: 25, CPBSize: 50000, InitialQP: 26})

	c.Update(0, 26, 10) // far under target: should not go negative.
	if c.cpbOccupancy < 0 {
		t.Errorf("cpbOccupancy = %v after large undershoot, want >= 0", c.cpbOccupancy)
	}

	for i := 0; i < 50; i++ {
		c.Update(1000000, 26, 10) // far over target, repeatedly.
	}
	if c.cpbOccupancy > float64(c.cfg.CPBSize) {
		t.Errorf("cpbOccupancy = %v after repeated overshoot, want <= CPBSize %d", c.cpbOccupancy, c.cfg.CPBSize)
	}
}

func TestLambdaIncreasesWithQP(t *testing.T) {
	prev := Lambda(0)
	for qp := 1; qp <= 51; qp++ {
		cur := Lambda(qp)
		if cur <= prev {
			t.Errorf("Lambda(%d) = %v, not greater than Lambda(%d) = %v", qp, cur, qp-1, prev)
		}
		prev = cur
	}
}
