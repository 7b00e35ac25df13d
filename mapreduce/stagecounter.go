package mapreduce

import "sync/atomic"

// stageCounter is the packed atomic progress counter: the top two bits
// hold the stage, the next 31 bits the total item count for that stage,
// and the low 31 bits the processed count. Packing all three into one
// word gives get_state a single wait-free read instead of three atomics
// that could be observed out of step with each other.
type stageCounter struct {
	v atomic.Uint64
}

const (
	processedBits = 31
	totalBits     = 31
	processedMask = uint64(1)<<processedBits - 1
	totalMask     = processedMask << processedBits
)

func packStage(stage Stage, total uint32) uint64 {
	return uint64(stage)<<(totalBits+processedBits) | uint64(total)<<processedBits
}

func (c *stageCounter) setStage(stage Stage, total uint32) {
	c.v.Store(packStage(stage, total))
}

// incProcessed atomically adds delta to the processed field and returns
// the value it held immediately before the add, mirroring fetch_add: a
// worker compares this against the stage total to decide whether it
// claimed a real unit of work or ran off the end of the stage.
func (c *stageCounter) incProcessed(delta uint32) uint32 {
	after := c.v.Add(uint64(delta))
	before := after - uint64(delta)
	return uint32(before & processedMask)
}

func (c *stageCounter) stageTotal() uint32 {
	return uint32((c.v.Load() & totalMask) >> processedBits)
}

// snapshot decodes the full counter in one atomic read, clamping
// processed to total since a worker may have incremented past the total
// while discovering the stage is complete.
func (c *stageCounter) snapshot() (stage Stage, total, processed uint32) {
	v := c.v.Load()
	stage = Stage(v >> (totalBits + processedBits))
	total = uint32((v & totalMask) >> processedBits)
	processed = uint32(v & processedMask)
	if processed > total {
		processed = total
	}
	return stage, total, processed
}
