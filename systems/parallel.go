package systems

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
)

// parallelThreshold is the minimum camera count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// cameraSnapshot captures the read-only inputs of one translation.
type cameraSnapshot struct {
	Entity      ecs.Entity
	Rotation    r3.Rotation
	TargetPoint r3.Vec
	Offset      r3.Vec
}

// workChunk represents a range of snapshots for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the worker pool for translation fan-out.
// Workers only read snapshots and write their own range of results.
type parallelState struct {
	snapshots  []cameraSnapshot
	results    []r3.Vec
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		snapshots:  make([]cameraSnapshot, 0, 64),
		results:    make([]r3.Vec, 0, 64),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.computeChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// compute fills results for every snapshot, using the pool for large batches.
func (p *parallelState) compute() {
	n := len(p.snapshots)
	if cap(p.results) < n {
		p.results = make([]r3.Vec, n)
	}
	p.results = p.results[:n]

	if n < parallelThreshold || p.numWorkers < 2 {
		p.computeChunk(0, n)
		return
	}

	p.startWorkers()

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// computeChunk resolves translations for snapshots in [i0, i1).
func (p *parallelState) computeChunk(i0, i1 int) {
	for i := i0; i < i1; i++ {
		snap := &p.snapshots[i]
		p.results[i] = camera.Translation(snap.Rotation, snap.TargetPoint, snap.Offset)
	}
}
