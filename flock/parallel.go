package flock

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/boids/agent"
)

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	neighbors []agent.Neighbor
}

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
	boundary   float64
}

// parallelState holds the worker pool used for the steering pass.
type parallelState struct {
	scratches  []workerScratch
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]workerScratch, workers)
	for i := range scratches {
		scratches[i].neighbors = make([]agent.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers: workers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(f *Flock) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(f, i)
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

// worker processes chunks until stopped.
func (p *parallelState) worker(f *Flock, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			f.steerChunk(chunk.start, chunk.end, scratch, chunk.boundary)
			p.doneChan <- struct{}{}
		}
	}
}

// steerParallel splits the steering pass across the worker pool and waits
// for every chunk to finish.
func (f *Flock) steerParallel(n int, boundary float64) {
	p := f.parallel
	if !p.running {
		p.startWorkers(f)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, boundary: boundary}
		dispatched++
	}

	for range dispatched {
		<-p.doneChan
	}
}
