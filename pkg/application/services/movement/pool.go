package movement

import (
	"hash/fnv"
	"sync"
)

// keyedPool runs submitted work on a fixed set of workers, routing each
// job by key so jobs sharing a key execute in submission order. The
// generators key on warehouse+SKU, which keeps same-day operations on
// one stock line serialized while unrelated lines proceed in parallel.
type keyedPool struct {
	queues  []chan func()
	pending sync.WaitGroup
	workers sync.WaitGroup
}

func newKeyedPool(n int) *keyedPool {
	if n < 1 {
		n = 1
	}
	p := &keyedPool{queues: make([]chan func(), n)}
	for i := range p.queues {
		ch := make(chan func(), 64)
		p.queues[i] = ch
		p.workers.Add(1)
		go func() {
			defer p.workers.Done()
			for fn := range ch {
				fn()
				p.pending.Done()
			}
		}()
	}
	return p
}

func (p *keyedPool) submit(key string, fn func()) {
	h := fnv.New32a()
	h.Write([]byte(key))
	p.pending.Add(1)
	p.queues[int(h.Sum32())%len(p.queues)] <- fn
}

// drain blocks until every submitted job has finished. Called at each
// day boundary so days never interleave.
func (p *keyedPool) drain() {
	p.pending.Wait()
}

// close drains and shuts the workers down.
func (p *keyedPool) close() {
	p.pending.Wait()
	for _, ch := range p.queues {
		close(ch)
	}
	p.workers.Wait()
}
