package utils

import (
	"runtime"
	"sync"
)

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	bucket[0], bucket[1] = SplitRange(0, pm.MaxIndex, pm.ParallelDegree, threadNum)
	return
}

// SplitRange returns the part of [lo,hi) owned by threadNum out of NP threads.
// Sizes differ by at most one, the remainder going to the lowest threads.
func SplitRange(lo, hi, NP, threadNum int) (start, end int) {
	var (
		total     = hi - lo
		Npart     = total / NP
		remainder = total % NP
		startAdd  int
		endAdd    int
	)
	if total <= 0 {
		return lo, lo
	}
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	start = lo + threadNum*Npart + startAdd
	end = start + Npart + endAdd
	return
}

/*
Barrier is a reusable full-team rendezvous. Every one of the N participants
must call Wait the same number of times, otherwise the team deadlocks.
*/
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n, count   int
	generation uint64
}

func NewBarrier(n int) (b *Barrier) {
	b = &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return
}

func (b *Barrier) Wait() {
	b.mu.Lock()
	gen := b.generation
	b.count++
	if b.count == b.n {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

/*
Team is a fixed pool of goroutines that outlives any single computation.
Parallel hands the same function to every member and returns when all of
them finish, so one call is one parallel region. Inside the region members
split loops with Worker.For and line up on the shared barrier between phases.
*/
type Team struct {
	ParallelDegree int
	barrier        *Barrier
	jobs           []chan func(w *Worker)
	wg             sync.WaitGroup
	mu             sync.Mutex
	closed         bool
}

type Worker struct {
	ID   int
	team *Team
}

// NewTeam starts ProcLimit goroutines, or one per CPU when ProcLimit is zero.
// The team is never larger than maxUseful, the widest loop it will split.
func NewTeam(ProcLimit, maxUseful int) (t *Team) {
	NP := ProcLimit
	if NP <= 0 {
		NP = runtime.NumCPU()
	}
	if maxUseful > 0 && NP > maxUseful {
		NP = maxUseful
	}
	if NP < 1 {
		NP = 1
	}
	t = &Team{
		ParallelDegree: NP,
		barrier:        NewBarrier(NP),
		jobs:           make([]chan func(w *Worker), NP),
	}
	for np := 0; np < NP; np++ {
		t.jobs[np] = make(chan func(w *Worker))
		go t.workerLoop(&Worker{ID: np, team: t}, t.jobs[np])
	}
	return
}

func (t *Team) workerLoop(w *Worker, jobs <-chan func(w *Worker)) {
	for fn := range jobs {
		fn(w)
		t.wg.Done()
	}
}

// Parallel runs fn once on every worker and blocks until all have returned.
// Calls from different goroutines are serialized.
func (t *Team) Parallel(fn func(w *Worker)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		panic("parallel region started on a closed team")
	}
	t.wg.Add(t.ParallelDegree)
	for np := 0; np < t.ParallelDegree; np++ {
		t.jobs[np] <- fn
	}
	t.wg.Wait()
}

func (t *Team) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for _, ch := range t.jobs {
		close(ch)
	}
}

func (w *Worker) NP() int { return w.team.ParallelDegree }

func (w *Worker) Range(lo, hi int) (start, end int) {
	return SplitRange(lo, hi, w.NP(), w.ID)
}

// ForNoWait runs fn over this worker's share of [lo,hi) without a barrier
func (w *Worker) ForNoWait(lo, hi int, fn func(i int)) {
	start, end := w.Range(lo, hi)
	for i := start; i < end; i++ {
		fn(i)
	}
}

// For runs fn over this worker's share of [lo,hi), then waits for the team
func (w *Worker) For(lo, hi int, fn func(i int)) {
	w.ForNoWait(lo, hi, fn)
	w.Barrier()
}

func (w *Worker) Barrier() { w.team.barrier.Wait() }
