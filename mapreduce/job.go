package mapreduce

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/nimrodmls/huji-cs-operating-systems/internal/usem"
)

// worker owns one goroutine's intermediate vector, exclusively during Map
// and the local sort. During Shuffle the single shuffling worker walks and
// drains every worker's vector, not only its own.
type worker struct {
	job          *job
	intermediate []Pair
}

// job is the internal workhorse behind a JobHandle: it owns the input and
// output vectors, the per-worker intermediate vectors, and every
// synchronization primitive the worker goroutines share.
type job struct {
	input  []InputPair
	output *[]OutputPair

	outputMu sync.Mutex
	client   Client

	counter stageCounter

	workers        []*worker
	shuffleBarrier sync.WaitGroup
	shuffleAssign  atomic.Bool
	shuffleSem     *usem.Semaphore

	shuffleQueue   [][]Pair
	shuffleQueueMu sync.Mutex

	wg   sync.WaitGroup
	done chan struct{}
}

func newJob(client Client, input []InputPair, output *[]OutputPair, workerCount int) *job {
	j := &job{
		input:      input,
		output:     output,
		client:     client,
		shuffleSem: usem.New(0, workerCount),
		done:       make(chan struct{}),
	}
	j.workers = make([]*worker, workerCount)
	for i := range j.workers {
		j.workers[i] = &worker{job: j}
	}
	return j
}

func (j *job) start() {
	j.counter.setStage(StageMap, uint32(len(j.input)))
	j.shuffleBarrier.Add(len(j.workers))
	j.wg.Add(len(j.workers))
	for _, w := range j.workers {
		go j.runWorker(w)
	}
	go func() {
		j.wg.Wait()
		close(j.done)
	}()
}

// runWorker is one worker goroutine's entire lifetime: map, sort, barrier,
// shuffle-or-wait, chain-release, reduce.
func (j *job) runWorker(w *worker) {
	defer j.wg.Done()
	ctx := &Context{worker: w}

	j.mapStage(w, ctx)

	sort.Slice(w.intermediate, func(a, b int) bool {
		return w.intermediate[a].Key.Less(w.intermediate[b].Key)
	})

	j.shuffleBarrier.Done()
	j.shuffleBarrier.Wait()

	if j.shuffleAssign.CompareAndSwap(false, true) {
		j.shuffleStage()
	} else {
		j.shuffleSem.Wait()
	}
	j.shuffleSem.Post()

	j.reduceStage(ctx)
}

func (j *job) mapStage(w *worker, ctx *Context) {
	total := j.counter.stageTotal()
	for {
		old := j.counter.incProcessed(1)
		if old >= total {
			return
		}
		pair := j.input[old]
		j.client.Map(pair.Key, pair.Value, ctx)
	}
}

// shuffleStage runs on exactly one worker: it repeatedly pulls the
// maximal key off every non-empty intermediate vector's back,
// groups those pairs, and pushes the group onto the shuffle queue. When
// every vector is empty it sets the stage to Reduce.
func (j *job) shuffleStage() {
	total := 0
	for _, w := range j.workers {
		total += len(w.intermediate)
	}
	j.counter.setStage(StageShuffle, uint32(total))
	log.Info("shuffle: started", "total_intermediate", total)

	for {
		var maxKey Key
		found := false
		for _, w := range j.workers {
			n := len(w.intermediate)
			if n == 0 {
				continue
			}
			back := w.intermediate[n-1].Key
			if !found || maxKey.Less(back) {
				maxKey = back
				found = true
			}
		}
		if !found {
			break
		}

		var group []Pair
		for _, w := range j.workers {
			for len(w.intermediate) > 0 {
				n := len(w.intermediate)
				back := w.intermediate[n-1]
				if !keyEquals(back.Key, maxKey) {
					break
				}
				group = append(group, back)
				w.intermediate = w.intermediate[:n-1]
			}
		}

		j.counter.incProcessed(uint32(len(group)))
		j.shuffleQueueMu.Lock()
		j.shuffleQueue = append(j.shuffleQueue, group)
		j.shuffleQueueMu.Unlock()
	}

	log.Info("shuffle: done", "groups", len(j.shuffleQueue))
	j.counter.setStage(StageReduce, uint32(len(j.shuffleQueue)))
}

func (j *job) reduceStage(ctx *Context) {
	total := j.counter.stageTotal()
	for {
		old := j.counter.incProcessed(1)
		if old >= total {
			return
		}
		j.shuffleQueueMu.Lock()
		group := j.shuffleQueue[len(j.shuffleQueue)-1]
		j.shuffleQueue = j.shuffleQueue[:len(j.shuffleQueue)-1]
		j.shuffleQueueMu.Unlock()
		j.client.Reduce(group, ctx)
	}
}

func (j *job) addOutput(key, value any) {
	j.outputMu.Lock()
	defer j.outputMu.Unlock()
	*j.output = append(*j.output, OutputPair{Key: key, Value: value})
}
