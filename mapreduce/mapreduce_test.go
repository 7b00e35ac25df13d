package mapreduce

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// word is a Key implementation over plain strings, used by the word-count
// client below.
type word string

func (w word) Less(other Key) bool { return w < other.(word) }

type wordCountClient struct{}

func (wordCountClient) Map(key, value any, ctx *Context) {
	line := value.(string)
	for _, w := range strings.Fields(line) {
		ctx.Emit2(word(w), 1)
	}
}

func (wordCountClient) Reduce(pairs []Pair, ctx *Context) {
	sum := 0
	for _, p := range pairs {
		sum += p.Value.(int)
	}
	ctx.Emit3(string(pairs[0].Key.(word)), sum)
}

func TestWordCountJob(t *testing.T) {
	input := []InputPair{
		{Key: 0, Value: "the quick brown fox"},
		{Key: 1, Value: "the lazy dog"},
		{Key: 2, Value: "the fox jumps"},
		{Key: 3, Value: "quick dog runs"},
		{Key: 4, Value: "the the the"},
	}
	expected := map[string]int{
		"the":   6,
		"quick": 2,
		"brown": 1,
		"fox":   2,
		"lazy":  1,
		"dog":   2,
		"jumps": 1,
		"runs":  1,
	}

	var output []OutputPair
	handle := StartMapReduceJob(wordCountClient{}, input, &output, 4)

	var observed []Stage
	done := false
	for i := 0; i < 1_000_000 && !done; i++ {
		st := handle.GetState()
		if len(observed) == 0 || observed[len(observed)-1] != st.Stage {
			observed = append(observed, st.Stage)
		}
		done = st.Stage == StageReduce && st.Percentage >= 100
	}
	if err := handle.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !done {
		t.Fatalf("job did not reach Reduce@100%% within the polling budget")
	}

	if len(output) != len(expected) {
		t.Fatalf("got %d output pairs, want %d: %v", len(output), len(expected), output)
	}
	got := map[string]int{}
	for _, p := range output {
		got[p.Key.(string)] = p.Value.(int)
	}
	for k, v := range expected {
		if got[k] != v {
			t.Errorf("word %q: got %d, want %d", k, got[k], v)
		}
	}

	// The job is already in Map when StartMapReduceJob returns, and polling
	// can miss a short stage such as Shuffle, so the check is that the stages
	// seen in polling order only ever move forward through this order.
	order := []Stage{StageUndefined, StageMap, StageShuffle, StageReduce}
	for i := 1; i < len(observed); i++ {
		if observed[i] < observed[i-1] {
			t.Fatalf("stage progression %v does not follow the order %v", observed, order)
		}
	}
}

// slowClient simulates client-side Map work heavy enough to make a job's
// wall-clock duration observable from outside, rather than finishing before
// a caller can ever see it still running.
type slowClient struct {
	perItem time.Duration
}

func (c slowClient) Map(key, value any, ctx *Context) {
	time.Sleep(c.perItem)
	ctx.Emit2(word(value.(string)), 1)
}

func (slowClient) Reduce(pairs []Pair, ctx *Context) {
	ctx.Emit3(string(pairs[0].Key.(word)), len(pairs))
}

func TestWaitRespectsContextDeadline(t *testing.T) {
	input := []InputPair{
		{Key: 0, Value: "a"}, {Key: 1, Value: "b"}, {Key: 2, Value: "c"},
		{Key: 3, Value: "d"}, {Key: 4, Value: "e"}, {Key: 5, Value: "f"},
	}
	var output []OutputPair
	handle := StartMapReduceJob(slowClient{perItem: 20 * time.Millisecond}, input, &output, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := handle.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("wait with a short deadline: got %v, want context.DeadlineExceeded", err)
	}

	if err := handle.Wait(context.Background()); err != nil {
		t.Fatalf("job never completed after the deadline expired: %v", err)
	}
}

func TestStageCounterPacking(t *testing.T) {
	var c stageCounter
	c.setStage(StageMap, 10)

	stage, total, processed := c.snapshot()
	if stage != StageMap || total != 10 || processed != 0 {
		t.Fatalf("got (%v, %d, %d), want (map, 10, 0)", stage, total, processed)
	}

	for i := 0; i < 5; i++ {
		old := c.incProcessed(1)
		if old != uint32(i) {
			t.Fatalf("incProcessed iteration %d: got old=%d, want %d", i, old, i)
		}
	}

	_, _, processed = c.snapshot()
	if processed != 5 {
		t.Fatalf("processed = %d, want 5", processed)
	}
}
