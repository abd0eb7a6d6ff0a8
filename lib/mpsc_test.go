package lib

import (
	"runtime"
	"sync"
	"testing"
)

func TestMPSCsequential(t *testing.T) {

	type vv struct {
		v int64
	}
	l := int64(10)
	queue := NewQueueMPSC[vv](l)
	if queue.Size() != l {
		t.Fatal("queue size must be", l)
	}
	// append to the queue
	for i := int64(0); i < l; i++ {
		v := vv{v: i + 100}
		if queue.Push(v) == false {
			t.Fatal("can't push value into the queue")
		}
	}
	if queue.Len() != l {
		t.Fatal("queue length must be 10")
	}

	if queue.Push(vv{}) == true {
		t.Fatal("must be false: exceeded the limit", queue.Len())
	}

	// popping from the queue
	for i := int64(0); i < l; i++ {
		v, ok := queue.Pop()
		if ok == false {
			t.Fatal("there must be value")
		}
		if v.v != i+100 {
			t.Fatal("incorrect value. expected", i+100, "got", v)
		}
	}

	// must be empty
	if queue.Len() != 0 {
		t.Fatal("queue length must be 0")
	}
	if _, ok := queue.Pop(); ok {
		t.Fatal("queue must be empty")
	}
	// room again
	if queue.Push(vv{}) == false {
		t.Fatal("can't push value into the queue")
	}
}

func TestMPSCunlimited(t *testing.T) {
	queue := NewQueueMPSC[int](0)
	if queue.Size() != -1 {
		t.Fatal("queue must be unlimited")
	}
	for i := 0; i < 1000; i++ {
		if queue.Push(i) == false {
			t.Fatal("can't push value into the queue")
		}
	}
	if queue.Len() != 1000 {
		t.Fatal("queue length must be 1000, have", queue.Len())
	}
}

func TestMPSCparallel(t *testing.T) {
	const (
		numProducers = 8
		numMessages  = 10000
	)
	queue := NewQueueMPSC[int64](0)

	var wg sync.WaitGroup
	sum := int64(0)
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < numMessages; i++ {
				queue.Push(int64(p*numMessages + i))
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}

	// consume while producing
	sum1 := int64(0)
	popped := 0
	for popped < numProducers*numMessages {
		v, ok := queue.Pop()
		if ok == false {
			runtime.Gosched()
			continue
		}
		sum1 += v
		popped++
	}
	wg.Wait()

	for i := int64(0); i < numProducers*numMessages; i++ {
		sum += i
	}
	if sum != sum1 {
		t.Fatal("wrong value. exp", sum, "got", sum1)
	}
	if queue.Len() != 0 {
		t.Fatal("queue length must be 0")
	}
}
