package session

import (
	"runtime"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	k := NewKeyedMutex()
	counters := map[string]*int{"even": new(int), "odd": new(int)}

	var wg sync.WaitGroup
	for i := range 200 {
		key := "even"
		if i%2 == 1 {
			key = "odd"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()

			v := *counters[key]
			runtime.Gosched()
			*counters[key] = v + 1
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, "even", *counters["even"], 100)
	testutil.AssertEqual(t, "odd", *counters["odd"], 100)
	testutil.AssertEqual(t, "locks released", k.size(), 0)
}
