// Package stress drives concurrent Alloc/Free traffic against a buddy
// allocator to exercise its process-shared locking under load.
package stress

import (
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/shmbuddy/shmbuddy/buddy"
	"github.com/shmbuddy/shmbuddy/offset"
)

// Result summarizes one Run.
type Result struct {
	Allocs    int64
	Frees     int64
	Exhausted int64 // Alloc calls that returned offset.Null
	Panics    int64 // worker goroutines that recovered from a panic
}

// Run launches workers goroutines standing in for workers separate
// processes sharing a, each performing rounds alloc/free cycles of size
// n bytes, and blocks until all of them finish. A panicking worker is
// recovered and counted rather than taking the whole run down with it,
// so one bad round doesn't hide the rest of the run's results.
func Run(a *buddy.Allocator, workers, rounds, n int) Result {
	var res Result
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					atomic.AddInt64(&res.Panics, 1)
					log.Printf("stress: worker panic: %v: %s", r, debug.Stack())
				}
			}()
			for r := 0; r < rounds; r++ {
				p := a.Alloc(n)
				if p == offset.Null {
					atomic.AddInt64(&res.Exhausted, 1)
					continue
				}
				atomic.AddInt64(&res.Allocs, 1)
				a.Free(p)
				atomic.AddInt64(&res.Frees, 1)
			}
		}()
	}

	wg.Wait()
	return res
}
