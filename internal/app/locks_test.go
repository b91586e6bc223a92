package service

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKeyedMutex(t *testing.T) {
	Convey("Given a keyed mutex", t, func() {
		k := newKeyedMutex()

		Convey("Holders of one key run one at a time", func() {
			var (
				wg      sync.WaitGroup
				active  int
				maxSeen int
				mu      sync.Mutex
			)
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock := k.Lock("req-1")
					mu.Lock()
					active++
					maxSeen = max(maxSeen, active)
					mu.Unlock()

					mu.Lock()
					active--
					mu.Unlock()
					unlock()
				}()
			}
			wg.Wait()
			So(maxSeen, ShouldEqual, 1)
			So(k.Len(), ShouldEqual, 0)
		})

		Convey("Distinct keys do not block each other", func() {
			unlockA := k.Lock("req-a")
			unlockB := k.Lock("req-b")
			So(k.Len(), ShouldEqual, 2)
			unlockA()
			unlockB()
			So(k.Len(), ShouldEqual, 0)
		})
	})
}
