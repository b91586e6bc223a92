package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/mercwork/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a job id is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "job-1")

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a second record reports it as in flight", func() {
				So(d.SeenAndRecord(ctx, "job-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And releasing it allows it to be recorded again", func() {
				d.Unrecord(ctx, "job-1")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
			})
		})

		Convey("When releasing an unknown id", func() {
			d.Unrecord(ctx, "nope")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a bounded deduper at capacity", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("job-%d", i))
		}

		Convey("Then a new id evicts the oldest", func() {
			So(d.SeenAndRecord(ctx, "job-4"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "job-4"), ShouldBeTrue)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("job-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent callers racing on the same ids", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins = make(map[string]int)
		)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					id := fmt.Sprintf("job-%d", i)
					if !d.SeenAndRecord(ctx, id) {
						mu.Lock()
						wins[id]++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one caller wins each id", func() {
			So(wins, ShouldHaveLength, 100)
			for _, n := range wins {
				So(n, ShouldEqual, 1)
			}
		})
	})
}
