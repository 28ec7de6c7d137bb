package counter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/driftwatch/driftwatch/internal/adapters/counter"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryStore(t *testing.T) {
	Convey("Given an in-memory counter store with a controllable clock", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		var mu sync.Mutex
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		advance := func(d time.Duration) {
			mu.Lock()
			now = now.Add(d)
			mu.Unlock()
		}

		store := counter.NewInMemoryStore(counter.WithClock(clock))
		defer func() { _ = store.Close() }()
		ctx := context.Background()

		Convey("When a key is incremented repeatedly within its lifetime", func() {
			Convey("Then the count grows monotonically", func() {
				for want := int64(1); want <= 5; want++ {
					got, err := store.Incr(ctx, "k1", time.Minute)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, want)
				}
			})
		})

		Convey("When a key's ttl elapses", func() {
			_, err := store.Incr(ctx, "k2", time.Minute)
			So(err, ShouldBeNil)
			advance(61 * time.Second)

			Convey("Then it reads as zero and restarts from one", func() {
				n, err := store.Peek(ctx, "k2")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)

				n, err = store.Incr(ctx, "k2", time.Minute)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When an unknown key is peeked", func() {
			Convey("Then it reads as zero without being created", func() {
				n, err := store.Peek(ctx, "missing")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then Incr refuses to count", func() {
				_, err := store.Incr(canceled, "k3", time.Minute)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When many goroutines increment the same key concurrently", func() {
			const workers = 50
			const perWorker = 20
			var wg sync.WaitGroup
			wg.Add(workers)
			for i := 0; i < workers; i++ {
				go func() {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						_, _ = store.Incr(ctx, "shared", time.Minute)
					}
				}()
			}
			wg.Wait()

			Convey("Then no increment is lost", func() {
				n, err := store.Peek(ctx, "shared")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, int64(workers*perWorker))
			})
		})
	})
}
