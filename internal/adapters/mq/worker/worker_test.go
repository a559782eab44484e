package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/podium/internal/adapters/mq/worker"
	model "github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockQueue feeds records to a worker under test without depending on
// the real BoundedQueue implementation.
type mockQueue struct {
	mu      sync.Mutex
	records []model.Record
}

func (q *mockQueue) push(rec model.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, rec)
}

func (q *mockQueue) TryPop(_ time.Duration) (model.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.records) == 0 {
		time.Sleep(5 * time.Millisecond)
		return model.Record{}, false
	}
	rec := q.records[0]
	q.records = q.records[1:]
	return rec, true
}

// mockAggregator records every appended record for assertions.
type mockAggregator struct {
	mu      sync.Mutex
	records []model.Record
}

func (a *mockAggregator) Append(rec model.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

func (a *mockAggregator) snapshot() []model.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Record, len(a.records))
	copy(out, a.records)
	return out
}

func TestWorkerDrainsQueueIntoAggregator(t *testing.T) {
	convey.Convey("Given a worker bound to a queue and an aggregator", t, func() {
		q := &mockQueue{}
		agg := &mockAggregator{}
		w := worker.New(q, agg, worker.WithName("test-worker"), worker.WithPopTimeout(5*time.Millisecond))

		convey.Convey("When records are pushed and the worker runs", func() {
			q.push(model.Record{CountryID: 1, CompetitorID: 10, Score: 30})
			q.push(model.Record{CountryID: 1, CompetitorID: 11, Score: 20})

			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)

			convey.Convey("Then every record is appended to the aggregator", func() {
				deadline := time.After(500 * time.Millisecond)
				for {
					if len(agg.snapshot()) == 2 {
						break
					}
					select {
					case <-deadline:
						t.Fatal("timed out waiting for records to be aggregated")
					case <-time.After(5 * time.Millisecond):
					}
				}
				cancel()
			})
		})
	})
}

func TestPoolStartAndShutdown(t *testing.T) {
	convey.Convey("Given a pool of aggregation workers", t, func() {
		q := &mockQueue{}
		agg := &mockAggregator{}
		pool := worker.NewPool(4, q, agg)

		convey.Convey("When records are pushed and the pool is started", func() {
			for i := 0; i < 10; i++ {
				q.push(model.Record{CountryID: 1, CompetitorID: int32(i), Score: 1})
			}

			ctx := context.Background()
			pool.Start(ctx)

			deadline := time.After(time.Second)
		wait:
			for {
				if len(agg.snapshot()) == 10 {
					break wait
				}
				select {
				case <-deadline:
					t.Fatal("timed out waiting for records to be aggregated")
				case <-time.After(5 * time.Millisecond):
				}
			}

			convey.Convey("Then Shutdown returns without error", func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				err := pool.Shutdown(shutdownCtx)
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}
