package subscriber

import (
	"context"
	"sync"
	"time"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/id"
	"github.com/eigenlog/eigenlog/internal/metrics"
)

// entry is one record accepted on the logging channel, tagged with its
// severity.
type entry struct {
	Severity domain.Severity
	Record   domain.Record
}

// sendResult reports the outcome of an in-flight send back to the loop.
type sendResult struct {
	severity domain.Severity
	err      error
}

// Options configures a Shipper.
type Options struct {
	Host         domain.Host
	App          domain.App
	Sink         Sink
	CacheLimits  CacheLimits
	CacheTimeout time.Duration

	// ErrorHook is invoked synchronously on the shipper's loop goroutine, so
	// it must not block, whenever a send or ID generation fails. The
	// shipper never terminates the process on a send failure.
	ErrorHook func(error)

	// Metrics is optional; when set, the shipper reports ship counts and
	// cache depth to it.
	Metrics *metrics.Registry
}

// Shipper is the task that owns the cache and drives outbound delivery
// (C8). Exactly one in-flight send is outstanding at a time, providing
// natural backpressure.
type Shipper struct {
	host domain.Host
	app  domain.App
	sink Sink
	gen  *id.Generator
	hook func(error)

	cache   *cache
	in      *unboundedQueue
	metrics *metrics.Registry

	flushCh chan chan error
	doneCh  chan struct{}

	// drainSnapshot is populated by loop() just before it exits so Close
	// can hand the final cache contents to the shutdown drainer without a
	// race on cache's internal state.
	drainSnapshot []pendingBatch

	wg sync.WaitGroup
}

// NewShipper constructs and starts a Shipper. Callers must call Close to
// drain remaining records on shutdown.
func NewShipper(opts Options) *Shipper {
	hook := opts.ErrorHook
	if hook == nil {
		hook = func(error) {}
	}

	s := &Shipper{
		host:    opts.Host,
		app:     opts.App,
		sink:    opts.Sink,
		gen:     id.NewGenerator(),
		hook:    hook,
		cache:   newCache(opts.CacheLimits, opts.CacheTimeout),
		in:      newUnboundedQueue(),
		metrics: opts.Metrics,
		flushCh: make(chan chan error),
		doneCh:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.loop()
	return s
}

// Log enqueues rec at severity sev. Never blocks the caller: the input
// queue is unbounded, matching spec's "non-blocking in-process log
// capture."
func (s *Shipper) Log(sev domain.Severity, rec domain.Record) {
	s.in.push(entry{Severity: sev, Record: rec})
}

// Flush forces every non-empty batch to ship and blocks until all of them
// are acknowledged by the sink.
func (s *Shipper) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case s.flushCh <- reply:
	case <-s.doneCh:
		return domain.ErrSubscriberClosed
	case <-ctx.Done():
		return domain.ErrFlushResponse.WithCause(ctx.Err())
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return domain.ErrFlushResponse.WithCause(ctx.Err())
	}
}

// Close stops accepting new records, runs the shutdown drainer (C9) over
// whatever remains cached, and waits for the loop to exit.
func (s *Shipper) Close(ctx context.Context) {
	close(s.doneCh)
	s.in.close()
	s.wg.Wait()
	drain(ctx, s.host, s.app, s.sink, s.drainSnapshot)
}

func (s *Shipper) loop() {
	defer s.wg.Done()

	var inFlight bool
	sendDone := make(chan sendResult, 1)

	maybeSend := func() {
		if inFlight {
			return
		}
		sev, ok := s.cache.nextEligible(time.Now())
		if !ok {
			return
		}
		batch := s.cache.detach(sev)
		inFlight = true
		go func() {
			err := s.sink.Send(context.Background(), s.host, s.app, sev, batch)
			if s.metrics != nil {
				if err != nil {
					s.metrics.ObserveShipError(string(s.host), string(s.app))
				} else {
					s.metrics.ObserveShip(string(s.host), string(s.app), sev, len(batch))
				}
			}
			sendDone <- sendResult{severity: sev, err: err}
		}()
	}

	for {
		select {
		case e, ok := <-s.in.out():
			if !ok {
				s.waitInFlight(sendDone, &inFlight)
				s.drainSnapshot = s.cache.nonEmpty()
				return
			}
			recID, err := s.gen.Generate()
			if err != nil {
				s.hook(err)
				continue
			}
			s.cache.insert(e.Severity, recID, e.Record)
			if s.metrics != nil {
				s.metrics.SetCacheDepth(string(s.host), string(s.app), e.Severity, s.cache.depth(e.Severity))
			}
			maybeSend()

		case res := <-sendDone:
			inFlight = false
			if res.err != nil {
				s.hook(res.err)
			}
			maybeSend()

		case reply := <-s.flushCh:
			s.doFlush(reply, sendDone, &inFlight)
			maybeSend()
		}
	}
}

// doFlush detaches every non-empty batch, ships each one (waiting for any
// currently in-flight send first so sends stay serialized), and reports
// completion on reply.
func (s *Shipper) doFlush(reply chan error, sendDone chan sendResult, inFlight *bool) {
	s.waitInFlight(sendDone, inFlight)

	pending := s.cache.nonEmpty()
	var firstErr error
	for _, p := range pending {
		if err := s.sink.Send(context.Background(), s.host, s.app, p.Severity, p.Batch); err != nil {
			s.hook(err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	reply <- firstErr
}

// waitInFlight blocks until any outstanding send completes, clearing the
// in-flight flag. Used by flush to serialize with the main loop's sends.
func (s *Shipper) waitInFlight(sendDone chan sendResult, inFlight *bool) {
	if !*inFlight {
		return
	}
	res := <-sendDone
	*inFlight = false
	if res.err != nil {
		s.hook(res.err)
	}
}
