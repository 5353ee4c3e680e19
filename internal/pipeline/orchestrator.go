package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/digibhoomi/record-translator/internal/agent/translate"
	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/metrics"
)

// contextTailChars is how much of the preceding chunk's source is offered to
// the capability for terminology consistency across chunk boundaries.
const contextTailChars = 150

// Orchestrator drives per-chunk translation with bounded concurrency. Merge
// order is always SequenceIndex order, never completion order.
type Orchestrator struct {
	capability translate.Capability
	workers    int
	timeout    time.Duration
	sourceLang string
	logger     logger.Logger
	observer   Observer
	metrics    *metrics.Metrics
}

// SetMetrics attaches optional collectors for chunk outcomes and latency.
func (o *Orchestrator) SetMetrics(m *metrics.Metrics) {
	o.metrics = m
}

func NewOrchestrator(capability translate.Capability, workers int, timeout time.Duration, sourceLang string, log logger.Logger, obs Observer) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Orchestrator{
		capability: capability,
		workers:    workers,
		timeout:    timeout,
		sourceLang: sourceLang,
		logger:     log,
		observer:   obs,
	}
}

// TranslateAll translates every chunk and returns the updated set plus the
// wall-clock duration from first dispatch to last completion. A failed chunk
// is recorded and kept as a placeholder; only the all-failed case is an
// error. Capability failures are classified per chunk and never propagated
// raw; a context cancellation aborts the remaining work.
func (o *Orchestrator) TranslateAll(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, time.Duration, error) {
	if len(chunks) == 0 {
		return chunks, 0, nil
	}

	started := time.Now()
	var failed, done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.workers)

	for i := range chunks {
		i := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			o.translateChunk(gctx, chunks, i, &failed)

			completed := done.Add(1)
			pct := 10 + int(float64(completed)/float64(len(chunks))*80)
			o.observer.OnProgress(Progress{
				Phase:   PhaseTranslating,
				Percent: pct,
				Message: fmt.Sprintf("translated %d of %d chunks", completed, len(chunks)),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return chunks, time.Since(started), err
	}

	elapsed := time.Since(started)
	if int(failed.Load()) == len(chunks) {
		return chunks, elapsed, ErrAllChunksFailed
	}
	return chunks, elapsed, nil
}

// translateChunk runs one capability call and mutates only slot i. Each
// goroutine owns its slot, so no lock is needed.
func (o *Orchestrator) translateChunk(ctx context.Context, chunks []models.Chunk, i int, failed *atomic.Int64) {
	req := translate.Request{
		Text:       chunks[i].SourceText,
		SourceLang: o.sourceLang,
	}
	if i > 0 {
		req.Context = tail(chunks[i-1].SourceText, contextTailChars)
	}

	cctx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	callStarted := time.Now()
	out, err := o.capability.Translate(cctx, req)
	if o.metrics != nil {
		o.metrics.ChunkLatency.Observe(time.Since(callStarted).Seconds())
	}
	if err != nil {
		failed.Add(1)
		kind := translate.KindOf(err).String()
		chunks[i].Status = models.ChunkFailed
		chunks[i].FailReason = kind
		if o.metrics != nil {
			o.metrics.ChunksFailed.WithLabelValues(kind).Inc()
		}
		o.logger.Warn("chunk translation failed",
			logger.Int("chunk", chunks[i].SequenceIndex),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return
	}

	chunks[i].Status = models.ChunkTranslated
	chunks[i].TranslatedText = out
	if o.metrics != nil {
		o.metrics.ChunksTranslated.Inc()
	}
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
