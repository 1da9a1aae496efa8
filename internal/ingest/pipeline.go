package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
)

// Store is the pipeline's view of the vector store.
type Store interface {
	EnsureCollection(ctx context.Context, dimensions int) error
	UpsertBatch(ctx context.Context, listings []listing.Listing, vectors [][]float32) error
}

// Stats summarizes one pipeline run.
type Stats struct {
	Indexed int64
	Failed  int64
}

// Pipeline embeds and indexes catalog records in concurrent batches. Failed
// batches are logged and counted, never retried; a rerun is idempotent because
// point ids derive from listing ids.
type Pipeline struct {
	store      Store
	embed      domain.Embedder
	pool       *ants.Pool
	batchSize  int
	dimensions int
	logger     *zap.Logger
}

// PipelineConfig holds the ingestion settings.
type PipelineConfig struct {
	Store      Store
	Embedder   domain.Embedder
	Workers    int
	BatchSize  int
	Dimensions int
	Logger     *zap.Logger
}

// NewPipeline creates an ingestion pipeline with a bounded worker pool.
func NewPipeline(cfg *PipelineConfig) (*Pipeline, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Pipeline{
		store:      cfg.Store,
		embed:      cfg.Embedder,
		pool:       pool,
		batchSize:  batchSize,
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}, nil
}

// Run flattens, embeds and upserts every record, then reports totals. The
// collection is created first if missing.
func (p *Pipeline) Run(ctx context.Context, records []rawProperty) (Stats, error) {
	if err := p.store.EnsureCollection(ctx, p.dimensions); err != nil {
		return Stats{}, fmt.Errorf("ensure collection: %w", err)
	}

	var (
		wg    sync.WaitGroup
		stats Stats
	)

	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			p.processBatch(ctx, batch, &stats)
		})
		if err != nil {
			wg.Done()
			atomic.AddInt64(&stats.Failed, int64(len(batch)))
			p.logger.Error("failed to submit batch", zap.Error(err))
		}
	}

	wg.Wait()

	p.logger.Info("ingestion finished",
		zap.Int64("indexed", atomic.LoadInt64(&stats.Indexed)),
		zap.Int64("failed", atomic.LoadInt64(&stats.Failed)),
	)
	return Stats{
		Indexed: atomic.LoadInt64(&stats.Indexed),
		Failed:  atomic.LoadInt64(&stats.Failed),
	}, ctx.Err()
}

func (p *Pipeline) processBatch(ctx context.Context, batch []rawProperty, stats *Stats) {
	if ctx.Err() != nil {
		atomic.AddInt64(&stats.Failed, int64(len(batch)))
		return
	}

	listings := make([]listing.Listing, 0, len(batch))
	vectors := make([][]float32, 0, len(batch))

	for i := range batch {
		l := Flatten(&batch[i])

		emb, err := p.embed.Embed(ctx, l.SemanticText)
		if err != nil {
			atomic.AddInt64(&stats.Failed, 1)
			p.logger.Warn("failed to embed listing",
				zap.String("id", l.ID),
				zap.Error(err),
			)
			continue
		}

		listings = append(listings, l)
		vectors = append(vectors, emb.Embedding)
	}

	if len(listings) == 0 {
		return
	}

	if err := p.store.UpsertBatch(ctx, listings, vectors); err != nil {
		atomic.AddInt64(&stats.Failed, int64(len(listings)))
		p.logger.Error("failed to upsert batch",
			zap.Int("size", len(listings)),
			zap.Error(err),
		)
		return
	}

	atomic.AddInt64(&stats.Indexed, int64(len(listings)))
}

// Release shuts down the worker pool. The pipeline must not be used after.
func (p *Pipeline) Release() {
	p.pool.Release()
}
