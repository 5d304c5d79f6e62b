package scorer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-dashboard/internal/model"
)

const (
	// DefaultRemoteLimit is how many leads of a bulk run get a remote call.
	DefaultRemoteLimit = 20
	// DefaultConcurrency bounds parallel remote calls in a bulk run.
	DefaultConcurrency = 4
)

// Analyzer combines a remote scorer with the rule-based scorers.
type Analyzer struct {
	remote      Scorer
	fallback    Scorer
	heuristic   Scorer
	cache       Cache
	remoteLimit int
	concurrency int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithRemote sets the remote scorer. Without one every lead falls back.
func WithRemote(s Scorer) AnalyzerOption {
	return func(a *Analyzer) { a.remote = s }
}

// WithCache caches remote analyses.
func WithCache(c Cache) AnalyzerOption {
	return func(a *Analyzer) { a.cache = c }
}

// WithRemoteLimit sets how many leads of a bulk run are scored remotely.
func WithRemoteLimit(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n >= 0 {
			a.remoteLimit = n
		}
	}
}

// WithConcurrency bounds parallel remote calls in a bulk run.
func WithConcurrency(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		fallback:    FallbackScorer{},
		heuristic:   HeuristicScorer{},
		remoteLimit: DefaultRemoteLimit,
		concurrency: DefaultConcurrency,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// AnalyzeLead scores lead remotely, falling back to rules on any failure.
// It never returns an error.
func (a *Analyzer) AnalyzeLead(ctx context.Context, lead model.Lead) model.LeadAnalysis {
	log := zap.L().With(zap.Int("lead_id", lead.ID))

	if a.remote == nil {
		return a.score(ctx, a.fallback, lead)
	}

	if a.cache != nil {
		cached, err := a.cache.Get(ctx, lead)
		if err != nil {
			log.Warn("analysis cache get failed", zap.Error(err))
		} else if cached != nil {
			return *cached
		}
	}

	start := time.Now()
	analysis, err := a.remote.Score(ctx, lead)
	if err != nil {
		log.Warn("remote analysis failed, using fallback",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return a.score(ctx, a.fallback, lead)
	}
	analysis.LeadID = lead.ID

	if a.cache != nil {
		if err := a.cache.Set(ctx, lead, analysis); err != nil {
			log.Warn("analysis cache set failed", zap.Error(err))
		}
	}
	return analysis
}

// AnalyzeBulk scores leads in order. The first remoteLimit leads go through
// AnalyzeLead, up to concurrency at a time; the rest use the heuristic. The
// analyses keep the input order.
func (a *Analyzer) AnalyzeBulk(ctx context.Context, leads []model.Lead) model.BulkAnalysis {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("bulk_run", runID))

	analyses := make([]model.LeadAnalysis, len(leads))
	n := min(a.remoteLimit, len(leads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	var remote atomic.Int64
	for i := range n {
		g.Go(func() error {
			analyses[i] = a.AnalyzeLead(gctx, leads[i])
			if analyses[i].Source == model.SourceRemote {
				remote.Add(1)
			}
			return nil
		})
	}
	for i := n; i < len(leads); i++ {
		analyses[i] = a.score(ctx, a.heuristic, leads[i])
	}
	_ = g.Wait()

	log.Info("bulk analysis complete",
		zap.Int("leads", len(leads)),
		zap.Int("remote_budget", n),
		zap.Int64("remote_scored", remote.Load()),
	)
	return model.BulkAnalysis{Analyses: analyses, Summary: Summarize(analyses)}
}

// score runs one of the total rule scorers.
func (a *Analyzer) score(ctx context.Context, s Scorer, lead model.Lead) model.LeadAnalysis {
	analysis, err := s.Score(ctx, lead)
	if err != nil {
		zap.L().Error("rule scorer failed", zap.Int("lead_id", lead.ID), zap.Error(err))
		return Fallback(lead)
	}
	return analysis
}
