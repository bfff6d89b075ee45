package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"home-valuation/internal/config"
	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/logger"
	"home-valuation/internal/model"
	"home-valuation/internal/pricing"
	"home-valuation/internal/rubric"
)

// Base price sources reported on a result
const (
	PriceFromRequest  = "request"
	PriceFromDistrict = "district"
	PriceFallback     = "fallback"
)

// BasePriceResolver resolves a district to its base unit price
type BasePriceResolver interface {
	Resolve(ctx context.Context, district string) pricing.Resolution
}

// EvaluatorConfig holds the evaluator's collaborators and limits
type EvaluatorConfig struct {
	Catalog       *rubric.Catalog
	Params        OracleParams
	Retry         RetryPolicy
	Timeout       time.Duration // Overall deadline for one evaluation, 0 = none
	MaxConcurrent int64         // Concurrent oracle calls, 0 = unbounded
	StrictRubric  bool
}

// NewEvaluatorConfig builds the evaluator configuration from application config
func NewEvaluatorConfig(cfg *config.Config) EvaluatorConfig {
	return EvaluatorConfig{
		Catalog:       rubric.Default(),
		Params:        ParamsFromConfig(&cfg.OpenAI),
		Retry:         RetryPolicyFromConfig(cfg.Retry),
		Timeout:       cfg.Evaluation.Timeout,
		MaxConcurrent: int64(cfg.Evaluation.MaxConcurrent),
		StrictRubric:  cfg.Evaluation.StrictRubric,
	}
}

// EvaluateInput is a property to value
type EvaluateInput struct {
	Property  model.PropertyDescription
	Area      float64
	BasePrice float64 // > 0 overrides the district price
}

// ScoreInput is a set of caller-supplied scores to aggregate
type ScoreInput struct {
	Scores    *model.EvaluationScores
	District  string
	Area      float64
	BasePrice float64
}

// Evaluator runs the evaluation pipeline. It holds no per-request state.
type Evaluator struct {
	oracle     Oracle
	resolver   BasePriceResolver
	normalizer *Normalizer
	cfg        EvaluatorConfig
	sem        *semaphore.Weighted
}

// NewEvaluator creates a new evaluator
func NewEvaluator(oracle Oracle, resolver BasePriceResolver, cfg EvaluatorConfig) *Evaluator {
	if cfg.Catalog == nil {
		cfg.Catalog = rubric.Default()
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = DefaultRetryPolicy()
	}

	e := &Evaluator{
		oracle:     oracle,
		resolver:   resolver,
		normalizer: NewNormalizer(cfg.Catalog, cfg.StrictRubric),
		cfg:        cfg,
	}
	if cfg.MaxConcurrent > 0 {
		e.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return e
}

// Evaluate scores the property with the oracle and prices it
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluateInput) (*model.EvaluationResult, error) {
	if err := e.oracle.CheckConfig(); err != nil {
		return nil, err
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	log := logger.FromContext(ctx).With(slog.String("district", in.Property.District))
	start := time.Now()

	basePrice, source := e.resolveBasePrice(ctx, in.Property.District, in.BasePrice)
	req := BuildOracleRequest(in.Property, e.cfg.Catalog, e.cfg.Params)
	if in.Property.IsReduced() {
		log.Info("evaluating with incomplete property description")
	}

	raw, err := e.callOracle(ctx, req)
	if err != nil {
		log.Error("oracle call failed", slog.Any("error", err), slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	scores, err := e.normalizer.Normalize(raw)
	if err != nil {
		log.Error("oracle reply rejected", slog.Any("error", err))
		return nil, apperrors.Wrap(err, "oracle reply rejected")
	}

	result, err := Aggregate(scores, basePrice, in.Area)
	if err != nil {
		return nil, err
	}
	result.District = in.Property.District
	result.BasePriceSource = source

	log.Info("evaluation completed",
		slog.Int("total_score", result.TotalScore),
		slog.Int64("price_per_sqm", result.PricePerSqM),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// Score aggregates caller-supplied scores without calling the oracle
func (e *Evaluator) Score(ctx context.Context, in ScoreInput) (*model.EvaluationResult, error) {
	basePrice, source := e.resolveBasePrice(ctx, in.District, in.BasePrice)

	result, err := Aggregate(in.Scores, basePrice, in.Area)
	if err != nil {
		return nil, err
	}
	if result.ProsCons == nil {
		result.ProsCons = normalizeProsCons(nil)
	}
	result.District = in.District
	result.BasePriceSource = source
	return result, nil
}

func (e *Evaluator) callOracle(ctx context.Context, req OracleRequest) ([]byte, error) {
	if e.sem != nil {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer e.sem.Release(1)
	}

	return e.cfg.Retry.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return e.oracle.Complete(ctx, req)
	})
}

func (e *Evaluator) resolveBasePrice(ctx context.Context, district string, explicit float64) (float64, string) {
	if explicit > 0 {
		return explicit, PriceFromRequest
	}
	res := e.resolver.Resolve(ctx, district)
	if res.Fallback {
		return res.BasePrice, PriceFallback
	}
	return res.BasePrice, PriceFromDistrict
}
