package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/ecomarket/marketplace/internal/keywords"
	"github.com/ecomarket/marketplace/internal/metrics"
	"github.com/ecomarket/marketplace/internal/repository"
)

// Search tiers, keyed by query length. The threshold separating "literal
// name fragment" from "natural-language description" is a heuristic and is
// configurable, not a domain rule.
const (
	tierEmpty     = "empty"
	tierSubstring = "substring"
	tierAI        = "ai"
)

type SearchUsecase struct {
	repo      repository.ProductRepository
	expander  keywords.Expander
	threshold int
	timeout   time.Duration
	logger    *slog.Logger
}

func NewSearchUsecase(repo repository.ProductRepository, expander keywords.Expander, threshold int, timeout time.Duration, logger *slog.Logger) *SearchUsecase {
	return &SearchUsecase{
		repo:      repo,
		expander:  expander,
		threshold: threshold,
		timeout:   timeout,
		logger:    logger.With("component", "search_usecase"),
	}
}

// Search resolves a query in a single pass:
//
//  1. blank query → the unfiltered catalog,
//  2. short query → one case-insensitive substring match, no AI call,
//  3. long query → keyword expansion via the AI provider, then one OR-of-
//     substring-matches database query. A provider failure surfaces as
//     domain.ErrSearchUnavailable; there is no silent fallback to tier 2.
func (u *SearchUsecase) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		metrics.SearchRequestsTotal.WithLabelValues(tierEmpty).Inc()
		products, err := u.repo.SearchSubstring(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("list catalog: %w", err)
		}
		return products, nil
	}

	if utf8.RuneCountInString(query) < u.threshold {
		metrics.SearchRequestsTotal.WithLabelValues(tierSubstring).Inc()
		products, err := u.repo.SearchSubstring(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("substring search: %w", err)
		}
		return products, nil
	}

	metrics.SearchRequestsTotal.WithLabelValues(tierAI).Inc()

	expandCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	start := time.Now()
	kws, err := u.expander.Expand(expandCtx, query)
	metrics.KeywordExpansionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		u.logger.Error("keyword expansion", "error", err)
		return nil, domain.ErrSearchUnavailable
	}

	products, err := u.repo.SearchKeywords(ctx, kws)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return products, nil
}
