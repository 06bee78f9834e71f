// Package product implements the read-only product store over Redis hashes
// with an FT index for hard filtering. Similarity ranking stays out of this
// package: it only resolves records and structured filters.
package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tonehall/catalogqa/internal/db"
	"github.com/tonehall/catalogqa/internal/domain"
)

// store is the consumer interface for product records (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Search(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
}

// Combinator joins filter clauses in the FT query.
type Combinator string

const (
	// CombinatorAnd requires every clause to match.
	CombinatorAnd Combinator = "and"
	// CombinatorOr requires any clause to match.
	CombinatorOr Combinator = "or"
)

// Repo implements usecase/retriever.Repository.
type Repo struct {
	store      store
	combinator Combinator
}

// New creates a product repository.
func New(s store, combinator Combinator) *Repo {
	if combinator != CombinatorOr {
		combinator = CombinatorAnd
	}
	return &Repo{store: s, combinator: combinator}
}

// Filter runs a filter-only FT.SEARCH and hydrates the hits. Empty filters
// degrade to the match-all query; a missing index falls back to the capped
// key scan, dropping the filters but keeping search alive.
func (r *Repo) Filter(ctx context.Context, f domain.SearchFilters, cap int) ([]domain.Product, error) {
	q := &db.FilterQuery{
		IndexName: IndexName(),
		Query:     buildFilterQuery(f, r.combinator),
		Limit:     cap,
	}

	res, err := r.store.Search(ctx, q)
	if errors.Is(err, db.ErrIndexNotFound) {
		return r.All(ctx, cap)
	}
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}

	products := make([]domain.Product, 0, len(res.Entries))
	for _, e := range res.Entries {
		p, err := productFromHash(e.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Key, err)
		}
		products = append(products, p)
	}

	sortProducts(products)
	return products, nil
}

// ByModel resolves a model identifier. The exact key is tried first; when
// absent, a partial case-insensitive scan over product keys runs, and a
// single partial hit resolves. Zero or multiple partial hits both fail:
// guessing between models would attach wrong citations.
func (r *Repo) ByModel(ctx context.Context, model string) (domain.Product, error) {
	model = strings.ToUpper(strings.TrimSpace(model))
	if model == "" {
		return domain.Product{}, domain.ErrProductNotFound
	}

	m, err := r.store.HGetAll(ctx, productKey(model))
	if err != nil {
		return domain.Product{}, fmt.Errorf("hgetall product %s: %w", model, err)
	}
	if len(m) > 0 {
		return productFromHash(m)
	}

	keys, err := r.store.Scan(ctx, keyPrefix()+"*")
	if err != nil {
		return domain.Product{}, fmt.Errorf("scan products: %w", err)
	}

	var hits []string
	for _, k := range keys {
		id := strings.ToUpper(strings.TrimPrefix(k, keyPrefix()))
		if strings.Contains(id, model) {
			hits = append(hits, k)
		}
	}
	if len(hits) != 1 {
		return domain.Product{}, fmt.Errorf("model %s: %d partial matches: %w",
			model, len(hits), domain.ErrProductNotFound)
	}

	m, err = r.store.HGetAll(ctx, hits[0])
	if err != nil {
		return domain.Product{}, fmt.Errorf("hgetall product %s: %w", hits[0], err)
	}
	if len(m) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return productFromHash(m)
}

// All returns at most cap products, unfiltered. It scans keys instead of
// querying the index so a missing index degrades search but never lookup.
func (r *Repo) All(ctx context.Context, cap int) ([]domain.Product, error) {
	keys, err := r.store.Scan(ctx, keyPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	if len(keys) == 0 {
		return []domain.Product{}, nil
	}

	sort.Strings(keys)
	if cap > 0 && len(keys) > cap {
		keys = keys[:cap]
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi products: %w", err)
	}

	products := make([]domain.Product, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		p, err := productFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keys[i], err)
		}
		products = append(products, p)
	}
	return products, nil
}

// buildFilterQuery renders SearchFilters as an FT query. Textual clauses use
// prefix-wildcard TEXT matching for partial, case-insensitive hits; power
// bounds render as a single numeric range.
func buildFilterQuery(f domain.SearchFilters, comb Combinator) string {
	var clauses []string

	if f.Category != "" {
		clauses = append(clauses, textClause(fieldCategory, f.Category))
	}
	if f.Series != "" {
		clauses = append(clauses, textClause(fieldSeries, f.Series))
	}
	if f.VoltageClass != "" {
		clauses = append(clauses, textClause(fieldVoltage, f.VoltageClass))
	}
	if f.MinWatts != nil || f.MaxWatts != nil {
		lo, hi := "-inf", "+inf"
		if f.MinWatts != nil {
			lo = strconv.FormatFloat(*f.MinWatts, 'f', -1, 64)
		}
		if f.MaxWatts != nil {
			hi = strconv.FormatFloat(*f.MaxWatts, 'f', -1, 64)
		}
		clauses = append(clauses, fmt.Sprintf("@%s:[%s %s]", fieldPowerWatts, lo, hi))
	}

	if len(clauses) == 0 {
		return "*"
	}
	if comb == CombinatorOr && len(clauses) > 1 {
		return "(" + strings.Join(clauses, " | ") + ")"
	}
	return strings.Join(clauses, " ")
}

// textClause builds a partial-match TEXT clause. The term is sanitized to
// FT-safe characters and suffixed with a wildcard so "ceiling" matches
// "Ceiling Speaker".
func textClause(field, term string) string {
	return fmt.Sprintf("@%s:%s*", field, sanitizeTerm(term))
}

// sanitizeTerm keeps the leading alphanumeric run of a user-derived term.
// FT query syntax characters never reach the index, and multi-word terms
// reduce to their first word with the wildcard covering the rest.
func sanitizeTerm(term string) string {
	trimmed := strings.TrimSpace(term)
	for i, r := range trimmed {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			return trimmed[:i]
		}
	}
	return trimmed
}

// sortProducts orders by model ascending so the hard-filter stage is
// deterministic before similarity ranking.
func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].Model() < products[j].Model()
	})
}
