package product

import (
	"github.com/tonehall/catalogqa/internal/db"
	"github.com/tonehall/catalogqa/internal/domain"
)

// IndexName returns the FT index name for product records.
func IndexName() string {
	return domain.KeyPrefix + "product_idx"
}

// keyPrefix is the hash key prefix for product records.
func keyPrefix() string {
	return domain.KeyPrefix + "product:"
}

// productKey builds the hash key for one model.
func productKey(model string) string {
	return keyPrefix() + model
}

// IndexDefinition builds the FT index over product hashes. Textual fields
// are TEXT so filters match partially and case-insensitively; power is
// NUMERIC for range filters; model is a TAG for exact-identifier queries.
// Embeddings stay unindexed: similarity ranking happens in process.
func IndexDefinition() (*db.IndexDefinition, error) {
	return db.NewIndex(IndexName()).
		Prefix(keyPrefix()).
		Tag(fieldModel).
		Text(fieldCategory).
		Text(fieldSeries).
		Text(fieldVoltage).
		Numeric(fieldPowerWatts).
		Build()
}
