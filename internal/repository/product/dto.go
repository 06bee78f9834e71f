package product

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tonehall/catalogqa/internal/domain"
)

// Hash field names for catalogqa:product:<MODEL> records. The ingestion
// pipeline writes them; this repository only reads.
const (
	fieldModel      = "model"
	fieldCategory   = "category"
	fieldSeries     = "series"
	fieldVoltage    = "voltage"
	fieldPowerWatts = "power_watts"
	fieldSpecsJSON  = "specs_json"
	fieldSummary    = "summary"
	fieldSourceDoc  = "source_doc"
	fieldSourcePage = "source_page"
	fieldEmbedding  = "embedding"
)

// productFromHash hydrates a domain Product from an HGETALL result map.
func productFromHash(m map[string]string) (domain.Product, error) {
	model := m[fieldModel]
	if model == "" {
		return domain.Product{}, fmt.Errorf("product hash has no model field: %w", domain.ErrProductNotFound)
	}

	params := domain.ProductParams{
		Model:        model,
		Category:     m[fieldCategory],
		Series:       m[fieldSeries],
		VoltageClass: m[fieldVoltage],
		Summary:      m[fieldSummary],
		SourceDoc:    m[fieldSourceDoc],
	}

	if raw := m[fieldPowerWatts]; raw != "" {
		watts, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: invalid power_watts %q: %w", model, raw, err)
		}
		params.PowerWatts = watts
		params.HasPower = true
	}

	if raw := m[fieldSpecsJSON]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &params.Specs); err != nil {
			return domain.Product{}, fmt.Errorf("product %s: unmarshal specs: %w", model, err)
		}
	}

	if raw := m[fieldSourcePage]; raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			params.SourcePage = page
		}
	}

	if raw := m[fieldEmbedding]; raw != "" {
		emb, err := decodeEmbedding([]byte(raw))
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: %w", model, err)
		}
		params.Embedding = emb
	}

	return domain.NewProduct(params), nil
}

// decodeEmbedding parses a little-endian float32 byte blob.
func decodeEmbedding(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4: %w",
			len(raw), domain.ErrVectorDimMismatch)
	}
	emb := make([]float32, len(raw)/4)
	for i := range emb {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		emb[i] = math.Float32frombits(bits)
	}
	return emb, nil
}
