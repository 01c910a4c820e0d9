package providers

import (
	"net/url"
	"strings"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

// Registry — неизменяемый набор адаптеров, собирается один раз при старте.
type Registry struct {
	ordered []DetectableAdapter
	byKey   map[domain.ProviderKey]DetectableAdapter
}

func NewRegistry(adapters ...DetectableAdapter) *Registry {
	r := &Registry{
		ordered: make([]DetectableAdapter, 0, len(adapters)),
		byKey:   make(map[domain.ProviderKey]DetectableAdapter, len(adapters)),
	}
	for _, a := range adapters {
		if _, dup := r.byKey[a.Key()]; dup {
			continue
		}
		r.ordered = append(r.ordered, a)
		r.byKey[a.Key()] = a
	}

	return r
}

// NewDefaultRegistry собирает адаптеры всех поддерживаемых поставщиков.
func NewDefaultRegistry(extractor MetadataExtractor, keys *cfg.ProvidersCfg, log logger.Logger) *Registry {
	return NewRegistry(
		NewAlibabaAdapter(extractor, keys.AlibabaAPIKey, log),
		NewJumiaAdapter(extractor, keys.JumiaAPIKey, log),
		NewAliExpressAdapter(extractor, keys.AliExpressAPIKey, log),
	)
}

// AdapterByKey — прямой поиск без запасных вариантов.
func (r *Registry) AdapterByKey(key domain.ProviderKey) (usecase.ProviderAdapter, bool) {
	a, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return a, true
}

// DetectFromURL определяет поставщика по вхождению доменного фрагмента в хост. Побеждает первое совпадение.
func (r *Registry) DetectFromURL(rawURL string) (usecase.ProviderAdapter, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, false
	}

	for _, a := range r.ordered {
		if strings.Contains(host, a.DomainFragment()) {
			return a, true
		}
	}

	return nil, false
}

func (r *Registry) Keys() []domain.ProviderKey {
	keys := make([]domain.ProviderKey, 0, len(r.ordered))
	for _, a := range r.ordered {
		keys = append(keys, a.Key())
	}
	return keys
}
