package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/repository/redis/converter"
	"github.com/DRSN-tech/supplier-imports/pkg/clients"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

const fetchKeyPrefix = "import:fetch:"

// CacheRepo кэширует разобранные страницы поставщиков, чтобы повторный импорт
// той же ссылки не ходил к поставщику.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ExternalProductConverter
	cfg    *cfg.ImportCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ExternalProductConverter,
	cfg *cfg.ImportCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetExternalProduct возвращает закэшированный товар. Промах и битая запись — (nil, nil).
func (r *CacheRepo) GetExternalProduct(ctx context.Context, rawURL string) (*domain.ExternalProduct, error) {
	key := fetchKey(rawURL)

	val, err := r.client.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := redisValueToBytes(val, key)
	if err != nil || data == nil {
		return nil, err
	}

	var model converter.ExternalProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		r.logger.Warnf("Redis unmarshal failed, dropping %s: %v", key, e.Wrap(whereami.WhereAmI(), err))
		if err := r.client.Client.Del(context.Background(), key).Err(); err != nil {
			r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil
	}

	return r.conv.ToEntity(&model), nil
}

// SetExternalProduct кэширует товар на FetchCacheTTL. Нулевой TTL отключает кэш.
func (r *CacheRepo) SetExternalProduct(ctx context.Context, rawURL string, product *domain.ExternalProduct) error {
	if r.cfg.FetchCacheTTL <= 0 || product == nil {
		return nil
	}

	data, err := json.Marshal(r.conv.ToRedisModel(product, time.Now().UTC()))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := r.client.Client.Set(ctx, fetchKey(rawURL), data, r.cfg.FetchCacheTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// fetchKey возвращает Redis-ключ для ссылки. URL хэшируется, чтобы ключ имел фиксированную длину.
func fetchKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return fetchKeyPrefix + hex.EncodeToString(sum[:])
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
