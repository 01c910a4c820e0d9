package redis

import (
	"context"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/pkg/clients"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "import:lock:"

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу токена.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockRepo — блокировка импорта одного external_id на время конвейера позиции.
// TTL ограничивает время жизни ключа, если процесс упал и не снял блокировку.
type LockRepo struct {
	client *clients.RedisClient
	cfg    *cfg.ImportCfg
}

func NewLockRepo(client *clients.RedisClient, cfg *cfg.ImportCfg) *LockRepo {
	return &LockRepo{client: client, cfg: cfg}
}

// Acquire пытается занять блокировку. acquired=false означает, что тот же товар уже импортируется.
func (l *LockRepo) Acquire(ctx context.Context, externalID string) (string, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.Client.SetNX(ctx, lockKey(externalID), token, l.cfg.LockTTL).Result()
	if err != nil {
		return "", false, e.Wrap(whereami.WhereAmI(), err)
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// Release снимает блокировку. Чужой или истёкший ключ не трогается.
func (l *LockRepo) Release(ctx context.Context, externalID, token string) error {
	if err := releaseScript.Run(ctx, l.client.Client, []string{lockKey(externalID)}, token).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func lockKey(externalID string) string {
	return lockKeyPrefix + externalID
}
