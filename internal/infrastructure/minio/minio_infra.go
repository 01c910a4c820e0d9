package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/infrastructure"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/jitter"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/google/uuid"
)

const (
	cleanupAttempts = 3
	cleanupTimeout  = 30 * time.Second
)

// MinioInfrastructure скачивает изображения поставщиков в собственное хранилище
// и удаляет загруженные объекты, если импорт товара не удался.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	httpClient  *http.Client
	cfg         *cfg.MinIOCfg
	userAgent   string
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewMinioInfrastructure(
	minioRepo usecase.ImageRepository,
	minioCfg *cfg.MinIOCfg,
	scraperCfg *cfg.ScraperCfg,
	logger logger.Logger,
	shutdownCtx context.Context,
) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		httpClient:  &http.Client{Timeout: scraperCfg.Timeout},
		cfg:         minioCfg,
		userAgent:   scraperCfg.UserAgent,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// MirrorImage скачивает изображение по sourceURL и загружает его в бакет
// под ключом {provider}/{unix_ms}-{uuid}.{ext}.
func (m *MinioInfrastructure) MirrorImage(ctx context.Context, provider domain.ProviderKey, sourceURL string) (*usecase.MirrorImageRes, error) {
	const op = "MinioInfrastructure.MirrorImage"

	data, mimeType, err := m.download(ctx, sourceURL)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	ext, err := infrastructure.GetExtensionFromMIME(mimeType)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%s for %s: %w", mimeType, sourceURL, err))
	}

	imageID := uuid.NewString()
	objKey := fmt.Sprintf("%s/%d-%s.%s", provider, time.Now().UnixMilli(), imageID, ext)
	size := int64(len(data))
	image := domain.NewImage(imageID, m.cfg.BucketName, objKey, data, &size, &mimeType)

	key, err := m.minioRepo.Upload(ctx, image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	link, err := m.minioRepo.URL(ctx, key)
	if err != nil {
		m.CleanupImages([]string{key})
		return nil, e.Wrap(op, err)
	}

	return usecase.NewMirrorImageRes(link, key), nil
}

// download читает тело ответа не больше MaxImageSize байт.
// Тип определяется по содержимому, заголовок Content-Type используется как запасной вариант.
func (m *MinioInfrastructure) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", e.Mark(e.ErrFetch, err)
	}
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", e.Mark(e.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", e.Mark(e.ErrFetch, fmt.Errorf("GET %s: status %d", sourceURL, resp.StatusCode))
	}

	limit := m.cfg.MaxImageSize
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", e.Mark(e.ErrFetch, err)
	}
	if int64(len(data)) > limit {
		return nil, "", e.Mark(e.ErrFetch, fmt.Errorf("image %s exceeds %d bytes", sourceURL, limit))
	}
	if len(data) == 0 {
		return nil, "", e.Mark(e.ErrFetch, fmt.Errorf("image %s is empty", sourceURL))
	}

	mimeType := infrastructure.NormalizeMIME(http.DetectContentType(data))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = infrastructure.NormalizeMIME(resp.Header.Get("Content-Type"))
	}

	return data, mimeType, nil
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.minioRepo.Delete(ctx, key)
			if err == nil {
				break
			}
			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(err, "%s: giving up on key=%s", op, key)
				break
			}

			if err := jitter.Sleep(ctx, jitter.ExponentialBackoff(time.Second, 8*time.Second, attempt, jitter.DefaultJitter)); err != nil {
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
