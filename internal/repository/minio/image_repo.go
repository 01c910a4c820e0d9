package minio

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ImageRepo реализует репозиторий изображений поверх MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает изображение в MinIO и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	size := int64(len(image.Bytes))
	if image.Size != nil {
		size = *image.Size
	}

	opts := minio.PutObjectOptions{CacheControl: "public, max-age=31536000, immutable"}
	if image.MimeType != nil {
		opts.ContentType = *image.MimeType
	}

	info, err := i.mc.PutObject(ctx, i.bucket(image), image.ObjectKey, bytes.NewReader(image.Bytes), size, opts)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	if err := i.mc.RemoveObject(ctx, i.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// URL возвращает ссылку, которую можно сохранить в товаре: постоянную для публичного бакета
// или подписанную на SignedURLTTL для закрытого.
func (i *ImageRepo) URL(ctx context.Context, key string) (string, error) {
	if i.cfg.PublicRead {
		return publicObjectURL(i.cfg.PublicBaseURL, i.cfg.BucketName, key), nil
	}

	u, err := i.mc.PresignedGetObject(ctx, i.cfg.BucketName, key, i.cfg.SignedURLTTL, url.Values{})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return u.String(), nil
}

func (i *ImageRepo) bucket(image *domain.Image) string {
	if image.Bucket != "" {
		return image.Bucket
	}
	return i.cfg.BucketName
}

func publicObjectURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for n, s := range segments {
		segments[n] = url.PathEscape(s)
	}

	return strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
