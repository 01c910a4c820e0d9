package clients

import (
	"context"
	"fmt"

	config "github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewMinIOClient(cfg *config.MinIOCfg) (*minio.Client, error) {
	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return minioClient, nil
}

// EnsureBucket создаёт бакет при первом запуске. Для публичного бакета выставляется
// политика анонимного чтения, чтобы ссылки на изображения работали без подписи.
func EnsureBucket(ctx context.Context, client *minio.Client, cfg *config.MinIOCfg) error {
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if cfg.PublicRead {
		if err := client.SetBucketPolicy(ctx, cfg.BucketName, PublicReadPolicy(cfg.BucketName)); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// PublicReadPolicy возвращает S3-политику, разрешающую анонимный GetObject.
func PublicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
