package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"airport/internal/config"
	"airport/internal/keys"
	"airport/internal/metrics"
	"airport/models"
	"airport/pkg/aotload"
)

const storeWorkers = 8

// objectClient is the subset of *minio.Client the service uses.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

type minioClient struct {
	*minio.Client
}

func (c minioClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucketName, objectName, opts)
}

// S3Service stores airport records as JSON objects in S3-compatible storage.
type S3Service struct {
	client objectClient
	bucket string
	// Overwrite replaces existing objects instead of skipping them.
	Overwrite bool
}

// NewS3Service connects to the MinIO endpoint described by cfg.
func NewS3Service(cfg config.MinIOConfig) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more required minio settings: endpoint, access_key, secret_key")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	slog.Info("connected to MinIO", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &S3Service{client: minioClient{client}, bucket: cfg.Bucket}, nil
}

func (s *S3Service) Bucket() string {
	return s.bucket
}

// CreateBucket makes the service bucket unless it already exists.
func (s *S3Service) CreateBucket(ctx context.Context, location string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// StoreAirportsFromChannel stores every airport received until the channel
// closes and returns how many objects were written. Failures are logged and
// do not stop the loop.
func (s *S3Service) StoreAirportsFromChannel(ctx context.Context, airports <-chan models.Airport) int {
	var (
		wg     sync.WaitGroup
		stored atomic.Int64
		sem    = make(chan struct{}, storeWorkers)
	)

	for airport := range airports {
		sem <- struct{}{}
		wg.Add(1)
		go func(a models.Airport) {
			defer wg.Done()
			defer func() { <-sem }()

			written, err := s.StoreAirport(ctx, a)
			if err != nil {
				slog.Error("store airport", "ident", a.Ident, "err", err)
				return
			}
			if written {
				stored.Add(1)
			}
		}(airport)
	}

	wg.Wait()
	slog.Info("finished storing airports from the channel", "stored", stored.Load())
	return int(stored.Load())
}

// StoreAirport writes a under keys.Airport. Without Overwrite an existing
// object is left untouched and written is false.
func (s *S3Service) StoreAirport(ctx context.Context, a models.Airport) (written bool, err error) {
	defer func() {
		metrics.RecordsStored.WithLabelValues("s3", metrics.Result(err)).Inc()
	}()

	objectKey := keys.Airport(a)

	if !s.Overwrite {
		_, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
		if err == nil {
			slog.Debug("airport object exists, skipping", "ident", a.Ident, "key", objectKey)
			return false, nil
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return false, fmt.Errorf("failed to check for existing object: %w", err)
		}
	}

	data, err := aotload.Encode(a)
	if err != nil {
		return false, fmt.Errorf("failed to encode airport %s: %w", a.Ident, err)
	}

	_, err = s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return false, fmt.Errorf("failed to store object in S3: %w", err)
	}

	slog.Debug("stored airport", "ident", a.Ident, "bucket", s.bucket, "key", objectKey)
	return true, nil
}

// GetAirportObject loads and decodes one airport object.
func (s *S3Service) GetAirportObject(ctx context.Context, bucketName, objectKey string) (*models.Airport, error) {
	object, err := s.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", objectKey, err)
	}

	airport, err := aotload.Decode(data)
	metrics.RecordsDecoded.WithLabelValues("s3", metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", bucketName, objectKey, err)
	}
	return &airport, nil
}

// GetAirport loads the object stored for country and ident.
func (s *S3Service) GetAirport(ctx context.Context, country, ident string) (*models.Airport, error) {
	key := keys.Airport(models.Airport{Ident: ident, ISOCountry: country})
	return s.GetAirportObject(ctx, s.bucket, key)
}
