package upload

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"

	"github.com/minio/minio-go/v7"
)

// ObjectInfo describes a stored object for read-only serving.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStore is the durable blob backend behind the upload gateway. Objects
// live for the lifetime of the service; there is no expiry.
type ObjectStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, *ObjectInfo, error)
}

// localStore keeps objects in a flat directory, the way the legacy service
// kept its uploads/ dir.
type localStore struct {
	dir string
}

func NewLocalStore(dir string) (ObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) path(name string) string {
	// Base strips any path components a hostile client smuggled in.
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *localStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, r)
	return err
}

func (s *localStore) Open(ctx context.Context, name string) (io.ReadCloser, *ObjectInfo, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errutil.NotFound("File not found")
		}
		return nil, nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return f, &ObjectInfo{
		Size:        stat.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
	}, nil
}

// minioStore keeps objects in a MinIO bucket.
type minioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) ObjectStore {
	return &minioStore{client: client, bucket: bucket}
}

func (s *minioStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) Open(ctx context.Context, name string) (io.ReadCloser, *ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, err
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, nil, errutil.NotFound("File not found")
		}
		return nil, nil, err
	}

	return obj, &ObjectInfo{
		Size:        stat.Size,
		ContentType: stat.ContentType,
	}, nil
}
