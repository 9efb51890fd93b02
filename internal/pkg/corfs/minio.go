package corfs

import (
	"context"
	"errors"
	"io"

	"github.com/mattetti/filebuffer"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

// Settings read by MinIOFileSystem.Init
const (
	MinIOEndpointKey  = "minio_endpoint"
	MinIOAccessKeyKey = "minio_access_key"
	MinIOSecretKeyKey = "minio_secret_key"
	MinIOUseSSLKey    = "minio_use_ssl"
)

// MinIOFileSystem serves objects from a MinIO (or other S3 compatible)
// server, addressed as minio://bucket/key. The server endpoint and
// credentials come from settings rather than the URI.
type MinIOFileSystem struct {
	client *minio.Client
}

func (m *MinIOFileSystem) ListFiles(pathGlob string) ([]FileInfo, error) {
	parsed, err := parseObjectURI(minioScheme, pathGlob)
	if err != nil {
		return nil, err
	}
	prefix, _ := globPrefix(parsed.key)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files := make([]FileInfo, 0)
	objects := m.client.ListObjects(ctx, parsed.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return nil, object.Err
		}
		ok, err := keyMatches(parsed.key, object.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		files = append(files, FileInfo{
			Name: parsed.withKey(object.Key).String(),
			Size: object.Size,
		})
	}
	return files, nil
}

func (m *MinIOFileSystem) OpenReader(filePath string, startAt int64) (io.ReadCloser, error) {
	parsed, err := parseObjectURI(minioScheme, filePath)
	if err != nil {
		return nil, err
	}
	object, err := m.client.GetObject(context.Background(), parsed.bucket, parsed.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if startAt > 0 {
		if _, err = object.Seek(startAt, io.SeekStart); err != nil {
			object.Close()
			return nil, err
		}
	}
	return object, nil
}

func (m *MinIOFileSystem) OpenWriter(filePath string) (io.WriteCloser, error) {
	parsed, err := parseObjectURI(minioScheme, filePath)
	if err != nil {
		return nil, err
	}
	return &minioWriter{
		client: m.client,
		bucket: parsed.bucket,
		key:    parsed.key,
		buf:    filebuffer.New(nil),
	}, nil
}

func (m *MinIOFileSystem) Stat(filePath string) (FileInfo, error) {
	parsed, err := parseObjectURI(minioScheme, filePath)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := m.client.StatObject(context.Background(), parsed.bucket, parsed.key, minio.StatObjectOptions{})
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name: filePath,
		Size: info.Size,
	}, nil
}

func (m *MinIOFileSystem) Delete(filePath string) error {
	parsed, err := parseObjectURI(minioScheme, filePath)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(context.Background(), parsed.bucket, parsed.key, minio.RemoveObjectOptions{})
}

func (m *MinIOFileSystem) Join(elem ...string) string {
	return joinObjectPath(minioScheme, elem...)
}

func (m *MinIOFileSystem) Init() error {
	endpoint := viper.GetString(MinIOEndpointKey)
	if endpoint == "" {
		return errors.New("no MinIO endpoint is configured")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			viper.GetString(MinIOAccessKeyKey),
			viper.GetString(MinIOSecretKeyKey),
			"",
		),
		Secure: viper.GetBool(MinIOUseSSLKey),
	})
	if err != nil {
		return err
	}
	m.client = client
	return nil
}

// minioWriter buffers written data and uploads it as a single object on Close.
type minioWriter struct {
	client *minio.Client
	bucket string
	key    string
	buf    *filebuffer.Buffer
}

func (w *minioWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *minioWriter) Close() error {
	if _, err := w.buf.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := w.client.PutObject(context.Background(), w.bucket, w.key, w.buf,
		int64(w.buf.Buff.Len()), minio.PutObjectOptions{})
	return err
}
