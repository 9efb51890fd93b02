package corfs

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	lru "github.com/hashicorp/golang-lru"
	"github.com/mattetti/filebuffer"
)

const (
	// objectCacheSize is the number of object sizes remembered between
	// ListFiles and Stat calls.
	objectCacheSize = 10000

	// defaultChunkSize is the size of each ranged GET issued by s3Reader
	defaultChunkSize = 20 * 1024 * 1024
)

// S3FileSystem serves objects from Amazon S3, addressed as s3://bucket/key.
type S3FileSystem struct {
	s3Client    *s3.S3
	objectCache *lru.Cache
}

func (s *S3FileSystem) ListFiles(pathGlob string) ([]FileInfo, error) {
	s3Files := make([]FileInfo, 0)

	parsed, err := parseObjectURI(s3Scheme, pathGlob)
	if err != nil {
		return nil, err
	}
	prefix, _ := globPrefix(parsed.key)

	params := &s3.ListObjectsV2Input{
		Bucket: aws.String(parsed.bucket),
		Prefix: aws.String(prefix),
	}
	var matchErr error
	err = s.s3Client.ListObjectsV2Pages(params,
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, object := range page.Contents {
				ok, err := keyMatches(parsed.key, *object.Key)
				if err != nil {
					matchErr = err
					return false
				}
				if !ok {
					continue
				}
				info := FileInfo{
					Name: parsed.withKey(*object.Key).String(),
					Size: *object.Size,
				}
				s.objectCache.Add(info.Name, info)
				s3Files = append(s3Files, info)
			}
			return true
		})
	if err == nil {
		err = matchErr
	}

	return s3Files, err
}

func (s *S3FileSystem) OpenReader(filePath string, startAt int64) (io.ReadCloser, error) {
	parsed, err := parseObjectURI(s3Scheme, filePath)
	if err != nil {
		return nil, err
	}
	objInfo, err := s.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if startAt >= objInfo.Size {
		return ioutil.NopCloser(new(bytes.Buffer)), nil
	}

	reader := &s3Reader{
		client:    s.s3Client,
		bucket:    parsed.bucket,
		key:       parsed.key,
		offset:    startAt,
		chunkSize: defaultChunkSize,
		totalSize: objInfo.Size,
	}
	err = reader.loadNextChunk()
	return reader, err
}

func (s *S3FileSystem) OpenWriter(filePath string) (io.WriteCloser, error) {
	parsed, err := parseObjectURI(s3Scheme, filePath)
	if err != nil {
		return nil, err
	}
	s.objectCache.Remove(filePath)
	writer := &s3Writer{
		client: s.s3Client,
		bucket: parsed.bucket,
		key:    parsed.key,
		buf:    filebuffer.New(nil),
	}
	return writer, nil
}

func (s *S3FileSystem) Stat(filePath string) (FileInfo, error) {
	if cached, ok := s.objectCache.Get(filePath); ok {
		return cached.(FileInfo), nil
	}

	parsed, err := parseObjectURI(s3Scheme, filePath)
	if err != nil {
		return FileInfo{}, err
	}
	params := &s3.HeadObjectInput{
		Bucket: aws.String(parsed.bucket),
		Key:    aws.String(parsed.key),
	}
	result, err := s.s3Client.HeadObject(params)
	if err != nil {
		return FileInfo{}, err
	}

	info := FileInfo{
		Name: filePath,
		Size: aws.Int64Value(result.ContentLength),
	}
	s.objectCache.Add(filePath, info)
	return info, nil
}

func (s *S3FileSystem) Delete(filePath string) error {
	parsed, err := parseObjectURI(s3Scheme, filePath)
	if err != nil {
		return err
	}
	s.objectCache.Remove(filePath)
	_, err = s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(parsed.bucket),
		Key:    aws.String(parsed.key),
	})
	return err
}

func (s *S3FileSystem) Join(elem ...string) string {
	return joinObjectPath(s3Scheme, elem...)
}

func (s *S3FileSystem) Init() error {
	var err error
	s.objectCache, err = lru.New(objectCacheSize)
	if err != nil {
		return err
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return err
	}
	s.s3Client = s3.New(sess)
	return nil
}
