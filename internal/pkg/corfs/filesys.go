package corfs

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FileSystemType is an identifier for supported FileSystems
type FileSystemType int

// Identifiers for supported FileSystemTypes
const (
	Local FileSystemType = iota
	S3
	MinIO
)

// FileSystem provides the file backend for whole-file reads.
// Input files are listed and read from a file system, and run output is
// written back to one.
// This is abstracted to allow remote object stores like S3 to be supported.
type FileSystem interface {
	ListFiles(pathGlob string) ([]FileInfo, error)
	Stat(filePath string) (FileInfo, error)
	OpenReader(filePath string, startAt int64) (io.ReadCloser, error)
	OpenWriter(filePath string) (io.WriteCloser, error)
	Delete(filePath string) error
	Join(elem ...string) string
	Init() error
}

// FileInfo provides information about a file
type FileInfo struct {
	Name string // file path
	Size int64  // file size in bytes
}

// InitFilesystem intializes a filesystem of the given type
func InitFilesystem(fsType FileSystemType) (FileSystem, error) {
	var fs FileSystem
	switch fsType {
	case Local:
		fs = &LocalFileSystem{}
	case S3:
		fs = &S3FileSystem{}
	case MinIO:
		fs = &MinIOFileSystem{}
	default:
		return nil, fmt.Errorf("unknown filesystem type: %d", fsType)
	}

	if err := fs.Init(); err != nil {
		log.Errorf("Could not initialize filesystem: %s", err)
		return nil, err
	}
	return fs, nil
}

// TypeOf infers the FileSystemType of a location from its scheme.
func TypeOf(location string) FileSystemType {
	switch {
	case strings.HasPrefix(location, s3Scheme):
		return S3
	case strings.HasPrefix(location, minioScheme):
		return MinIO
	}
	return Local
}

// InferFilesystem initializes the filesystem that serves location.
func InferFilesystem(location string) (FileSystem, error) {
	return InitFilesystem(TypeOf(location))
}
