package corfs

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	s3Scheme    = "s3://"
	minioScheme = "minio://"
)

// objectPath is a bucket and key parsed from an object store URI
type objectPath struct {
	scheme string
	bucket string
	key    string
}

func parseObjectURI(scheme, uri string) (objectPath, error) {
	if !strings.HasPrefix(uri, scheme) {
		return objectPath{}, fmt.Errorf("%q is not a %s URI", uri, scheme)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return objectPath{}, err
	}
	if u.Host == "" {
		return objectPath{}, fmt.Errorf("%q has no bucket", uri)
	}
	return objectPath{
		scheme: scheme,
		bucket: u.Host,
		key:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

func (o objectPath) String() string {
	return o.scheme + o.bucket + "/" + o.key
}

func (o objectPath) withKey(key string) objectPath {
	return objectPath{scheme: o.scheme, bucket: o.bucket, key: key}
}

// globPrefix returns the part of key preceding its first glob metacharacter
// and whether key contained one.
func globPrefix(key string) (string, bool) {
	i := strings.IndexAny(key, "*?[")
	if i < 0 {
		return key, false
	}
	return key[:i], true
}

// keyMatches reports whether an object key is selected by a listing request.
// Without a glob, the request selects the object itself and everything
// "below" it.
func keyMatches(request, key string) (bool, error) {
	if _, isGlob := globPrefix(request); isGlob {
		if ok, err := path.Match(request, key); ok || err != nil {
			return ok, err
		}
		// A matched "directory" selects its contents
		for dir := path.Dir(key); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if ok, err := path.Match(request, dir); ok || err != nil {
				return ok, err
			}
		}
		return false, nil
	}
	if request == "" || key == request || strings.HasSuffix(request, "/") {
		return strings.HasPrefix(key, request), nil
	}
	return strings.HasPrefix(key, request+"/"), nil
}

// joinObjectPath joins URI elements with single slashes, preserving the
// scheme and a trailing slash on the final element.
func joinObjectPath(scheme string, elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		e = strings.Trim(strings.TrimPrefix(e, scheme), "/")
		if e != "" {
			parts = append(parts, e)
		}
	}
	joined := scheme + strings.Join(parts, "/")
	if len(elem) > 0 && strings.HasSuffix(elem[len(elem)-1], "/") {
		joined += "/"
	}
	return joined
}
