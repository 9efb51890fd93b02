package corfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseObjectURI(t *testing.T) {
	parsed, err := parseObjectURI(s3Scheme, "s3://bucket/foo/bar.txt")
	assert.Nil(t, err)
	assert.Equal(t, "bucket", parsed.bucket)
	assert.Equal(t, "foo/bar.txt", parsed.key)
	assert.Equal(t, "s3://bucket/foo/bar.txt", parsed.String())
	assert.Equal(t, "s3://bucket/baz", parsed.withKey("baz").String())

	parsed, err = parseObjectURI(s3Scheme, "s3://bucket")
	assert.Nil(t, err)
	assert.Equal(t, "", parsed.key)

	_, err = parseObjectURI(s3Scheme, "minio://bucket/key")
	assert.NotNil(t, err)

	_, err = parseObjectURI(minioScheme, "minio:///key")
	assert.NotNil(t, err)
}

func TestGlobPrefix(t *testing.T) {
	var prefixTests = []struct {
		key     string
		prefix  string
		hasGlob bool
	}{
		{"foo/bar", "foo/bar", false},
		{"foo/*", "foo/", true},
		{"foo/b?r", "foo/b", true},
		{"[ab]/x", "", true},
	}

	for _, test := range prefixTests {
		prefix, hasGlob := globPrefix(test.key)
		assert.Equal(t, test.prefix, prefix)
		assert.Equal(t, test.hasGlob, hasGlob)
	}
}

func TestKeyMatches(t *testing.T) {
	var matchTests = []struct {
		request  string
		key      string
		expected bool
	}{
		{"", "anything", true},
		{"foo", "foo", true},
		{"foo", "foo/file0", true},
		{"foo", "foobar", false},
		{"foo/", "foo/file0", true},
		{"foo/*", "foo/file0", true},
		{"foo/*", "bar/file0", false},
		{"foo/*", "foo/sub/file0", true},
		{"*.txt", "a.txt", true},
		{"*.txt", "a.csv", false},
	}

	for _, test := range matchTests {
		ok, err := keyMatches(test.request, test.key)
		assert.Nil(t, err)
		assert.Equal(t, test.expected, ok, "%s ~ %s", test.request, test.key)
	}

	_, err := keyMatches("[", "x")
	assert.NotNil(t, err)
}

func TestJoinObjectPath(t *testing.T) {
	res := joinObjectPath(s3Scheme, "s3://foo", "bar", "baz")
	assert.Equal(t, "s3://foo/bar/baz", res)

	res = joinObjectPath(s3Scheme, "s3://foo/", "/bar", "baz/")
	assert.Equal(t, "s3://foo/bar/baz/", res)

	res = (&MinIOFileSystem{}).Join("minio://bucket", "run", "part-0.json")
	assert.Equal(t, "minio://bucket/run/part-0.json", res)
}
