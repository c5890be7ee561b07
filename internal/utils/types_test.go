package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashParts(t *testing.T) {
	record := ArtifactRecord{Hash: "SHA256:ABCdef012345", File: "a.whl"}
	name, digest, err := record.HashParts()
	require.NoError(t, err)
	assert.Equal(t, "sha256", name)
	assert.Equal(t, "ABCdef012345", digest)

	for _, malformed := range []string{"", "sha256", ":abc", "sha256:"} {
		_, _, err := ArtifactRecord{Hash: malformed, File: "a.whl"}.HashParts()
		assert.Error(t, err, malformed)
	}
}

func TestKindOfURL(t *testing.T) {
	assert.Equal(t, SourceHTTP, KindOfURL("https://files.example.com/a.whl"))
	assert.Equal(t, SourceHTTP, KindOfURL("http://files.example.com/a.whl"))
	assert.Equal(t, SourceS3, KindOfURL("s3://bucket/key/a.whl"))
	assert.Equal(t, SourceGit, KindOfURL("git+https://github.com/a/b.git@rev"))
	assert.Equal(t, SourceUnknown, KindOfURL("ftp://mirror/a.whl"))
}

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{"Authorization: Bearer tok", "X-Weird:v:a:l", "malformed"})
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer tok",
		"X-Weird":       "v:a:l",
	}, headers)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.00 KB", FormatBytes(1024))
	assert.Equal(t, "8.00 MB", FormatBytes(8*1024*1024))
}
