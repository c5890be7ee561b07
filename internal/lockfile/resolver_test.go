package lockfile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockmirror/lockmirror/internal/utils"
)

func staticTestLock() *Lockfile {
	return &Lockfile{
		Metadata: Metadata{Strategy: []string{"static_urls"}},
		Packages: []Package{
			{
				Name:    "requests",
				Version: "2.31.0",
				Files: []FileEntry{
					{URL: "https://files.example.com/requests-2.31.0-py3-none-any.whl", Hash: "sha256:aa", File: "requests-2.31.0-py3-none-any.whl"},
					{URL: "https://files.example.com/requests-2.31.0.tar.gz", Hash: "sha256:bb", File: "requests-2.31.0.tar.gz"},
				},
			},
			{
				Name:           "winonly",
				Version:        "1.0",
				Platform:       "windows",
				RequiresPython: ">=3.8",
				Files: []FileEntry{
					{URL: "https://files.example.com/winonly-1.0.whl", Hash: "sha256:cc", File: "winonly-1.0.whl"},
				},
			},
			{
				Name:    "privlib",
				Version: "0.3.0",
				Git:     &GitSource{URL: "git+https://github.com/example/privlib.git", Revision: "9f2c5a1b"},
			},
		},
	}
}

func TestNewResolverPicksStrategy(t *testing.T) {
	client := utils.NewMirrorHTTPClient(utils.HTTPClientConfig{})

	static := NewResolver(staticTestLock(), &Environment{}, "", client)
	assert.IsType(t, &StaticResolver{}, static)

	lock := staticTestLock()
	lock.Metadata.Strategy = []string{"cross_platform"}
	index := NewResolver(lock, &Environment{}, "", client)
	require.IsType(t, &IndexResolver{}, index)
	assert.Equal(t, DefaultIndexURL, index.(*IndexResolver).IndexURL)
}

func TestStaticResolver(t *testing.T) {
	resolver := &StaticResolver{Lock: staticTestLock(), Env: &Environment{}}
	records, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, utils.ArtifactRecord{
		URL:  "https://files.example.com/requests-2.31.0-py3-none-any.whl",
		Hash: "sha256:aa",
		File: "requests-2.31.0-py3-none-any.whl",
	}, records[0])

	git := records[3]
	assert.Equal(t, "git+https://github.com/example/privlib.git@9f2c5a1b", git.URL)
	assert.Equal(t, "commit:9f2c5a1b", git.Hash)
	assert.Equal(t, "privlib-0.3.0", git.File)
}

func TestStaticResolverEnvironmentFilter(t *testing.T) {
	resolver := &StaticResolver{
		Lock: staticTestLock(),
		Env:  &Environment{Platform: "linux", PythonVersion: "3.11"},
	}
	records, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	for _, record := range records {
		assert.NotEqual(t, "winonly-1.0.whl", record.File)
	}
	assert.Len(t, records, 3)
}

func TestIndexResolver(t *testing.T) {
	lock := &Lockfile{
		Metadata: Metadata{Strategy: []string{"cross_platform"}},
		Packages: []Package{{
			Name:    "demo",
			Version: "1.2.0",
			Files: []FileEntry{
				{Hash: "sha256:aa", File: "demo-1.2.0-py3-none-any.whl"},
				{Hash: "sha256:bb", File: "demo-1.2.0.tar.gz"},
				{Hash: "sha256:cc", File: "demo-1.2.0-vanished.whl"},
			},
		}},
	}
	index := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pypi/demo/1.2.0/json", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"urls": []map[string]string{
				{"url": "https://cdn.example.com/demo-1.2.0-py3-none-any.whl", "filename": "demo-1.2.0-py3-none-any.whl"},
				{"url": "https://cdn.example.com/demo-1.2.0.tar.gz", "filename": "demo-1.2.0.tar.gz"},
				{"url": "https://cdn.example.com/demo-1.3.0.tar.gz", "filename": "demo-1.3.0.tar.gz"},
			},
		})
	}))
	t.Cleanup(index.Close)

	resolver := &IndexResolver{
		Lock:     lock,
		Env:      &Environment{},
		IndexURL: index.URL,
		Client:   utils.NewMirrorHTTPClient(utils.HTTPClientConfig{}),
	}
	records, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	// The vanished file is dropped with a warning; the unlocked 1.3.0
	// file on the index is never picked up.
	require.Len(t, records, 2)
	assert.Equal(t, "https://cdn.example.com/demo-1.2.0-py3-none-any.whl", records[0].URL)
	assert.Equal(t, "sha256:aa", records[0].Hash)
	assert.Equal(t, "sha256:bb", records[1].Hash)
}

func TestIndexResolverUnreachableIndex(t *testing.T) {
	lock := &Lockfile{Packages: []Package{{
		Name:    "demo",
		Version: "1.0",
		Files:   []FileEntry{{Hash: "sha256:aa", File: "demo-1.0.whl"}},
	}}}
	index := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	t.Cleanup(index.Close)

	resolver := &IndexResolver{
		Lock:     lock,
		Env:      &Environment{},
		IndexURL: index.URL,
		Client:   utils.NewMirrorHTTPClient(utils.HTTPClientConfig{}),
	}
	records, err := resolver.Resolve(context.Background())
	require.NoError(t, err, "an unreachable index is a warning, not an error")
	assert.Empty(t, records)
}

func TestFileNameFallsBackToURL(t *testing.T) {
	name := fileName(FileEntry{URL: "https://files.example.com/pool/d/demo-1.0.tar.gz"})
	assert.Equal(t, "demo-1.0.tar.gz", name)
}

func TestGitRecordKeepsExplicitRevisionSuffix(t *testing.T) {
	record := gitRecord(Package{
		Name:    "lib",
		Version: "2.0",
		Git:     &GitSource{URL: "git+https://github.com/example/lib.git@abc123", Revision: "abc123"},
	})
	assert.Equal(t, "git+https://github.com/example/lib.git@abc123", record.URL)
	assert.Equal(t, fmt.Sprintf("%s-%s", "lib", "2.0"), record.File)
}
