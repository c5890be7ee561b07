package lockfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/lockmirror/lockmirror/internal/utils"
)

const DefaultIndexURL = "https://pypi.org"

// Resolver turns a parsed lockfile into the flat list of artifact records
// the fetch pipeline consumes.
type Resolver interface {
	Resolve(ctx context.Context) ([]utils.ArtifactRecord, error)
}

// NewResolver picks the resolution strategy: locks carrying static URLs
// resolve locally, everything else re-queries the index for matching
// files.
func NewResolver(lock *Lockfile, env *Environment, indexURL string, client *utils.MirrorHTTPClient) Resolver {
	if lock.HasStrategy(StaticURLsStrategy) {
		return &StaticResolver{Lock: lock, Env: env}
	}
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	return &IndexResolver{Lock: lock, Env: env, IndexURL: indexURL, Client: client}
}

// StaticResolver reads download URLs straight out of the lock.
type StaticResolver struct {
	Lock *Lockfile
	Env  *Environment
}

func (r *StaticResolver) Resolve(_ context.Context) ([]utils.ArtifactRecord, error) {
	log := utils.GetLogger("resolver")
	var records []utils.ArtifactRecord
	for _, pkg := range r.Lock.Packages {
		ok, err := r.Env.MatchesPackage(pkg)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if pkg.Git != nil {
			records = append(records, gitRecord(pkg))
			continue
		}
		for _, file := range pkg.Files {
			if file.URL == "" {
				log.Warn().Msgf("File %s has no URL in the lockfile", file.File)
				continue
			}
			records = append(records, utils.ArtifactRecord{
				URL:  file.URL,
				Hash: file.Hash,
				File: fileName(file),
			})
		}
	}
	return records, nil
}

// IndexResolver re-queries a PyPI-style JSON API for each locked package
// and matches returned files against the locked hashes by filename.
type IndexResolver struct {
	Lock     *Lockfile
	Env      *Environment
	IndexURL string
	Client   *utils.MirrorHTTPClient
}

type indexResponse struct {
	URLs []indexFile `json:"urls"`
}

type indexFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

func (r *IndexResolver) Resolve(ctx context.Context) ([]utils.ArtifactRecord, error) {
	log := utils.GetLogger("resolver")
	var records []utils.ArtifactRecord
	for _, pkg := range r.Lock.Packages {
		ok, err := r.Env.MatchesPackage(pkg)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if pkg.Git != nil {
			records = append(records, gitRecord(pkg))
			continue
		}
		remaining := make([]FileEntry, len(pkg.Files))
		copy(remaining, pkg.Files)
		available, err := r.queryIndex(ctx, pkg)
		if err != nil {
			log.Warn().Err(err).Msgf("Could not query index for %s %s", pkg.Name, pkg.Version)
			available = nil
		}
		for _, candidate := range available {
			matched := -1
			for i, entry := range remaining {
				if entry.File == candidate.Filename {
					matched = i
					break
				}
			}
			if matched < 0 {
				continue
			}
			records = append(records, utils.ArtifactRecord{
				URL:  candidate.URL,
				Hash: remaining[matched].Hash,
				File: candidate.Filename,
			})
			remaining = append(remaining[:matched], remaining[matched+1:]...)
		}
		// Files the index no longer serves are dropped with a warning,
		// never an error.
		for _, entry := range remaining {
			log.Warn().Msgf("File %s not found on the repository", entry.File)
		}
	}
	return records, nil
}

func (r *IndexResolver) queryIndex(ctx context.Context, pkg Package) ([]indexFile, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/%s/json",
		strings.TrimSuffix(r.IndexURL, "/"), url.PathEscape(pkg.Name), url.PathEscape(pkg.Version))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed indexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing index response: %v", err)
	}
	return parsed.URLs, nil
}

func gitRecord(pkg Package) utils.ArtifactRecord {
	sourceURL := pkg.Git.URL
	if pkg.Git.Revision != "" && !strings.Contains(sourceURL[strings.LastIndex(sourceURL, "/")+1:], "@") {
		sourceURL = sourceURL + "@" + pkg.Git.Revision
	}
	return utils.ArtifactRecord{
		URL:  sourceURL,
		Hash: "commit:" + pkg.Git.Revision,
		File: fmt.Sprintf("%s-%s", pkg.Name, pkg.Version),
	}
}

func fileName(file FileEntry) string {
	if file.File != "" {
		return file.File
	}
	parsed, err := url.Parse(file.URL)
	if err != nil {
		return path.Base(file.URL)
	}
	return path.Base(parsed.Path)
}
