package lockfile

import (
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
)

// Lockfile is the subset of the lock format this tool consumes: pinned
// packages, their file/hash triples, and the metadata describing how the
// lock was produced.
type Lockfile struct {
	Metadata Metadata  `toml:"metadata"`
	Packages []Package `toml:"package"`
}

type Metadata struct {
	Strategy       []string `toml:"strategy"`
	RequiresPython string   `toml:"requires_python"`
	Targets        []Target `toml:"targets"`
}

// Target describes which python/platform/implementation combination a
// lockfile section applies to.
type Target struct {
	RequiresPython string `toml:"requires_python"`
	Platform       string `toml:"platform"`
	Implementation string `toml:"implementation"`
}

type Package struct {
	Name           string      `toml:"name"`
	Version        string      `toml:"version"`
	RequiresPython string      `toml:"requires_python"`
	Platform       string      `toml:"platform"`
	Implementation string      `toml:"implementation"`
	Git            *GitSource  `toml:"git"`
	Files          []FileEntry `toml:"files"`
}

type GitSource struct {
	URL      string `toml:"url"`
	Revision string `toml:"revision"`
}

type FileEntry struct {
	URL  string `toml:"url"`
	Hash string `toml:"hash"`
	File string `toml:"file"`
}

const StaticURLsStrategy = "static_urls"

// Parse reads and decodes a lockfile. A missing file is a precondition
// error for every command, phrased for the user.
func Parse(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("the lockfile '%s' doesn't exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading lockfile: %v", err)
	}
	var lock Lockfile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("error parsing lockfile: %v", err)
	}
	return &lock, nil
}

func (l *Lockfile) HasStrategy(name string) bool {
	return slices.Contains(l.Metadata.Strategy, name)
}
