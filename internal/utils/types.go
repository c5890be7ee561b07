package utils

import (
	"fmt"
	"strings"
)

// ArtifactRecord is the unit of work for the mirror: one file to fetch
// plus the digest the lockfile pins for it. Records are produced by the
// lockfile resolvers and never mutated downstream.
type ArtifactRecord struct {
	URL  string `yaml:"url" toml:"url"`
	Hash string `yaml:"hash" toml:"hash"`
	File string `yaml:"file" toml:"file"`
}

// HashParts splits the "algorithm:hexdigest" value carried in lockfiles.
func (r ArtifactRecord) HashParts() (string, string, error) {
	name, digest, found := strings.Cut(r.Hash, ":")
	if !found || name == "" || digest == "" {
		return "", "", fmt.Errorf("malformed hash %q for %s, want algorithm:hexdigest", r.Hash, r.File)
	}
	return strings.ToLower(name), digest, nil
}

// SourceKind classifies a record URL so the fetch layer can pick a getter.
type SourceKind int

const (
	SourceHTTP SourceKind = iota
	SourceS3
	SourceGit
	SourceUnknown
)

func KindOfURL(url string) SourceKind {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return SourceHTTP
	case strings.HasPrefix(url, "s3://"):
		return SourceS3
	case strings.HasPrefix(url, "git+http://"), strings.HasPrefix(url, "git+https://"):
		return SourceGit
	default:
		return SourceUnknown
	}
}
