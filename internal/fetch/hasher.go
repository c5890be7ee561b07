package fetch

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
)

// hashConstructors maps every algorithm name a lockfile may carry to an
// incremental hash.
var hashConstructors = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
	"blake3": func() hash.Hash { return blake3.New() },
}

// NewHasher returns an incremental hash for the named algorithm. An
// unknown name is an error the caller turns into a per-record failure.
func NewHasher(name string) (hash.Hash, error) {
	constructor, ok := hashConstructors[name]
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm %q", name)
	}
	return constructor(), nil
}
