package fetch

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/lockmirror/lockmirror/internal/utils"
)

// VerifyFile re-hashes an already-mirrored artifact against its record
// without touching the network. A missing file is a failure like any
// other.
func VerifyFile(record utils.ArtifactRecord, destDir string) error {
	algoName, want, err := record.HashParts()
	if err != nil {
		return err
	}
	target := filepath.Join(destDir, record.File)
	if algoName == "commit" {
		return verifyGitClone(target, record.File, want)
	}
	hasher, err := NewHasher(algoName)
	if err != nil {
		return err
	}
	f, err := os.Open(target)
	if err != nil {
		return fmt.Errorf("error opening mirrored file: %w", err)
	}
	defer f.Close()
	if _, err := io.CopyBuffer(hasher, f, make([]byte, utils.ChunkSize)); err != nil {
		return fmt.Errorf("error reading mirrored file: %v", err)
	}
	actual := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actual, want) {
		return &HashMismatchError{File: record.File, Expected: want, Actual: actual}
	}
	return nil
}

func verifyGitClone(target, file, want string) error {
	repo, err := git.PlainOpen(target)
	if err != nil {
		return fmt.Errorf("error opening mirrored clone: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("error reading clone HEAD: %v", err)
	}
	if !strings.EqualFold(head.Hash().String(), want) {
		return &HashMismatchError{File: file, Expected: want, Actual: head.Hash().String()}
	}
	return nil
}

// VerifyAll checks every record and returns one outcome per record, in
// input order.
func VerifyAll(records []utils.ArtifactRecord, destDir string) []Outcome {
	outcomes := make([]Outcome, 0, len(records))
	for _, record := range records {
		outcomes = append(outcomes, Outcome{Record: record, Err: VerifyFile(record, destDir)})
	}
	return outcomes
}
