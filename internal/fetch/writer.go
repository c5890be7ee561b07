package fetch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lockmirror/lockmirror/internal/utils"
)

// FetchAndVerify downloads one record into destDir through the given
// getter, feeding every chunk to the digest before it hits the disk. It
// returns the number of bytes written. The destination file is truncated
// if present and retained on failure; a crash mid-stream can leave a
// partial file but never claims success.
func FetchAndVerify(ctx context.Context, record utils.ArtifactRecord, destDir string, getter Getter) (int64, error) {
	algoName, want, err := record.HashParts()
	if err != nil {
		return 0, err
	}
	hasher, err := NewHasher(algoName)
	if err != nil {
		return 0, err
	}
	outPath := filepath.Join(destDir, record.File)
	outFile, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("error creating output file: %v", err)
	}
	defer outFile.Close()
	body, err := getter.Open(ctx, record.URL)
	if err != nil {
		return 0, err
	}
	defer body.Close()
	var written int64
	buffer := make([]byte, utils.ChunkSize)
	for {
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			hasher.Write(buffer[:bytesRead])
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				return written, fmt.Errorf("error writing to output file: %v", writeErr)
			}
			written += int64(bytesRead)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return written, fmt.Errorf("error reading response body: %v", readErr)
		}
	}
	actual := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actual, want) {
		return written, &HashMismatchError{File: record.File, Expected: want, Actual: actual}
	}
	return written, nil
}
