package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockmirror/lockmirror/internal/fetch"
	"github.com/lockmirror/lockmirror/internal/lockfile"
	"github.com/lockmirror/lockmirror/internal/output"
	"github.com/lockmirror/lockmirror/internal/utils"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [LOCKFILE]",
		Short: "Re-hash already-mirrored artifacts against the lockfile",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			lockPath := defaultLockfile
			if len(args) > 0 {
				lockPath = args[0]
			}
			lock, err := lockfile.Parse(lockPath)
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			records := lockedRecords(lock)
			if len(records) == 0 {
				output.PrintWarning("No locked artifacts to verify")
				return
			}
			outcomes := fetch.VerifyAll(records, destDir)
			failed := 0
			for _, outcome := range outcomes {
				if outcome.Failed() {
					failed++
					output.PrintError(fmt.Sprintf("%s %s: %v", output.StyleSymbols["fail"], outcome.Record.File, outcome.Err))
				}
			}
			summary := fmt.Sprintf("%d of %d artifacts verified in %s", len(outcomes)-failed, len(outcomes), destDir)
			if failed == 0 {
				output.PrintSuccess2(summary)
				return
			}
			output.PrintWarning(summary)
			os.Exit(1)
		},
	}
	return cmd
}

// lockedRecords flattens the lock into records for offline checks; URLs
// are irrelevant here, only file names and hashes matter.
func lockedRecords(lock *lockfile.Lockfile) []utils.ArtifactRecord {
	var records []utils.ArtifactRecord
	for _, pkg := range lock.Packages {
		if pkg.Git != nil {
			records = append(records, utils.ArtifactRecord{
				URL:  pkg.Git.URL,
				Hash: "commit:" + pkg.Git.Revision,
				File: fmt.Sprintf("%s-%s", pkg.Name, pkg.Version),
			})
			continue
		}
		for _, file := range pkg.Files {
			if file.File == "" {
				continue
			}
			records = append(records, utils.ArtifactRecord{URL: file.URL, Hash: file.Hash, File: file.File})
		}
	}
	return records
}
