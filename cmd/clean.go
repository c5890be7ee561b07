package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lockmirror/lockmirror/internal/fetch"
	"github.com/lockmirror/lockmirror/internal/lockfile"
	"github.com/lockmirror/lockmirror/internal/output"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [LOCKFILE]",
		Short: "Remove mirrored artifacts that fail verification against the lockfile",
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
			removed := 0
			for _, outcome := range fetch.VerifyAll(lockedRecords(lock), destDir) {
				if !outcome.Failed() {
					continue
				}
				// Files that were never downloaded are not a cleanup
				// concern, only leftovers from failed runs are.
				if errors.Is(outcome.Err, fs.ErrNotExist) {
					continue
				}
				target := filepath.Join(destDir, outcome.Record.File)
				if _, err := os.Stat(target); err != nil {
					continue
				}
				if err := os.RemoveAll(target); err != nil {
					output.PrintError(fmt.Sprintf("Error removing %s: %v", outcome.Record.File, err))
					continue
				}
				output.PrintInfo("Removed " + outcome.Record.File)
				removed++
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d unverifiable artifacts from %s", removed, destDir))
		},
	}
	return cmd
}
