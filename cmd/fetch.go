package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lockmirror/lockmirror/internal/fetch"
	"github.com/lockmirror/lockmirror/internal/lockfile"
	"github.com/lockmirror/lockmirror/internal/output"
	"github.com/lockmirror/lockmirror/internal/utils"
)

const defaultLockfile = "pdm.lock"

func newFetchCmd() *cobra.Command {
	var (
		pythonVersion  string
		platform       string
		implementation string
		indexURL       string
		staticOnly     bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [LOCKFILE]",
		Short: "Download every artifact pinned in a lockfile",
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
			env := &lockfile.Environment{
				PythonVersion:  pythonVersion,
				Platform:       platform,
				Implementation: implementation,
			}
			if !env.Empty() {
				if _, err := env.CompatibleTarget(lock.Metadata); err != nil {
					output.PrintError(err.Error())
					os.Exit(1)
				}
			}
			client := utils.NewMirrorHTTPClient(globalHTTPConfig)
			var resolver lockfile.Resolver
			if staticOnly {
				resolver = &lockfile.StaticResolver{Lock: lock, Env: env}
			} else {
				resolver = lockfile.NewResolver(lock, env, indexURL, client)
			}
			records, err := resolver.Resolve(cmd.Context())
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			if len(records) == 0 {
				output.PrintWarning("No packages to download")
				return
			}
			tracker := output.NewTracker()
			if quiet {
				tracker.Quiet()
			}
			coordinator := &fetch.Coordinator{
				Workers:   workers,
				Client:    client,
				Reporter:  tracker,
				S3Profile: s3Profile,
			}
			// Per-record failures are reported by the tracker; only a
			// failed precondition is fatal here.
			if _, err := coordinator.Run(cmd.Context(), records, destDir); err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&pythonVersion, "python", "", "Only download files compatible with this python version")
	cmd.Flags().StringVar(&platform, "platform", "", "Only download files for this platform")
	cmd.Flags().StringVar(&implementation, "impl", "", "Only download files for this python implementation")
	cmd.Flags().StringVar(&indexURL, "index-url", "", "Package index base URL for locks without static URLs")
	cmd.Flags().BoolVar(&staticOnly, "no-index", false, "Never query the index, use lockfile URLs only")
	return cmd
}
