package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/lockmirror/lockmirror/internal/fetch"
	"github.com/lockmirror/lockmirror/internal/output"
	"github.com/lockmirror/lockmirror/internal/utils"
)

type BatchFile struct {
	Records []utils.ArtifactRecord `yaml:"records"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download artifact records listed in a YAML file, skipping lockfile resolution",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading YAML file: %v\n", err)
				os.Exit(1)
			}
			var batchFile BatchFile
			if err := yaml.Unmarshal(data, &batchFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing YAML file: %v\n", err)
				os.Exit(1)
			}
			records := make([]utils.ArtifactRecord, 0, len(batchFile.Records))
			for _, record := range batchFile.Records {
				if record.URL == "" || record.Hash == "" || record.File == "" {
					fmt.Fprintf(os.Stderr, "Warning: Incomplete record %q, skipping...\n", record.File)
					continue
				}
				records = append(records, record)
			}
			if len(records) == 0 {
				fmt.Fprintf(os.Stderr, "No valid records found in the batch file\n")
				os.Exit(1)
			}
			tracker := output.NewTracker()
			if quiet {
				tracker.Quiet()
			}
			coordinator := &fetch.Coordinator{
				Workers:   workers,
				Client:    utils.NewMirrorHTTPClient(globalHTTPConfig),
				Reporter:  tracker,
				S3Profile: s3Profile,
			}
			if _, err := coordinator.Run(cmd.Context(), records, destDir); err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
		},
	}
	return cmd
}
