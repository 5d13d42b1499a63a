package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixel/internal"
)

var (
	failFastFlag bool
	watchFlag    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [manifest]",
	Short: "Generate a fixture set from a YAML manifest",
	Long: `Generate every fixture a YAML manifest lists. Writes are atomic (temp
file plus rename) and each run is recorded as a session under the output
directory: a JSONL manifest of generated/failed events plus a plain log.
Per-fixture failures are recorded and generation continues; any failure
makes the command exit non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := args[0]

		info, err := os.Stat(manifestPath)
		if err != nil || info.IsDir() {
			return fmt.Errorf("manifest does not exist or is a directory: %s", manifestPath)
		}

		conf, err := internal.LoadConfig()
		if err != nil {
			return err
		}

		stats, err := runBatch(manifestPath, conf, failFastFlag)
		if err != nil {
			return err
		}
		if !watchFlag {
			if stats.Failed > 0 {
				return fmt.Errorf("%d of %d fixtures failed", stats.Failed, stats.Total)
			}
			return nil
		}
		if stats.Failed > 0 {
			color.Red("%d of %d fixtures failed", stats.Failed, stats.Total)
		}

		watcher, err := internal.NewManifestWatcher(manifestPath)
		if err != nil {
			return err
		}
		defer watcher.Close()
		fmt.Printf("watching %s for changes\n", manifestPath)

		for {
			select {
			case <-watcher.Events():
				// Editors emit a burst of events per save; let them settle
				// and drain the extras before re-running.
				time.Sleep(200 * time.Millisecond)
				for len(watcher.Events()) > 0 {
					<-watcher.Events()
				}
				stats, err := runBatch(manifestPath, conf, failFastFlag)
				if err != nil {
					color.Red("batch: %v", err)
					continue
				}
				if stats.Failed > 0 {
					color.Red("%d of %d fixtures failed", stats.Failed, stats.Total)
				}
			case err := <-watcher.Errors():
				color.Red("watch: %v", err)
			}
		}
	},
}

// runBatch generates every fixture the manifest lists, recording the run in
// a session under the output root. Per-fixture failures are recorded and
// generation continues unless failFast is set; the caller sees the failure
// count in the returned stats either way.
func runBatch(manifestPath string, conf *internal.Config, failFast bool) (internal.SessionStats, error) {
	m, err := internal.LoadBatchManifest(manifestPath)
	if err != nil {
		return internal.SessionStats{}, err
	}
	items, err := m.Resolve(conf)
	if err != nil {
		return internal.SessionStats{}, err
	}

	session, err := internal.NewSession(m.OutputRoot(conf))
	if err != nil {
		return internal.SessionStats{}, err
	}
	defer session.Close()

	if err := session.LogStart(manifestPath, len(items)); err != nil {
		return session.Stats(), err
	}

	okMark := color.New(color.FgGreen).SprintFunc()
	failMark := color.New(color.FgRed).SprintFunc()

	for _, item := range items {
		res, genErr := generateBatchItem(item)
		if genErr == nil {
			var hash string
			hash, genErr = internal.FileChecksum(item.OutputPath)
			if genErr == nil {
				fmt.Printf("%s %s (%s, quality %d)\n", okMark("ok"), item.OutputPath,
					humanize.Bytes(uint64(item.Req.TargetSize)), res.Quality)
				if err := session.LogGenerated(item.OutputPath, item.Req, res, hash); err != nil {
					return session.Stats(), err
				}
				continue
			}
		}

		fmt.Printf("%s %s: %v\n", failMark("failed"), item.OutputPath, genErr)
		if err := session.LogFailed(item.OutputPath, item.Req, genErr); err != nil {
			return session.Stats(), err
		}
		if failFast {
			break
		}
	}

	if err := session.LogEnd(); err != nil {
		return session.Stats(), err
	}

	stats := session.Stats()
	fmt.Printf("session %s: %d generated, %d failed, %s written\n",
		session.ID, stats.Generated, stats.Failed, humanize.Bytes(uint64(stats.BytesWritten)))
	return stats, nil
}

// generateBatchItem writes one fixture atomically, creating any parent
// directories the manifest's relative name implies.
func generateBatchItem(item internal.BatchItem) (*internal.Result, error) {
	if dir := filepath.Dir(item.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	var res *internal.Result
	err := internal.WriteFileAtomic(item.OutputPath, func(w io.Writer) error {
		var innerErr error
		res, innerErr = internal.Generate(item.Req, w)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func init() {
	batchCmd.Flags().BoolVar(&failFastFlag, "fail-fast", false, "Stop at the first fixture that fails")
	batchCmd.Flags().BoolVar(&watchFlag, "watch", false, "Keep running and re-generate when the manifest changes")

	rootCmd.AddCommand(batchCmd)
}
