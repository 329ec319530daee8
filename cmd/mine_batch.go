package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/basketloom/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchOpts   miningFlags
	batchOutDir string
	batchQuiet  bool
)

var mineBatchCmd = &cobra.Command{
	Use:   "mine-batch <files...>",
	Short: "Mine several transaction files (globs allowed) with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		s, err := batchOpts.resolve(cmd.Flags(), effectiveConfig())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		errOut := cmd.ErrOrStderr()

		var bar *progressbar.ProgressBar
		if !batchQuiet {
			bar = newBatchBar(errOut, len(files))
		}

		var failed []string
		for _, path := range files {
			if bar != nil {
				bar.Describe(filepath.Base(path))
			}
			if err := mineOne(cmd, path, s, out); err != nil {
				log.Warn("mining failed", zap.String("file", path), zap.Error(err))
				failed = append(failed, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		if bar != nil {
			_ = bar.Finish()
		}
		if len(failed) > 0 {
			for _, f := range failed {
				fmt.Fprintf(errOut, "✗ %s\n", f)
			}
			return fmt.Errorf("%d of %d files failed", len(failed), len(files))
		}
		if !batchQuiet {
			fmt.Fprintf(errOut, "✓ Mined %d files\n", len(files))
		}
		return nil
	},
}

func mineOne(cmd *cobra.Command, path string, s mineSettings, out io.Writer) error {
	rep, err := mineFile(cmd.Context(), path, s, log.With(zap.String("file", filepath.Base(path))))
	if err != nil {
		return err
	}
	if batchOutDir == "" {
		fmt.Fprintf(out, "\n=== %s ===\n", filepath.Base(path))
		return renderReport(out, rep, s)
	}
	b, err := renderToBytes(rep, s)
	if err != nil {
		return err
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "." + formatExt(s.format)
	dest := utils.UniquePath(filepath.Join(batchOutDir, name))
	if err := utils.SafeWriteFile(dest, b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if rep.Outcome.Empty() && !batchQuiet {
		log.Warn(rep.Outcome.Guidance(), zap.String("file", base))
	}
	return nil
}

func formatExt(format string) string {
	switch format {
	case "json", "csv":
		return format
	case "table":
		return "txt"
	default:
		return "md"
	}
}

func newBatchBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Mining"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

func init() {
	rootCmd.AddCommand(mineBatchCmd)
	batchOpts.register(mineBatchCmd.Flags())
	mineBatchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "write one report per input file into this directory")
	mineBatchCmd.Flags().BoolVar(&batchQuiet, "quiet", false, "hide the progress bar and summary; reports are still written")
}
