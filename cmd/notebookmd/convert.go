package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/notebookmd"
	"github.com/nicholasgasior/notebookmd/internal/batch"
)

var convertCmd = &cobra.Command{
	Use:   "convert <notebook>",
	Short: "Convert one notebook to Markdown",
	Long: `Convert renders a single notebook as Markdown, written to stdout or to the
file given with --output. Image outputs are written to --assets-dir, which
defaults to <stem>_files next to the output file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		src := args[0]
		output, _ := cmd.Flags().GetString("output")
		assetsDir, _ := cmd.Flags().GetString("assets-dir")
		if assetsDir == "" {
			assetsDir = defaultAssetsDir(src, output)
		}

		opts, err := converterOptions()
		if err != nil {
			return err
		}
		conv := notebookmd.New(opts...)

		if info, err := conv.DetectStreamInfo(src); err == nil && !notebookmd.Accepts(info) {
			logger.WarnContext(ctx, "input does not look like a notebook",
				"path", src,
				"mime", info.MIMEType,
			)
		}

		result, err := conv.ConvertFile(src, assetsDir)
		if err != nil {
			logger.ErrorContext(ctx, "notebook conversion failed",
				"notebook", src,
				"error", err,
			)
			return err
		}

		if output == "" {
			fmt.Fprint(cmd.OutOrStdout(), result.Markdown)
		} else {
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}
			if err := os.WriteFile(output, []byte(result.Markdown), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}

		logger.InfoContext(ctx, "notebook converted",
			"notebook", src,
			"output", output,
			"title", result.Title,
			"assets", len(result.Assets),
		)
		return nil
	},
}

// defaultAssetsDir places <stem>_files beside the output file, or in the
// working directory when writing to stdout.
func defaultAssetsDir(src, output string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if output == "" {
		return stem + batch.AssetsSuffix
	}
	return filepath.Join(filepath.Dir(output), stem+batch.AssetsSuffix)
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	convertCmd.Flags().String("assets-dir", "", "directory for image outputs (default: <stem>_files)")

	rootCmd.AddCommand(convertCmd)
}
