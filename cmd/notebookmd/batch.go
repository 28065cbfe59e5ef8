package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicholasgasior/notebookmd/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <source-dir> <output-dir>",
	Short: "Convert every notebook under a directory",
	Long: `Batch finds every .ipynb file under source-dir and writes the Markdown to the
same relative path under output-dir. Each notebook gets its own <stem>_files
assets directory. Notebooks are converted concurrently; one failure does not
stop the others.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := converterOptions()
		if err != nil {
			return err
		}

		placeholder := viper.GetBool("batch.placeholder")
		runner := batch.New(batch.Config{
			SourceDir:   args[0],
			OutputDir:   args[1],
			Workers:     viper.GetInt("batch.workers"),
			Placeholder: placeholder,
			Frontmatter: viper.GetBool("batch.frontmatter"),
			Options:     opts,
			Logger:      logger,
		})

		summary, err := runner.Run(cmd.Context())
		fmt.Fprintf(cmd.ErrOrStderr(), "\nBatch summary: %d converted, %d failed (total: %d)\n",
			summary.Converted, summary.Failed, summary.Total())
		if err != nil {
			return err
		}
		if summary.HasFailures() && !placeholder {
			return fmt.Errorf("%d notebook(s) failed to convert", summary.Failed)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Int("workers", 0, "notebooks converted at once (default: number of CPUs)")
	batchCmd.Flags().Bool("placeholder", false, "write an error chapter for notebooks that fail to convert")
	batchCmd.Flags().Bool("frontmatter", false, "prefix each chapter with YAML frontmatter")

	_ = viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("batch.placeholder", batchCmd.Flags().Lookup("placeholder"))
	_ = viper.BindPFlag("batch.frontmatter", batchCmd.Flags().Lookup("frontmatter"))

	rootCmd.AddCommand(batchCmd)
}
