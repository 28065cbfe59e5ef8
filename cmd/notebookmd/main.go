// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Command notebookmd converts Jupyter notebooks to Markdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicholasgasior/notebookmd"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is replaced in PersistentPreRunE once the log settings are loaded.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "notebookmd",
	Short: "Convert Jupyter notebooks to Markdown",
	Long: `notebookmd renders Jupyter notebooks as Markdown documents. Code cells become
fenced blocks, recorded outputs are rendered after them, and image outputs are
written to an assets directory or inlined as data URIs.

Settings can come from flags, a notebookmd.yaml config file, or NOTEBOOKMD_*
environment variables. Logging is controlled by LOG_LEVEL and LOG_FORMAT.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadLogConfig()
		if err != nil {
			return fmt.Errorf("load log config: %w", err)
		}
		logger = createLogger(conf)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.DebugContext(cmd.Context(), "using config file", "path", used)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notebookmd %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./notebookmd.yaml or ~/.config/notebookmd/notebookmd.yaml)")
	flags.Bool("embed-images", false, "inline image outputs as base64 data URIs instead of writing asset files")
	flags.String("language", notebookmd.DefaultCodeLanguage, "info string for code cell fences")
	flags.Bool("detect-language", false, "use the notebook kernel language for code cell fences when declared")
	flags.Bool("html-to-markdown", false, "render text/html outputs as Markdown instead of fenced html blocks")
	flags.Bool("tidy", false, "normalize line endings, trailing whitespace and blank lines")

	for _, name := range []string{"embed-images", "language", "detect-language", "html-to-markdown", "tidy"} {
		_ = viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("notebookmd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "notebookmd"))
		}
	}

	viper.SetEnvPrefix("NOTEBOOKMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

// converterOptions builds converter options from flags, config file and environment.
func converterOptions() ([]notebookmd.Option, error) {
	var record notebookmd.ConvertOptions
	if err := viper.Unmarshal(&record); err != nil {
		return nil, fmt.Errorf("decode conversion options: %w", err)
	}
	return []notebookmd.Option{
		notebookmd.WithConvertOptions(record),
		notebookmd.WithCodeLanguage(viper.GetString("language")),
		notebookmd.WithDetectLanguage(viper.GetBool("detect_language")),
		notebookmd.WithHTMLToMarkdown(viper.GetBool("html_to_markdown")),
		notebookmd.WithTidyOutput(viper.GetBool("tidy")),
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
