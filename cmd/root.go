/*
Copyright © 2025 The ebook-translater Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liaozensiang/ebook-translater/internal/config"
)

var version = "0.3.0"

var (
	cfgFile string
	verbose bool

	logger = logrus.New()
	cfg    *config.Config
)

// flagKeys maps flag names to the config keys they override. Flags are
// bound per invocation because several commands define the same name.
var flagKeys = map[string]string{
	"model":      "llm.model",
	"src-lang":   "translation.src_lang",
	"tgt-lang":   "translation.tgt_lang",
	"work-dir":   "session.work_dir",
	"glossary":   "glossary.path",
	"cache-db":   "cache.db",
	"db":         "cache.db",
	"port":       "server.port",
	"static-dir": "server.static_dir",
}

var rootCmd = &cobra.Command{
	Use:   "ebook-translater",
	Short: "Glossary-driven EPUB translation with human review",
	Long: `Aligns a source EPUB with an existing translation, mines a bilingual
glossary from the aligned chapters and runs a segment-level review workflow
that writes a translated EPUB while keeping every untouched byte of the
original archive.

Typical flow:
  ebook-translater align --source jp.epub --reference zh.epub
  ebook-translater prepare --input jp.epub --auto-translate
  ebook-translater review
  ebook-translater export --input jp.epub --output zh.epub`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				bindFlag(key, f)
			}
		}
		if err := config.Init(viper.GetViper(), cfgFile); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(viper.GetViper())
		return err
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("model", "", "LLM model name (overrides llm.model)")
	rootCmd.PersistentFlags().String("src-lang", "", "Source language name, or \"auto\" where supported")
	rootCmd.PersistentFlags().String("tgt-lang", "", "Target language name")
	rootCmd.PersistentFlags().String("work-dir", "", "Review session directory")
}
