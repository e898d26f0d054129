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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liaozensiang/ebook-translater/internal/align"
	"github.com/liaozensiang/ebook-translater/internal/epub"
	"github.com/liaozensiang/ebook-translater/internal/glossary"
)

var (
	alignSource        string
	alignReference     string
	alignOut           string
	alignChapterFilter string
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align two books and extract a bilingual glossary",
	Long: `Pairs the substantial chapters of a source book with those of an
existing translation by rank, asks the model for the proper nouns shared
by each pair and writes the validated terms as a glossary.

Chapters of 50 lines or fewer are ignored; pairs whose line counts differ
by more than a factor of two are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		srcLang, tgtLang := cfg.Translation.SrcLang, cfg.Translation.TgtLang

		src, err := epub.Load(alignSource, logger)
		if err != nil {
			return err
		}
		defer src.Close()

		ref, err := epub.Load(alignReference, logger)
		if err != nil {
			return err
		}
		defer ref.Close()

		aligner := align.New(logger)
		aligner.NameFilter = alignChapterFilter
		pairs := aligner.Align(src, ref)
		logger.Infof("Aligned %d chapter pairs", len(pairs))

		client, release, err := buildClient(ctx)
		if err != nil {
			return err
		}
		defer release()

		logger.Infof("Extracting glossary (%s -> %s) with %s", srcLang, tgtLang, client.Model())
		g := glossary.NewExtractor(client, logger).FromPairs(ctx, pairs, srcLang, tgtLang)

		out := alignOut
		if out == "" {
			out = cfg.Glossary.Path
		}
		if err := g.Save(out); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		logger.Infof("Glossary with %d terms saved to %s", len(g), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringVar(&alignSource, "source", "", "Source EPUB (required)")
	alignCmd.Flags().StringVar(&alignReference, "reference", "", "Reference translated EPUB (required)")
	alignCmd.Flags().StringVar(&alignOut, "out", "", "Output glossary JSON (default glossary.path)")
	alignCmd.Flags().StringVar(&alignChapterFilter, "chapter-filter", "", "Only align chapters whose name contains this string")

	alignCmd.MarkFlagRequired("source")
	alignCmd.MarkFlagRequired("reference")
}
