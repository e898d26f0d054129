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

	"github.com/liaozensiang/ebook-translater/internal/epub"
	"github.com/liaozensiang/ebook-translater/internal/glossary"
)

var (
	extractInput     string
	extractBase      string
	extractAllChunks bool
	extractDryRun    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract-glossary",
	Short: "Scan a single book for new proper nouns",
	Long: `Asks the model for proper nouns in every chapter of the input book and
adds the validated terms that the base glossary does not already contain.
Existing entries are never overwritten. With --dry-run the new terms are
printed and the glossary file is left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		srcLang, tgtLang := cfg.Translation.SrcLang, cfg.Translation.TgtLang

		base := extractBase
		if base == "" {
			base = cfg.Glossary.Path
		}
		existing, err := glossary.Load(base)
		if err != nil {
			return err
		}

		book, err := epub.Load(extractInput, logger)
		if err != nil {
			return err
		}
		defer book.Close()

		client, release, err := buildClient(ctx)
		if err != nil {
			return err
		}
		defer release()

		extractor := glossary.NewExtractor(client, logger)
		extractor.AllChunks = extractAllChunks
		found := extractor.Scan(ctx, book.ContentParts(), existing, srcLang, tgtLang)

		if len(found) == 0 {
			logger.Info("No new terms found")
			return nil
		}
		if extractDryRun {
			logger.Infof("Found %d new terms, %s not modified", len(found), base)
			return printGlossary(cmd.OutOrStdout(), found)
		}
		for term, translation := range found {
			logger.Debugf("New term: %s -> %s", term, translation)
		}

		existing.Merge(found)
		if err := existing.Save(base); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		logger.Infof("Added %d new terms to %s (%d total)", len(found), base, len(existing))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractInput, "input", "", "Input EPUB (required)")
	extractCmd.Flags().StringVar(&extractBase, "base-glossary", "", "Glossary JSON to update (default glossary.path)")
	extractCmd.Flags().BoolVar(&extractDryRun, "dry-run", false, "Print the new terms without updating the glossary file")
	extractCmd.Flags().BoolVar(&extractAllChunks, "all-chunks", false, "Scan every excerpt of long chapters, not only the first")

	extractCmd.MarkFlagRequired("input")
}
