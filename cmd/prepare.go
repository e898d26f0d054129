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
	"github.com/spf13/cobra"

	"github.com/liaozensiang/ebook-translater/internal/glossary"
	"github.com/liaozensiang/ebook-translater/internal/session"
	"github.com/liaozensiang/ebook-translater/internal/workflow"
)

var (
	prepareInput         string
	prepareAutoTranslate bool
	prepareChapterFilter string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Create a review session from an EPUB",
	Long: `Splits every chapter of the input book into leaf paragraphs and headings
and writes them, with a snapshot of the glossary, to session.json in the
work directory. An existing session there is replaced.

With --auto-translate every segment gets a draft translation from the model
in batches of translation.batch_size; drafts stay pending until approved.
Pass --src-lang auto to detect the source language from the book.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		g, err := glossary.Load(cfg.Glossary.Path)
		if err != nil {
			return err
		}
		logger.Infof("Loaded %d glossary terms from %s", len(g), cfg.Glossary.Path)

		var translator workflow.BatchTranslator
		if prepareAutoTranslate {
			client, release, err := buildClient(ctx)
			if err != nil {
				return err
			}
			defer release()
			translator = client
		}

		db, err := openMemory()
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		sessions := session.NewStore(cfg.Session.WorkDir)
		preparer := workflow.NewPreparer(sessions, translator, memoryOf(db), logger)
		s, err := preparer.Prepare(ctx, workflow.PrepareOptions{
			Input:         prepareInput,
			SrcLang:       cfg.Translation.SrcLang,
			TgtLang:       cfg.Translation.TgtLang,
			Glossary:      g,
			ChapterFilter: prepareChapterFilter,
			AutoTranslate: prepareAutoTranslate,
			BatchSize:     cfg.Translation.BatchSize,
		})
		if err != nil {
			return err
		}

		translated, _ := s.Progress()
		logger.Infof("Session %q ready in %s: %d segments, %d translated (%s -> %s)",
			s.ProjectName, sessions.Path(), len(s.Segments), translated, s.SrcLang, s.TgtLang)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().StringVar(&prepareInput, "input", "", "Input EPUB (required)")
	prepareCmd.Flags().String("glossary", "", "Glossary JSON (default glossary.path)")
	prepareCmd.Flags().BoolVar(&prepareAutoTranslate, "auto-translate", false, "Draft a translation for every segment with the model")
	prepareCmd.Flags().StringVar(&prepareChapterFilter, "chapter-filter", "", "Only segment chapters whose name contains this string")
	prepareCmd.Flags().String("cache-db", "", "Translation memory database (default cache.db; empty disables)")

	prepareCmd.MarkFlagRequired("input")
}
