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
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liaozensiang/ebook-translater/internal/assemble"
	"github.com/liaozensiang/ebook-translater/internal/session"
)

var (
	exportInput  string
	exportOutput string
	exportText   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the translated EPUB from a review session",
	Long: `Copies the input book to the output path, replacing the text of every
segment that has a translation. Entries without translated segments are
copied byte for byte.

With --text the segment translations are also written one per line, in
session order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions := session.NewStore(cfg.Session.WorkDir)
		s, err := sessions.Load()
		if err != nil {
			return err
		}
		if len(s.Segments) == 0 {
			logger.Warnf("No segments in %s; the book will be copied unchanged", sessions.Path())
		}

		translated, approved := s.Progress()
		logger.Infof("Session %q: %d/%d translated, %d approved", s.ProjectName, translated, len(s.Segments), approved)

		report, err := assemble.New(logger).Assemble(exportInput, s, exportOutput)
		if err != nil {
			return err
		}
		logger.Infof("Wrote %s: %d chapters modified, %d unchanged, %d entries copied",
			exportOutput, len(report.Modified), len(report.Unchanged), len(report.Copied))

		if exportText != "" {
			content := strings.Join(s.ExportContent(), "\n") + "\n"
			if err := os.WriteFile(exportText, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write text export: %w", err)
			}
			logger.Infof("Wrote %d lines to %s", len(s.Segments), exportText)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportInput, "input", "", "Original EPUB used as the template (required)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "Output EPUB (required)")
	exportCmd.Flags().StringVar(&exportText, "text", "", "Also write the translations as plain text to this file")

	exportCmd.MarkFlagRequired("input")
	exportCmd.MarkFlagRequired("output")
}
