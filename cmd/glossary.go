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
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/liaozensiang/ebook-translater/internal/glossary"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Inspect and edit the glossary file",
	Long: `List, add, delete and repair entries of the glossary JSON file
(glossary.path, or --glossary).

Glossary entries ensure that proper nouns are always translated the same
way; they are sent to the model with every segment that contains them.`,
}

var glossaryFixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Flatten a glossary written in a nested term-list shape",
	Long: `Rewrites a glossary whose terms are nested under "terms" or
"glossary_terms" as a flat term -> translation object. Other non-string
keys are dropped and reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Glossary.Path
		if len(args) == 1 {
			path = args[0]
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read glossary: %w", err)
		}
		fixed, skipped, err := glossary.Repair(data)
		if err != nil {
			return err
		}
		for _, k := range skipped {
			logger.Warnf("Skipping unknown non-string key: %s", k)
		}
		if err := fixed.Save(path); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		fmt.Printf("Saved %d terms to %s.\n", len(fixed), path)
		return nil
	},
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all glossary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := glossary.Load(cfg.Glossary.Path)
		if err != nil {
			return err
		}

		if len(g) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		return printGlossary(os.Stdout, g)
	},
}

// printGlossary writes g as a two-column table sorted by term.
func printGlossary(out io.Writer, g glossary.Glossary) error {
	terms := make([]string, 0, len(g))
	for term := range g {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TERM\tTRANSLATION")
	for _, term := range terms {
		fmt.Fprintf(w, "%s\t%s\n", term, g[term])
	}
	return w.Flush()
}

var glossaryAddCmd = &cobra.Command{
	Use:   "add <term> <translation>",
	Short: "Add or update a glossary entry",
	Long: `Add a glossary entry mapping a source-language term to its translation.

Example:
  ebook-translater glossary add "アリス" "愛麗絲"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := glossary.Load(cfg.Glossary.Path)
		if err != nil {
			return err
		}
		g[args[0]] = args[1]
		if err := g.Save(cfg.Glossary.Path); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		fmt.Printf("Added: %q → %q\n", args[0], args[1])
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <term>",
	Short: "Delete a glossary entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := glossary.Load(cfg.Glossary.Path)
		if err != nil {
			return err
		}
		if _, ok := g[args[0]]; !ok {
			return fmt.Errorf("term not in glossary: %s", args[0])
		}
		delete(g, args[0])
		if err := g.Save(cfg.Glossary.Path); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		fmt.Printf("Deleted glossary entry: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCmd.PersistentFlags().String("glossary", "", "Glossary JSON (default glossary.path)")

	glossaryCmd.AddCommand(glossaryFixCmd)
	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}
