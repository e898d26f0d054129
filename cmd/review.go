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

	"github.com/liaozensiang/ebook-translater/internal/mt"
	"github.com/liaozensiang/ebook-translater/internal/server"
	"github.com/liaozensiang/ebook-translater/internal/session"
	"github.com/liaozensiang/ebook-translater/internal/workflow"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start the web review server",
	Long: `Serves the review UI and its JSON API over the session in the work
directory. Reviewers edit and approve segments, request a fresh model
translation or a Google Translate suggestion, and edit the glossary; saved
glossaries are also written to glossary.path.

Stop the server with Ctrl+C; in-flight requests get 30 seconds to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, release, err := buildClient(ctx)
		if err != nil {
			return err
		}
		defer release()

		db, err := openMemory()
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		sessions := session.NewStore(cfg.Session.WorkDir)
		if _, err := sessions.Load(); err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:         cfg.Server.Port,
			StaticDir:    cfg.Server.StaticDir,
			GlossaryPath: cfg.Glossary.Path,
		}, sessions, workflow.NewTranslator(client, memoryOf(db), logger), mt.NewGoogle(cfg.Google.Credentials), logger)

		logger.Infof("Translating on demand with %s", client.Model())
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().Int("port", 0, "Port to listen on (default server.port)")
	reviewCmd.Flags().String("glossary", "", "Glossary JSON written on save (default glossary.path)")
	reviewCmd.Flags().String("static-dir", "", "Directory holding index.html (default server.static_dir)")
	reviewCmd.Flags().String("cache-db", "", "Translation memory database (default cache.db; empty disables)")
}
