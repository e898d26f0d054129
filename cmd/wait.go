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
	"time"

	"github.com/spf13/cobra"

	"github.com/liaozensiang/ebook-translater/internal/llm"
)

var (
	waitTimeout  time.Duration
	waitInterval time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait-for-llm",
	Short: "Block until the model server answers",
	Long: `Polls <llm.base_url>/models until it returns 200 or the timeout
elapses. Useful as a container start-up gate in front of prepare or review.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return llm.WaitReady(cmd.Context(), cfg.LLM.BaseURL, cfg.LLM.APIKey, waitTimeout, waitInterval, logger)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 5*time.Minute, "Give up after this long")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", 5*time.Second, "Delay between polls")
}
