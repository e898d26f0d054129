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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/liaozensiang/ebook-translater/internal/llm"
	"github.com/liaozensiang/ebook-translater/internal/store"
	"github.com/liaozensiang/ebook-translater/internal/workflow"
)

// bindFlag lets a flag override the config file and environment for key.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

// buildClient constructs the completion client from the llm.* settings.
// The returned release func closes the backend.
func buildClient(ctx context.Context) (*llm.Client, func(), error) {
	backend, err := llm.NewBackend(ctx, cfg.LLM.BackendConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm backend: %w", err)
	}
	client := llm.NewClient(backend, cfg.LLM.Model, cfg.LLM.RateLimit, logger)
	client.BatchRetries = cfg.LLM.MaxRetries

	logger.Debugf("Using %s model %s at %s", cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL)
	release := func() {
		if err := llm.Close(backend); err != nil {
			logger.Warnf("Failed to close llm backend: %v", err)
		}
	}
	return client, release, nil
}

// openMemory opens the translation memory named by cache.db. An empty path
// disables the memory and yields a nil store.
func openMemory() (*store.Store, error) {
	path := cfg.Cache.DB
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation memory: %w", err)
	}
	logger.Debugf("Translation memory: %s", path)
	return db, nil
}

// memoryOf keeps a disabled memory a nil interface rather than a typed nil.
func memoryOf(db *store.Store) workflow.Memory {
	if db == nil {
		return nil
	}
	return db
}
