package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// WaitReady polls {baseURL}/models until the server answers 200 or timeout
// elapses.
func WaitReady(ctx context.Context, baseURL, apiKey string, timeout, interval time.Duration, logger *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := resty.New().SetTimeout(5 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	url := strings.TrimRight(baseURL, "/") + "/models"

	logger.Infof("Waiting for LLM service at %s (timeout %s)", url, timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := client.R().SetContext(ctx).Get(url)
		switch {
		case err == nil && resp.StatusCode() == 200:
			logger.Info("LLM service is ready")
			return nil
		case err != nil:
			logger.Debugf("LLM service not reachable yet: %v", err)
		default:
			logger.Debugf("LLM service answered %d", resp.StatusCode())
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("llm service at %s not ready after %s", url, timeout)
		case <-ticker.C:
		}
	}
}
