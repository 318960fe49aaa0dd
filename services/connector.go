package services

import (
	"context"

	"askbrooks/config"
	"askbrooks/notebooklm"
)

// NotebookLMConnector materializes the session credentials from the
// environment and opens a NotebookLM session with them.
func NotebookLMConnector(cfg *config.Config) ConnectFunc {
	nb := cfg.NotebookLM
	return func(ctx context.Context) (Connector, error) {
		if err := notebooklm.WriteStorageState(nb.StorageB64, nb.StoragePath); err != nil {
			return nil, err
		}
		s, err := notebooklm.Connect(ctx, nb.BaseURL, nb.StoragePath, notebooklm.WithTimeout(nb.Timeout))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
