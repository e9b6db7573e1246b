package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/workspace"
)

// openWorkspace loads configuration and wires the full service graph.
// The returned logger is owned by the caller; sync it before exit.
func openWorkspace() (*workspace.Workspace, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := buildLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	ws, err := workspace.Open(cfg, offline, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return ws, logger, nil
}

// printJSON renders v as indented JSON to stdout, or to path when set.
func printJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	if path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}

	fmt.Println(string(data))
	return nil
}
