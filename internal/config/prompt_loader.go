package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// defaultPromptDir is the subdirectory within the user's home directory.
const defaultPromptDir = ".config/promptchart/prompts"

// LoadPromptContent reads an instruction override. An absolute path is used as
// is; a relative path is looked up in the working directory first and then in
// ~/.config/promptchart/prompts/. An empty path returns "" so callers keep the
// built-in instruction.
func LoadPromptContent(configuredPath string) (string, error) {
	if configuredPath == "" {
		return "", nil
	}

	candidates := []string{configuredPath}
	if !filepath.IsAbs(configuredPath) {
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(homeDir, defaultPromptDir, configuredPath))
		}
	}

	for _, path := range candidates {
		promptBytes, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to read prompt file '%s': %w", path, err)
		}
		content := strings.TrimSpace(string(promptBytes))
		if content == "" {
			return "", fmt.Errorf("prompt file '%s' is empty", path)
		}
		return content, nil
	}
	return "", fmt.Errorf("prompt file not found, tried %s", strings.Join(candidates, ", "))
}
