package generation

import (
	"fmt"
	"os"
	"strings"
)

// LoadTemplate reads the master resume template once at process start. The
// worker receives the content as an immutable string; nothing re-reads the
// file during processing.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read master template %s: %w", path, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("master template %s is empty", path)
	}
	return content, nil
}
