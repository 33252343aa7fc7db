package assets

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

// DetectPrompt is the default instruction sent with every image to the
// vision model.
//
//go:embed detect_prompt.txt
var DetectPrompt string

// LoadPrompt returns the prompt stored at path, or DetectPrompt when path is
// empty.
func LoadPrompt(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DetectPrompt, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return DetectPrompt, fmt.Errorf("read prompt %s: %w", path, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return DetectPrompt, fmt.Errorf("prompt file %s is empty", path)
	}
	return string(b), nil
}
