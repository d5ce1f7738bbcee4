package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON writes the run result as report.json in the output directory.
func WriteJSON(outputDir string, result *RunResult) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run result: %w", err)
	}

	path := filepath.Join(outputDir, "report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// SaveAttachment writes an artifact under outputDir/artifacts and returns
// the attachment record.
func SaveAttachment(outputDir, specName, name, kind string, data []byte) (*Attachment, error) {
	dir := filepath.Join(outputDir, "artifacts", sanitize(specName))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	rel, err := filepath.Rel(outputDir, path)
	if err != nil {
		rel = path
	}
	return &Attachment{Name: name, Path: rel, Type: kind}, nil
}

// sanitize makes a spec name safe as a directory name.
func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "spec"
	}
	return string(out)
}
