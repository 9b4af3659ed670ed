// ABOUTME: Export of one user's full journal
// ABOUTME: Supports YAML and JSON output chosen by file extension
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/confidant/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData is the complete exportable journal for one user
type ExportData struct {
	Version      string                  `yaml:"version" json:"version"`
	ExportedAt   string                  `yaml:"exported_at" json:"exported_at"`
	Tool         string                  `yaml:"tool" json:"tool"`
	User         *models.User            `yaml:"user" json:"user"`
	Memories     []models.Memory         `yaml:"memories" json:"memories"`
	Interactions []models.InteractionLog `yaml:"interactions" json:"interactions"`
	Achievements []models.Achievement    `yaml:"achievements" json:"achievements"`
}

// Export gathers everything stored for userKey
func (s *Storage) Export(ctx context.Context, userKey string) (*ExportData, error) {
	u, err := s.GetUserByKey(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", userKey, ErrNotFound)
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "confidant",
		User:       u,
	}

	if data.Memories, err = s.AllMemories(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	if data.Interactions, err = s.AllInteractions(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	if data.Achievements, err = s.ListAchievements(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	return data, nil
}

// WriteExport writes data to path as JSON for .json files and YAML otherwise
func WriteExport(path string, data *ExportData) error {
	var (
		out []byte
		err error
	)

	if strings.EqualFold(filepath.Ext(path), ".json") {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = yaml.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	return os.WriteFile(path, out, 0644)
}
