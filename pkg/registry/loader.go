package registry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fieldblocks/pkg/model"
)

// documentFile holds either a single block type or a "blocks" list.
type documentFile struct {
	Blocks          []model.BlockType `json:"blocks" yaml:"blocks"`
	model.BlockType `yaml:",inline"`
}

// LoadFS walks fsys and registers every block type declared in JSON or YAML
// files. A nil fsys yields an empty registry.
func LoadFS(fsys fs.FS, options ...Option) (*Memory, error) {
	reg := New(options...)
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("registry: read %s: %w", path, err)
		}
		blocks, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		for _, block := range blocks {
			if err := reg.Register(block); err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func parseDocument(data []byte, source string) ([]model.BlockType, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("registry: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("registry: parse %s: invalid JSON or YAML", source)
		}
	}

	blocks := append([]model.BlockType(nil), doc.Blocks...)
	if strings.TrimSpace(doc.BlockType.Name) != "" {
		blocks = append(blocks, doc.BlockType)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("registry: file %s declares no block types", source)
	}
	return blocks, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
