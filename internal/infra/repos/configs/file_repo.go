package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/dbfill/internal/domain"
)

type Repository interface {
	List() ([]*domain.GenerationConfig, error)
	Get(id string) (*domain.GenerationConfig, error)
	GetByPath(path string) (*domain.GenerationConfig, error)
}

// FileRepository serves generation configs from a directory of YAML or JSON
// documents. Files that fail to parse are skipped during List so one broken
// document does not hide the rest.
type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

func (r *FileRepository) List() ([]*domain.GenerationConfig, error) {
	if _, err := os.Stat(r.baseDir); os.IsNotExist(err) {
		return []*domain.GenerationConfig{}, nil
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, err
	}

	configs := make([]*domain.GenerationConfig, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		cfg, err := r.load(filepath.Join(r.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}

	return configs, nil
}

func (r *FileRepository) Get(id string) (*domain.GenerationConfig, error) {
	configs, err := r.List()
	if err != nil {
		return nil, err
	}

	for _, c := range configs {
		if c.ID == id || c.Name == id {
			return c, nil
		}
	}

	return nil, fmt.Errorf("config not found: %s", id)
}

// GetByPath loads a config by path relative to the base directory. Paths
// that resolve outside the base directory are rejected.
func (r *FileRepository) GetByPath(path string) (*domain.GenerationConfig, error) {
	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return nil, err
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)

	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return nil, fmt.Errorf("config path escapes base directory: %s", path)
	}

	return r.load(resolved)
}

func (r *FileRepository) load(path string) (*domain.GenerationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg domain.GenerationConfig
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if cfg.ID == "" {
		cfg.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &cfg, nil
}
