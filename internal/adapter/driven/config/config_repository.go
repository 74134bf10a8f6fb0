package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/aws-cost-report/internal/domain/repository"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// DefaultFileNames are probed, in order, when no config file is given.
var DefaultFileNames = []string{
	".aws-cost-report.yaml",
	".aws-cost-report.yml",
	".aws-cost-report.toml",
	".aws-cost-report.json",
}

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// FindConfigFile procura um arquivo de configuração padrão em dir.
func (r *ConfigRepositoryImpl) FindConfigFile(dir string) (string, bool) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
// Todo erro é um ConfigurationError.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, &types.ConfigurationError{Source: filePath, Err: fmt.Errorf("error accessing config file: %w", err)}
	}
	if fileInfo.IsDir() {
		return nil, &types.ConfigurationError{Source: filePath, Err: fmt.Errorf("%s is a directory, not a file", filePath)}
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &types.ConfigurationError{Source: filePath, Err: fmt.Errorf("error reading config file: %w", err)}
	}

	var config types.Config
	switch fileExtension {
	case ".toml":
		err = toml.Unmarshal(fileData, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(fileData, &config)
	case ".json":
		err = json.Unmarshal(fileData, &config)
	default:
		return nil, &types.ConfigurationError{Source: filePath, Err: fmt.Errorf("%w: %s", types.ErrUnsupportedInput, fileExtension)}
	}
	if err != nil {
		return nil, &types.ConfigurationError{
			Source: filePath,
			Err:    fmt.Errorf("error parsing %s file: %w", strings.ToUpper(strings.TrimPrefix(fileExtension, ".")), err),
		}
	}

	return &config, nil
}
