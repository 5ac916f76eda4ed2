// Package toml persists named backend profiles in a TOML file located by
// viper, written atomically through a temp file.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/mvaldes/invctl/internal/domain"
)

const (
	configName         = "config"
	configType         = "toml"
	profilesPathKey    = "profiles.path"
	profilesFileMode   = 0o600
	profilesDirMode    = 0o700
	profilesConfigDir  = ".invctl"
	profilesConfigFile = "profiles.toml"
	tempFilePattern    = ".profiles-*.toml.tmp"
)

// Profile names one backend endpoint the CLI can talk to.
type Profile struct {
	Name     string
	BaseURL  string
	Username string
	Default  bool
}

type Repository struct {
	profilesPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, profilesConfigDir, profilesConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, profilesConfigDir))
	cfg.SetDefault(profilesPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	profilesPath := cfg.GetString(profilesPathKey)
	if profilesPath == "" {
		return nil, errors.New("profiles path is empty")
	}
	profilesPath, err = normalizeProfilesPath(profilesPath)
	if err != nil {
		return nil, err
	}

	return &Repository{profilesPath: profilesPath, mu: lockForPath(profilesPath)}, nil
}

// NewRepositoryAt builds a repository on an explicit file path, bypassing
// config discovery.
func NewRepositoryAt(path string) (*Repository, error) {
	normalized, err := normalizeProfilesPath(path)
	if err != nil {
		return nil, err
	}
	return &Repository{profilesPath: normalized, mu: lockForPath(normalized)}, nil
}

func (r *Repository) List(ctx context.Context) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(file.Profiles))
	for _, entry := range file.Profiles {
		profiles = append(profiles, fromSchema(entry))
	}

	return profiles, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return Profile{}, err
	}

	for _, entry := range file.Profiles {
		if entry.Name == name {
			return fromSchema(entry), nil
		}
	}

	return Profile{}, domain.ErrProfileMissing
}

// GetDefault returns the profile marked default, or the only profile when
// exactly one exists.
func (r *Repository) GetDefault(ctx context.Context) (Profile, error) {
	profiles, err := r.List(ctx)
	if err != nil {
		return Profile{}, err
	}

	for _, profile := range profiles {
		if profile.Default {
			return profile, nil
		}
	}
	if len(profiles) == 1 {
		return profiles[0], nil
	}

	return Profile{}, domain.ErrProfileMissing
}

func (r *Repository) Save(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if profile.Name == "" {
		return errors.New("profile name is empty")
	}
	if profile.BaseURL == "" {
		return errors.New("profile base url is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	encoded := toSchema(profile)
	updated := false
	for i := range file.Profiles {
		if file.Profiles[i].Name == encoded.Name {
			file.Profiles[i] = encoded
			updated = true
			continue
		}
		if profile.Default {
			file.Profiles[i].Default = false
		}
	}
	if !updated {
		file.Profiles = append(file.Profiles, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

// SetDefault marks the named profile default and unmarks every other.
func (r *Repository) SetDefault(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	found := false
	for i := range file.Profiles {
		isTarget := file.Profiles[i].Name == name
		file.Profiles[i].Default = isTarget
		if isTarget {
			found = true
		}
	}
	if !found {
		return domain.ErrProfileMissing
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.profilesPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read profiles file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode profiles file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.profilesPath), profilesDirMode); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode profiles file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.profilesPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp profiles file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp profiles file: %w", err)
	}

	if err := tempFile.Chmod(profilesFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp profiles file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp profiles file: %w", err)
	}

	if err := os.Rename(tempName, r.profilesPath); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.profilesPath, profilesFileMode); err != nil {
		return fmt.Errorf("chmod profiles file: %w", err)
	}

	return nil
}

func normalizeProfilesPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve profiles path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
