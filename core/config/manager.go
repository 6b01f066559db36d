package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/axon-graph/axon/core/storage"
	"gopkg.in/yaml.v3"
)

type Manager struct {
	configPtr unsafe.Pointer
	dirs      *storage.Dirs
	watchers  []func(*Config)
	watcherMu sync.RWMutex
	stopWatch chan struct{}
	watchOnce sync.Once
}

// Config is the pipeline run configuration: which phases run, the floor
// below which a resolved CALLS edge is dropped rather than written, the
// change-coupling window and thresholds, the embedding encoder choice, the
// source roots the import resolver uses, and the ignore files the walker
// uses.
type Config struct {
	EnabledPhases   []string        `yaml:"enabled_phases"`
	ConfidenceFloor float64         `yaml:"confidence_floor"`
	Coupling        CouplingConfig  `yaml:"coupling"`
	Embedding       EmbeddingConfig `yaml:"embedding"`
	SourceRoots     []string        `yaml:"source_roots"`
	IgnoreFiles     []string        `yaml:"ignore_files"`
}

type CouplingConfig struct {
	WindowDays   int     `yaml:"window_days"`
	MinCoChanges int     `yaml:"min_co_changes"`
	MinStrength  float64 `yaml:"min_strength"`
}

type EmbeddingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

var allPhases = []string{
	"walk", "structure", "parse", "imports", "calls", "heritage",
	"typerefs", "community", "process", "deadcode", "coupling", "embed",
}

func NewManager(dirs *storage.Dirs) *Manager {
	m := &Manager{
		dirs:      dirs,
		stopWatch: make(chan struct{}),
	}
	cfg := DefaultConfig()
	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	return m
}

func DefaultConfig() *Config {
	return &Config{
		EnabledPhases:   append([]string(nil), allPhases...),
		ConfidenceFloor: 0.4,
		Coupling: CouplingConfig{
			WindowDays:   180,
			MinCoChanges: 3,
			MinStrength:  0.3,
		},
		Embedding: EmbeddingConfig{
			Enabled:   true,
			Model:     "hash-384",
			BatchSize: 64,
		},
		SourceRoots: []string{"."},
		IgnoreFiles: []string{".gitignore"},
	}
}

func (m *Manager) Get() *Config {
	return (*Config)(atomic.LoadPointer(&m.configPtr))
}

func (m *Manager) Load() error {
	cfg := DefaultConfig()

	if err := m.loadProjectConfig(cfg); err != nil {
		return fmt.Errorf("project config: %w", err)
	}

	if err := m.loadUserConfig(cfg); err != nil {
		return fmt.Errorf("user config: %w", err)
	}

	if err := m.loadLocalConfig(cfg); err != nil {
		return fmt.Errorf("local config: %w", err)
	}

	m.applyEnvironment(cfg)

	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	m.notifyWatchers(cfg)

	return nil
}

func (m *Manager) loadProjectConfig(cfg *Config) error {
	projectDirs := storage.ResolveProjectDirs(".")
	return m.loadYAMLFile(projectDirs.Config, cfg)
}

func (m *Manager) loadUserConfig(cfg *Config) error {
	userConfigPath := m.dirs.ConfigDir("config.yaml")
	return m.loadYAMLFile(userConfigPath, cfg)
}

func (m *Manager) loadLocalConfig(cfg *Config) error {
	projectDirs := storage.ResolveProjectDirs(".")
	localPath := filepath.Join(projectDirs.Local, "config.yaml")
	return m.loadYAMLFile(localPath, cfg)
}

func (m *Manager) loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return err
	}
	DeepMerge(cfg, loaded)
	return nil
}

func (m *Manager) applyEnvironment(cfg *Config) {
	if v := os.Getenv("AXON_CONFIDENCE_FLOOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ConfidenceFloor = f
		}
	}
	if v := os.Getenv("AXON_COUPLING_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Coupling.WindowDays = n
		}
	}
	if v := os.Getenv("AXON_COUPLING_MIN_STRENGTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Coupling.MinStrength = f
		}
	}
	if v := os.Getenv("AXON_EMBEDDING_ENABLED"); v != "" {
		cfg.Embedding.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("AXON_SOURCE_ROOTS"); v != "" {
		cfg.SourceRoots = strings.Split(v, ",")
	}
}

func (m *Manager) OnChange(fn func(*Config)) {
	m.watcherMu.Lock()
	m.watchers = append(m.watchers, fn)
	m.watcherMu.Unlock()
}

func (m *Manager) notifyWatchers(cfg *Config) {
	m.watcherMu.RLock()
	watchers := m.watchers
	m.watcherMu.RUnlock()

	for _, fn := range watchers {
		fn(cfg)
	}
}

func (m *Manager) Reload() error {
	return m.Load()
}

func (m *Manager) Close() error {
	m.watchOnce.Do(func() {
		close(m.stopWatch)
	})
	return nil
}
