package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Folder           string // export folder; TVTRADES_FOLDER wins over the saved one
	SettingsPath     string
	HistoryKeyword   string // default "history-all"
	PositionsKeyword string // default "positions"
	JournalKeyword   string // default "journal"
	OutputDir        string // empty disables the report file
	DBPath           string // empty disables the SQLite export
	Clipboard        bool
}

// Settings is what the tool remembers between runs.
type Settings struct {
	Folder string `yaml:"folder"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	settingsPath := os.Getenv("TVTRADES_SETTINGS")
	if settingsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home dir: %w", err)
		}
		settingsPath = filepath.Join(home, ".config", "tvtrades", "settings.yaml")
	}

	clip, err := strconv.ParseBool(getEnvDefault("TVTRADES_CLIPBOARD", "true"))
	if err != nil {
		return nil, fmt.Errorf("TVTRADES_CLIPBOARD must be a boolean, got %q", os.Getenv("TVTRADES_CLIPBOARD"))
	}

	cfg := &Config{
		Folder:           os.Getenv("TVTRADES_FOLDER"),
		SettingsPath:     settingsPath,
		HistoryKeyword:   getEnvDefault("TVTRADES_HISTORY_KEYWORD", "history-all"),
		PositionsKeyword: getEnvDefault("TVTRADES_POSITIONS_KEYWORD", "positions"),
		JournalKeyword:   getEnvDefault("TVTRADES_JOURNAL_KEYWORD", "journal"),
		OutputDir:        os.Getenv("TVTRADES_OUTPUT_DIR"),
		DBPath:           os.Getenv("TVTRADES_DB"),
		Clipboard:        clip,
	}

	if cfg.Folder == "" {
		s, err := LoadSettings(cfg.SettingsPath)
		if err != nil {
			return nil, err
		}
		cfg.Folder = s.Folder
	}

	return cfg, nil
}

// LoadSettings reads the settings file. A missing file yields empty settings.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return &s, nil
}

// SaveFolder remembers folder as the export folder. The folder must exist.
func SaveFolder(path, folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("checking folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", folder)
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("resolving folder: %w", err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		return err
	}
	s.Folder = abs

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
