// Package config loads the TOML settings file. A missing file is created
// with defaults on first launch.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/Burbitskaya/task-manager-app/internal/task"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	DefaultDataDirName    = "data"
	DefaultStorageKey     = "tasks"
	DefaultLogName        = "tasks.log"

	// EnvConfigPath overrides the config location when no flag is given.
	EnvConfigPath = "TASKS_CONFIG"

	appDirName = "tasks"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	Add        string `toml:"add"`
	Up         string `toml:"up"`
	Down       string `toml:"down"`
	Status     string `toml:"status"`
	Delete     string `toml:"delete"`
	Select     string `toml:"select"`
	Toggle     string `toml:"toggle"`
	Confirm    string `toml:"confirm"`
	Cancel     string `toml:"cancel"`
	SortDate   string `toml:"sort_date"`
	SortStatus string `toml:"sort_status"`
	Reload     string `toml:"reload"`
	NextField  string `toml:"next_field"`
	PrevField  string `toml:"prev_field"`
}

type Sort struct {
	Field     string `toml:"field" validate:"oneof=date status"`
	Direction string `toml:"direction" validate:"oneof=asc desc"`
}

type Config struct {
	Backend    string `toml:"backend" validate:"oneof=sqlite file"`
	DataPath   string `toml:"data_path" validate:"required"`
	StorageKey string `toml:"storage_key" validate:"required"`
	LogFile    string `toml:"log_file"`
	LogLevel   string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Sort       Sort   `toml:"sort"`
	Keys       Keymap `toml:"keys"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ResolveConfigPath picks the config file: flag value first, then
// $TASKS_CONFIG, then the user config directory.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing defaults there first if
// the file does not exist. A relative data_path is resolved against the
// config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	// the data_path default depends on the backend read from the file
	cfg.DataPath = ""
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg.resolve(path), nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s: %q fails %s", strings.ToLower(fe.Namespace()), fe.Value(), fe.Tag())
		}
		return err
	}
	return nil
}

// SortConfig is the initial ordering for views.
func (c Config) SortConfig() task.SortConfig {
	cfg := task.DefaultSort
	if f, err := task.ParseSortField(c.Sort.Field); err == nil {
		cfg.Field = f
	}
	if d, err := task.ParseDirection(c.Sort.Direction); err == nil {
		cfg.Direction = d
	}
	return cfg
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.DataPath == "" {
		if c.Backend == "file" {
			c.DataPath = DefaultDataDirName
		} else {
			c.DataPath = DefaultDBName
		}
	}
	if c.StorageKey == "" {
		c.StorageKey = def.StorageKey
	}
	if c.Sort.Field == "" {
		c.Sort.Field = def.Sort.Field
	}
	if c.Sort.Direction == "" {
		c.Sort.Direction = def.Sort.Direction
	}
	c.Keys = mergeKeys(c.Keys, def.Keys)
}

func (c Config) resolve(path string) Config {
	if c.DataPath != "" && !filepath.IsAbs(c.DataPath) && !strings.HasPrefix(c.DataPath, "file:") {
		c.DataPath = filepath.Join(filepath.Dir(path), c.DataPath)
	}
	if c.LogFile != "" && !filepath.IsAbs(c.LogFile) {
		c.LogFile = filepath.Join(filepath.Dir(path), c.LogFile)
	}
	return c
}

func mergeKeys(k, def Keymap) Keymap {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return Keymap{
		Quit:       pick(k.Quit, def.Quit),
		Add:        pick(k.Add, def.Add),
		Up:         pick(k.Up, def.Up),
		Down:       pick(k.Down, def.Down),
		Status:     pick(k.Status, def.Status),
		Delete:     pick(k.Delete, def.Delete),
		Select:     pick(k.Select, def.Select),
		Toggle:     pick(k.Toggle, def.Toggle),
		Confirm:    pick(k.Confirm, def.Confirm),
		Cancel:     pick(k.Cancel, def.Cancel),
		SortDate:   pick(k.SortDate, def.SortDate),
		SortStatus: pick(k.SortStatus, def.SortStatus),
		Reload:     pick(k.Reload, def.Reload),
		NextField:  pick(k.NextField, def.NextField),
		PrevField:  pick(k.PrevField, def.PrevField),
	}
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		Backend:    "sqlite",
		DataPath:   DefaultDBName,
		StorageKey: DefaultStorageKey,
		LogFile:    DefaultLogName,
		LogLevel:   "info",
		Sort: Sort{
			Field:     string(task.DefaultSort.Field),
			Direction: string(task.DefaultSort.Direction),
		},
		Keys: Keymap{
			Quit:       "q",
			Add:        "a",
			Up:         "k",
			Down:       "j",
			Status:     "s",
			Delete:     "d",
			Select:     "v",
			Toggle:     " ",
			Confirm:    "enter",
			Cancel:     "esc",
			SortDate:   "o",
			SortStatus: "O",
			Reload:     "r",
			NextField:  "tab",
			PrevField:  "shift+tab",
		},
	}
}
