// Package config loads lyte's configuration from defaults, an optional YAML
// file and LYTE_-prefixed environment variables, in that order of
// precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys. A double underscore separates nesting levels, so
// LYTE_SERVER__ADDR overrides server.addr.
const EnvPrefix = "LYTE_"

type Config struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"database"`
	Session  Session  `koanf:"session"`
	Uploads  Uploads  `koanf:"uploads"`
	Log      Log      `koanf:"log"`
	Admins   []Admin  `koanf:"admins"`
}

type Server struct {
	Addr          string        `koanf:"addr" validate:"required"`
	CORSOrigins   []string      `koanf:"cors_origins"`
	LoginRequests int           `koanf:"login_requests" validate:"min=1"`
	LoginWindow   time.Duration `koanf:"login_window" validate:"min=1s"`
}

type Database struct {
	Path string `koanf:"path" validate:"required"`
}

type Session struct {
	TTL time.Duration `koanf:"ttl" validate:"min=1m"`
}

type Uploads struct {
	Dir string `koanf:"dir" validate:"required"`
}

type Log struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Admin is seeded into the users table at startup with the admin flag set.
type Admin struct {
	Username string `koanf:"username" validate:"required,min=3"`
	Password string `koanf:"password" validate:"required,min=8"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Server: Server{
			Addr:          ":8080",
			CORSOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			LoginRequests: 10,
			LoginWindow:   time.Minute,
		},
		Database: Database{Path: "data/lyte.db"},
		Session:  Session{TTL: 30 * 24 * time.Hour},
		Uploads:  Uploads{Dir: "static"},
		Log:      Log{Level: "info", Format: "json"},
	}
}

// Load builds the config from defaults, the YAML file at path (skipped if
// path is empty or the file does not exist) and the environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config unmarshal: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
