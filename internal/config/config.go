// Package config resolves the named configuration profiles the service can
// run under and layers an optional settings file over the selected one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Profile names a fixed configuration set.
type Profile string

const (
	Development Profile = "dev"
	Testing     Profile = "test"
	Staging     Profile = "stage"
	Production  Profile = "prod"
	Default     Profile = "default"
)

// ErrUnknownProfile is returned when a profile name has no configuration.
var ErrUnknownProfile = errors.New("unknown configuration profile")

// Settings keys accepted in the override file.
const (
	KeyDebug              = "DEBUG"
	KeyTesting            = "TESTING"
	KeyDatabaseURL        = "DATABASE_URL"
	KeyTrackModifications = "TRACK_MODIFICATIONS"

	// accepted as an alias of DATABASE_URL
	keyLegacyDatabaseURI = "SQLALCHEMY_DATABASE_URI"
)

// Config is resolved once at startup and never mutated afterwards.
type Config struct {
	Profile Profile

	Debug   bool
	Testing bool

	// DatabaseURL is a postgresql:// connection string, or memory:// for the
	// in-process store.
	DatabaseURL string

	// TrackModifications enables publication of product change events.
	TrackModifications bool
}

var profiles = map[Profile]Config{
	Development: {
		Profile:            Development,
		Debug:              true,
		DatabaseURL:        "postgresql://user@localhost:5432/dbname",
		TrackModifications: true,
	},
	Testing: {
		Profile:     Testing,
		Testing:     true,
		DatabaseURL: "postgresql://user@testhost:5432/dbname",
	},
	Staging: {
		Profile:     Staging,
		DatabaseURL: "postgresql://user@staginghost:5432/dbname",
	},
	Production: {
		Profile:     Production,
		DatabaseURL: "postgresql://user@productionhost:5432/dbname",
	},
}

// Profiles lists the names ParseProfile accepts.
func Profiles() []Profile {
	return []Profile{Development, Testing, Staging, Production, Default}
}

// ParseProfile maps a profile name to a Profile. An empty name selects Default.
func ParseProfile(name string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return Default, nil
	}
	if p == Default {
		return p, nil
	}
	if _, ok := profiles[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Config returns the built-in configuration of the profile.
// Default resolves to Production.
func (p Profile) Config() (Config, error) {
	if p == Default {
		p = Production
	}
	cfg, ok := profiles[p]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownProfile, string(p))
	}
	return cfg, nil
}

// Load resolves the named profile and applies the settings file on top of it.
// A settingsFile that is empty or does not exist is ignored. Files without an
// extension are read as KEY=VALUE lines.
func Load(profileName, settingsFile string) (Config, error) {
	profile, err := ParseProfile(profileName)
	if err != nil {
		return Config{}, err
	}

	base, err := profile.Config()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault(KeyDebug, base.Debug)
	v.SetDefault(KeyTesting, base.Testing)
	v.SetDefault(KeyDatabaseURL, base.DatabaseURL)
	v.SetDefault(KeyTrackModifications, base.TrackModifications)

	if settingsFile != "" {
		if err := readSettings(v, settingsFile); err != nil {
			return Config{}, err
		}
	}

	databaseURL := v.GetString(KeyDatabaseURL)
	if v.InConfig(keyLegacyDatabaseURI) && !v.InConfig(KeyDatabaseURL) {
		databaseURL = v.GetString(keyLegacyDatabaseURI)
	}

	return Config{
		Profile:            base.Profile,
		Debug:              v.GetBool(KeyDebug),
		Testing:            v.GetBool(KeyTesting),
		DatabaseURL:        databaseURL,
		TrackModifications: v.GetBool(KeyTrackModifications),
	}, nil
}

func readSettings(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("env")
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	return nil
}
