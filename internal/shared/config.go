package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri" default:"http://127.0.0.1:3000/callback"`
	RefreshToken string `toml:"refresh_token"`
}

// YouTubeConfig contains YouTube Data API credentials.
//
// The OAuth client is needed for private playlists and writes; APIKey alone is enough to search and read public playlists.
type YouTubeConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri" default:"http://127.0.0.1:3000/callback"`
	RefreshToken string `toml:"refresh_token"`
	APIKey       string `toml:"api_key"`
}

// SyncConfig tunes the matcher and the synchronizer.
type SyncConfig struct {
	Threshold   float64 `toml:"threshold" default:"1.0" validate:"gt=0"`
	SearchLimit int     `toml:"search_limit" default:"5" validate:"gte=1,lte=50"`
	Workers     int     `toml:"workers" default:"1" validate:"gte=1,lte=16"`
	RateLimit   float64 `toml:"rate_limit" default:"5.0" validate:"gt=0"`
	LockDir     string  `toml:"lock_dir"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" default:"info" validate:"oneof=debug info warn error"`
}

// LoadEnv loads environment variables from the given .env files, or ./.env when none are given.
//
// Missing files are ignored and variables already set in the environment are never overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variables take precedence over file values for credentials. Unset fields get their defaults and the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finalize(&config)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	if err := defaults.Set(&config); err != nil {
		panic(fmt.Sprintf("failed to set config defaults: %v", err))
	}
	return &config
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] with environment overrides otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if errors.Is(err, ErrMissingConfig) {
		return finalize(DefaultConfig())
	}
	return config, err
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing the file.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidArgument)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Update stores the refresh token from an OAuth exchange.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", ErrInvalidArgument)
	}
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	return nil
}

// Update stores the refresh token from an OAuth exchange.
//
// Google only returns a refresh token on the first consent, so an empty one keeps the stored value.
func (y *YouTubeConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", ErrInvalidArgument)
	}
	if token.RefreshToken != "" {
		y.RefreshToken = token.RefreshToken
	}
	return nil
}

// Validate checks field ranges and enums.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// RequireSpotify reports whether the Spotify credentials needed for user-scoped calls are present.
func (c *Config) RequireSpotify() error {
	s := c.Credentials.Spotify
	switch {
	case s.ClientID == "" || s.ClientSecret == "":
		return fmt.Errorf("%w: spotify client_id and client_secret", ErrMissingCredentials)
	case s.RefreshToken == "":
		return fmt.Errorf("%w: spotify", ErrNoRefreshToken)
	}
	return nil
}

// RequireYouTube reports whether the YouTube OAuth credentials needed for private playlists and writes are present.
func (c *Config) RequireYouTube() error {
	y := c.Credentials.YouTube
	switch {
	case y.ClientID == "" || y.ClientSecret == "":
		return fmt.Errorf("%w: youtube client_id and client_secret", ErrMissingCredentials)
	case y.RefreshToken == "":
		return fmt.Errorf("%w: youtube", ErrNoRefreshToken)
	}
	return nil
}

func finalize(c *Config) (*Config, error) {
	c.overrideFromEnv()

	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	for env, field := range map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Credentials.Spotify.ClientSecret,
		"SPOTIFY_REFRESH_TOKEN": &c.Credentials.Spotify.RefreshToken,
		"YOUTUBE_CLIENT_ID":     &c.Credentials.YouTube.ClientID,
		"YOUTUBE_CLIENT_SECRET": &c.Credentials.YouTube.ClientSecret,
		"YOUTUBE_REFRESH_TOKEN": &c.Credentials.YouTube.RefreshToken,
		"YOUTUBE_API_KEY":       &c.Credentials.YouTube.APIKey,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}
