package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig   `yaml:"server" mapstructure:"server"`
	Logging        LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	Paths          PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Transfer       TransferConfig `yaml:"transfer" mapstructure:"transfer"`
	Convert        ConvertConfig  `yaml:"convert" mapstructure:"convert"`
	Authentication AuthConfig     `yaml:"authentication" mapstructure:"authentication"`
	OpenId         OpenIdConfig   `yaml:"openid" mapstructure:"openid"`
	path           string
}

type ServerConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Host    string `yaml:"host" mapstructure:"host"`
	Port    int    `yaml:"port" mapstructure:"port"`
}

type LoggingConfig struct {
	LogPath           string `yaml:"log_path" mapstructure:"log_path"`
	EnableFileLogging bool   `yaml:"enable_file_logging" mapstructure:"enable_file_logging"`
	Level             string `yaml:"level" mapstructure:"level"`
}

type PathsConfig struct {
	DownloadPath      string `yaml:"download_path" mapstructure:"download_path"`
	DownloaderPath    string `yaml:"downloader_path" mapstructure:"downloader_path"`
	TranscoderPath    string `yaml:"transcoder_path" mapstructure:"transcoder_path"`
	LocalDatabasePath string `yaml:"local_database_path" mapstructure:"local_database_path"`
}

type TransferConfig struct {
	ChunkSize      int64         `yaml:"chunk_size" mapstructure:"chunk_size"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

type ConvertConfig struct {
	TargetExt        string `yaml:"target_ext" mapstructure:"target_ext"`
	AutoConvertAudio bool   `yaml:"auto_convert_audio" mapstructure:"auto_convert_audio"`
}

type AuthConfig struct {
	RequireAuth  bool   `yaml:"require_auth" mapstructure:"require_auth"`
	Username     string `yaml:"username" mapstructure:"username"`
	PasswordHash string `yaml:"password" mapstructure:"password"`
	JWTSecret    string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type OpenIdConfig struct {
	UseOpenId      bool     `yaml:"use_openid" mapstructure:"use_openid"`
	ProviderURL    string   `yaml:"openid_provider_url" mapstructure:"openid_provider_url"`
	ClientId       string   `yaml:"openid_client_id" mapstructure:"openid_client_id"`
	ClientSecret   string   `yaml:"openid_client_secret" mapstructure:"openid_client_secret"`
	RedirectURL    string   `yaml:"openid_redirect_url" mapstructure:"openid_redirect_url"`
	EmailWhitelist []string `yaml:"openid_email_whitelist" mapstructure:"openid_email_whitelist"`
}

var (
	instance     *Config
	instanceOnce sync.Once
)

func Instance() *Config {
	if instance == nil {
		instanceOnce.Do(func() {
			instance = &Config{}
		})
	}
	return instance
}

// Path of the directory containing the config file
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// Absolute path of the config file
func (c *Config) Path() string { return c.path }

func (c *Config) SetPath(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	c.path = path
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.DownloadPath == "" {
		errs = append(errs, errors.New("paths.download_path is required"))
	}
	if c.Paths.DownloaderPath == "" {
		errs = append(errs, errors.New("paths.downloader_path is required"))
	}
	if c.Transfer.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("transfer.chunk_size must be positive, got %d", c.Transfer.ChunkSize))
	}
	if strings.ContainsAny(c.Convert.TargetExt, `/\.`) {
		errs = append(errs, fmt.Errorf("convert.target_ext must be a bare extension, got %q", c.Convert.TargetExt))
	}
	if c.Authentication.RequireAuth && c.Authentication.JWTSecret == "" {
		errs = append(errs, errors.New("authentication.jwt_secret is required when require_auth is set"))
	}
	if c.OpenId.UseOpenId && c.Authentication.JWTSecret == "" {
		errs = append(errs, errors.New("authentication.jwt_secret is required when use_openid is set"))
	}

	return errors.Join(errs...)
}

// WriteDefault writes the configuration as YAML to path unless a file is
// already there.
func (c *Config) WriteDefault(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
