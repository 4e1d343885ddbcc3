package config

import (
	"fmt"
	"net"
	"os"
	"path"
	"runtime"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	TransportHTTP = "http"
	TransportSMTP = "smtp"
	TransportSES  = "ses"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Application Application `yaml:"application"`
	Log         Log         `yaml:"log"`
	Email       Email       `yaml:"email"`
	Auth        Auth        `yaml:"auth"`
	Newsletter  Newsletter  `yaml:"newsletter"`
	RateLimit   RateLimit   `yaml:"rate_limit"`
	Cors        Cors        `yaml:"cors"`
}

type Application struct {
	Host    string `yaml:"host" validate:"required"`
	Port    int    `yaml:"port" validate:"required,min=1,max=65535"`
	BaseURL string `yaml:"base_url" validate:"required,url"` // used in confirmation links
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Email struct {
	Transport    string        `yaml:"transport" validate:"oneof=http smtp ses"`
	BaseURL      string        `yaml:"base_url" validate:"required_if=Transport http"`
	Sender       string        `yaml:"sender" validate:"required,email"`
	SenderName   string        `yaml:"sender_name"`
	Timeout      time.Duration `yaml:"timeout"`
	SMTPHost     string        `yaml:"smtp_host" validate:"required_if=Transport smtp"`
	SMTPPort     int           `yaml:"smtp_port"`
	SMTPUsername string        `yaml:"smtp_username"`
	SESRegion    string        `yaml:"ses_region" validate:"required_if=Transport ses"`
}

type Auth struct {
	HashWorkers int `yaml:"hash_workers" validate:"min=0"`
}

type Newsletter struct {
	SanitizeHTML      bool `yaml:"sanitize_html"`
	ContinueOnFailure bool `yaml:"continue_on_failure"` // attempt every recipient instead of stopping at the first failure
}

type RateLimit struct {
	SignupRPS   float64 `yaml:"signup_rps" validate:"min=0"` // 0 disables the limiter
	SignupBurst int     `yaml:"signup_burst" validate:"min=0"`
}

type Cors struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Private struct {
	Pg    Pg           `yaml:"pg"`
	Email PrivateEmail `yaml:"email"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type PrivateEmail struct {
	AuthorizationToken string `yaml:"authorization_token"` // HTTP API server token
	SMTPPassword       string `yaml:"smtp_password"`
	SESAccessKey       string `yaml:"ses_access_key"`
	SESSecretKey       string `yaml:"ses_secret_key"`
}

// Address is the listen address of the HTTP server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Public.Application.Host, strconv.Itoa(c.Public.Application.Port))
}

func (c *Config) applyDefaults() {
	if c.Public.Log.Level == "" {
		c.Public.Log.Level = "info"
	}
	if c.Public.Email.Transport == "" {
		c.Public.Email.Transport = TransportHTTP
	}
	if c.Public.Email.Timeout == 0 {
		c.Public.Email.Timeout = 10 * time.Second
	}
	if c.Public.Email.SMTPPort == 0 {
		c.Public.Email.SMTPPort = 587
	}
	if c.Public.Auth.HashWorkers == 0 {
		c.Public.Auth.HashWorkers = runtime.NumCPU()
	}
	if c.Public.RateLimit.SignupBurst == 0 {
		c.Public.RateLimit.SignupBurst = 5
	}
}

func (c *Config) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c.Public); err != nil {
		return fmt.Errorf("public config: %w", err)
	}
	if err := v.Struct(c.Private); err != nil {
		return fmt.Errorf("private config: %w", err)
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file: " + configPath)
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file " + configPath + ": " + err.Error())
	}
}

// Load reads public.yaml and private.yaml from configFolder, fills defaults
// and validates the result.
func Load(configFolder string) (cfg *Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			cfg, err = nil, fmt.Errorf("%v", r)
		}
	}()

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg = &Config{Public: public, Private: private}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err)
	}
	return cfg
}
