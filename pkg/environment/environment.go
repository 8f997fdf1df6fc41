package environment

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

const (
	AppName        = "audiodepot"
	DotEnvFileName = ".env"
	DBFileName     = "files.db"
	StorageDirName = "audio_files"
)

// Environment holds environment configurations loaded from the OS or defaults.
type Environment struct {
	Home           string `env:"HOME"`
	Pwd            string `env:"PWD"`
	StorageDir     string `env:"AUDIODEPOT_STORAGE_DIR"`
	DBPath         string `env:"AUDIODEPOT_DB_PATH"`
	Host           string `env:"AUDIODEPOT_HOST,default=127.0.0.1"`
	Port           int    `env:"AUDIODEPOT_PORT,default=5000"`
	MaxUploadMB    int    `env:"AUDIODEPOT_MAX_UPLOAD_MB,default=64"`
	EnableClear    string `env:"AUDIODEPOT_ENABLE_CLEAR,default=0"`
	CORSOrigins    string `env:"AUDIODEPOT_CORS_ORIGINS"`
	TrustedProxies string `env:"AUDIODEPOT_TRUSTED_PROXIES"`
	Debug          string `env:"DEBUG,default=0"`
	Extras         env.EnvSet
}

// loadDotEnv exports the variables of a .env file in dir that are not
// already present in the process environment.
func loadDotEnv(fs afero.Fs, dir string) error {
	if dir == "" {
		return nil
	}
	path := filepath.Join(dir, DotEnvFileName)
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return err
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	vars, err := godotenv.Parse(bytes.NewReader(content))
	if err != nil {
		return err
	}
	for key, value := range vars {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// applyDefaults fills the paths that depend on other settings.
func (e *Environment) applyDefaults() {
	if e.StorageDir == "" {
		e.StorageDir = filepath.Join(xdg.DataHome, AppName, StorageDirName)
	}
	if e.DBPath == "" {
		e.DBPath = e.DefaultDBPath()
	}
	if e.Host == "" {
		e.Host = "127.0.0.1"
	}
	if e.Port == 0 {
		e.Port = 5000
	}
	if e.MaxUploadMB <= 0 {
		e.MaxUploadMB = 64
	}
}

// NewEnvironment initializes and returns a new Environment based on provided or default settings.
func NewEnvironment(fs afero.Fs, environ *Environment) (*Environment, error) {
	if environ != nil {
		// Provided environments are used as-is apart from derived defaults
		overridden := *environ
		overridden.applyDefaults()
		return &overridden, nil
	}

	if err := loadDotEnv(fs, os.Getenv("PWD")); err != nil {
		return nil, err
	}

	environment := &Environment{}
	extras, err := env.UnmarshalFromEnviron(environment)
	if err != nil {
		return nil, err
	}
	environment.Extras = extras
	environment.applyDefaults()

	return environment, nil
}

// DefaultDBPath places the database next to the storage directory.
func (e *Environment) DefaultDBPath() string {
	return filepath.Join(filepath.Dir(filepath.Clean(e.StorageDir)), DBFileName)
}

// ClearEnabled reports whether the development-only bulk clear is exposed.
func (e *Environment) ClearEnabled() bool {
	return isTruthy(e.EnableClear)
}

// IsDebug reports whether DEBUG=1 style verbose mode is on.
func (e *Environment) IsDebug() bool {
	return isTruthy(e.Debug)
}

// Addr returns the host:port the HTTP server listens on.
func (e *Environment) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// MaxUploadBytes returns the request body cap in bytes.
func (e *Environment) MaxUploadBytes() int64 {
	return int64(e.MaxUploadMB) << 20
}

// CORSOriginList returns the configured CORS origins.
func (e *Environment) CORSOriginList() []string {
	return splitList(e.CORSOrigins)
}

// TrustedProxyList returns the configured trusted proxies.
func (e *Environment) TrustedProxyList() []string {
	return splitList(e.TrustedProxies)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
