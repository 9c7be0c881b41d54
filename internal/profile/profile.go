package profile

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-1.5-flash"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo".
	Mode string
	// Addr is the binding address for server.
	Addr string
	// Port is the binding port for server.
	Port int
	// Data is the data directory.
	Data string
	// Driver is the database driver: sqlite, postgres or mysql.
	Driver string
	// DSN points to where parley stores its own data.
	DSN string
	// Secret signs access tokens. Required in prod mode.
	Secret string
	// GeminiAPIKey is the credential for the hosted model API.
	GeminiAPIKey string
	// GeminiModel is the model name passed to every generation call.
	GeminiModel string
	// GeminiBaseURL overrides the model API endpoint. Empty means the public endpoint.
	GeminiBaseURL string
	// AllowedOrigins lists browser origins allowed to call the API with credentials.
	AllowedOrigins []string
	// TrustedProxies lists CIDR ranges whose X-Forwarded-For header is believed.
	// Empty means the client address is always the socket peer.
	TrustedProxies []string
	// Version is the current version of server.
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate fills in defaults and rejects configurations the server cannot start with.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "parley")
		} else {
			p.Data = "/var/opt/parley"
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("parley_%s.db", p.Mode))
		}
	case "postgres", "mysql":
		if p.DSN == "" {
			return errors.Errorf("dsn is required for driver %s", p.Driver)
		}
	default:
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Secret == "" {
		if p.Mode == "prod" {
			return errors.New("secret is required in prod mode")
		}
		// Tokens issued with a generated secret do not survive a restart.
		p.Secret = uuid.NewString()
	}

	for _, cidr := range p.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return errors.Wrapf(err, "invalid trusted proxy range %q", cidr)
		}
	}

	if p.GeminiModel == "" {
		p.GeminiModel = DefaultGeminiModel
	}
	return nil
}
