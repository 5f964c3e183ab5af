// Package config resolves runtime settings from flags, the environment and
// an optional .env file. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted for flag defaults.
const (
	EnvDB         = "PRENOS_DB"
	EnvAddr       = "PRENOS_ADDR"
	EnvAdmin      = "PRENOS_ADMIN"
	EnvLog        = "PRENOS_LOG"
	EnvBackendURL = "PRENOS_BACKEND_URL"
)

// Config holds the process settings.
type Config struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string

	// BackendURL is the API the web console's composer talks to. When empty
	// it is derived from Addr so the console uses the in-process API.
	BackendURL string
}

const usage = `Usage: prenos [flags]

Flags:
  -d, -db <path>          SQLite database path (default: prenos.sqlite3, env PRENOS_DB)
  -a, -addr <host:port>   listen address (default: :8080, env PRENOS_ADDR)
  -u, -user <name>        admin username on first run (default: Admin, env PRENOS_ADMIN)
  -l, -log <path>         log file path (default: stdout/stderr only, env PRENOS_LOG)
  -b, -backend <url>      API base URL for the transfer composer
                          (default: this server, env PRENOS_BACKEND_URL)
  -h, -help               show this help and exit

A .env file in the working directory is read before the environment.
`

// LoadDotEnv reads .env files into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Parse builds a Config from args. getenv supplies flag defaults; pass
// os.Getenv in production. flag.ErrHelp is returned for -h.
func Parse(args []string, getenv func(string) string, out io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("prenos", flag.ContinueOnError)
	fs.SetOutput(out)

	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	var cfg Config
	stringFlag(fs, &cfg.DBPath, "db", "d", env(EnvDB, "prenos.sqlite3"))
	stringFlag(fs, &cfg.Addr, "addr", "a", env(EnvAddr, ":8080"))
	stringFlag(fs, &cfg.AdminUser, "user", "u", env(EnvAdmin, "Admin"))
	stringFlag(fs, &cfg.LogPath, "log", "l", env(EnvLog, ""))
	stringFlag(fs, &cfg.BackendURL, "backend", "b", env(EnvBackendURL, ""))

	fs.Usage = func() { fmt.Fprint(out, usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if cfg.BackendURL == "" {
		u, err := localURL(cfg.Addr)
		if err != nil {
			return nil, err
		}
		cfg.BackendURL = u
	}
	cfg.BackendURL = strings.TrimSuffix(cfg.BackendURL, "/")
	return &cfg, nil
}

func stringFlag(fs *flag.FlagSet, p *string, long, short, value string) {
	fs.StringVar(p, long, value, "")
	fs.StringVar(p, short, value, "")
}

// localURL turns a listen address into a URL reachable from this host.
func localURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
