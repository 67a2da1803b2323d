// Package config holds runtime settings for the authguard CLI.
package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/dkurosov/authguard/internal/flagx"
)

type Config struct {
	// ServerAddr is the base URL of the backend REST endpoint.
	ServerAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment and command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("AUTHGUARD_SERVER_ADDR"); ok {
		config.ServerAddr = v
	}
}

func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&config.ServerAddr, "a", config.ServerAddr, "server base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
