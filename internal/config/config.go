// Package config holds the serve settings. There are no flags or files;
// callers build a Config in code and the server clamps it.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultPort      = 8000
	DefaultIndexFile = "index.html"
)

type Config struct {
	Port      int    // TCP port to bind (default: 8000)
	Host      string // Interface to bind, "" means all (default: "")
	RootDir   string // Serving root, fixed for the process lifetime
	IndexFile string // File that must exist under RootDir (default: index.html)

	OpenBrowser bool // Launch the default browser after bind (default: true)
	Compress    bool // gzip responses for clients that accept it (default: false)

	// Timeouts
	ShutdownTimeout  time.Duration // Graceful stop budget (default: 5s)
	DebounceDuration time.Duration // Change watcher debounce (default: 300ms)

	Watch bool // Log file changes under RootDir (default: false)
}

// Default returns the configuration used by the html-to-image binary.
func Default(rootDir string) *Config {
	return &Config{
		Port:      DefaultPort,
		RootDir:   rootDir,
		IndexFile: DefaultIndexFile,

		OpenBrowser: true,

		ShutdownTimeout:  5 * time.Second,
		DebounceDuration: 300 * time.Millisecond,
	}
}

// Validate clamps values into usable ranges. It never fails.
func (c *Config) Validate() {
	if c.Port < 0 || c.Port > 65535 {
		c.Port = DefaultPort
	}
	if c.IndexFile == "" {
		c.IndexFile = DefaultIndexFile
	}
	if c.RootDir == "" {
		c.RootDir = "."
	}

	// Timeouts
	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}
}

// Addr is the listen address, e.g. ":8000".
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL is what the banner prints and the browser opens.
func (c *Config) URL() string {
	return fmt.Sprintf("http://localhost:%d", c.Port)
}
