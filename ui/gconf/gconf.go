package gconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/adrg/xdg"
)

const (
	xdgFile   = "chessview/config.json"
	localFile = "chessview.json"
)

type Config struct {
	ServerURL        string `json:"server_url"`         // rule engine base url
	Theme            string `json:"theme"`              // light/dark
	SpritesDir       string `json:"sprites_dir"`        // piece images, empty for glyphs
	UCIPath          string `json:"uci_path"`           // engine behind `serve`, empty for the built-in agent
	WindowW          int    `json:"window_w"`           //
	WindowH          int    `json:"window_h"`           //
	Suggestions      bool   `json:"suggestions"`        // show the best-move arrow
	RequestTimeoutMs int    `json:"request_timeout_ms"` //
	Watch            bool   `json:"watch"`              // follow server push events
	Debug            bool   `json:"debug"`              // true/false

	path string
}

func Default() Config {
	return Config{
		ServerURL:        "http://localhost:8080",
		Theme:            "light",
		WindowW:          1000,
		WindowH:          700,
		Suggestions:      true,
		RequestTimeoutMs: 5000,
		Watch:            true,
	}
}

// Load reads path, or when empty the first of $XDG_CONFIG_HOME/chessview/
// config.json and ./chessview.json that exists. No file means defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		if p, err := xdg.SearchConfigFile(xdgFile); err == nil {
			path = p
		} else if _, err := os.Stat(localFile); err == nil {
			path = localFile
		}
	}
	if path == "" {
		return &c, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.path = path
		return &c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error decode config %s: %w", path, err)
	}
	c.path = path
	correctableConfig(&c)
	return &c, nil
}

// Path is the file the config was read from or will be saved to.
func (c *Config) Path() string { return c.path }

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// EnginePath is the UCI engine for `serve`: the flag value when given,
// otherwise uci_path.
func (c *Config) EnginePath(flag string) string {
	if flag != "" {
		return flag
	}
	return c.UCIPath
}

// Save writes back to where the config came from, or to the XDG location.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := xdg.ConfigFile(xdgFile)
		if err != nil {
			return err
		}
		path = p
	}
	jsonData, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return err
	}
	c.path = path
	return nil
}

func correctableConfig(c *Config) {
	def := Default()
	if c.Theme != "light" && c.Theme != "dark" {
		c.Theme = def.Theme
	}
	if u, err := url.Parse(c.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.ServerURL = def.ServerURL
	}
	if c.WindowH < 480 || c.WindowW < 640 {
		c.WindowH = def.WindowH
		c.WindowW = def.WindowW
	}
	if c.RequestTimeoutMs <= 0 {
		c.RequestTimeoutMs = def.RequestTimeoutMs
	}
}
