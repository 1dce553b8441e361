// Package config resolves the interpreter's ambient configuration: the
// module search path consulted by require (§6.3) and an optional JSON
// override file, in the same env-var-plus-JSON-override style the
// teacher's mods package uses for its LK_PATH/index.json pair.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	envSearchPath = "LUA_PATH"
	envModPath    = "LUA54_PATH"
	overrideFile  = ".lua54path.json"

	defaultPath = "./?.lua;./?/init.lua"
)

// Config holds the resolved search path and any override values loaded
// from .lua54path.json in the working directory.
type Config struct {
	SearchPath string
	ModRoot    string
}

// Load resolves configuration the same way the teacher's mods package
// resolved LK_PATH: environment variables first, then a JSON override
// file in the current directory taking precedence when present.
func Load() *Config {
	c := &Config{
		SearchPath: defaultPath,
		ModRoot:    os.Getenv(envModPath),
	}
	if p := os.Getenv(envSearchPath); p != "" {
		c.SearchPath = p
	}

	if data, err := os.ReadFile(overrideFile); err == nil {
		root := gjson.GetBytes(data, "path")
		if root.Exists() && root.String() != "" {
			c.SearchPath = root.String()
		}
		modRoot := gjson.GetBytes(data, "modRoot")
		if modRoot.Exists() && modRoot.String() != "" {
			c.ModRoot = modRoot.String()
		}
	}
	return c
}

// Candidates expands the search path template against modname, replacing
// each "?" with the module name (dots turned into path separators) in
// every ";"-separated template, per §6.3's path-search algorithm.
func (c *Config) Candidates(modname string) []string {
	rel := strings.ReplaceAll(modname, ".", string(filepath.Separator))
	templates := strings.Split(c.SearchPath, ";")
	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		if tmpl == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(tmpl, "?", rel))
	}
	return out
}
