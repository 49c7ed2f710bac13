// Package sw generates the service worker asset manifest for a finished
// build and drops the worker script into the output tree.
package sw

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dosanma1/webforge/pkg/xos"
)

const (
	// ManifestName is the manifest file written into the output directory.
	ManifestName = "sw-manifest.json"
	// WorkerScriptName is the service worker bootstrap script.
	WorkerScriptName = "sw.js"
	// DefaultConfigName is the per-project augmentation config file.
	DefaultConfigName = "sw-config.json"
)

// Config is the service worker augmentation configuration.
type Config struct {
	Index       string       `json:"index"`
	AssetGroups []AssetGroup `json:"assetGroups"`
}

// AssetGroup names a set of output files and how the worker caches them.
type AssetGroup struct {
	Name        string   `json:"name"`
	InstallMode string   `json:"installMode,omitempty"`
	Patterns    []string `json:"patterns"`
}

// Manifest is the generated asset manifest consumed by the worker script.
type Manifest struct {
	ConfigVersion int               `json:"configVersion"`
	Index         string            `json:"index"`
	AssetGroups   []ManifestGroup   `json:"assetGroups"`
	HashTable     map[string]string `json:"hashTable"`
}

// ManifestGroup is an asset group resolved to concrete urls.
type ManifestGroup struct {
	Name        string   `json:"name"`
	InstallMode string   `json:"installMode"`
	URLs        []string `json:"urls"`
}

// workerScript is a minimal bootstrap that fetches the manifest and installs
// cache entries for the listed urls.
const workerScript = `"use strict";
self.addEventListener("install", function (event) {
  event.waitUntil(
    fetch("./` + ManifestName + `")
      .then(function (res) { return res.json(); })
      .then(function (manifest) {
        return caches.open("webforge:" + manifest.configVersion).then(function (cache) {
          var urls = [];
          manifest.assetGroups.forEach(function (g) {
            if (g.installMode === "prefetch") urls = urls.concat(g.urls);
          });
          return cache.addAll(urls);
        });
      })
  );
});
self.addEventListener("fetch", function (event) {
  event.respondWith(
    caches.match(event.request).then(function (hit) {
      return hit || fetch(event.request);
    })
  );
});
`

// Augment generates the service worker manifest for the build output at
// outputPath and writes the worker script alongside it. configPath is
// resolved against projectRoot; a missing config falls back to a single
// prefetch group covering every emitted file.
func Augment(projectRoot, outputPath, baseHref, configPath string) error {
	cfg, err := loadConfig(projectRoot, configPath)
	if err != nil {
		return err
	}

	hashes, err := hashOutput(outputPath)
	if err != nil {
		return err
	}

	manifest := buildManifest(cfg, hashes, baseHref)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal service worker manifest: %w", err)
	}

	if err := xos.WriteFile(filepath.Join(outputPath, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write service worker manifest: %w", err)
	}
	if err := xos.WriteFile(filepath.Join(outputPath, WorkerScriptName), []byte(workerScript), 0644); err != nil {
		return fmt.Errorf("failed to write worker script: %w", err)
	}

	return nil
}

func loadConfig(projectRoot, configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigName
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(projectRoot, configPath)
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &Config{
			Index: "index.html",
			AssetGroups: []AssetGroup{
				{Name: "app", InstallMode: "prefetch", Patterns: []string{"*"}},
			},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read service worker config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse service worker config: %w", err)
	}
	if cfg.Index == "" {
		cfg.Index = "index.html"
	}
	return &cfg, nil
}

// hashOutput walks the output tree and hashes every regular file.
// Keys are forward-slash paths relative to the output root.
func hashOutput(outputPath string) (map[string]string, error) {
	hashes := make(map[string]string)

	err := filepath.WalkDir(outputPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(outputPath, p)
		if err != nil {
			return err
		}

		h, err := hashFile(p)
		if err != nil {
			return err
		}
		hashes[filepath.ToSlash(rel)] = h
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to hash build output: %w", err)
	}
	return hashes, nil
}

func hashFile(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func buildManifest(cfg *Config, hashes map[string]string, baseHref string) *Manifest {
	if baseHref == "" {
		baseHref = "/"
	}
	if !strings.HasSuffix(baseHref, "/") {
		baseHref += "/"
	}

	files := make([]string, 0, len(hashes))
	for f := range hashes {
		files = append(files, f)
	}
	sort.Strings(files)

	manifest := &Manifest{
		ConfigVersion: 1,
		Index:         baseHref + cfg.Index,
		HashTable:     make(map[string]string, len(hashes)),
	}
	for f, h := range hashes {
		manifest.HashTable[baseHref+f] = h
	}

	for _, group := range cfg.AssetGroups {
		mode := group.InstallMode
		if mode == "" {
			mode = "prefetch"
		}
		mg := ManifestGroup{Name: group.Name, InstallMode: mode}
		for _, f := range files {
			if matchesAny(group.Patterns, f) {
				mg.URLs = append(mg.URLs, baseHref+f)
			}
		}
		manifest.AssetGroups = append(manifest.AssetGroups, mg)
	}

	return manifest
}

// matchesAny matches f (a slash-relative output path) against glob patterns.
// Patterns without a slash match the file's base name, so "*.js" covers
// nested chunks too.
func matchesAny(patterns []string, f string) bool {
	for _, pattern := range patterns {
		if pattern == "*" {
			return true
		}
		target := f
		if !strings.Contains(pattern, "/") {
			target = path.Base(f)
		}
		if ok, err := path.Match(pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}
