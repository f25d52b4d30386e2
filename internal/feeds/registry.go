// Package feeds maps region and category scopes to Express Tribune RSS
// endpoints. The sets are fixed configuration data, not user input; a YAML
// file can override individual URLs.
package feeds

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrUnknownScope = errors.New("unknown scope")

var defaultRegions = map[string]string{
	"Pakistan":           "https://tribune.com.pk/feed/home",
	"Punjab":             "https://tribune.com.pk/feed/punjab",
	"Sindh":              "https://tribune.com.pk/feed/sindh",
	"Balochistan":        "https://tribune.com.pk/feed/balochistan",
	"Khyber Pakhtunkhwa": "https://tribune.com.pk/feed/khyber-pakhtunkhwa",
	"Jammu & Kashmir":    "https://tribune.com.pk/feed/jammu-kashmir",
	"Gilgit-Baltistan":   "https://tribune.com.pk/feed/gilgit-baltistan",
}

var defaultCategories = map[string]string{
	"Politics":   "https://tribune.com.pk/feed/politics",
	"Technology": "https://tribune.com.pk/feed/technology",
	"Sports":     "https://tribune.com.pk/feed/sports",
	"Movies":     "https://tribune.com.pk/feed/movies",
	"Music":      "https://tribune.com.pk/feed/music",
	"Health":     "https://tribune.com.pk/feed/health",
	"Business":   "https://tribune.com.pk/feed/business",
	"World":      "https://tribune.com.pk/feed/world",
}

// overrideConfig is the YAML override file structure
// regions:
//
//	Sindh: https://...
//
// categories:
//
//	Sports: https://...
type overrideConfig struct {
	Regions    map[string]string `yaml:"regions"`
	Categories map[string]string `yaml:"categories"`
}

type Registry struct {
	regions    map[string]string
	categories map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		regions:    make(map[string]string, len(defaultRegions)),
		categories: make(map[string]string, len(defaultCategories)),
	}
	for k, v := range defaultRegions {
		r.regions[k] = v
	}
	for k, v := range defaultCategories {
		r.categories[k] = v
	}
	return r
}

// Load merges URL overrides from a YAML file. Only known scopes can be
// overridden; the fixed region/category sets never grow at runtime.
func (r *Registry) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var cfg overrideConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return err
	}

	for scope, url := range cfg.Regions {
		if _, ok := r.regions[scope]; !ok {
			return fmt.Errorf("feeds override: %w: region %q", ErrUnknownScope, scope)
		}
		r.regions[scope] = url
	}
	for scope, url := range cfg.Categories {
		if _, ok := r.categories[scope]; !ok {
			return fmt.Errorf("feeds override: %w: category %q", ErrUnknownScope, scope)
		}
		r.categories[scope] = url
	}
	return nil
}

// Resolve returns the feed URL for a region or category scope.
func (r *Registry) Resolve(scope string) (string, error) {
	if url, ok := r.regions[scope]; ok {
		return url, nil
	}
	if url, ok := r.categories[scope]; ok {
		return url, nil
	}
	return "", fmt.Errorf("%w: %q (available: %v)", ErrUnknownScope, scope, r.Scopes())
}

func (r *Registry) IsRegion(scope string) bool {
	_, ok := r.regions[scope]
	return ok
}

func (r *Registry) IsCategory(scope string) bool {
	_, ok := r.categories[scope]
	return ok
}

func (r *Registry) Regions() []string {
	return sortedKeys(r.regions)
}

func (r *Registry) Categories() []string {
	return sortedKeys(r.categories)
}

func (r *Registry) Scopes() []string {
	return append(r.Regions(), r.Categories()...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
