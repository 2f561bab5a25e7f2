// Package content reads and writes the flat structured files that drive
// the storefront pages (products.yml, home.yml, about.yml). The shop core
// only consumes the parsed product list; it never mutates products.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/petalcart/petalcart/internal/models"
	"gopkg.in/yaml.v3"
)

// document names come from URLs, so they are locked down hard
var nameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

type Store struct {
	dir      string
	sanitize *bluemonday.Policy
}

func NewStore(dir string) *Store {
	return &Store{
		dir:      dir,
		sanitize: bluemonday.StrictPolicy(),
	}
}

func (s *Store) path(name string) (string, error) {
	if !nameRe.MatchString(name) {
		return "", fmt.Errorf("invalid content name %q", name)
	}

	return filepath.Join(s.dir, name+".yml"), nil
}

// Load returns the parsed document, or an empty map when the file does not
// exist yet.
func (s *Store) Load(name string) (map[string]any, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}

		return nil, fmt.Errorf("reading content file %s: %w", name, err)
	}

	data := map[string]any{}

	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing content file %s: %w", name, err)
	}

	return data, nil
}

func (s *Store) Save(name string, data map[string]any) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding content file %s: %w", name, err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing content file %s: %w", name, err)
	}

	return nil
}

// UpdateStrings applies a shallow key/value edit from the admin panel.
// String values are sanitized before they reach disk; keys not present in
// the update are left untouched.
func (s *Store) UpdateStrings(name string, updates map[string]string) error {
	data, err := s.Load(name)
	if err != nil {
		return err
	}

	for key, value := range updates {
		data[key] = s.sanitize.Sanitize(value)
	}

	return s.Save(name, data)
}

// List returns the editable document names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing content dir: %w", err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), ".yml"))
	}

	sort.Strings(names)

	return names, nil
}

// LoadProducts parses products.yml into its typed form.
func (s *Store) LoadProducts() (*models.ProductsDoc, error) {
	path, err := s.path("products")
	if err != nil {
		return nil, err
	}

	doc := &models.ProductsDoc{}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}

		return nil, fmt.Errorf("reading products file: %w", err)
	}

	if err := yaml.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("parsing products file: %w", err)
	}

	return doc, nil
}
