package knowledge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"bailey-assistant/internal/common/validation"
)

//go:embed data/catalog.yaml
var defaultCatalogYAML []byte

//go:embed data/catalog.schema.json
var catalogSchemaJSON string

var (
	catalogSchemaOnce sync.Once
	catalogSchema     *validation.Schema

	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// catalogFile is the on-disk layout shared by the built-in data and overrides.
type catalogFile struct {
	Version string  `json:"version" yaml:"version"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

func schema() *validation.Schema {
	catalogSchemaOnce.Do(func() {
		catalogSchema = validation.MustCompile(catalogSchemaJSON)
	})
	return catalogSchema
}

// DefaultCatalog returns the catalog compiled into the binary. The result is
// built once and shared.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultCatalogYAML, FormatYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefaultCatalog is DefaultCatalog for process start-up.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("built-in knowledge catalog is invalid: %v", err))
	}
	return c
}

// Format is the encoding of a catalog document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension. Anything that is
// not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads a catalog override from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes a catalog document, checks it against the catalog schema and
// builds a validated Catalog.
func Parse(data []byte, format Format) (*Catalog, error) {
	var generic interface{}
	if err := unmarshal(data, format, &generic); err != nil {
		return nil, invalidCatalog(err.Error())
	}

	result, err := schema().ValidateValue(generic)
	if err != nil {
		return nil, invalidCatalog(err.Error())
	}
	if !result.Valid {
		return nil, invalidCatalog(strings.Join(result.GetErrorMessages(), "; "))
	}

	var file catalogFile
	if err := unmarshal(data, format, &file); err != nil {
		return nil, invalidCatalog(err.Error())
	}
	for i := range file.Entries {
		file.Entries[i].Content = strings.TrimSpace(file.Entries[i].Content)
		file.Entries[i].ResponseTemplate = strings.TrimSpace(file.Entries[i].ResponseTemplate)
	}
	return NewCatalog(file.Entries)
}

func unmarshal(data []byte, format Format, out interface{}) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(out)
	default:
		if err := yaml.Unmarshal(data, out); err != nil {
			return err
		}
		// yaml.v3 decodes nested maps as map[string]interface{} already;
		// only the generic document needs normalizing for the schema loader.
		if p, ok := out.(*interface{}); ok {
			*p = normalizeYAML(*p)
		}
		return nil
	}
}

// normalizeYAML converts any map[interface{}]interface{} left by the decoder
// into map[string]interface{} so it can be marshalled to JSON.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
