package solr

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Property names the adapter is configured with.
const (
	PropertyUsername = "Username"
	PropertyPassword = "Password"
	PropertyURL      = "Solr URL"
)

// Properties holds the adapter connection settings.
type Properties struct {
	Username string `yaml:"Username"`
	Password string `yaml:"Password"`
	URL      string `yaml:"Solr URL"`
}

// PropertiesFromMap reads properties keyed by their display names.
func PropertiesFromMap(values map[string]string) Properties {
	return Properties{
		Username: values[PropertyUsername],
		Password: values[PropertyPassword],
		URL:      values[PropertyURL],
	}
}

// LoadProperties decodes a YAML property document.
func LoadProperties(r io.Reader) (Properties, error) {
	var props Properties
	if err := yaml.NewDecoder(r).Decode(&props); err != nil && err != io.EOF {
		return Properties{}, fmt.Errorf("failed to decode adapter properties: %w", err)
	}
	return props, nil
}

// Endpoint returns the Solr URL without its trailing slash.
func (p Properties) Endpoint() string {
	return strings.TrimSuffix(strings.TrimSpace(p.URL), "/")
}

func (p Properties) hasCredentials() bool {
	return p.Username != "" && p.Password != ""
}
