package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
  base_url: "https://ws.example.com"
dispatch:
  application_headers: ["X-Tenant"]
  reference_kinds: ["w3c"]
endpoints:
  - name: greeter
    address: "https://ws.example.com/api/v1/endpoints/greeter"
    interface_name:
      namespace: "urn:example:greeter"
      local: "Greeter"
    service_name:
      namespace: "urn:example:greeter"
      local: "GreeterService"
    endpoint_name: "GreeterPort"
    document: "s3://wsdl/greeter.wsdl"
`

func TestReadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(sampleConfig), 0o644))
	t.Setenv("WSCTX_SERVER_TIMEOUT_SECONDS", "5")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.TimeoutSeconds)
	assert.Equal(t, []string{"w3c"}, cfg.Dispatch.ReferenceKinds)
	assert.Equal(t, []string{"X-App-"}, cfg.Dispatch.ApplicationHeaderPrefixes)
	assert.Equal(t, "static", cfg.Descriptors.Store)

	ep, ok := cfg.EndpointByName("greeter")
	require.True(t, ok)
	assert.Equal(t, "GreeterPort", ep.EndpointName)
	assert.Equal(t, "urn:example:greeter", ep.InterfaceName.Namespace)
	assert.Equal(t, "s3://wsdl/greeter.wsdl", ep.Document)

	_, ok = cfg.EndpointByName("missing")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{Port: 8080},
			Dispatch:  DispatchConfig{ReferenceKinds: []string{"w3c", "submission"}},
			Endpoints: []EndpointConfig{{Name: "greeter"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"no reference kinds", func(c *Config) { c.Dispatch.ReferenceKinds = nil }, true},
		{"unknown reference kind", func(c *Config) { c.Dispatch.ReferenceKinds = []string{"jms"} }, true},
		{"unknown descriptor store", func(c *Config) { c.Descriptors.Store = "mongo" }, true},
		{"bad paseto mode", func(c *Config) { c.Authentication.Paseto.Mode = "v2" }, true},
		{"empty endpoint name", func(c *Config) { c.Endpoints = append(c.Endpoints, EndpointConfig{}) }, true},
		{"dotted endpoint name", func(c *Config) { c.Endpoints[0].Name = "a.b" }, true},
		{"duplicate endpoint", func(c *Config) { c.Endpoints = append(c.Endpoints, EndpointConfig{Name: "greeter"}) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
