// Copyright 2025 Soundscout Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config points the catalog at an OpenAI-compatible embedding service.
type Config struct {
	// Host is the service base URL, for example
	// "http://localhost:11434/v1" for a local Ollama.
	Host string

	// Model names the embedding model, such as "embeddinggemma" or
	// "text-embedding-3-small".
	Model string

	// APIKey authenticates against the service. Local servers ignore
	// it; "none" keeps the client happy.
	APIKey string
}

// ConfigOption mutates a Config under construction.
type ConfigOption func(*Config)

// WithHost sets the service base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) { c.Host = host }
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) { c.Model = model }
}

// WithAPIKey sets the key sent to the service.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) { c.APIKey = key }
}

// DefaultConfig targets a local Ollama running embeddinggemma.
func DefaultConfig() *Config {
	return &Config{
		Host:   "http://localhost:11434/v1",
		Model:  "embeddinggemma",
		APIKey: "none",
	}
}

// NewConfig starts from DefaultConfig and applies opts:
//
//	cfg := NewConfig(
//		WithHost("http://localhost:11434/v1"),
//		WithModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize rewrites Host into the canonical form with the /v1 suffix
// that OpenAI-compatible servers (Ollama, LocalAI, vLLM) expect.
func (c *Config) Normalize() {
	if c.Host == "" || strings.HasSuffix(c.Host, "/v1") {
		return
	}
	c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
}

// Validate normalizes the config and reports the first missing field.
func (c *Config) Validate() error {
	c.Normalize()

	switch {
	case c.Host == "":
		return errors.New("ai config: Host is required")
	case c.Model == "":
		return errors.New("ai config: Model is required")
	case c.APIKey == "":
		return errors.New("ai config: APIKey is required")
	}
	return nil
}
