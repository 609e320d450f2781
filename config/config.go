/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"dirpx.dev/bindx/apis"
	cachestrategy "dirpx.dev/bindx/cache/strategy"
)

const (
	// DefaultSynchronized represents the default for Synchronized.
	// Managers are shared process-wide, so they lock by default.
	DefaultSynchronized = true
	// DefaultCacheStrategy represents the default for CacheStrategy.
	DefaultCacheStrategy = cachestrategy.Unbounded
	// DefaultCacheCapacity represents the default for CacheCapacity.
	// It only applies to the LRU strategy.
	DefaultCacheCapacity = 1024
	// DefaultMemberFlags represents the default for MemberFlags.
	DefaultMemberFlags = apis.InstancePublicAll
	// DefaultObservable represents the default for Observable.
	DefaultObservable = true
	// DefaultOptional represents the default for Optional.
	DefaultOptional = false
)

var (
	// ErrEmptyPath is returned by Load for an empty file name.
	ErrEmptyPath = errors.New("bindx(config): empty config path")
	// ErrUnsupportedFormat is returned for file extensions Load cannot decode.
	ErrUnsupportedFormat = errors.New("bindx(config): unsupported config format")
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Synchronized:  DefaultSynchronized,
		CacheStrategy: DefaultCacheStrategy,
		CacheCapacity: DefaultCacheCapacity,
		MemberFlags:   DefaultMemberFlags,
		Observable:    DefaultObservable,
		Optional:      DefaultOptional,
	}
}

func normalize(cfg apis.Config) apis.Config {
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = DefaultCacheCapacity
	}
	if cfg.MemberFlags == 0 {
		cfg.MemberFlags = DefaultMemberFlags
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithSynchronized sets the Synchronized option.
func WithSynchronized(sync bool) Option {
	return func(c *apis.Config) {
		c.Synchronized = sync
	}
}

// WithCacheStrategy sets the CacheStrategy option.
func WithCacheStrategy(s cachestrategy.Strategy) Option {
	return func(c *apis.Config) {
		c.CacheStrategy = s
	}
}

// WithCacheCapacity sets the CacheCapacity option.
// A non-positive value resets to the default.
func WithCacheCapacity(n int) Option {
	return func(c *apis.Config) {
		if n <= 0 {
			c.CacheCapacity = DefaultCacheCapacity
			return
		}
		c.CacheCapacity = n
	}
}

// WithIgnoreAttachedMembers sets the IgnoreAttachedMembers option.
func WithIgnoreAttachedMembers(ignore bool) Option {
	return func(c *apis.Config) {
		c.IgnoreAttachedMembers = ignore
	}
}

// WithMemberFlags sets the MemberFlags option. Zero resets to the default.
func WithMemberFlags(f apis.MemberFlags) Option {
	return func(c *apis.Config) {
		if f == 0 {
			f = DefaultMemberFlags
		}
		c.MemberFlags = f
	}
}

// WithObservable sets the Observable option.
func WithObservable(observable bool) Option {
	return func(c *apis.Config) {
		c.Observable = observable
	}
}

// WithOptional sets the Optional option.
func WithOptional(optional bool) Option {
	return func(c *apis.Config) {
		c.Optional = optional
	}
}

// Load reads a configuration file based on its extension
// (.yaml/.yml, .toml or .json). Keys missing from the file keep their defaults.
func Load(path string) (apis.Config, error) {
	if path == "" {
		return apis.Config{}, ErrEmptyPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, err
	}
	return Decode(b, filepath.Ext(path))
}

// Decode parses data in the given format. The format is a file extension with
// or without the leading dot.
func Decode(data []byte, format string) (apis.Config, error) {
	cfg := DefaultConfig()
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cfg)
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "json":
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &cfg)
	default:
		return apis.Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return apis.Config{}, fmt.Errorf("bindx(config): decode %s: %w", format, err)
	}
	return normalize(cfg), nil
}
