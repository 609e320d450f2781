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

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dirpx.dev/bindx/apis"
	cachestrategy "dirpx.dev/bindx/cache/strategy"
	"dirpx.dev/bindx/config"
)

func TestDefaultConfigValues(t *testing.T) {
	got := config.DefaultConfig()

	if got.Synchronized != config.DefaultSynchronized {
		t.Fatalf("Synchronized = %v, want %v", got.Synchronized, config.DefaultSynchronized)
	}
	if got.CacheStrategy != config.DefaultCacheStrategy {
		t.Fatalf("CacheStrategy = %v, want %v", got.CacheStrategy, config.DefaultCacheStrategy)
	}
	if got.CacheCapacity != config.DefaultCacheCapacity {
		t.Fatalf("CacheCapacity = %d, want %d", got.CacheCapacity, config.DefaultCacheCapacity)
	}
	if got.MemberFlags != config.DefaultMemberFlags {
		t.Fatalf("MemberFlags = %v, want %v", got.MemberFlags, config.DefaultMemberFlags)
	}
	if got.Observable != config.DefaultObservable || got.Optional != config.DefaultOptional {
		t.Fatalf("Observable/Optional = %v/%v, want %v/%v", got.Observable, got.Optional, config.DefaultObservable, config.DefaultOptional)
	}
	if got.IgnoreAttachedMembers {
		t.Fatalf("IgnoreAttachedMembers = true, want false")
	}
}

func TestNewConfig_NoOptions_EqualsDefault(t *testing.T) {
	def := config.DefaultConfig()
	got := config.NewConfig()
	if got != def {
		t.Fatalf("NewConfig() = %+v, want default %+v", got, def)
	}
}

func TestOptions(t *testing.T) {
	c := config.NewConfig(
		config.WithSynchronized(false),
		config.WithCacheStrategy(cachestrategy.LRU),
		config.WithCacheCapacity(16),
		config.WithIgnoreAttachedMembers(true),
		config.WithMemberFlags(apis.InstancePublic),
		config.WithObservable(false),
		config.WithOptional(true),
	)
	want := apis.Config{
		Synchronized:          false,
		CacheStrategy:         cachestrategy.LRU,
		CacheCapacity:         16,
		IgnoreAttachedMembers: true,
		MemberFlags:           apis.InstancePublic,
		Observable:            false,
		Optional:              true,
	}
	if c != want {
		t.Fatalf("NewConfig(opts) = %+v, want %+v", c, want)
	}
}

func TestOptions_ResetToDefault(t *testing.T) {
	c := config.NewConfig(config.WithCacheCapacity(-1), config.WithMemberFlags(0))
	if c.CacheCapacity != config.DefaultCacheCapacity {
		t.Fatalf("CacheCapacity = %d, want %d", c.CacheCapacity, config.DefaultCacheCapacity)
	}
	if c.MemberFlags != config.DefaultMemberFlags {
		t.Fatalf("MemberFlags = %v, want %v", c.MemberFlags, config.DefaultMemberFlags)
	}
}

func TestLoad_Formats(t *testing.T) {
	want := config.DefaultConfig()
	want.Synchronized = false
	want.CacheStrategy = cachestrategy.LRU
	want.CacheCapacity = 64
	want.MemberFlags = apis.InstancePublic | apis.Attached
	want.Optional = true

	files := map[string]string{
		"bindx.yaml": "synchronized: false\ncache_strategy: lru\ncache_capacity: 64\nmember_flags: InstancePublic|Attached\noptional: true\n",
		"bindx.yml":  "synchronized: false\ncache_strategy: LRU\ncache_capacity: 64\nmember_flags: instance,public,attached\noptional: true\n",
		"bindx.toml": "synchronized = false\ncache_strategy = \"lru\"\ncache_capacity = 64\nmember_flags = \"InstancePublic|Attached\"\noptional = true\n",
		"bindx.json": `{"synchronized": false, "cache_strategy": "lru", "cache_capacity": 64, "member_flags": "InstancePublic|Attached", "optional": true}`,
	}

	dir := t.TempDir()
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
				t.Fatalf("write %s: %v", p, err)
			}
			got, err := config.Load(p)
			if err != nil {
				t.Fatalf("Load(%s): %v", name, err)
			}
			if got != want {
				t.Fatalf("Load(%s) = %+v, want %+v", name, got, want)
			}
		})
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	got, err := config.Decode([]byte("ignore_attached_members: true\n"), ".yaml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := config.DefaultConfig()
	want.IgnoreAttachedMembers = true
	if got != want {
		t.Fatalf("Decode = %+v, want %+v", got, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := config.Load(""); !errors.Is(err, config.ErrEmptyPath) {
		t.Fatalf("Load(\"\") error = %v, want ErrEmptyPath", err)
	}
	if _, err := config.Decode([]byte("x"), "ini"); !errors.Is(err, config.ErrUnsupportedFormat) {
		t.Fatalf("Decode(ini) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := config.Decode([]byte("cache_strategy: bogus\n"), "yaml"); err == nil {
		t.Fatalf("Decode(bogus strategy) succeeded, want error")
	}
	if _, err := config.Decode([]byte(`{"member_flags": "Sideways"}`), "json"); err == nil {
		t.Fatalf("Decode(bogus flags) succeeded, want error")
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}
