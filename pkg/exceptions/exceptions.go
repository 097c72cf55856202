// Copyright 2025 Chainguard, Inc.
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

// Package exceptions holds the lookup tables the shared library policy
// consults: package names grandfathered out of strict naming, and system
// libraries every package may depend on.
package exceptions

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry is an immutable pair of exception sets. It is safe for concurrent
// use.
type Registry struct {
	legacy    map[string]struct{}
	essential map[string]struct{}
}

// File is the on-disk form of a registry.
type File struct {
	LegacyExceptions      []string `yaml:"legacy-exceptions,omitempty"`
	EssentialDependencies []string `yaml:"essential-dependencies,omitempty"`
}

func toSet(lists ...[]string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, l := range lists {
		for _, s := range l {
			set[s] = struct{}{}
		}
	}
	return set
}

// New builds a registry from the given legacy package names and essential
// dependency SONAMEs.
func New(legacy, essential []string) *Registry {
	return &Registry{
		legacy:    toSet(legacy),
		essential: toSet(essential),
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return New(defaultLegacyExceptions, defaultEssentialDependencies)
})

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry()
}

// IsLegacy reports whether name is grandfathered out of strict naming.
func (r *Registry) IsLegacy(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.legacy[name]
	return ok
}

// IsEssential reports whether soname may be depended on by any package.
func (r *Registry) IsEssential(soname string) bool {
	if r == nil {
		return false
	}
	_, ok := r.essential[soname]
	return ok
}

// Legacy returns the legacy exception names, sorted.
func (r *Registry) Legacy() []string {
	return slices.Sorted(maps.Keys(r.legacy))
}

// Essential returns the essential dependency SONAMEs, sorted.
func (r *Registry) Essential() []string {
	return slices.Sorted(maps.Keys(r.essential))
}

// Merge returns a new registry holding the entries of both r and other.
func (r *Registry) Merge(other *Registry) *Registry {
	if other == nil {
		return r
	}
	return &Registry{
		legacy:    toSet(r.Legacy(), other.Legacy()),
		essential: toSet(r.Essential(), other.Essential()),
	}
}

// Parse decodes a registry document. Unknown fields are rejected.
func Parse(r io.Reader) (*Registry, error) {
	var f File

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil, nil), nil
		}
		return nil, fmt.Errorf("decoding exceptions: %w", err)
	}

	return New(f.LegacyExceptions, f.EssentialDependencies), nil
}

// LoadFile reads a registry document from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified exceptions file
	if err != nil {
		return nil, fmt.Errorf("opening exceptions file: %w", err)
	}
	defer f.Close()

	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}
