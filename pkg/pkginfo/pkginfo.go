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

// Package pkginfo models the parts of a binary package the shared library
// policy looks at, and loads them from RPM files, APK files and unpacked
// build trees.
package pkginfo

import (
	"errors"
	"io/fs"
	"maps"
	"slices"
	"strings"
)

// Sense is the comparison part of a versioned dependency. The values match
// RPMSENSE_LESS, RPMSENSE_GREATER and RPMSENSE_EQUAL so RPM require flags can
// be stored as is.
type Sense uint32

const (
	SenseAny     Sense = 0
	SenseLess    Sense = 1 << 1
	SenseGreater Sense = 1 << 2
	SenseEqual   Sense = 1 << 3

	senseCompare = SenseLess | SenseGreater | SenseEqual
)

// Dependency is one declared requirement of a package.
type Dependency struct {
	Name    string `json:"name"`
	Flags   Sense  `json:"flags,omitempty"`
	Version string `json:"version,omitempty"`
}

// IsExact reports whether the dependency pins one exact version, i.e. it has
// the equal bit set and the greater bit clear.
func (d Dependency) IsExact() bool {
	return d.Flags&(SenseGreater|SenseEqual) == SenseEqual
}

// BaseName returns the dependency name without any parenthesized qualifier,
// so "libc.so.6(GLIBC_2.2.5)(64bit)" becomes "libc.so.6".
func (d Dependency) BaseName() string {
	name, _, _ := strings.Cut(d.Name, "(")
	return name
}

// String formats the dependency as "name", or "name <op> version" when it
// carries a comparison.
func (d Dependency) String() string {
	if d.Flags&senseCompare == 0 {
		return d.Name
	}

	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteByte(' ')
	if d.Flags&SenseLess != 0 {
		b.WriteByte('<')
	}
	if d.Flags&SenseGreater != 0 {
		b.WriteByte('>')
	}
	if d.Flags&SenseEqual != 0 {
		b.WriteByte('=')
	}
	b.WriteByte(' ')
	b.WriteString(d.Version)
	return b.String()
}

// ParseDependency parses "name", "name=1.0", "name >= 1.0" and the apk fuzzy
// form "name~1.0", which is treated as ">=".
func ParseDependency(s string) Dependency {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, "<>=~")
	if i < 0 {
		return Dependency{Name: s}
	}

	dep := Dependency{Name: strings.TrimSpace(s[:i])}
	rest := s[i:]
	for len(rest) > 0 {
		switch rest[0] {
		case '<':
			dep.Flags |= SenseLess
		case '>':
			dep.Flags |= SenseGreater
		case '=':
			dep.Flags |= SenseEqual
		case '~':
			dep.Flags |= SenseGreater | SenseEqual
		default:
			dep.Version = strings.TrimSpace(rest)
			return dep
		}
		rest = rest[1:]
	}

	return dep
}

// File is the metadata of one entry in a package file list.
type File struct {
	Mode fs.FileMode `json:"mode"`
	// Magic is a file(1) style description of the content; ELF objects start
	// with "ELF ".
	Magic string `json:"magic,omitempty"`
}

func (f File) IsRegular() bool { return f.Mode.IsRegular() }
func (f File) IsDir() bool     { return f.Mode.IsDir() }

// Package is a loaded binary package. File paths are absolute, as in
// "/usr/lib64/libfoo.so.1". Root resolves them without the leading slash.
type Package struct {
	Name     string
	Version  string
	Arch     string
	Source   bool
	Files    map[string]File
	Requires []Dependency
	Root     fs.FS
	Size     int64

	cleanup []func() error
}

// RequireNames returns the set of declared dependency names with their
// parenthesized qualifiers stripped.
func (p *Package) RequireNames() map[string]struct{} {
	names := make(map[string]struct{}, len(p.Requires))
	for _, dep := range p.Requires {
		names[dep.BaseName()] = struct{}{}
	}
	return names
}

// Paths returns the file list in sorted order.
func (p *Package) Paths() []string {
	return slices.Sorted(maps.Keys(p.Files))
}

// RootPath converts an absolute package path into a path valid for Root.
func RootPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "."
	}
	return path
}

// Close releases any scratch space held by the package.
func (p *Package) Close() error {
	var errs []error
	for i := len(p.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, p.cleanup[i]())
	}
	p.cleanup = nil
	return errors.Join(errs...)
}

func (p *Package) onClose(f func() error) {
	p.cleanup = append(p.cleanup, f)
}
