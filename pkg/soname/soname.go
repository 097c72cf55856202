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

// Package soname derives canonical library package names from ELF SONAMEs.
package soname

import (
	"regexp"
	"strings"
)

// majorSep separates a library base name from its ABI major version.
const majorSep = ".so."

var stronglyVersionedRegex = regexp.MustCompile(`-[\d.]+\.so$`)

// LibName returns the package name a library with the given SONAME is expected
// to ship in.
//
// A SONAME with exactly one ".so." is split into base and version. When the base
// already ends in a digit the two are joined with a hyphen (libfoo2.so.1 becomes
// libfoo2-1), otherwise they are concatenated (libfoo.so.1 becomes libfoo1).
// Anything else loses its last three bytes, which strips a trailing ".so".
// Dots in the result are replaced with underscores.
func LibName(soname string) string {
	var name string
	if parts := strings.Split(soname, majorSep); len(parts) == 2 {
		if EndsInDigit(parts[0]) {
			name = parts[0] + "-" + parts[1]
		} else {
			name = parts[0] + parts[1]
		}
	} else if len(soname) >= 3 {
		name = soname[:len(soname)-3]
	}

	return strings.ReplaceAll(name, ".", "_")
}

// EndsInDigit reports whether the last byte of s is an ASCII digit. The empty
// string does not end in a digit.
func EndsInDigit(s string) bool {
	if s == "" {
		return false
	}
	c := s[len(s)-1]
	return c >= '0' && c <= '9'
}

// IsVersioned reports whether name carries an ABI version after ".so", as in
// "libfoo.so.1". Plain "libfoo.so" is not versioned. The check is a substring
// match, so a directory component such as "foo.so.d/" also counts.
func IsVersioned(name string) bool {
	return strings.Contains(name, majorSep)
}

// IsStronglyVersioned reports whether the version is encoded before the ".so"
// suffix, as in "libfoo-1.2.so".
func IsStronglyVersioned(name string) bool {
	return stronglyVersionedRegex.MatchString(name)
}
