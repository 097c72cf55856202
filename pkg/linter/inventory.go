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

package linter

import (
	"context"
	"strings"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/shlint/pkg/elfinfo"
	"chainguard.dev/shlint/pkg/pkginfo"
	"chainguard.dev/shlint/pkg/soname"
)

// Inventory is the set of shared libraries a single package ships, built
// fresh from the files physically present in it.
type Inventory struct {
	// Provided holds the SONAME of every shipped shared object that has one.
	Provided map[string]struct{}
	// Needed is the union of the NEEDED entries of every shipped object.
	Needed map[string]struct{}
	// SelfRequired is the subset of Provided the package also declares as a
	// dependency, i.e. libraries it links against itself.
	SelfRequired map[string]struct{}
	// Dirs maps each provided SONAME to the directory holding it.
	Dirs map[string]string
	// LibDirs is every directory holding a provided library.
	LibDirs map[string]struct{}
}

func newInventory() *Inventory {
	return &Inventory{
		Provided:     map[string]struct{}{},
		Needed:       map[string]struct{}{},
		SelfRequired: map[string]struct{}{},
		Dirs:         map[string]string{},
		LibDirs:      map[string]struct{}{},
	}
}

// IsLibraryCandidate reports whether a package path may hold a shared object:
// it contains ".so." or ends in ".so". This is a plain substring test, so
// "/etc/ld.so.conf" or a file inside a "foo.so.d/" directory also qualify;
// those are ruled out later because their magic is not ELF.
func IsLibraryCandidate(path string) bool {
	return soname.IsVersioned(path) || strings.HasSuffix(path, ".so")
}

// libDir returns everything before the last slash of path, so a file at the
// top of the tree lives in "".
func libDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// BuildInventory scans the package file list and inspects every shared object
// candidate with provider. It never fails: files the provider cannot read
// contribute nothing.
func BuildInventory(ctx context.Context, pkg *pkginfo.Package, provider elfinfo.Provider) *Inventory {
	log := clog.FromContext(ctx)
	inv := newInventory()

	if pkg.Root == nil {
		return inv
	}

	requires := pkg.RequireNames()

	// Sorted so a SONAME shipped twice always maps to the same directory.
	for _, path := range pkg.Paths() {
		if !IsLibraryCandidate(path) {
			continue
		}

		file := pkg.Files[path]
		if !file.IsRegular() || !strings.HasPrefix(file.Magic, "ELF ") {
			continue
		}

		info, err := provider.Inspect(ctx, pkg.Root, pkginfo.RootPath(path))
		if err != nil {
			log.Debugf("%s: skipping %s: %v", pkg.Name, path, err)
			continue
		}

		for _, lib := range info.Needed {
			inv.Needed[lib] = struct{}{}
		}

		if info.SONAME == "" {
			log.Debugf("%s: library %s lacks SONAME", pkg.Name, path)
			continue
		}

		dir := libDir(path)
		log.Debugf("%s: found soname %s in %s", pkg.Name, info.SONAME, dir)

		inv.Provided[info.SONAME] = struct{}{}
		inv.Dirs[info.SONAME] = dir
		inv.LibDirs[dir] = struct{}{}

		// A program package linking its own private library requires it.
		if _, ok := requires[info.SONAME]; ok {
			inv.SelfRequired[info.SONAME] = struct{}{}
		}
	}

	return inv
}
