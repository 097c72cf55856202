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
	"maps"
	"slices"
	"strings"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/shlint/pkg/elfinfo"
	"chainguard.dev/shlint/pkg/exceptions"
	"chainguard.dev/shlint/pkg/linter/types"
	"chainguard.dev/shlint/pkg/pkginfo"
	"chainguard.dev/shlint/pkg/soname"
)

// Library directories that make a package a shared library package.
var stdLibDirs = []string{
	"/lib", "/lib64", "/usr/lib", "/usr/lib64",
	"/opt/kde3/lib", "/opt/kde3/lib64",
}

// System directories whose direct children must carry a version. A packaged
// directory is consumed by the first entry it lives under, so anything below
// /usr/share/licenses is reported as a child of /usr/share.
var sysDirs = []string{
	"/lib", "/lib64", "/usr/lib", "/usr/lib64",
	"/usr/share", "/usr/share/licenses",
	"/usr/share/doc/packages",
}

const kde3Prefix = "/opt/kde3"

// Evaluator applies the shared library packaging policy to one package at a
// time. It holds no per-package state and is safe for concurrent use.
type Evaluator struct {
	Exceptions *exceptions.Registry
	Provider   elfinfo.Provider
}

// NewEvaluator returns an evaluator using reg and provider, falling back to
// the built-in exception tables and the debug/elf provider when nil.
func NewEvaluator(reg *exceptions.Registry, provider elfinfo.Provider) *Evaluator {
	if reg == nil {
		reg = exceptions.Default()
	}
	if provider == nil {
		provider = elfinfo.NewProvider()
	}
	return &Evaluator{Exceptions: reg, Provider: provider}
}

// Evaluate builds the library inventory of pkg and checks it against the
// policy.
func (e *Evaluator) Evaluate(ctx context.Context, pkg *pkginfo.Package) []types.Finding {
	if skipPackage(pkg) {
		clog.FromContext(ctx).Debugf("%s: not subject to shared library policy", pkg.Name)
		return nil
	}
	return e.EvaluateInventory(ctx, pkg, BuildInventory(ctx, pkg, e.Provider))
}

func skipPackage(pkg *pkginfo.Package) bool {
	return pkg.Source ||
		strings.HasSuffix(pkg.Name, "-devel") ||
		strings.HasSuffix(pkg.Name, "-doc")
}

type report struct {
	pkg      string
	findings []types.Finding
}

func (r *report) add(code, detail string) {
	r.findings = append(r.findings, types.Finding{
		Severity: Severity(code),
		Code:     code,
		Package:  r.pkg,
		Detail:   detail,
	})
}

// EvaluateInventory checks pkg against a previously built inventory. The
// inventory is not modified, so repeated calls yield the same findings.
func (e *Evaluator) EvaluateInventory(ctx context.Context, pkg *pkginfo.Package, inv *Inventory) []types.Finding {
	log := clog.FromContext(ctx)
	name := pkg.Name

	if skipPackage(pkg) {
		return nil
	}

	libNamed := strings.HasPrefix(name, "lib")

	// A program that links every library it ships is not a library package.
	if !libNamed && subsetOf(inv.Provided, inv.SelfRequired) {
		log.Debugf("%s: program package with private libraries", name)
		return nil
	}

	r := &report{pkg: name}

	stdLibPackage := libNamed && soname.EndsInDigit(name)

	hasStdDir := false
	for _, dir := range stdLibDirs {
		if _, ok := inv.LibDirs[dir]; ok {
			hasStdDir = true
			break
		}
	}

	libs := inv.Provided
	if stdLibPackage {
		libs = make(map[string]struct{}, len(inv.Provided))
		for lib := range inv.Provided {
			if isVersionedDir(inv.Dirs[lib]) {
				log.Debugf("%s: %s lives in versioned directory %s", name, lib, inv.Dirs[lib])
				continue
			}
			libs[lib] = struct{}{}
		}
	}
	sortedLibs := slices.Sorted(maps.Keys(libs))

	if stdLibPackage {
		for _, lib := range sortedLibs {
			if !soname.EndsInDigit(lib) && !soname.IsStronglyVersioned(lib) {
				r.add(types.RuleUnversionedLib, lib)
			}
		}
	}

	if len(libs) > 0 && hasStdDir {
		switch {
		case len(libs) == 1:
			libname := soname.LibName(sortedLibs[0])
			if strings.HasPrefix(libname, "lib") && name != libname && name != libname+"-mini" {
				if e.Exceptions.IsLegacy(libname) {
					r.add(types.RuleLegacyNameError, libname)
				} else {
					r.add(types.RuleNameError, libname)
				}
			}
		case !soname.EndsInDigit(name):
			r.add(types.RuleMissingSuffix, "")
		}
	}

	if !libNamed || strings.HasSuffix(name, "-lang") {
		return r.findings
	}

	if len(libs) == 0 {
		if e.Exceptions.IsLegacy(name) {
			r.add(types.RuleLegacyMissingLib, name)
		} else {
			r.add(types.RuleMissingLib, "")
		}
	}

	if stdLibPackage {
		for _, dep := range pkg.Requires {
			if strings.HasPrefix(dep.Name, "rpmlib(") || strings.HasPrefix(dep.Name, "config(") {
				continue
			}
			if dep.IsExact() {
				r.add(types.RuleFixedDependency, dep.String())
			}
		}
	}

	if len(libs) > 0 {
		for _, dep := range slices.Sorted(maps.Keys(pkg.RequireNames())) {
			if e.Exceptions.IsEssential(dep) || !soname.IsVersioned(dep) {
				continue
			}
			_, provided := libs[dep]
			_, needed := inv.Needed[dep]
			if !provided && !needed {
				r.add(types.RuleExcessiveDependency, dep)
			}
		}
	}

	for _, dir := range nonversionedDirs(pkg) {
		r.add(types.RuleNonversionedDir, dir)
	}

	return r.findings
}

func subsetOf(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// isVersionedDir reports whether any component of dir ends in a digit. lib64
// does not count, nor does anything under /opt/kde3.
func isVersionedDir(dir string) bool {
	if strings.HasPrefix(dir, kde3Prefix) {
		return false
	}
	for part := range strings.SplitSeq(dir, "/") {
		if soname.EndsInDigit(part) && !strings.HasSuffix(part, "lib64") {
			return true
		}
	}
	return false
}

// nonversionedDirs returns the sorted set of first level subdirectories of the
// system directories whose names do not end in a digit. Each packaged
// directory is attributed to the first system directory in sysDirs that
// contains it.
func nonversionedDirs(pkg *pkginfo.Package) []string {
	var dirs []string
	for _, path := range pkg.Paths() {
		if pkg.Files[path].IsDir() {
			dirs = append(dirs, path)
		}
	}

	found := map[string]struct{}{}
	for _, sysdir := range sysDirs {
		prefix := sysdir + "/"
		remaining := dirs[:0]
		for _, dir := range dirs {
			rest, ok := strings.CutPrefix(dir, prefix)
			if !ok {
				remaining = append(remaining, dir)
				continue
			}
			top, _, _ := strings.Cut(rest, "/")
			if top != "" && !soname.EndsInDigit(top) {
				found[prefix+top] = struct{}{}
			}
		}
		dirs = remaining
	}

	return slices.Sorted(maps.Keys(found))
}
