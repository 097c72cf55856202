// Copyright 2023 Chainguard, Inc.
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
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chainguard.dev/shlint/pkg/elfinfo"
	"chainguard.dev/shlint/pkg/exceptions"
	"chainguard.dev/shlint/pkg/linter/types"
	"chainguard.dev/shlint/pkg/pkginfo"
)

type rule struct {
	Severity types.Severity
	Explain  string
}

var ruleMap = map[string]rule{
	types.RuleMissingSuffix: {
		Severity: types.SeverityError,
		Explain:  "Packages shipping several shared libraries must end in a version digit, e.g. libfoo1",
	},
	types.RuleNameError: {
		Severity: types.SeverityError,
		Explain:  "Rename the package after the SONAME of the library it ships",
	},
	types.RuleLegacyNameError: {
		Severity: types.SeverityWarning,
		Explain:  "This package is grandfathered but is still not named after its SONAME",
	},
	types.RuleNonversionedDir: {
		Severity: types.SeverityError,
		Explain:  "Move the directory under a versioned name or into a separate package",
	},
	types.RuleExcessiveDependency: {
		Severity: types.SeverityError,
		Explain:  "Move the binaries pulling in this library dependency into a separate package",
	},
	types.RuleMissingLib: {
		Severity: types.SeverityError,
		Explain:  "A lib-named package must ship at least one shared library",
	},
	types.RuleLegacyMissingLib: {
		Severity: types.SeverityWarning,
		Explain:  "This grandfathered package does not ship any shared library",
	},
	types.RuleFixedDependency: {
		Severity: types.SeverityWarning,
		Explain:  "Use a >= dependency so several library versions remain installable",
	},
	types.RuleUnversionedLib: {
		Severity: types.SeverityWarning,
		Explain:  "Move unversioned libraries out of the versioned library package",
	},
}

// Severity returns the severity of a rule code. Unknown codes are errors.
func Severity(code string) types.Severity {
	if r, ok := ruleMap[code]; ok {
		return r.Severity
	}
	return types.SeverityError
}

// Rules returns every known rule code, sorted.
func Rules() []string {
	return slices.Sorted(maps.Keys(ruleMap))
}

// Explain returns the suggested fix for a rule code.
func Explain(code string) string {
	return ruleMap[code].Explain
}

// Checks if the rules in the given slice are known rules
// Returns an empty slice if all rules are known, otherwise a slice with all the bad rules
func CheckValidRules(check []string) []string {
	bad := []string{}
	for _, code := range check {
		if _, present := ruleMap[code]; !present {
			bad = append(bad, code)
		}
	}
	return bad
}

// Options configures a Linter.
type Options struct {
	// Exceptions defaults to the built-in tables.
	Exceptions *exceptions.Registry
	// Provider defaults to the debug/elf provider.
	Provider elfinfo.Provider
	// Disabled rule codes are evaluated but never reported.
	Disabled []string
	// Load is passed to pkginfo.Load by LintFile.
	Load pkginfo.LoadOptions
}

// Linter lints packages and collects their results. It is safe for
// concurrent use.
type Linter struct {
	eval     *Evaluator
	disabled map[string]struct{}
	load     pkginfo.LoadOptions

	mu      sync.Mutex
	results map[string]*types.PackageLintResults
}

// New returns a Linter for opts, rejecting unknown disabled rules.
func New(opts Options) (*Linter, error) {
	if bad := CheckValidRules(opts.Disabled); len(bad) > 0 {
		return nil, fmt.Errorf("unknown rule(s): %s", strings.Join(bad, ", "))
	}

	disabled := make(map[string]struct{}, len(opts.Disabled))
	for _, code := range opts.Disabled {
		disabled[code] = struct{}{}
	}

	return &Linter{
		eval:     NewEvaluator(opts.Exceptions, opts.Provider),
		disabled: disabled,
		load:     opts.Load,
		results:  map[string]*types.PackageLintResults{},
	}, nil
}

// LintPackage evaluates pkg and records its findings. The returned error joins
// every error severity finding; warnings are only logged.
func (l *Linter) LintPackage(ctx context.Context, pkg *pkginfo.Package) ([]types.Finding, error) {
	log := clog.FromContext(ctx).With("package", pkg.Name)

	var (
		findings []types.Finding
		errs     []error
	)
	for _, f := range l.eval.Evaluate(ctx, pkg) {
		if _, off := l.disabled[f.Code]; off {
			log.Debugf("suppressed [%s] %s", f.Code, f.Detail)
			continue
		}
		findings = append(findings, f)

		msg := fmt.Sprintf("[%s] %s", f.Code, f.Detail)
		if f.Detail == "" {
			msg = fmt.Sprintf("[%s]", f.Code)
		}
		if f.Severity == types.SeverityError {
			log.Errorf("%s", msg)
			errs = append(errs, fmt.Errorf("%s; suggest: %s", f, Explain(f.Code)))
		} else {
			log.Warnf("%s", msg)
		}
	}

	l.record(pkg, findings)

	if len(errs) == 0 {
		return findings, nil
	}

	details := &types.FindingsDetails{Findings: findings}
	logStructuredDetails(log, details)
	return findings, errors.Join(
		types.NewStructuredError(fmt.Sprintf("%s: %d shared library policy error(s)", pkg.Name, len(errs)), details),
		errors.Join(errs...),
	)
}

func (l *Linter) record(pkg *pkginfo.Package, findings []types.Finding) {
	res := &types.PackageLintResults{
		PackageName: pkg.Name,
		Version:     pkg.Version,
		Arch:        pkg.Arch,
		Findings:    map[string][]*types.Finding{},
	}
	for i := range findings {
		f := findings[i]
		res.Findings[f.Code] = append(res.Findings[f.Code], &f)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[res.Key()] = res
}

// LintFile loads the package at path and lints it. The package's name,
// version and size are added to the span in ctx.
func (l *Linter) LintFile(ctx context.Context, path string) ([]types.Finding, error) {
	pkg, err := pkginfo.Load(ctx, path, l.load)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := pkg.Close(); err != nil {
			clog.FromContext(ctx).Warnf("cleaning up %s: %v", path, err)
		}
	}()

	size := humanize.Bytes(uint64(max(pkg.Size, 0))) // #nosec G115 - clamped to zero
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("name", pkg.Name),
		attribute.String("version", pkg.Version),
		attribute.Int("files", len(pkg.Files)),
		attribute.Int64("size", pkg.Size),
		attribute.String("size.human", size),
	)
	clog.FromContext(ctx).Infof("linting %s %s (%d files, %s)", pkg.Name, pkg.Version, len(pkg.Files), size)

	return l.LintPackage(ctx, pkg)
}

// Results returns a snapshot of the results recorded so far, keyed by
// PackageLintResults.Key so builds of one package for several versions or
// architectures are kept apart. Linting the same build again replaces its
// entry.
func (l *Linter) Results() map[string]*types.PackageLintResults {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.results)
}
