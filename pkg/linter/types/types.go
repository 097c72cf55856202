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

package types

import "fmt"

// Shared library policy rule codes.
const (
	RuleMissingSuffix       = "shlib-policy-missing-suffix"
	RuleNameError           = "shlib-policy-name-error"
	RuleLegacyNameError     = "shlib-legacy-policy-name-error"
	RuleNonversionedDir     = "shlib-policy-nonversioned-dir"
	RuleExcessiveDependency = "shlib-policy-excessive-dependency"
	RuleMissingLib          = "shlib-policy-missing-lib"
	RuleLegacyMissingLib    = "shlib-legacy-policy-missing-lib"
	RuleFixedDependency     = "shlib-fixed-dependency"
	RuleUnversionedLib      = "shlib-unversioned-lib"
)

// Severity is how a finding affects the lint result.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single policy violation reported against a package.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Package  string   `json:"package"`
	Detail   string   `json:"detail,omitempty"`
}

// String formats the finding the way rpmlint prints it, e.g.
// "libfoo1: E: shlib-policy-name-error libfoo2".
func (f Finding) String() string {
	tag := "W"
	if f.Severity == SeverityError {
		tag = "E"
	}
	if f.Detail == "" {
		return fmt.Sprintf("%s: %s: %s", f.Package, tag, f.Code)
	}
	return fmt.Sprintf("%s: %s: %s %s", f.Package, tag, f.Code, f.Detail)
}

// FindingsDetails carries the findings behind a failed package lint.
type FindingsDetails struct {
	Findings []Finding `json:"findings"`
}

// StructuredError is an error that carries structured details for JSON serialization
type StructuredError struct {
	Message string
	Details any
}

// Error returns the error message
func (e *StructuredError) Error() string {
	return e.Message
}

// NewStructuredError creates a new error with structured details
func NewStructuredError(message string, details any) error {
	return &StructuredError{
		Message: message,
		Details: details,
	}
}

// PackageLintResults contains all findings for a package
type PackageLintResults struct {
	PackageName string                `json:"package_name"`
	Version     string                `json:"version,omitempty"`
	Arch        string                `json:"arch,omitempty"`
	Findings    map[string][]*Finding `json:"findings"` // map of rule code -> findings
}

// Key identifies the results of one build of a package, as in
// "libfoo2-2.0-r1.x86_64". Empty version and arch are left out.
func (r *PackageLintResults) Key() string {
	key := r.PackageName
	if r.Version != "" {
		key += "-" + r.Version
	}
	if r.Arch != "" {
		key += "." + r.Arch
	}
	return key
}
