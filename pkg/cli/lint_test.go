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

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainguard.dev/shlint/pkg/linter/types"
)

func mktree(t *testing.T, dirs ...string) string {
	t.Helper()
	d := t.TempDir()
	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(d, dir), 0o755))
	}
	return d
}

func TestLintCmdFailsOnErrors(t *testing.T) {
	ctx := slogtest.Context(t)
	tree := mktree(t, "usr/share/foo")

	var out bytes.Buffer
	err := lintCmd(ctx, &out, &lintConfig{name: "libfoo1", jobs: 2}, tree)
	require.Error(t, err)
	assert.Contains(t, out.String(), "libfoo1: E: shlib-policy-missing-lib")
	assert.Contains(t, out.String(), "libfoo1: E: shlib-policy-nonversioned-dir /usr/share/foo")
}

func TestLintCmdWarnOnly(t *testing.T) {
	ctx := slogtest.Context(t)
	tree := mktree(t, "usr/share/foo")

	var out bytes.Buffer
	require.NoError(t, lintCmd(ctx, &out, &lintConfig{name: "libfoo1", jobs: 1, warnOnly: true}, tree))
	assert.NotEmpty(t, out.String())
}

func TestLintCmdDisable(t *testing.T) {
	ctx := slogtest.Context(t)
	tree := mktree(t, "usr/share/foo")

	var out bytes.Buffer
	err := lintCmd(ctx, &out, &lintConfig{
		name:     "libfoo1",
		jobs:     1,
		disabled: []string{types.RuleMissingLib, types.RuleNonversionedDir},
	}, tree)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestLintCmdUnknownRule(t *testing.T) {
	ctx := slogtest.Context(t)

	err := lintCmd(ctx, &bytes.Buffer{}, &lintConfig{disabled: []string{"nope"}}, t.TempDir())
	require.ErrorContains(t, err, "unknown rule(s): nope")
}

func TestLintCmdExceptionsFile(t *testing.T) {
	ctx := slogtest.Context(t)
	tree := mktree(t, "usr/lib64")

	exc := filepath.Join(t.TempDir(), "exceptions.yaml")
	require.NoError(t, os.WriteFile(exc, []byte("legacy-exceptions:\n  - libold1\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, lintCmd(ctx, &out, &lintConfig{name: "libold1", jobs: 1, exceptionsFile: exc}, tree))
	assert.Equal(t, "libold1: W: shlib-legacy-policy-missing-lib libold1\n", out.String())
}

func TestLintCmdBadExceptionsFile(t *testing.T) {
	ctx := slogtest.Context(t)

	exc := filepath.Join(t.TempDir(), "exceptions.yaml")
	require.NoError(t, os.WriteFile(exc, []byte("legacy: [libold1]\n"), 0o644))

	require.Error(t, lintCmd(ctx, &bytes.Buffer{}, &lintConfig{exceptionsFile: exc}, t.TempDir()))
}

func TestLintCmdMissingInput(t *testing.T) {
	ctx := slogtest.Context(t)

	err := lintCmd(ctx, &bytes.Buffer{}, &lintConfig{jobs: 1}, filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "linting")
}

func TestLintCmdNameSingleTree(t *testing.T) {
	ctx := slogtest.Context(t)
	a, b := mktree(t, "usr/lib64"), mktree(t, "usr/lib64")

	err := lintCmd(ctx, &bytes.Buffer{}, &lintConfig{name: "libfoo1", jobs: 1}, a, b)
	require.ErrorContains(t, err, "--name names a single directory input, got 2")

	// Package files carry their own name, so they may be mixed with one tree.
	rpm := filepath.Join("..", "pkginfo", "testdata", "libfoo2-2.0-1.x86_64.rpm")
	var out bytes.Buffer
	require.NoError(t, lintCmd(ctx, &out, &lintConfig{name: "libfoo1", jobs: 2, warnOnly: true}, a, rpm))
	assert.Contains(t, out.String(), "libfoo1: E: shlib-policy-missing-lib\n")
	assert.Contains(t, out.String(), "libfoo2: W: shlib-fixed-dependency libfoo2-common = 2.0-1\n")

	// Without --name every tree is named after its directory.
	require.NoError(t, lintCmd(ctx, &bytes.Buffer{}, &lintConfig{jobs: 1, warnOnly: true}, a, b))
}

func TestLintCmdOutputDir(t *testing.T) {
	ctx := slogtest.Context(t)
	tree := mktree(t, "usr/share/foo")
	outDir := t.TempDir()

	err := lintCmd(ctx, &bytes.Buffer{}, &lintConfig{
		name:      "libfoo1",
		jobs:      1,
		requires:  []string{"pkgX=1.2"},
		outputDir: outDir,
	}, tree)
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "noarch", "lint-libfoo1.json"))
	require.NoError(t, err)

	var res types.PackageLintResults
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "libfoo1", res.PackageName)
	assert.Len(t, res.Findings[types.RuleFixedDependency], 1)
	assert.Equal(t, "pkgX = 1.2", res.Findings[types.RuleFixedDependency][0].Detail)
}

func TestRulesCmd(t *testing.T) {
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"rules"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), types.RuleFixedDependency)
	assert.Contains(t, out.String(), "warning")
}
