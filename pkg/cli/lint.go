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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"chainguard.dev/shlint/pkg/exceptions"
	shhttp "chainguard.dev/shlint/pkg/http"
	"chainguard.dev/shlint/pkg/linter"
	"chainguard.dev/shlint/pkg/linter/types"
	"chainguard.dev/shlint/pkg/pkginfo"
)

type lintConfig struct {
	exceptionsFile string
	disabled       []string
	outputDir      string
	jobs           int
	name           string
	requires       []string
	warnOnly       bool
	httpRate       float64
}

func lint() *cobra.Command {
	lc := lintConfig{}

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Lint packages against the shared library packaging policy",
		Long: `Lint RPM files, APK files (local or http(s) URLs) and unpacked package
trees. Every finding is printed; the command fails when any package has an
error finding.`,
		Example: `  shlint lint libfoo2-2.0-1.x86_64.rpm
  shlint lint --disable shlib-policy-nonversioned-dir ./packages/x86_64/*.apk
  shlint lint --name libfoo2 --requires 'libc.so.6' ./build/libfoo2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return lintCmd(cmd.Context(), cmd.OutOrStdout(), &lc, args...)
		},
	}

	cmd.Flags().StringVar(&lc.exceptionsFile, "exceptions", "", "YAML file with extra legacy-exceptions and essential-dependencies")
	cmd.Flags().StringSliceVar(&lc.disabled, "disable", []string{}, "rule codes to suppress")
	cmd.Flags().StringVar(&lc.outputDir, "output-dir", "", "directory to write lint-<name>-<version>.json results to")
	cmd.Flags().IntVarP(&lc.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of packages to lint concurrently")
	cmd.Flags().StringVar(&lc.name, "name", "", "package name for a single directory input (default is the directory name)")
	cmd.Flags().StringSliceVar(&lc.requires, "requires", []string{}, "declared dependencies for directory inputs, e.g. 'libc.so.6' or 'pkgX=1.2'")
	cmd.Flags().Float64Var(&lc.httpRate, "http-rate", 0, "maximum apk downloads per second, 0 for no limit")
	cmd.Flags().BoolVar(&lc.warnOnly, "warn-only", false, "report error findings without failing")

	return cmd
}

func (lc *lintConfig) options() (linter.Options, error) {
	reg := exceptions.Default()
	if lc.exceptionsFile != "" {
		extra, err := exceptions.LoadFile(lc.exceptionsFile)
		if err != nil {
			return linter.Options{}, err
		}
		reg = reg.Merge(extra)
	}

	opts := linter.Options{
		Exceptions: reg,
		Disabled:   lc.disabled,
		Load:       pkginfo.LoadOptions{Name: lc.name},
	}
	if lc.httpRate > 0 {
		opts.Load.HTTP = shhttp.NewClient(rate.NewLimiter(rate.Limit(lc.httpRate), 1))
	}
	for _, r := range lc.requires {
		opts.Load.Requires = append(opts.Load.Requires, pkginfo.ParseDependency(r))
	}
	return opts, nil
}

func lintCmd(ctx context.Context, out io.Writer, lc *lintConfig, pkgs ...string) error {
	ctx, span := otel.Tracer("shlint").Start(ctx, "lint")
	defer span.End()

	log := clog.FromContext(ctx)

	if lc.name != "" {
		var trees []string
		for _, pkg := range pkgs {
			if pkginfo.IsTree(pkg) {
				trees = append(trees, pkg)
			}
		}
		if len(trees) > 1 {
			return fmt.Errorf("--name names a single directory input, got %d: %s", len(trees), strings.Join(trees, ", "))
		}
	}

	opts, err := lc.options()
	if err != nil {
		return err
	}
	l, err := linter.New(opts)
	if err != nil {
		return err
	}

	// Findings are printed in argument order once everything is linted.
	findings := make([][]types.Finding, len(pkgs))
	var (
		mu        sync.Mutex
		policyErr []error
	)

	var g errgroup.Group
	g.SetLimit(max(lc.jobs, 1))
	for i, pkg := range pkgs {
		g.Go(func() error {
			ctx, span := otel.Tracer("shlint").Start(ctx, "lintPackage")
			defer span.End()
			span.SetAttributes(attribute.String("package", pkg))

			f, err := l.LintFile(ctx, pkg)
			findings[i] = f

			var serr *types.StructuredError
			switch {
			case err == nil:
				return nil
			case errors.As(err, &serr):
				span.SetStatus(codes.Error, serr.Message)
				mu.Lock()
				policyErr = append(policyErr, err)
				mu.Unlock()
				return nil
			default:
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("linting %s: %w", pkg, err)
			}
		})
	}
	loadErr := g.Wait()

	for _, pf := range findings {
		for _, f := range pf {
			fmt.Fprintln(out, f)
		}
	}

	if lc.outputDir != "" {
		if err := linter.SaveResults(ctx, l.Results(), lc.outputDir); err != nil {
			return err
		}
	}

	if loadErr != nil {
		return loadErr
	}
	if len(policyErr) > 0 {
		if lc.warnOnly {
			log.Warnf("%d package(s) violate the shared library policy", len(policyErr))
			return nil
		}
		return fmt.Errorf("%d package(s) violate the shared library policy", len(policyErr))
	}

	return nil
}
