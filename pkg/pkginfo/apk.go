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

package pkginfo

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"chainguard.dev/apko/pkg/apk/expandapk"
	"github.com/chainguard-dev/clog"
	"gopkg.in/ini.v1"

	shhttp "chainguard.dev/shlint/pkg/http"
)

// LoadAPK expands the APK at path, which may be a local file or an http(s)
// URL fetched with client (unlimited when nil). Close releases the expanded
// tarballs.
func LoadAPK(ctx context.Context, path string, client *shhttp.RLHTTPClient) (*Package, error) {
	log := clog.FromContext(ctx)

	r, closeSource, err := openAPK(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	exp, err := expandapk.ExpandApk(ctx, r, "")
	if err != nil {
		return nil, fmt.Errorf("expanding apk %q: %w", path, err)
	}

	pkg, err := fromExpanded(exp)
	if err != nil {
		exp.Close()
		return nil, fmt.Errorf("loading apk %q: %w", path, err)
	}
	pkg.onClose(exp.Close)

	log.Debugf("loaded apk %s-%s with %d files", pkg.Name, pkg.Version, len(pkg.Files))
	return pkg, nil
}

func openAPK(ctx context.Context, path string, client *shhttp.RLHTTPClient) (io.Reader, func(), error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if client == nil {
			client = shhttp.Unlimited()
		}
		body, err := client.Fetch(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("getting apk: %w", err)
		}
		return body, func() { body.Close() }, nil
	}

	file, err := os.Open(path) // #nosec G304 - User-specified APK package for linting
	if err != nil {
		return nil, nil, fmt.Errorf("opening apk %q: %w", path, err)
	}
	return file, func() { file.Close() }, nil
}

func fromExpanded(exp *expandapk.APKExpanded) (*Package, error) {
	f, err := exp.ControlFS.Open(".PKGINFO")
	if err != nil {
		return nil, fmt.Errorf("could not open .PKGINFO file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("could not read from package: %w", err)
	}

	pkg, err := parsePkgInfo(data)
	if err != nil {
		return nil, err
	}

	pkg.Root = exp.TarFS
	pkg.Files, _, err = walkFiles(exp.TarFS)
	if err != nil {
		return nil, err
	}
	if exp.Size > 0 {
		pkg.Size = int64(exp.Size)
	}

	return pkg, nil
}

// parsePkgInfo reads the metadata of an apk control section. Each "depend"
// line becomes a Dependency; conflicts ("!name") are not requirements and are
// dropped, and the "so:" namespace is removed so SONAME dependencies look the
// same as they do in RPM headers.
func parsePkgInfo(data []byte) (*Package, error) {
	pkginfo, err := ini.ShadowLoad(data)
	if err != nil {
		return nil, fmt.Errorf("could not load .PKGINFO file: %w", err)
	}

	section := pkginfo.Section("")
	pkg := &Package{
		Name:    section.Key("pkgname").MustString(""),
		Version: section.Key("pkgver").MustString(""),
		Arch:    section.Key("arch").MustString(""),
	}
	if pkg.Name == "" {
		return nil, fmt.Errorf("pkgname is nonexistent")
	}

	if !section.HasKey("depend") {
		return pkg, nil
	}
	for _, raw := range section.Key("depend").ValueWithShadows() {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "!") {
			continue
		}
		dep := ParseDependency(raw)
		dep.Name = strings.TrimPrefix(dep.Name, "so:")
		pkg.Requires = append(pkg.Requires, dep)
	}

	return pkg, nil
}
