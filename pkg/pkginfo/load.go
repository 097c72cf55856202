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
	"path/filepath"
	"strings"

	shhttp "chainguard.dev/shlint/pkg/http"
)

// LoadOptions supplies the metadata that directory trees lack.
type LoadOptions struct {
	// Name of the package when loading a directory; defaults to the
	// directory's base name.
	Name string
	// Requires are the declared dependencies when loading a directory.
	Requires []Dependency
	// HTTP fetches remote apks; defaults to an unlimited client.
	HTTP *shhttp.RLHTTPClient
}

// IsTree reports whether Load treats path as an unpacked package tree.
func IsTree(path string) bool {
	return !strings.HasSuffix(path, ".rpm") && !strings.HasSuffix(path, ".apk")
}

// Load picks a loader from the path: ".rpm" and ".apk" files (or URLs for
// apks) are read as packages, anything else as an unpacked tree.
func Load(ctx context.Context, path string, opts LoadOptions) (*Package, error) {
	switch {
	case strings.HasSuffix(path, ".rpm"):
		return LoadRPM(ctx, path)
	case strings.HasSuffix(path, ".apk"):
		return LoadAPK(ctx, path, opts.HTTP)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(filepath.Clean(path))
	}
	return LoadDir(ctx, name, path, opts.Requires)
}
