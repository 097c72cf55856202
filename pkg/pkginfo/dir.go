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
	"io/fs"
	"os"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/shlint/pkg/elfinfo"
)

// LoadDir loads an unpacked package tree, such as a melange build workspace.
// Directory trees carry no metadata, so the caller names the package and
// lists its declared dependencies.
func LoadDir(ctx context.Context, name, dir string, requires []Dependency) (*Package, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("loading package tree %q: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("loading package tree %q: not a directory", dir)
	}

	pkg := &Package{
		Name:     name,
		Requires: requires,
		Root:     os.DirFS(dir),
	}

	files, size, err := walkFiles(pkg.Root)
	if err != nil {
		return nil, err
	}
	pkg.Files = files
	pkg.Size = size

	clog.FromContext(ctx).Debugf("loaded %d entries from %s", len(files), dir)
	return pkg, nil
}

// walkFiles builds a file list from a package filesystem that holds every
// entry itself, which is the case for build trees and apk data tarballs.
func walkFiles(fsys fs.FS) (map[string]File, int64, error) {
	files := map[string]File{}
	var size int64

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error traversing tree at %s: %w", path, err)
		}
		if path == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		file := File{Mode: info.Mode()}
		if file.IsRegular() {
			size += info.Size()
			file.Magic = elfinfo.Magic(fsys, path)
		}
		files["/"+path] = file

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return files, size, nil
}
