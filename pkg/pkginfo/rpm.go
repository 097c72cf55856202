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
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/sassoftware/go-rpmutils"

	"chainguard.dev/shlint/pkg/elfinfo"
)

// LoadRPM reads an RPM header and expands its payload into a scratch
// directory which is removed by Close.
func LoadRPM(ctx context.Context, path string) (*Package, error) {
	log := clog.FromContext(ctx)

	f, err := os.Open(path) // #nosec G304 - User-specified RPM package for linting
	if err != nil {
		return nil, fmt.Errorf("opening rpm %q: %w", path, err)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("reading rpm %q: %w", path, err)
	}
	hdr := rpm.Header

	pkg := &Package{
		Name:    stringTag(hdr, rpmutils.NAME),
		Version: stringTag(hdr, rpmutils.VERSION),
		Arch:    stringTag(hdr, rpmutils.ARCH),
		// Binary RPMs record the source RPM they were built from.
		Source: stringTag(hdr, rpmutils.SOURCERPM) == "",
		Files:  map[string]File{},
	}
	if pkg.Name == "" {
		return nil, fmt.Errorf("rpm %q has no name", path)
	}
	if release := stringTag(hdr, rpmutils.RELEASE); release != "" {
		pkg.Version += "-" + release
	}
	if fi, err := f.Stat(); err == nil {
		pkg.Size = fi.Size()
	}

	pkg.Requires, err = requires(hdr)
	if err != nil {
		return nil, fmt.Errorf("reading requires of %q: %w", path, err)
	}

	files, err := hdr.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file list of %q: %w", path, err)
	}

	// Source packages are never evaluated, so skip unpacking them.
	if pkg.Source {
		for _, fi := range files {
			pkg.Files[fi.Name()] = File{Mode: unixMode(uint32(fi.Mode()))} // #nosec G115 - st_mode fits in 32 bits
		}
		return pkg, nil
	}

	root, err := os.MkdirTemp("", "shlint-rpm-")
	if err != nil {
		return nil, fmt.Errorf("mkdirtemp: %w", err)
	}
	pkg.onClose(func() error { return os.RemoveAll(root) })

	if err := rpm.ExpandPayload(root); err != nil {
		_ = pkg.Close()
		return nil, fmt.Errorf("expanding rpm payload of %q: %w", path, err)
	}
	pkg.Root = os.DirFS(root)

	for _, fi := range files {
		file := File{Mode: unixMode(uint32(fi.Mode()))} // #nosec G115 - st_mode fits in 32 bits
		if file.IsRegular() {
			file.Magic = elfinfo.Magic(pkg.Root, RootPath(fi.Name()))
		}
		pkg.Files[fi.Name()] = file
	}

	log.Debugf("loaded rpm %s-%s with %d files", pkg.Name, pkg.Version, len(pkg.Files))
	return pkg, nil
}

func requires(hdr *rpmutils.RpmHeader) ([]Dependency, error) {
	names := stringsTag(hdr, rpmutils.REQUIRENAME)
	flags := uint32sTag(hdr, rpmutils.REQUIREFLAGS)
	versions := stringsTag(hdr, rpmutils.REQUIREVERSION)

	if len(flags) != 0 && len(flags) != len(names) {
		return nil, fmt.Errorf("%d require flags for %d requires", len(flags), len(names))
	}
	if len(versions) != 0 && len(versions) != len(names) {
		return nil, fmt.Errorf("%d require versions for %d requires", len(versions), len(names))
	}

	deps := make([]Dependency, 0, len(names))
	for i, name := range names {
		dep := Dependency{Name: name}
		if len(flags) > 0 {
			dep.Flags = Sense(flags[i])
		}
		if len(versions) > 0 {
			dep.Version = versions[i]
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// stringTag returns a single string tag, or "" when it is absent.
func stringTag(hdr *rpmutils.RpmHeader, tag int) string {
	val, err := hdr.GetString(tag)
	if err != nil {
		return ""
	}
	return val
}

// stringsTag returns a string array tag with surrounding space trimmed.
func stringsTag(hdr *rpmutils.RpmHeader, tag int) []string {
	vals, err := hdr.GetStrings(tag)
	if err != nil {
		return nil
	}

	out := make([]string, len(vals))
	for i, s := range vals {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// uint32sTag returns an integer array tag of at most 32 bits per entry.
func uint32sTag(hdr *rpmutils.RpmHeader, tag int) []uint32 {
	vals, err := hdr.GetUint32s(tag)
	if err != nil {
		return nil
	}
	return vals
}

// Unix st_mode file type bits.
const (
	modeTypeMask = 0o170000
	modeSocket   = 0o140000
	modeSymlink  = 0o120000
	modeRegular  = 0o100000
	modeBlock    = 0o060000
	modeDir      = 0o040000
	modeChar     = 0o020000
	modeFIFO     = 0o010000

	modeSetuid = 0o4000
	modeSetgid = 0o2000
	modeSticky = 0o1000
)

// unixMode converts an RPM file mode, which is a raw st_mode, to fs.FileMode.
func unixMode(m uint32) fs.FileMode {
	mode := fs.FileMode(m & 0o777)

	switch m & modeTypeMask {
	case modeSocket:
		mode |= fs.ModeSocket
	case modeSymlink:
		mode |= fs.ModeSymlink
	case modeBlock:
		mode |= fs.ModeDevice
	case modeDir:
		mode |= fs.ModeDir
	case modeChar:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case modeFIFO:
		mode |= fs.ModeNamedPipe
	case modeRegular:
	default:
		mode |= fs.ModeIrregular
	}

	if m&modeSetuid != 0 {
		mode |= fs.ModeSetuid
	}
	if m&modeSetgid != 0 {
		mode |= fs.ModeSetgid
	}
	if m&modeSticky != 0 {
		mode |= fs.ModeSticky
	}

	return mode
}
