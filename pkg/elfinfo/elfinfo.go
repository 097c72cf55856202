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

// Package elfinfo reads the dynamic linking metadata of ELF objects shipped in
// a package.
package elfinfo

import (
	"bytes"
	"context"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

var ElfMagic = []byte{'\x7f', 'E', 'L', 'F'}

// ErrNotELF is returned when a file does not start with the ELF magic header.
var ErrNotELF = errors.New("not an ELF file")

// Info is the dynamic section data of one ELF object.
type Info struct {
	// SONAME is empty when the object does not set DT_SONAME.
	SONAME string
	// Needed lists the DT_NEEDED entries.
	Needed []string
}

// Provider inspects a file inside a package filesystem.
type Provider interface {
	Inspect(ctx context.Context, fsys fs.FS, path string) (*Info, error)
}

// ELF implements Provider with debug/elf.
type ELF struct{}

// NewProvider returns the debug/elf backed Provider.
func NewProvider() *ELF {
	return &ELF{}
}

func openELF(fsys fs.FS, path string) (*elf.File, io.Closer, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening file: %w", err)
	}

	// Both os.DirFS and go-apk return a file that implements ReaderAt.
	readerAt, ok := f.(io.ReaderAt)
	if !ok {
		f.Close()
		return nil, nil, fmt.Errorf("fs.File does not impl ReaderAt: %T", f)
	}

	hdr := make([]byte, len(ElfMagic))
	if _, err := readerAt.ReadAt(hdr, 0); err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrNotELF
		}
		return nil, nil, fmt.Errorf("failed to read %d bytes for magic ELF header: %w", len(ElfMagic), err)
	}

	if !bytes.Equal(ElfMagic, hdr) {
		f.Close()
		return nil, nil, ErrNotELF
	}

	ef, err := elf.NewFile(readerAt)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("could not open file %q as ELF: %w", path, err)
	}

	return ef, f, nil
}

// Inspect returns the SONAME and NEEDED entries of the ELF object at path.
func (*ELF) Inspect(ctx context.Context, fsys fs.FS, path string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ef, closer, err := openELF(fsys, path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	defer ef.Close()

	info := &Info{}

	// most likely SONAME is not set on this object
	if sonames, err := ef.DynString(elf.DT_SONAME); err == nil && len(sonames) > 0 {
		info.SONAME = sonames[0]
	}

	libs, err := ef.ImportedLibraries()
	if err != nil {
		return nil, fmt.Errorf("reading DT_NEEDED of %q: %w", path, err)
	}
	info.Needed = libs

	return info, nil
}

// Magic returns a file(1) style description for ELF objects, such as
// "ELF 64-bit LSB shared object, x86_64", and the empty string for anything
// else.
func Magic(fsys fs.FS, path string) string {
	ef, closer, err := openELF(fsys, path)
	if err != nil {
		return ""
	}
	defer closer.Close()
	defer ef.Close()

	return Describe(ef.FileHeader)
}

// Describe renders an ELF header the way file(1) starts its output.
func Describe(h elf.FileHeader) string {
	class := "32-bit"
	if h.Class == elf.ELFCLASS64 {
		class = "64-bit"
	}

	order := "LSB"
	if h.Data == elf.ELFDATA2MSB {
		order = "MSB"
	}

	var kind string
	switch h.Type {
	case elf.ET_DYN:
		kind = "shared object"
	case elf.ET_EXEC:
		kind = "executable"
	case elf.ET_REL:
		kind = "relocatable"
	case elf.ET_CORE:
		kind = "core file"
	default:
		kind = "unknown type"
	}

	machine := strings.ToLower(strings.TrimPrefix(h.Machine.String(), "EM_"))

	return fmt.Sprintf("ELF %s %s %s, %s", class, order, kind, machine)
}
