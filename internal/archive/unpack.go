package archive

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	lzip "github.com/sorairolake/lzip-go"
	"github.com/ulikunitz/xz"
)

// Unpack extracts the archive at src into destDir, dispatching on src's
// file extension. Supported formats: .zip, .tar, .tar.gz/.tgz, .tar.xz,
// .tar.lz. Every extracted path is verified to stay within destDir,
// rejecting archives with ".." traversal entries or absolute paths.
func Unpack(src, destDir string) error {
	switch {
	case strings.HasSuffix(src, ".zip"):
		return unpackZip(src, destDir)
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		return unpackTarWith(src, destDir, func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	case strings.HasSuffix(src, ".tar.xz"):
		return unpackTarWith(src, destDir, func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		})
	case strings.HasSuffix(src, ".tar.lz"):
		return unpackTarWith(src, destDir, func(r io.Reader) (io.Reader, error) {
			return lzip.NewReader(r)
		})
	case strings.HasSuffix(src, ".tar"):
		return unpackTarWith(src, destDir, func(r io.Reader) (io.Reader, error) {
			return r, nil
		})
	default:
		return fmt.Errorf("unpack: unrecognized archive format: %s", src)
	}
}

func unpackZip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("unpack: open %s: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		if err := writeFile(target, rc, f.Mode()); err != nil {
			rc.Close()
			return err
		}
		rc.Close()
	}

	return nil
}

func unpackTarWith(src, destDir string, wrap func(io.Reader) (io.Reader, error)) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unpack: open %s: %w", src, err)
	}
	defer f.Close()

	decomp, err := wrap(f)
	if err != nil {
		return fmt.Errorf("unpack: %s: %w", src, err)
	}
	if closer, ok := decomp.(io.Closer); ok {
		defer closer.Close()
	}

	tr := tar.NewReader(decomp)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("unpack: %s: %w", src, err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}

// safeJoin joins dir and name, rejecting any result that escapes dir via
// ".." traversal or an absolute path embedded in name.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("unpack: archive entry has absolute path: %s", name)
	}

	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unpack: archive entry escapes destination: %s", name)
	}

	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, r)
	return err
}
