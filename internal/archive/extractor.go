// Package archive unpacks downloaded toolchain and sketch archives.
package archive

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/progress"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data
)

var (
	// ErrInvalidArchive means the archive is missing, empty, corrupt or unsafe.
	ErrInvalidArchive = errors.New("invalid archive")
	// ErrUnsupportedFormat means the file extension matches no known archive type.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
)

// Extract unpacks src into dest and returns the number of entries written.
// dest is not cleared first.
func Extract(src, dest string, p progress.Reporter) (int, error) {
	if p == nil {
		p = progress.Nop{}
	}

	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return 0, fmt.Errorf("%w: %s is empty or missing", ErrInvalidArchive, src)
	}

	name := strings.ToLower(src)
	switch {
	case strings.HasSuffix(name, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(src, dest, p)
	case strings.HasSuffix(name, ".7z"):
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(src, dest, p)
	case strings.HasSuffix(name, ".tar"), strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"),
		strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tar.xz"):
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		return extractTar(src, dest, p)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
	}
}

// entryPath joins name onto dest and refuses names that climb out of it.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes %s", ErrInvalidArchive, name, dest)
	}
	return target, nil
}

// writeFile copies r into target, creating parent directories.
func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if mode.Perm() == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// extractZip extracts a .zip archive, reporting one step per entry.
func extractZip(src, dest string, p progress.Reporter) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, src, err)
	}
	defer r.Close()

	// Validate every name before writing anything.
	targets := make([]string, len(r.File))
	for i, f := range r.File {
		if targets[i], err = entryPath(dest, f.Name); err != nil {
			return 0, err
		}
	}

	p.Start(int64(len(r.File)), "Extracting")
	defer p.Finish()
	for i, f := range r.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0755); err != nil {
				return i, err
			}
		} else {
			rc, err := f.Open()
			if err != nil {
				return i, fmt.Errorf("open %s in %s: %w", f.Name, src, err)
			}
			err = writeFile(targets[i], rc, f.Mode())
			rc.Close()
			if err != nil {
				return i, err
			}
		}
		p.Update(int64(i + 1))
	}
	logger.Info("[INFO] Extraction complete\n")
	return len(r.File), nil
}

// openTar opens src and layers the decompressor its extension asks for.
// The returned close func releases the file and any decompressor.
func openTar(src string) (*tar.Reader, func(), error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, nil, err
	}

	var reader io.Reader = f
	closeAll := func() { f.Close() }
	name := strings.ToLower(src)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, src, err)
		}
		closeAll = func() { gr.Close(); f.Close() }
		reader = gr
	case strings.HasSuffix(name, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(name, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, src, err)
		}
		reader = xzr
	}
	return tar.NewReader(reader), closeAll, nil
}

// scanTar walks every header once so bad names and corrupt streams are
// rejected before anything is written.
func scanTar(src, dest string) error {
	tr, closeTar, err := openTar(src)
	if err != nil {
		return err
	}
	defer closeTar()

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidArchive, src, err)
		}
		if _, err := entryPath(dest, hdr.Name); err != nil {
			return err
		}
	}
}

// extractTar handles tar and compressed tar variants. The entry count is
// unknown up front, so progress is reported without a total.
func extractTar(src, dest string, p progress.Reporter) (int, error) {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	if err := scanTar(src, dest); err != nil {
		return 0, err
	}

	tr, closeTar, err := openTar(src)
	if err != nil {
		return 0, err
	}
	defer closeTar()

	p.Start(-1, "Extracting")
	defer p.Finish()

	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, src, err)
		}

		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return count, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return count, err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return count, err
			}
		default:
			logger.Debug("[DEBUG] skipping %s (type %c)\n", hdr.Name, hdr.Typeflag)
			continue
		}
		count++
		p.Update(int64(count))
	}
	logger.Info("[INFO] Extraction complete\n")
	return count, nil
}

// extract7z handles .7z extraction using the sevenzip library.
func extract7z(src, dest string, p progress.Reporter) (int, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to open 7z archive %s: %v", ErrInvalidArchive, src, err)
	}
	defer r.Close()

	targets := make([]string, len(r.File))
	for i, f := range r.File {
		if targets[i], err = entryPath(dest, f.Name); err != nil {
			return 0, err
		}
	}

	p.Start(int64(len(r.File)), "Extracting")
	defer p.Finish()
	for i, f := range r.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0755); err != nil {
				return i, err
			}
		} else {
			rc, err := f.Open()
			if err != nil {
				return i, err
			}
			err = writeFile(targets[i], rc, f.Mode())
			rc.Close()
			if err != nil {
				return i, err
			}
		}
		p.Update(int64(i + 1))
	}
	logger.Info("[INFO] Extraction complete\n")
	return len(r.File), nil
}
