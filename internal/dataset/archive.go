package dataset

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang-export-scraper/pkg/errors"
)

// Archive zips every regular file under root into w. Entry names are
// prefixed with the root's base name ("dataset/SAU/items.csv"). A file at
// skip, typically the archive being written inside root, is left out.
func Archive(root string, w io.Writer, skip string) error {
	skipAbs := ""
	if skip != "" {
		if abs, err := filepath.Abs(skip); err == nil {
			skipAbs = abs
		}
	}

	zw := zip.NewWriter(w)
	base := filepath.Base(filepath.Clean(root))

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if skipAbs != "" {
			if abs, err := filepath.Abs(path); err == nil && abs == skipAbs {
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(filepath.Join(base, rel)))
	})
	if err != nil {
		zw.Close()
		return errors.FileError(errors.CodeDirectoryError, root, err)
	}

	if err := zw.Close(); err != nil {
		return errors.FileError(errors.CodeWriteFailed, root, err)
	}
	return nil
}

// ArchiveToFile zips root into the file at output
func ArchiveToFile(root, output string) error {
	f, err := os.Create(output)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, output, err)
	}
	defer f.Close()

	if err := Archive(root, f, output); err != nil {
		return err
	}
	return f.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}
