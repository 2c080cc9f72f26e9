package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyDirContents recursively copies the files and directories below src
// into dst.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			// os.ModePerm is narrowed by the umask.
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(p, dstPath); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", p, dstPath, err)
		}
		return nil
	})
}

// copyFile copies srcFile to dstFile, keeping its permission bits.
func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	srcInfo, err := srcF.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", srcFile, err)
	}

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", filepath.Dir(dstFile), err)
	}

	dstF, err := os.OpenFile(dstFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}

	if _, err := io.Copy(dstF, srcF); err != nil {
		dstF.Close()
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	return dstF.Close()
}
