// Package fingerprint computes stable content fingerprints over a recipe's
// declared inputs. A fingerprint summarizes everything that may legitimately
// change between runs (contract sources, built artifacts, account lists); two
// runs with equal fingerprints are interchangeable and the second is a no-op.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vk/chainrig/internal/fsutil"
)

// Source declares one input to a fingerprint. Exactly one of Value or Path
// is used: a literal value, or a file tree filtered by extension.
type Source struct {
	// Key is a stable label distinguishing this source from its siblings.
	Key string

	// Value is a literal input, hashed as-is.
	Value string

	// Path is a file or directory to hash by content. A missing path hashes
	// as empty, so a fingerprint changes when inputs appear or disappear.
	Path string

	// Ext filters directory walks to files with this extension, e.g. ".rs".
	// Ignored when Path names a regular file.
	Ext string
}

// Compute hashes the sources into a hex digest. Directory walks are sorted so
// the digest is independent of filesystem iteration order.
func Compute(sources []Source) (string, error) {
	h := sha256.New()
	for _, src := range sources {
		fmt.Fprintf(h, "source:%s\n", src.Key)
		if src.Path == "" {
			fmt.Fprintf(h, "literal:%s\n", src.Value)
			continue
		}
		if err := hashPath(h, src.Path, src.Ext); err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", src.Path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashPath(h io.Writer, path, ext string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(h, "absent:%s\n", path)
			return nil
		}
		return err
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ext)
		if err != nil {
			return err
		}
		sort.Strings(files)
	}

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		fmt.Fprintf(h, "file:%s\n", file)
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
