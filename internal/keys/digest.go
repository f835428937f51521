package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Sha256Hex is the digest emitted for a key: lower-case hex SHA-256.
func Sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Extract hashes the key file keyPath inside the mount at root. keyPath is
// resolved as if root were "/", so ".." and symlinks cannot leave the mount.
func Extract(root, keyPath string) (string, error) {
	p, err := securejoin.SecureJoin(root, keyPath)
	if err != nil {
		return "", fmt.Errorf("resolve key %q under %s: %w", keyPath, root, err)
	}
	return FileDigest(p)
}

// FileDigest hashes the whole file at path. A file that yields fewer bytes
// than its size is reported as io.ErrUnexpectedEOF.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", err
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("%s: not a regular file", path)
	}

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if n < fi.Size() {
		return "", fmt.Errorf("read %s: %d of %d bytes: %w", path, n, fi.Size(), io.ErrUnexpectedEOF)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
