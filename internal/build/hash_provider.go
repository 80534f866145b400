package build

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 content digest.
type Digest [32]byte

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// HashBytes returns the digest of data.
func HashBytes(data []byte) Digest {
	return blake3.Sum256(data)
}

// HashProvider computes file digests and remembers the digest last written
// to each output path, so unchanged assets are not rewritten. File digests
// are cached by path, modification time and size; a cache hit needs no read.
type HashProvider struct {
	// metadata maps "path:mtime:size" to a digest computed earlier.
	metadata map[string]Digest
	// written maps an output path to the digest of its last write.
	written map[string]Digest
	mu      sync.RWMutex
}

// NewHashProvider creates an empty hash provider.
func NewHashProvider() *HashProvider {
	return &HashProvider{
		metadata: make(map[string]Digest),
		written:  make(map[string]Digest),
	}
}

// FileDigest returns the digest of the file at path.
func (hp *HashProvider) FileDigest(path string) (Digest, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Digest{}, err
	}
	metadataKey := fmt.Sprintf("%s:%d:%d", path, stat.ModTime().UnixNano(), stat.Size())

	hp.mu.RLock()
	digest, found := hp.metadata[metadataKey]
	hp.mu.RUnlock()
	if found {
		return digest, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	copy(digest[:], hasher.Sum(nil))

	hp.mu.Lock()
	hp.metadata[metadataKey] = digest
	hp.mu.Unlock()

	return digest, nil
}

// Unchanged reports whether dest was last written with content of the given
// digest and still exists.
func (hp *HashProvider) Unchanged(dest string, digest Digest) bool {
	hp.mu.RLock()
	last, ok := hp.written[dest]
	hp.mu.RUnlock()
	if !ok || last != digest {
		return false
	}
	_, err := os.Stat(dest)
	return err == nil
}

// Record notes that dest now holds content with the given digest.
func (hp *HashProvider) Record(dest string, digest Digest) {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	hp.written[dest] = digest
}

// Forget drops what is known about dest.
func (hp *HashProvider) Forget(dest string) {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	delete(hp.written, dest)
}

// Clear drops every cached digest.
func (hp *HashProvider) Clear() {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	hp.metadata = make(map[string]Digest)
	hp.written = make(map[string]Digest)
}
