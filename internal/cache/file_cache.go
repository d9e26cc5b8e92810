package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry wraps a cached value with a checksum so a corrupted or hand-edited
// file is treated as a miss instead of poisoning a run.
type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

// FileCache memoizes expensive batch computations (like the global value
// range scanned over every input raster) between runs, keyed by the inputs
// that produced them.
type FileCache[T any] struct {
	dir string
}

func NewFileCache[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir}
}

// Key hashes the identifying parameters into a stable cache key.
func (fc *FileCache[T]) Key(params ...interface{}) string {
	h := sha1.New()
	for _, p := range params {
		fmt.Fprintf(h, "%v_", p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T
	data, err := os.ReadFile(filepath.Join(fc.dir, key+".json"))
	if err != nil {
		return zero, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		return zero, false
	}
	if entry.Checksum != checksum(entry.Data) {
		return zero, false
	}
	return entry.Data, true
}

func (fc *FileCache[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %v", err)
	}

	entry := Entry[T]{Data: data, CreatedAt: time.Now(), Checksum: checksum(data)}
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %v", err)
	}

	cacheFile := filepath.Join(fc.dir, key+".json")
	tmpFile := cacheFile + ".tmp"
	if err := os.WriteFile(tmpFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %v", err)
	}
	if err := os.Rename(tmpFile, cacheFile); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp cache file: %v", err)
	}
	return nil
}

func checksum[T any](data T) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return hex.EncodeToString(hash[:])
}
