// Package mediakey generates collision-resistant storage keys for uploaded
// media while preserving the original file extension.
package mediakey

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxExtLength = 10

// Generator defines the interface for media key generation strategies
type Generator interface {
	// GenerateKey creates a storage key for a file owned by an entity of the
	// given kind. ext is the sanitized extension including the dot, or "".
	GenerateKey(kind string, ext string) string
}

// TimestampGenerator names files after the current time in milliseconds,
// like "1697552301123.jpg". Keys are strictly increasing within a process:
// two uploads in the same millisecond get consecutive numbers.
type TimestampGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{now: time.Now}
}

func (g *TimestampGenerator) GenerateKey(kind string, ext string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return fmt.Sprintf("%d%s", n, ext)
}

// ShardedGenerator provides Git-style sharded keys grouped by entity kind
// Structure: {kind}/ab/cd1234ef5678.jpg
// Keys are random, so several processes can share one bucket.
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(kind string, ext string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")

	shard := g.ShardLength
	if shard <= 0 || shard >= len(id) {
		shard = 2
	}

	prefix := "media"
	if kind != "" {
		prefix = sanitizePathComponent(kind)
	}
	return fmt.Sprintf("%s/%s/%s%s", prefix, id[:shard], id[shard:], ext)
}

// New returns the generator for a strategy name: "timestamp" (default) or
// "sharded".
func New(strategy string) (Generator, error) {
	switch strings.ToLower(strategy) {
	case "", "timestamp":
		return NewTimestampGenerator(), nil
	case "sharded":
		return NewShardedGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported media key strategy: %s", strategy)
	}
}

// Ext returns the lower-cased extension of filename including the dot.
// Extensions that are too long or contain anything but letters and digits
// are dropped.
func Ext(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > maxExtLength {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func sanitizePathComponent(component string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
		".", "_",
	)
	return strings.ToLower(replacer.Replace(component))
}
