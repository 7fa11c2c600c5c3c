package translation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

const cacheBucketName = "translations"

// BoltCache remembers successful translations in a BoltDB file so repeated
// item names are not sent to the provider again. Failures are not cached.
type BoltCache struct {
	db   *bbolt.DB
	next Translator
}

// NewBoltCache opens (or creates) the cache file in front of next
func NewBoltCache(path string, next Translator) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening translation cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cacheBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltCache{db: db, next: next}, nil
}

func cacheKey(text, source, target string) []byte {
	return []byte(source + ":" + target + ":" + text)
}

// Translate returns the cached translation or asks the wrapped translator
func (c *BoltCache) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := cacheKey(text, source, target)

	var cached string
	err := c.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(cacheBucketName)).Get(key); v != nil {
			cached = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reading translation cache: %w", err)
	}
	if cached != "" {
		return cached, nil
	}

	translated, err := c.next.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	if translated == "" {
		return translated, nil
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(cacheBucketName)).Put(key, []byte(translated))
	})
	if err != nil {
		// The translation is still good, only the cache write failed
		slog.Warn("Failed to cache translation", "text", text, "error", err)
	}
	return translated, nil
}

// Close closes the cache file
func (c *BoltCache) Close() error {
	return c.db.Close()
}
