// Package store implements the Resource Store: an append-only,
// URL-indexed content cache backed by an embedded BadgerDB instance. Every
// write creates a new CachedResource; nothing is ever overwritten in place,
// so find_by_url can always return the full history for a URL ordered
// newest first.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

const (
	resourcePrefix = "res:"
	indexPrefix    = "idx:"
	sequenceKey    = "seq:resource"
	sequenceLease  = 100
)

// Store is a BadgerDB-backed domain.ResourceStore. Reads and writes are
// safe for concurrent use: Badger serializes updates internally and a
// read transaction always observes a consistent point-in-time snapshot.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
	enc *zstd.Encoder
	dec *zstd.Decoder
}

var _ domain.ResourceStore = (*Store)(nil)

// Options configures a Store.
type Options struct {
	Directory string
	InMemory  bool
}

// Open opens (or creates) a Badger-backed Resource Store at opts.Directory.
func Open(opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			return nil, fmt.Errorf("store: directory required when not in-memory")
		}
		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
		badgerOpts = badger.DefaultOptions(opts.Directory)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), sequenceLease)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: get sequence: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = seq.Release()
		_ = db.Close()
		return nil, fmt.Errorf("store: new zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = seq.Release()
		_ = db.Close()
		return nil, fmt.Errorf("store: new zstd decoder: %w", err)
	}

	return &Store{db: db, seq: seq, enc: enc, dec: dec}, nil
}

// Close releases the underlying database and sequence lease.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	if err := s.seq.Release(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}

// record is the on-disk encoding of a CachedResource. Text is stored
// zstd-compressed to keep large pages cheap to retain.
type record struct {
	URI            string                  `json:"uri"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	MimeType       string                  `json:"mime_type"`
	CompressedText []byte                  `json:"text_zstd"`
	Metadata       domain.ResourceMetadata `json:"metadata"`
}

// Write persists a new resource version for url and returns its opaque
// URI. The write is atomic: the resource record and its URL index entry
// land in a single Badger transaction, so a reader never observes one
// without the other.
func (s *Store) Write(ctx context.Context, url, text string, metadata domain.ResourceMetadata) (string, error) {
	next, err := s.seq.Next()
	if err != nil {
		return "", &domain.StoreError{Op: "write", Fatal: false, Err: err}
	}

	uri := fmt.Sprintf("resource:%020d", next)
	rec := record{
		URI:            uri,
		Name:           url,
		Description:    fmt.Sprintf("Scraped content from %s (backend: %s)", url, metadata.Backend),
		MimeType:       "text/plain",
		CompressedText: s.enc.EncodeAll([]byte(text), nil),
		Metadata:       metadata,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", &domain.StoreError{Op: "write", Fatal: false, Err: err}
	}

	indexKey := []byte(indexPrefix + urlHash(url) + ":" + invertedSeq(next))

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(resourcePrefix+uri), data); err != nil {
			return err
		}
		return txn.Set(indexKey, []byte(uri))
	})
	if err != nil {
		return "", &domain.StoreError{Op: "write", Fatal: false, Err: err}
	}

	return uri, nil
}

// Read resolves uri back to its CachedResource.
func (s *Store) Read(ctx context.Context, uri string) (domain.CachedResource, error) {
	rec, err := s.readRecord(uri)
	if err != nil {
		return domain.CachedResource{}, &domain.StoreError{Op: "read", Fatal: true, Err: err}
	}
	return s.toCachedResource(rec)
}

func (s *Store) readRecord(uri string) (record, error) {
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resourcePrefix + uri))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

func (s *Store) toCachedResource(rec record) (domain.CachedResource, error) {
	text, err := s.dec.DecodeAll(rec.CompressedText, nil)
	if err != nil {
		return domain.CachedResource{}, err
	}
	return domain.CachedResource{
		URI:         rec.URI,
		Name:        rec.Name,
		Description: rec.Description,
		MimeType:    rec.MimeType,
		Text:        string(text),
		Metadata:    rec.Metadata,
	}, nil
}

// FindByURL returns every cached resource for url, newest first: the
// monotonic sequence used as the index key's suffix guarantees a strict,
// tie-free ordering even for writes within the same nanosecond.
func (s *Store) FindByURL(ctx context.Context, url string) ([]domain.CachedResource, error) {
	prefix := []byte(indexPrefix + urlHash(url) + ":")

	var uris []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			uris = append(uris, string(val))
		}
		return nil
	})
	if err != nil {
		return nil, &domain.StoreError{Op: "find_by_url", Fatal: true, Err: err}
	}

	resources := make([]domain.CachedResource, 0, len(uris))
	for _, uri := range uris {
		rec, err := s.readRecord(uri)
		if err != nil {
			continue
		}
		cr, err := s.toCachedResource(rec)
		if err != nil {
			continue
		}
		resources = append(resources, cr)
	}
	return resources, nil
}

// invertedSeq encodes seq so that ascending key (lexicographic) order
// yields descending sequence order: Badger's iterator walks keys
// ascending, and find_by_url needs newest-first.
func invertedSeq(seq uint64) string {
	return fmt.Sprintf("%020d", math.MaxUint64-seq)
}
