// Package registry implements the Strategy Registry: a small persisted map
// from host to the backend that last succeeded for it, so the Strategy
// Engine can try the backend most likely to work first.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

// Registry is a concurrency-safe, file-backed implementation of
// domain.StrategyRegistry. Reads never observe partial state; concurrent
// writes for the same host converge to one of the written values.
type Registry struct {
	mu       sync.RWMutex
	path     string
	prefs    map[domain.HostKey]domain.BackendID
	saveLock sync.Mutex
}

type fileEntry struct {
	Preferences map[string]int `json:"preferences"`
}

// New creates a registry backed by the JSON file at path, loading any
// existing preferences. A missing file is not an error: the registry
// simply starts empty.
func New(path string) (*Registry, error) {
	r := &Registry{
		path:  path,
		prefs: make(map[domain.HostKey]domain.BackendID),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	for host, id := range entry.Preferences {
		r.prefs[domain.HostKey(host)] = domain.BackendID(id)
	}

	return r, nil
}

// Preferred returns the learned backend for a host, if any.
func (r *Registry) Preferred(host domain.HostKey) (domain.BackendID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.prefs[host]
	return id, ok
}

// RecordSuccess records that backend succeeded for host, overwriting any
// previous preference, and persists the change to disk.
func (r *Registry) RecordSuccess(host domain.HostKey, backend domain.BackendID) error {
	r.mu.Lock()
	r.prefs[host] = backend
	snapshot := make(map[domain.HostKey]domain.BackendID, len(r.prefs))
	for k, v := range r.prefs {
		snapshot[k] = v
	}
	r.mu.Unlock()

	return r.persist(snapshot)
}

// persist writes the registry to disk atomically: write to a temp file in
// the same directory, then rename over the target. A concurrent writer
// racing on the same host converges on whichever rename lands last.
func (r *Registry) persist(snapshot map[domain.HostKey]domain.BackendID) error {
	r.saveLock.Lock()
	defer r.saveLock.Unlock()

	entry := fileEntry{Preferences: make(map[string]int, len(snapshot))}
	for k, v := range snapshot {
		entry.Preferences[string(k)] = int(v)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".registry-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}
