// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mkerring/carbonlog/internal/record"
)

// memRecordStore implements record.Store in memory with injectable
// failures for exercising error paths.
type memRecordStore struct {
	mu         sync.Mutex
	activities map[string]record.Activity

	listAllErr   error
	listSinceErr error
	listIDsErr   error
	existsErr    error
	deleteAllErr error

	// Per-record insert failures by activity id
	failInsertIDs map[string]bool

	existsCalls  int
	listIDsCalls int
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{
		activities:    make(map[string]record.Activity),
		failInsertIDs: make(map[string]bool),
	}
}

func (m *memRecordStore) sortedActivities() []record.Activity {
	out := make([]record.Activity, 0, len(m.activities))
	for _, a := range m.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoggedAt.Equal(out[j].LoggedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].LoggedAt.Before(out[j].LoggedAt)
	})
	return out
}

func (m *memRecordStore) ListAll(_ context.Context) ([]record.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listAllErr != nil {
		return nil, m.listAllErr
	}
	return m.sortedActivities(), nil
}

func (m *memRecordStore) ListSince(_ context.Context, t time.Time) ([]record.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listSinceErr != nil {
		return nil, m.listSinceErr
	}
	var out []record.Activity
	for _, a := range m.sortedActivities() {
		if a.LoggedAt.After(t) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRecordStore) ListIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listIDsCalls++
	if m.listIDsErr != nil {
		return nil, m.listIDsErr
	}
	ids := make([]string, 0, len(m.activities))
	for id := range m.activities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memRecordStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls++
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.activities[id]
	return ok, nil
}

func (m *memRecordStore) Insert(_ context.Context, a record.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertIDs[a.ID] {
		return fmt.Errorf("simulated insert failure for %s", a.ID)
	}
	if _, ok := m.activities[a.ID]; ok {
		return fmt.Errorf("activity %s already exists", a.ID)
	}
	m.activities[a.ID] = a
	return nil
}

func (m *memRecordStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteAllErr != nil {
		return m.deleteAllErr
	}
	m.activities = make(map[string]record.Activity)
	return nil
}

func (m *memRecordStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activities), nil
}

// remove drops one activity directly, bypassing the Store surface
func (m *memRecordStore) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.activities, id)
}

// memBlobStore implements blob.Store in memory
type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	writeErr  error
	readErr   error
	existsErr error
	deleteErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (m *memBlobStore) Write(_ context.Context, ref string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.blobs[ref] = buf
	return nil
}

func (m *memBlobStore) Read(_ context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", ref)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *memBlobStore) Exists(_ context.Context, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.blobs[ref]
	return ok, nil
}

func (m *memBlobStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.blobs[ref]; !ok {
		return fmt.Errorf("blob %s not found", ref)
	}
	delete(m.blobs, ref)
	return nil
}

func (m *memBlobStore) Size(_ context.Context, ref string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[ref]
	if !ok {
		return 0, fmt.Errorf("blob %s not found", ref)
	}
	return int64(len(data)), nil
}

// truncate corrupts a stored blob by dropping its trailing bytes
func (m *memBlobStore) truncate(ref string, drop int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := m.blobs[ref]
	if len(data) > drop {
		m.blobs[ref] = data[:len(data)-drop]
	}
}

func (m *memBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// memCatalog implements Catalog in memory. Entries are copied on the
// way in and out, matching the serialization boundary of the Badger
// implementation.
type memCatalog struct {
	mu      sync.Mutex
	entries map[string]*Metadata

	insertErr error
	updateErr error
	getErr    error
	listErr   error
	deleteErr error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{entries: make(map[string]*Metadata)}
}

func copyMetadata(meta *Metadata) *Metadata {
	out := *meta
	if meta.RestoredAt != nil {
		restoredAt := *meta.RestoredAt
		out.RestoredAt = &restoredAt
	}
	if meta.Metadata != nil {
		out.Metadata = make(map[string]string, len(meta.Metadata))
		for k, v := range meta.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

func (m *memCatalog) Insert(_ context.Context, meta *Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.entries[meta.ID]; ok {
		return fmt.Errorf("backup %s already cataloged", meta.ID)
	}
	m.entries[meta.ID] = copyMetadata(meta)
	return nil
}

func (m *memCatalog) Update(_ context.Context, meta *Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.entries[meta.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, meta.ID)
	}
	m.entries[meta.ID] = copyMetadata(meta)
	return nil
}

func (m *memCatalog) Get(_ context.Context, id string) (*Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	meta, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyMetadata(meta), nil
}

func (m *memCatalog) ListAll(_ context.Context) ([]*Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*Metadata, 0, len(m.entries))
	for _, meta := range m.entries {
		out = append(out, copyMetadata(meta))
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memCatalog) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.entries, id)
	return nil
}

func (m *memCatalog) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *memCatalog) Close() error { return nil }

// testEnv bundles a service with its in-memory collaborators
type testEnv struct {
	svc     *Service
	records *memRecordStore
	blobs   *memBlobStore
	catalog *memCatalog
}

// newTestEnv creates a service over fresh in-memory collaborators
func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	env := &testEnv{
		records: newMemRecordStore(),
		blobs:   newMemBlobStore(),
		catalog: newMemCatalog(),
	}

	svc, err := NewService(env.records, env.blobs, env.catalog, cfg)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	env.svc = svc
	return env
}

// testConfig returns a config with retention rules disabled, so tests
// exercising creation and restore are not affected by automatic pruning
func testConfig() Config {
	return Config{
		Compression:      true,
		CompressionLevel: -1,
		Retention:        RetentionPolicy{MaxAgeDays: 0, MaxCount: 0},
	}
}

// activityBase anchors fabricated activity timestamps
var activityBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testActivity fabricates one activity logged at the given offset from
// the base timestamp
func testActivity(id string, loggedOffset time.Duration) record.Activity {
	loggedAt := activityBase.Add(loggedOffset)
	return record.Activity{
		ID:          id,
		Category:    record.CategoryTransport,
		Description: "commute by train",
		CO2Kg:       1.8,
		OccurredAt:  loggedAt.Add(-30 * time.Minute),
		LoggedAt:    loggedAt,
	}
}

// activityAt fabricates one activity logged at an absolute time
func activityAt(id string, loggedAt time.Time) record.Activity {
	return record.Activity{
		ID:          id,
		Category:    record.CategoryEnergy,
		Description: "electricity usage",
		CO2Kg:       0.4,
		OccurredAt:  loggedAt,
		LoggedAt:    loggedAt,
	}
}

// seedActivities inserts n activities logged at one-minute intervals
func seedActivities(t *testing.T, store *memRecordStore, n int) []record.Activity {
	t.Helper()
	out := make([]record.Activity, 0, n)
	for i := 0; i < n; i++ {
		a := testActivity(fmt.Sprintf("act-%d", i), time.Duration(i)*time.Minute)
		if err := store.Insert(context.Background(), a); err != nil {
			t.Fatalf("failed to seed activity %s: %v", a.ID, err)
		}
		out = append(out, a)
	}
	return out
}

// catalogEntry fabricates a completed metadata row with a matching blob
func catalogEntry(t *testing.T, env *testEnv, id string, createdAt time.Time, backupType Type, parentID string) *Metadata {
	t.Helper()

	data := []byte("envelope for " + id)
	ref := "blob-" + id
	if err := env.blobs.Write(context.Background(), ref, data); err != nil {
		t.Fatalf("failed to write blob for %s: %v", id, err)
	}

	meta := &Metadata{
		ID:             id,
		Name:           id,
		Type:           backupType,
		Status:         StatusCompleted,
		CreatedAt:      createdAt.UTC(),
		RecordCount:    1,
		BlobRef:        ref,
		Checksum:       Fingerprint(data),
		SizeBytes:      int64(len(data)),
		ParentBackupID: parentID,
		FormatVersion:  FormatVersion,
	}
	if err := env.catalog.Insert(context.Background(), meta); err != nil {
		t.Fatalf("failed to insert catalog entry %s: %v", id, err)
	}
	return meta
}

// mustErrorIs fails the test unless err wraps the wanted sentinel
func mustErrorIs(t *testing.T, err, want error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected error wrapping %v, got %v", want, err)
	}
}

// setCreatedAt rewrites a cataloged backup's creation time. Chain
// cutoffs derive from catalog rows, so tests anchor them at known
// instants this way.
func setCreatedAt(t *testing.T, env *testEnv, id string, createdAt time.Time) {
	t.Helper()
	meta, err := env.catalog.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load backup %s: %v", id, err)
	}
	meta.CreatedAt = createdAt.UTC()
	if err := env.catalog.Update(context.Background(), meta); err != nil {
		t.Fatalf("failed to rewrite backup %s: %v", id, err)
	}
}

// decodeStoredEnvelope reads and decodes the blob behind a backup
func decodeStoredEnvelope(t *testing.T, env *testEnv, meta *Metadata) *Envelope {
	t.Helper()
	data, err := env.blobs.Read(context.Background(), meta.BlobRef)
	if err != nil {
		t.Fatalf("failed to read blob %s: %v", meta.BlobRef, err)
	}
	decoded, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("failed to decode blob %s: %v", meta.BlobRef, err)
	}
	return decoded
}

// envelopeRecordIDs returns the sorted record identity set of an envelope
func envelopeRecordIDs(env *Envelope) []string {
	ids := make([]string, 0, len(env.Records))
	for _, a := range env.Records {
		ids = append(ids, a.ID)
	}
	sort.Strings(ids)
	return ids
}

// mustSameIDs fails the test unless got matches want as a set
func mustSameIDs(t *testing.T, got, want []string) {
	t.Helper()
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	if len(g) != len(w) {
		t.Fatalf("got %d ids %v, want %d ids %v", len(g), g, len(w), w)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("id set %v, want %v", g, w)
		}
	}
}
