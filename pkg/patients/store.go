// Package patients is the console's local patient register. The whole
// collection is serialized as one JSON array under a fixed key of a
// kvstore.Store and rewritten on every change.
package patients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eyecare-clinic/console/pkg/activity"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/kvstore"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
)

// StorageKey holds the serialized collection.
const StorageKey = "eyecare_patients"

var ErrCorruptCollection = errors.New("stored patient collection is unreadable")

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithRecorder(r activity.Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *Store) { s.metrics = c }
}

// Store serializes writers within the process. Another process writing the
// same key is not coordinated with; the last write wins.
type Store struct {
	kv       kvstore.Store
	mu       sync.Mutex
	now      func() time.Time
	newID    func() string
	recorder activity.Recorder
	metrics  *metrics.Collector
}

func NewStore(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID is a base36 millisecond timestamp followed by a base36 random suffix.
// It is unique in practice for one operator, nothing stronger.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strconv.FormatUint(rand.Uint64(), 36)
}

// All returns the collection in store order.
func (s *Store) All(ctx context.Context) ([]models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(ctx)
	s.metrics.ObserveStoreOp("list", err)
	return list, err
}

// Add assigns an id and creation time, appends the record and persists.
func (s *Store) Add(ctx context.Context, in models.NewPatient) (*models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		s.metrics.ObserveStoreOp("add", err)
		return nil, err
	}

	p := models.Patient{
		ID:        s.uniqueID(list),
		Name:      in.Name,
		Age:       in.Age,
		Phone:     in.Phone,
		Email:     in.Email,
		Problem:   in.Problem,
		Severity:  in.Severity,
		Status:    in.Status,
		DateAdded: s.now().UTC(),
		LastVisit: in.LastVisit,
		Notes:     in.Notes,
	}
	list = append(list, p)
	err = s.save(ctx, list)
	s.metrics.ObserveStoreOp("add", err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, models.EventPatientAdded, p)
	return &p, nil
}

// Update merges patch into the record with id. It returns nil, nil when no
// record matches.
func (s *Store) Update(ctx context.Context, id string, patch models.PatientPatch) (*models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		s.metrics.ObserveStoreOp("update", err)
		return nil, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		s.metrics.ObserveStoreOp("update", nil)
		return nil, nil
	}

	patch.Apply(&list[idx])
	err = s.save(ctx, list)
	s.metrics.ObserveStoreOp("update", err)
	if err != nil {
		return nil, err
	}

	updated := list[idx]
	s.record(ctx, models.EventPatientUpdated, updated)
	return &updated, nil
}

// Delete reports whether a record was removed. A miss leaves the stored
// collection untouched.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		s.metrics.ObserveStoreOp("delete", err)
		return false, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		s.metrics.ObserveStoreOp("delete", nil)
		return false, nil
	}

	removed := list[idx]
	list = append(list[:idx], list[idx+1:]...)
	err = s.save(ctx, list)
	s.metrics.ObserveStoreOp("delete", err)
	if err != nil {
		return false, err
	}

	s.record(ctx, models.EventPatientDeleted, removed)
	return true, nil
}

// Get returns nil, nil when no record matches.
func (s *Store) Get(ctx context.Context, id string) (*models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	s.metrics.ObserveStoreOp("get", err)
	if err != nil {
		return nil, err
	}
	if idx := indexOf(list, id); idx >= 0 {
		p := list[idx]
		return &p, nil
	}
	return nil, nil
}

func (s *Store) Search(ctx context.Context, query string) ([]models.Patient, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, query), nil
}

func (s *Store) Stats(ctx context.Context) (models.PatientStats, error) {
	all, err := s.All(ctx)
	if err != nil {
		return models.PatientStats{}, err
	}
	return Summarize(all), nil
}

// Matches is the search rule: a case-insensitive substring of the name, the
// problem or the email. The empty query matches everything.
func Matches(p models.Patient, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Problem), q) ||
		strings.Contains(strings.ToLower(p.Email), q)
}

// Filter keeps the matching patients in store order.
func Filter(list []models.Patient, query string) []models.Patient {
	out := make([]models.Patient, 0, len(list))
	for _, p := range list {
		if Matches(p, query) {
			out = append(out, p)
		}
	}
	return out
}

// Summarize counts the collection in a single pass.
func Summarize(list []models.Patient) models.PatientStats {
	stats := models.PatientStats{Total: len(list)}
	for _, p := range list {
		switch p.Status {
		case models.PatientStatusActive:
			stats.Active++
		case models.PatientStatusTreated:
			stats.Treated++
		case models.PatientStatusFollowUp:
			stats.FollowUp++
		}
		if p.Severity == models.SeverityCritical {
			stats.Critical++
		}
	}
	return stats
}

func (s *Store) load(ctx context.Context) ([]models.Patient, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("reading patients: %w", err)
	}
	if !ok || raw == "" {
		return []models.Patient{}, nil
	}
	var list []models.Patient
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCollection, err)
	}
	if list == nil {
		list = []models.Patient{}
	}
	return list, nil
}

func (s *Store) save(ctx context.Context, list []models.Patient) error {
	encoded, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding patients: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(encoded)); err != nil {
		return fmt.Errorf("writing patients: %w", err)
	}
	return nil
}

func (s *Store) uniqueID(list []models.Patient) string {
	for {
		id := s.newID()
		if indexOf(list, id) < 0 {
			return id
		}
	}
}

func (s *Store) record(ctx context.Context, kind string, p models.Patient) {
	if s.recorder == nil {
		return
	}
	data := map[string]interface{}{
		"id":       p.ID,
		"name":     p.Name,
		"severity": string(p.Severity),
		"status":   string(p.Status),
	}
	if err := s.recorder.Record(ctx, kind, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", kind).Warn("Failed to record patient activity")
	}
}

func indexOf(list []models.Patient, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
