package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/internal/models"
	"github.com/noah-isme/starcoin-api/pkg/kv"
)

// Collection names, appended to the key prefix to form storage keys.
const (
	CollectionStudents     = "students"
	CollectionPrizes       = "prizes"
	CollectionClasses      = "classes"
	CollectionLessonPlans  = "lesson_plans"
	CollectionPrintHistory = "print_history"

	backupKey     = "backup"
	lastBackupKey = "last_backup"
)

// ErrInvalidSnapshot is returned when an imported data set lacks its version or export date.
var ErrInvalidSnapshot = errors.New("snapshot requires version and exportDate")

// ErrNoBackup is returned by RestoreLastSnapshot when no automatic snapshot exists.
var ErrNoBackup = errors.New("no automatic snapshot stored")

// SnapshotObserver is notified about automatic snapshot writes.
type SnapshotObserver interface {
	ObserveSnapshot(kind string, err error)
}

// CollectionRepository stores each collection as one JSON document in a
// key/value store and maintains the periodic automatic snapshot.
type CollectionRepository struct {
	store          kv.Store
	prefix         string
	backupInterval time.Duration
	now            func() time.Time
	logger         *zap.Logger
	observer       SnapshotObserver

	mu sync.Mutex
}

// CollectionRepositoryOption customises a CollectionRepository.
type CollectionRepositoryOption func(*CollectionRepository)

// WithClock overrides the wall clock used for snapshot timestamps.
func WithClock(now func() time.Time) CollectionRepositoryOption {
	return func(r *CollectionRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSnapshotObserver reports automatic snapshot writes to observer.
func WithSnapshotObserver(observer SnapshotObserver) CollectionRepositoryOption {
	return func(r *CollectionRepository) {
		r.observer = observer
	}
}

// NewCollectionRepository constructs the repository. A non-positive backup
// interval refreshes the automatic snapshot after every save.
func NewCollectionRepository(store kv.Store, prefix string, backupInterval time.Duration, logger *zap.Logger, opts ...CollectionRepositoryOption) *CollectionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &CollectionRepository{
		store:          store,
		prefix:         prefix,
		backupInterval: backupInterval,
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Exclusive runs fn while holding the repository lock so read-modify-write
// sequences of concurrent requests do not interleave. fn must not call
// Exclusive again.
func (r *CollectionRepository) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (r *CollectionRepository) key(name string) string {
	return r.prefix + name
}

// LoadStudents returns the stored students or an empty list.
func (r *CollectionRepository) LoadStudents(ctx context.Context) ([]models.Student, error) {
	return loadCollection(ctx, r, CollectionStudents, func() []models.Student { return []models.Student{} })
}

// LoadPrizes returns the stored prizes or the default catalog when none are stored.
func (r *CollectionRepository) LoadPrizes(ctx context.Context) ([]models.Prize, error) {
	prizes, err := loadCollection(ctx, r, CollectionPrizes, models.DefaultPrizes)
	if len(prizes) == 0 {
		prizes = models.DefaultPrizes()
	}
	return prizes, err
}

// LoadClasses returns the stored classes or an empty list.
func (r *CollectionRepository) LoadClasses(ctx context.Context) ([]models.Class, error) {
	return loadCollection(ctx, r, CollectionClasses, func() []models.Class { return []models.Class{} })
}

// LoadLessonPlans returns the stored lesson plans or an empty list.
func (r *CollectionRepository) LoadLessonPlans(ctx context.Context) ([]models.LessonPlan, error) {
	return loadCollection(ctx, r, CollectionLessonPlans, func() []models.LessonPlan { return []models.LessonPlan{} })
}

// LoadPrintHistory returns the coin print history or an empty list.
func (r *CollectionRepository) LoadPrintHistory(ctx context.Context) ([]models.PrintRecord, error) {
	return loadCollection(ctx, r, CollectionPrintHistory, func() []models.PrintRecord { return []models.PrintRecord{} })
}

// LoadAll loads the four core collections.
func (r *CollectionRepository) LoadAll(ctx context.Context) (models.Collections, error) {
	var (
		c   models.Collections
		err error
	)
	if c.Students, err = r.LoadStudents(ctx); err != nil {
		return c, err
	}
	if c.Prizes, err = r.LoadPrizes(ctx); err != nil {
		return c, err
	}
	if c.Classes, err = r.LoadClasses(ctx); err != nil {
		return c, err
	}
	if c.LessonPlans, err = r.LoadLessonPlans(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// SaveStudents replaces the stored students.
func (r *CollectionRepository) SaveStudents(ctx context.Context, students []models.Student) error {
	return r.Commit(ctx, models.Collections{Students: nonNil(students)})
}

// SavePrizes replaces the stored prizes.
func (r *CollectionRepository) SavePrizes(ctx context.Context, prizes []models.Prize) error {
	return r.Commit(ctx, models.Collections{Prizes: nonNil(prizes)})
}

// SaveClasses replaces the stored classes.
func (r *CollectionRepository) SaveClasses(ctx context.Context, classes []models.Class) error {
	return r.Commit(ctx, models.Collections{Classes: nonNil(classes)})
}

// SaveLessonPlans replaces the stored lesson plans.
func (r *CollectionRepository) SaveLessonPlans(ctx context.Context, plans []models.LessonPlan) error {
	return r.Commit(ctx, models.Collections{LessonPlans: nonNil(plans)})
}

// SavePrintHistory replaces the coin print history. The print history is not
// part of exported snapshots.
func (r *CollectionRepository) SavePrintHistory(ctx context.Context, records []models.PrintRecord) error {
	payload, err := json.Marshal(nonNil(records))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", CollectionPrintHistory, err)
	}
	return r.set(ctx, r.key(CollectionPrintHistory), payload)
}

// Commit writes every non-nil collection of c. When a write fails, the
// collections already written by this call are put back to their previous
// contents. A successful commit refreshes the automatic snapshot when due.
func (r *CollectionRepository) Commit(ctx context.Context, c models.Collections) error {
	if err := r.write(ctx, c); err != nil {
		return err
	}
	r.refreshBackup(ctx)
	return nil
}

type pendingWrite struct {
	name    string
	payload []byte
}

type previousValue struct {
	key     string
	payload []byte
	exists  bool
}

func (r *CollectionRepository) write(ctx context.Context, c models.Collections) error {
	var writes []pendingWrite
	add := func(name string, value interface{}, present bool) error {
		if !present {
			return nil
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		writes = append(writes, pendingWrite{name: name, payload: payload})
		return nil
	}

	if err := add(CollectionStudents, c.Students, c.Students != nil); err != nil {
		return err
	}
	if err := add(CollectionPrizes, c.Prizes, c.Prizes != nil); err != nil {
		return err
	}
	if err := add(CollectionClasses, c.Classes, c.Classes != nil); err != nil {
		return err
	}
	if err := add(CollectionLessonPlans, c.LessonPlans, c.LessonPlans != nil); err != nil {
		return err
	}

	var written []previousValue

	for _, w := range writes {
		key := r.key(w.name)
		prev := previousValue{key: key}
		if len(writes) > 1 {
			raw, err := r.store.Get(ctx, key)
			switch {
			case err == nil:
				prev.payload, prev.exists = raw, true
			case !errors.Is(err, kv.ErrNotFound):
				r.rollback(ctx, written)
				return fmt.Errorf("read %s before write: %w", w.name, err)
			}
		}

		if err := r.set(ctx, key, w.payload); err != nil {
			r.rollback(ctx, written)
			return err
		}
		written = append(written, prev)
	}
	return nil
}

func (r *CollectionRepository) rollback(ctx context.Context, written []previousValue) {
	for i := len(written) - 1; i >= 0; i-- {
		prev := written[i]
		var err error
		if prev.exists {
			err = r.store.Set(ctx, prev.key, prev.payload)
		} else {
			err = r.store.Delete(ctx, prev.key)
		}
		if err != nil {
			r.logger.Error("rollback collection write", zap.String("key", prev.key), zap.Error(err))
		}
	}
}

// set writes one key, evicting the automatic snapshot and retrying once when
// the store reports its quota is exhausted.
func (r *CollectionRepository) set(ctx context.Context, key string, payload []byte) error {
	err := r.store.Set(ctx, key, payload)
	if errors.Is(err, kv.ErrQuotaExceeded) && key != r.key(backupKey) {
		r.logger.Warn("storage quota exceeded, evicting automatic snapshot", zap.String("key", key))
		if delErr := r.store.Delete(ctx, r.key(backupKey)); delErr != nil {
			r.logger.Error("evict automatic snapshot", zap.Error(delErr))
		} else {
			err = r.store.Set(ctx, key, payload)
		}
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// refreshBackup stores a fresh automatic snapshot unless one was written
// within the backup interval. Failures are logged and never surface.
func (r *CollectionRepository) refreshBackup(ctx context.Context) {
	now := r.now()
	if last, ok := r.lastBackupAt(ctx); ok && r.backupInterval > 0 && now.Sub(last) < r.backupInterval {
		return
	}

	err := r.writeBackup(ctx, now)
	if r.observer != nil {
		r.observer.ObserveSnapshot("automatic", err)
	}
	if err != nil {
		r.logger.Warn("automatic snapshot failed", zap.Error(err))
		return
	}
	r.logger.Debug("automatic snapshot stored", zap.Time("at", now))
}

func (r *CollectionRepository) writeBackup(ctx context.Context, now time.Time) error {
	snapshot, err := r.snapshotAt(ctx, now)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.store.Set(ctx, r.key(backupKey), payload); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	if err := r.store.Set(ctx, r.key(lastBackupKey), []byte(stamp)); err != nil {
		return fmt.Errorf("write snapshot timestamp: %w", err)
	}
	return nil
}

func (r *CollectionRepository) lastBackupAt(ctx context.Context) (time.Time, bool) {
	raw, err := r.store.Get(ctx, r.key(lastBackupKey))
	if err != nil {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// ExportSnapshot bundles every collection with the format version and the
// current time.
func (r *CollectionRepository) ExportSnapshot(ctx context.Context) (models.Snapshot, error) {
	return r.snapshotAt(ctx, r.now())
}

func (r *CollectionRepository) snapshotAt(ctx context.Context, at time.Time) (models.Snapshot, error) {
	collections, err := r.LoadAll(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{
		Version:     models.SnapshotVersion,
		ExportDate:  at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Collections: collections,
	}, nil
}

// ImportSnapshot replaces every collection present in snapshot; absent
// collections are left untouched. Nothing is written when the snapshot is
// invalid, and a failed write rolls the earlier ones back.
func (r *CollectionRepository) ImportSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	if strings.TrimSpace(snapshot.Version) == "" || strings.TrimSpace(snapshot.ExportDate) == "" {
		return ErrInvalidSnapshot
	}
	if err := r.write(ctx, snapshot.Collections); err != nil {
		return err
	}
	r.refreshBackup(ctx)
	return nil
}

// RestoreLastSnapshot re-imports the automatic snapshot.
func (r *CollectionRepository) RestoreLastSnapshot(ctx context.Context) error {
	snapshot, ok, err := r.readBackup(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoBackup
	}
	return r.ImportSnapshot(ctx, snapshot)
}

// BackupInfo reports whether an automatic snapshot exists and when it was taken.
func (r *CollectionRepository) BackupInfo(ctx context.Context) (models.BackupInfo, error) {
	snapshot, ok, err := r.readBackup(ctx)
	if err != nil {
		return models.BackupInfo{}, err
	}
	if !ok {
		return models.BackupInfo{}, nil
	}
	return models.BackupInfo{Exists: true, Date: snapshot.ExportDate}, nil
}

func (r *CollectionRepository) readBackup(ctx context.Context) (models.Snapshot, bool, error) {
	raw, err := r.store.Get(ctx, r.key(backupKey))
	if errors.Is(err, kv.ErrNotFound) {
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot models.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		r.logger.Warn("stored snapshot is malformed", zap.Error(err))
		return models.Snapshot{}, false, nil
	}
	return snapshot, true, nil
}

// ClearAll removes the four core collections and the print history. The
// automatic snapshot is kept so the data can still be restored.
func (r *CollectionRepository) ClearAll(ctx context.Context) error {
	for _, name := range []string{CollectionStudents, CollectionPrizes, CollectionClasses, CollectionLessonPlans, CollectionPrintHistory} {
		if err := r.store.Delete(ctx, r.key(name)); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}

// Stats sums key and value sizes of every entry under the key prefix.
func (r *CollectionRepository) Stats(ctx context.Context) (models.StorageStats, error) {
	usage, err := kv.Measure(ctx, r.store, r.prefix)
	if err != nil {
		return models.StorageStats{Available: false}, fmt.Errorf("measure storage: %w", err)
	}
	return models.StorageStats{TotalSize: usage.Bytes, ItemsCount: usage.Items, Available: true}, nil
}

func loadCollection[T any](ctx context.Context, r *CollectionRepository, name string, fallback func() []T) ([]T, error) {
	raw, err := r.store.Get(ctx, r.key(name))
	if errors.Is(err, kv.ErrNotFound) {
		return fallback(), nil
	}
	if err != nil {
		return fallback(), fmt.Errorf("read %s: %w", name, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.Warn("stored collection is malformed, using fallback", zap.String("collection", name), zap.Error(err))
		return fallback(), nil
	}
	if items == nil {
		return fallback(), nil
	}
	return items, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
