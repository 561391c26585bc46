// Package tracker owns the halaqa state: the roster and the attendance ledger.
//
// A Store is loaded once at startup and flushed to its Storage after every
// mutation. Mutations are serialised by a mutex, and a failed write rolls the
// in-memory state back so memory and storage never disagree.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PORTS
// ══════════════════════════════════════════════════════════════════════════════

// Slot names. They match the keys the browser tracker uses in localStorage.
const (
	SlotStudents     = "students"
	SlotDailyRecords = "dailyRecords"
)

// Storage persists named JSON slots.
type Storage interface {
	// Load returns the slot value, or an error matching shared.ErrNotFound
	// when the slot was never written.
	Load(ctx context.Context, slot string) ([]byte, error)

	// Save writes all given slots or none of them.
	Save(ctx context.Context, slots map[string][]byte) error
}

// StatsCache stores computed statistics under a state fingerprint.
type StatsCache interface {
	// Get returns an error matching shared.ErrNotFound on a miss.
	Get(ctx context.Context, fingerprint string) ([]attendance.StudentStats, error)
	Set(ctx context.Context, fingerprint string, stats []attendance.StudentStats) error
}

// Confirmer answers yes/no questions before destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// AlwaysConfirm approves every question. Used when the caller already asked.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Prompter asks for a line of text. A dismissed prompt returns an error
// matching shared.ErrCancelled.
type Prompter interface {
	Prompt(ctx context.Context, question, initial string) (string, error)
}

// Questions shown by the confirm and prompt collaborators.
const (
	QuestionRemove = "هل أنت متأكد من حذف هذا الطالب؟"
	QuestionRename = "أدخل الاسم الجديد:"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Options configures a Store.
type Options struct {
	Storage Storage
	// Cache is optional.
	Cache  StatsCache
	Logger *logger.Logger
	// Clock defaults to time.Now and drives student ids.
	Clock func() time.Time
	// Seed is the roster used when nothing is persisted. Defaults to
	// student.DefaultRoster.
	Seed []student.Student
}

// Store is the single owner of the roster and the ledger.
type Store struct {
	mu sync.Mutex

	storage Storage
	cache   StatsCache
	log     *logger.Logger
	clock   func() time.Time
	seed    []student.Student

	roster      *student.Roster
	ledger      attendance.Ledger
	fingerprint string

	stats    []attendance.StudentStats
	statsFor string
}

// New creates an empty store. Call Load before use.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = student.DefaultRoster()
	}
	return &Store{
		storage: opts.Storage,
		cache:   opts.Cache,
		log:     opts.Logger.With(logger.Component("store")),
		clock:   opts.Clock,
		seed:    opts.Seed,
		roster:  student.NewRoster(nil),
		ledger:  attendance.NewLedger(),
	}
}

// Load reads both slots. An empty students slot yields the seed roster; an
// empty records slot yields an empty ledger.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.loadSlot(ctx, SlotStudents)
	if err != nil {
		return err
	}
	records, err := s.loadSlot(ctx, SlotDailyRecords)
	if err != nil {
		return err
	}

	list, seeded, err := decodeRoster(students)
	if err != nil {
		return shared.WrapError("storage", "Load", shared.ErrInvalidFormat, "decode "+SlotStudents, err)
	}
	if seeded {
		list = s.seed
	}
	ledger, err := decodeLedger(records)
	if err != nil {
		return shared.WrapError("storage", "Load", shared.ErrInvalidFormat, "decode "+SlotDailyRecords, err)
	}

	s.roster = student.NewRoster(list)
	s.ledger = ledger
	if err := s.refreshFingerprint(); err != nil {
		return err
	}

	s.log.Info("state loaded",
		logger.Int("students", s.roster.Len()),
		logger.Int("dates", len(s.ledger)),
		logger.Bool("seeded", seeded),
	)
	return nil
}

func (s *Store) loadSlot(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.storage.Load(ctx, slot)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load slot %s: %w", slot, err)
	}
	return data, nil
}

// Save flushes both slots.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, SlotStudents, SlotDailyRecords)
}

// Import replaces the whole state with the given slot values, as exported by
// the browser tracker or by another store. Nil values reset that slot.
func (s *Store) Import(ctx context.Context, students, records []byte) error {
	list, seeded, err := decodeRoster(students)
	if err != nil {
		return shared.WrapError("storage", "Import", shared.ErrInvalidFormat, "decode "+SlotStudents, err)
	}
	if seeded {
		list = s.seed
	}
	ledger, err := decodeLedger(records)
	if err != nil {
		return shared.WrapError("storage", "Import", shared.ErrInvalidFormat, "decode "+SlotDailyRecords, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.mutate(ctx, "import", []string{SlotStudents, SlotDailyRecords}, func() bool {
		s.roster = student.NewRoster(list)
		s.ledger = ledger
		return true
	})
	if err == nil {
		s.log.Info("state imported", logger.Int("students", len(list)), logger.Int("dates", len(ledger)))
	}
	return err
}

// RestoreSlot puts value back into one slot and leaves the other untouched.
// value is a previous slot value, typically a storage backup.
func (s *Store) RestoreSlot(ctx context.Context, slot string, value []byte) error {
	var assign func()
	switch slot {
	case SlotStudents:
		list, seeded, err := decodeRoster(value)
		if err != nil {
			return shared.WrapError("storage", "Restore", shared.ErrInvalidFormat, "decode "+slot, err)
		}
		if seeded {
			list = s.seed
		}
		assign = func() { s.roster = student.NewRoster(list) }
	case SlotDailyRecords:
		ledger, err := decodeLedger(value)
		if err != nil {
			return shared.WrapError("storage", "Restore", shared.ErrInvalidFormat, "decode "+slot, err)
		}
		assign = func() { s.ledger = ledger }
	default:
		return shared.NewDomainError("storage", "Restore", shared.ErrInvalidInput, fmt.Sprintf("unknown slot %q", slot))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.mutate(ctx, "restore", []string{slot}, func() bool {
		assign()
		return true
	})
	if err == nil {
		s.log.Info("slot restored", logger.String("slot", slot))
	}
	return err
}

// Fingerprint identifies the current persisted state.
func (s *Store) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

// Snapshot returns copies of the roster and the ledger.
func (s *Store) Snapshot() ([]student.Student, attendance.Ledger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.List(), s.ledger.Clone()
}

// mutate runs fn and persists the given slots when fn reports a change. When
// the write fails the previous roster and ledger are restored. Callers hold mu.
func (s *Store) mutate(ctx context.Context, op string, slots []string, fn func() bool) (bool, error) {
	prevRoster := s.roster.List()
	prevLedger := s.ledger.Clone()

	if !fn() {
		return false, nil
	}

	if err := s.persist(ctx, slots...); err != nil {
		s.roster = student.NewRoster(prevRoster)
		s.ledger = prevLedger
		s.log.Error("persist failed, state rolled back", logger.Operation(op), logger.Err(err))
		return false, err
	}
	return true, nil
}

func (s *Store) persist(ctx context.Context, slots ...string) error {
	students, records, err := encodeState(s.roster.List(), s.ledger)
	if err != nil {
		return shared.WrapError("storage", "Save", shared.ErrStorage, "encode state", err)
	}

	values := make(map[string][]byte, len(slots))
	for _, slot := range slots {
		switch slot {
		case SlotStudents:
			values[slot] = students
		case SlotDailyRecords:
			values[slot] = records
		default:
			return fmt.Errorf("unknown slot %q", slot)
		}
	}

	if err := s.storage.Save(ctx, values); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return shared.WrapError("storage", "Save", shared.ErrStorage, "write slots", err)
	}

	s.fingerprint = fingerprint(students, records)
	return nil
}

func (s *Store) refreshFingerprint() error {
	students, records, err := encodeState(s.roster.List(), s.ledger)
	if err != nil {
		return shared.WrapError("storage", "Load", shared.ErrInvalidFormat, "encode state", err)
	}
	s.fingerprint = fingerprint(students, records)
	return nil
}
