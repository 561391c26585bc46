package tracker

import (
	"context"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// Students returns the roster in insertion order.
func (s *Store) Students() []student.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.List()
}

// Student looks one student up.
func (s *Store) Student(id student.ID) (student.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Get(id)
}

// AddStudent appends a student named name. A blank name changes nothing and
// returns ok=false.
func (s *Store) AddStudent(ctx context.Context, name string) (student.Student, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added student.Student
	ok, err := s.mutate(ctx, "add_student", []string{SlotStudents}, func() bool {
		var changed bool
		added, changed = s.roster.Add(name, s.clock())
		return changed
	})
	if err != nil || !ok {
		return student.Student{}, false, err
	}

	s.log.Info("student added", logger.StudentID(int64(added.ID)))
	return added, true, nil
}

// RenameStudent changes a student's name. Unknown ids and blank names are
// ignored.
func (s *Store) RenameStudent(ctx context.Context, id student.ID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.mutate(ctx, "rename_student", []string{SlotStudents}, func() bool {
		return s.roster.Rename(id, name)
	})
	if ok {
		s.log.Info("student renamed", logger.StudentID(int64(id)))
	}
	return ok, err
}

// PromptRename asks p for a new name, pre-filled with the current one, and
// applies it. A dismissed prompt changes nothing.
func (s *Store) PromptRename(ctx context.Context, id student.ID, p Prompter) (bool, error) {
	current, ok := s.Student(id)
	if !ok {
		return false, nil
	}

	name, err := p.Prompt(ctx, QuestionRename, current.Name)
	if err != nil {
		if shared.IsCancelled(err) {
			return false, nil
		}
		return false, err
	}
	return s.RenameStudent(ctx, id, name)
}

// RemoveStudent deletes a student and every ledger entry they have, after c
// confirms. A declined or missing confirmation changes nothing.
func (s *Store) RemoveStudent(ctx context.Context, id student.ID, c Confirmer) (bool, error) {
	if _, ok := s.Student(id); !ok {
		return false, nil
	}
	if c == nil {
		return false, nil
	}

	confirmed, err := c.Confirm(ctx, QuestionRemove)
	if err != nil {
		if shared.IsCancelled(err) {
			return false, nil
		}
		return false, err
	}
	if !confirmed {
		s.log.Debug("removal declined", logger.StudentID(int64(id)))
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	ok, err := s.mutate(ctx, "remove_student", []string{SlotStudents, SlotDailyRecords}, func() bool {
		if !s.roster.Remove(id) {
			return false
		}
		removed = s.ledger.RemoveStudent(id)
		return true
	})
	if ok {
		s.log.Info("student removed", logger.StudentID(int64(id)), logger.Int("entries", removed))
	}
	return ok, err
}
