package student

import "time"

// Roster is the ordered list of students.
type Roster struct {
	students []Student
}

// NewRoster copies students into a new roster, preserving their order.
func NewRoster(students []Student) *Roster {
	r := &Roster{students: make([]Student, len(students))}
	copy(r.students, students)
	return r
}

// List returns a copy of the students in insertion order. It never returns nil.
func (r *Roster) List() []Student {
	out := make([]Student, len(r.students))
	copy(out, r.students)
	return out
}

func (r *Roster) Len() int {
	return len(r.students)
}

// Get looks a student up by id.
func (r *Roster) Get(id ID) (Student, bool) {
	if i := r.index(id); i >= 0 {
		return r.students[i], true
	}
	return Student{}, false
}

// Contains reports whether id belongs to the roster.
func (r *Roster) Contains(id ID) bool {
	return r.index(id) >= 0
}

// IDs returns the set of roster ids.
func (r *Roster) IDs() map[ID]struct{} {
	ids := make(map[ID]struct{}, len(r.students))
	for _, s := range r.students {
		ids[s.ID] = struct{}{}
	}
	return ids
}

// Add appends a student with a fresh id. A blank name is ignored.
func (r *Roster) Add(name string, now time.Time) (Student, bool) {
	name, ok := NormalizeName(name)
	if !ok {
		return Student{}, false
	}

	s := Student{ID: NextID(now, r.maxID()), Name: name}
	r.students = append(r.students, s)
	return s, true
}

// Rename replaces a student's name. Unknown ids and blank names are ignored.
func (r *Roster) Rename(id ID, name string) bool {
	name, ok := NormalizeName(name)
	if !ok {
		return false
	}
	i := r.index(id)
	if i < 0 {
		return false
	}
	if r.students[i].Name == name {
		return false
	}
	r.students[i].Name = name
	return true
}

// Remove deletes a student. The caller cascades the removal over the ledger.
func (r *Roster) Remove(id ID) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.students = append(r.students[:i], r.students[i+1:]...)
	return true
}

func (r *Roster) index(id ID) int {
	for i, s := range r.students {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *Roster) maxID() ID {
	var last ID
	for _, s := range r.students {
		if s.ID > last {
			last = s.ID
		}
	}
	return last
}
