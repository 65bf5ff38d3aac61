// Package schedule holds a doctor's bookable time windows per date and
// arbitrates their capacity.
package schedule

import (
	"iter"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
)

type Slot struct {
	ID        uuid.UUID   `json:"id"`
	Window    Window      `json:"window"`
	Capacity  int         `json:"capacity"`
	Occupants []uuid.UUID `json:"occupants"`
}

func (s *Slot) Occupied() int {
	return len(s.Occupants)
}

func (s *Slot) Remaining() int {
	return s.Capacity - len(s.Occupants)
}

func (s *Slot) HasOccupant(patientID uuid.UUID) bool {
	return slices.Contains(s.Occupants, patientID)
}

func (s Slot) clone() Slot {
	s.Occupants = slices.Clone(s.Occupants)
	return s
}

// Availability is a slot with room left.
type Availability struct {
	SlotID    uuid.UUID `json:"slot_id"`
	Window    Window    `json:"window"`
	Remaining int       `json:"remaining"`
}

// Registry maps a date to its slots, kept sorted by start time. It is not
// safe for concurrent use; the owning doctor serialises access.
type Registry struct {
	days map[string][]*Slot
}

func NewRegistry() *Registry {
	return &Registry{days: make(map[string][]*Slot)}
}

// AddSlot inserts a window that must not overlap any slot already on date.
func (r *Registry) AddSlot(date string, w Window, capacity int) (uuid.UUID, error) {
	if err := ValidateDate(date); err != nil {
		return uuid.Nil, err
	}
	if err := w.Validate(); err != nil {
		return uuid.Nil, err
	}
	if capacity < 1 {
		return uuid.Nil, outcome.Invalid(outcome.ErrInvalidInput, "capacity must be at least 1, got %d", capacity)
	}

	if err := r.checkOverlap(date, w); err != nil {
		return uuid.Nil, err
	}

	slot := &Slot{ID: uuid.New(), Window: w, Capacity: capacity, Occupants: []uuid.UUID{}}
	r.insert(date, slot)
	return slot.ID, nil
}

// Restore puts back a slot read from a snapshot, keeping its id and occupants.
func (r *Registry) Restore(date string, s Slot) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	if err := s.Window.Validate(); err != nil {
		return err
	}
	if s.Capacity < 1 || len(s.Occupants) > s.Capacity {
		return outcome.Invalid(outcome.ErrInvalidInput, "slot %s has %d occupants for capacity %d", s.ID, len(s.Occupants), s.Capacity)
	}
	seen := make(map[uuid.UUID]struct{}, len(s.Occupants))
	for _, p := range s.Occupants {
		if _, dup := seen[p]; dup {
			return outcome.Invalid(outcome.ErrDuplicate, "slot %s lists patient %s twice", s.ID, p)
		}
		seen[p] = struct{}{}
	}
	if _, _, err := r.find(date, s.ID); err == nil {
		return outcome.Invalid(outcome.ErrDuplicate, "slot %s already present on %s", s.ID, date)
	}
	if err := r.checkOverlap(date, s.Window); err != nil {
		return err
	}
	c := s.clone()
	if c.Occupants == nil {
		c.Occupants = []uuid.UUID{}
	}
	r.insert(date, &c)
	return nil
}

func (r *Registry) checkOverlap(date string, w Window) error {
	for _, existing := range r.days[date] {
		if w.Overlaps(existing.Window) {
			return outcome.Reject(outcome.ErrConflict, "time slot conflicts with existing schedule: %s", existing.Window)
		}
	}
	return nil
}

func (r *Registry) insert(date string, s *Slot) {
	day := append(r.days[date], s)
	sort.SliceStable(day, func(i, j int) bool {
		return day[i].Window.Start < day[j].Window.Start
	})
	r.days[date] = day
}

func (r *Registry) find(date string, slotID uuid.UUID) (int, *Slot, error) {
	day, ok := r.days[date]
	if !ok {
		return -1, nil, outcome.Reject(outcome.ErrNotFound, "no schedule available for %s", date)
	}
	for i, s := range day {
		if s.ID == slotID {
			return i, s, nil
		}
	}
	return -1, nil, outcome.Reject(outcome.ErrNotFound, "schedule slot %s not found", slotID)
}

// RemoveSlot deletes an empty slot and drops the date once nothing is left.
func (r *Registry) RemoveSlot(date string, slotID uuid.UUID) error {
	i, s, err := r.find(date, slotID)
	if err != nil {
		return err
	}
	if n := s.Occupied(); n > 0 {
		return outcome.Reject(outcome.ErrState, "cannot remove slot with %d booked patients", n)
	}

	day := slices.Delete(r.days[date], i, i+1)
	if len(day) == 0 {
		delete(r.days, date)
		return nil
	}
	r.days[date] = day
	return nil
}

// Book takes one unit of the slot's capacity for patientID.
func (r *Registry) Book(date string, slotID, patientID uuid.UUID) error {
	_, s, err := r.find(date, slotID)
	if err != nil {
		return err
	}
	if s.Occupied() >= s.Capacity {
		return outcome.Reject(outcome.ErrCapacity, "slot %s is fully booked", s.Window)
	}
	if s.HasOccupant(patientID) {
		return outcome.Reject(outcome.ErrDuplicate, "patient %s already holds slot %s", patientID, s.Window)
	}
	s.Occupants = append(s.Occupants, patientID)
	return nil
}

// Cancel releases the unit held by patientID.
func (r *Registry) Cancel(date string, slotID, patientID uuid.UUID) error {
	_, s, err := r.find(date, slotID)
	if err != nil {
		return err
	}
	i := slices.Index(s.Occupants, patientID)
	if i < 0 {
		return outcome.Reject(outcome.ErrNotFound, "patient %s not found in slot %s", patientID, s.Window)
	}
	s.Occupants = slices.Delete(s.Occupants, i, i+1)
	return nil
}

// Available yields the slots on date that still have room. The sequence
// reads the registry each time it is ranged over.
func (r *Registry) Available(date string) iter.Seq[Availability] {
	return func(yield func(Availability) bool) {
		for _, s := range r.days[date] {
			if s.Remaining() <= 0 {
				continue
			}
			if !yield(Availability{SlotID: s.ID, Window: s.Window, Remaining: s.Remaining()}) {
				return
			}
		}
	}
}

func (r *Registry) Slot(date string, slotID uuid.UUID) (Slot, error) {
	_, s, err := r.find(date, slotID)
	if err != nil {
		return Slot{}, err
	}
	return s.clone(), nil
}

// Slots returns copies of the slots on date in start order.
func (r *Registry) Slots(date string) []Slot {
	day := r.days[date]
	out := make([]Slot, 0, len(day))
	for _, s := range day {
		out = append(out, s.clone())
	}
	return out
}

// Dates returns the scheduled dates in ascending order.
func (r *Registry) Dates() []string {
	dates := make([]string, 0, len(r.days))
	for d := range r.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func (r *Registry) SlotCount() int {
	n := 0
	for _, day := range r.days {
		n += len(day)
	}
	return n
}

func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for date, day := range r.days {
		cp := make([]*Slot, 0, len(day))
		for _, s := range day {
			sc := s.clone()
			cp = append(cp, &sc)
		}
		c.days[date] = cp
	}
	return c
}
