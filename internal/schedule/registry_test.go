package schedule

import (
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
)

const day = "2024-01-01"

func mustWindow(t *testing.T, s string) Window {
	t.Helper()
	w, err := ParseWindow(s)
	require.NoError(t, err)
	return w
}

func TestAddSlotRejectsOverlap(t *testing.T) {
	r := NewRegistry()
	_, err := r.AddSlot(day, mustWindow(t, "09:00-10:00"), 2)
	require.NoError(t, err)

	tests := []struct {
		name    string
		window  string
		wantErr error
	}{
		{"identical", "09:00-10:00", outcome.ErrConflict},
		{"inside", "09:15-09:45", outcome.ErrConflict},
		{"straddles start", "08:30-09:30", outcome.ErrConflict},
		{"straddles end", "09:59-10:30", outcome.ErrConflict},
		{"covers", "08:00-11:00", outcome.ErrConflict},
		{"touches end", "10:00-11:00", nil},
		{"touches start", "08:00-09:00", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.AddSlot(day, mustWindow(t, tt.window), 1)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, outcome.IsRejected(err))
		})
	}

	slots := r.Slots(day)
	require.Len(t, slots, 3)
	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1].Window.Start, slots[i].Window.Start, "slots stay sorted by start")
	}
	for i := range slots {
		for j := range slots {
			if i != j {
				assert.False(t, slots[i].Window.Overlaps(slots[j].Window))
			}
		}
	}
}

func TestAddSlotSameWindowOtherDate(t *testing.T) {
	r := NewRegistry()
	_, err := r.AddSlot("2024-01-01", mustWindow(t, "09:00-10:00"), 1)
	require.NoError(t, err)
	_, err = r.AddSlot("2024-01-02", mustWindow(t, "09:00-10:00"), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, r.Dates())
	assert.Equal(t, 2, r.SlotCount())
}

func TestAddSlotInvalidInput(t *testing.T) {
	r := NewRegistry()

	_, err := r.AddSlot("01/01/2024", Window{Start: 540, End: 600}, 1)
	assert.True(t, outcome.IsInvalid(err))

	_, err = r.AddSlot(day, Window{Start: 600, End: 540}, 1)
	assert.True(t, outcome.IsInvalid(err))

	_, err = r.AddSlot(day, Window{Start: 540, End: 600}, 0)
	assert.True(t, outcome.IsInvalid(err))
	assert.ErrorIs(t, err, outcome.ErrInvalidInput)

	assert.Empty(t, r.Dates())
}

func TestCapacityScenario(t *testing.T) {
	r := NewRegistry()
	slotID, err := r.AddSlot(day, mustWindow(t, "09:00-10:00"), 1)
	require.NoError(t, err)
	p1, p2 := uuid.New(), uuid.New()

	require.NoError(t, r.Book(day, slotID, p1))

	err = r.Book(day, slotID, p2)
	assert.ErrorIs(t, err, outcome.ErrCapacity)
	s, err := r.Slot(day, slotID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p1}, s.Occupants, "rejected booking leaves state unchanged")

	require.NoError(t, r.Cancel(day, slotID, p1))
	s, _ = r.Slot(day, slotID)
	assert.Equal(t, 0, s.Occupied())

	require.NoError(t, r.Book(day, slotID, p2))
	s, _ = r.Slot(day, slotID)
	assert.Equal(t, []uuid.UUID{p2}, s.Occupants)
}

func TestBookErrors(t *testing.T) {
	r := NewRegistry()
	slotID, err := r.AddSlot(day, mustWindow(t, "09:00-10:00"), 3)
	require.NoError(t, err)
	p := uuid.New()

	assert.ErrorIs(t, r.Book("2024-02-02", slotID, p), outcome.ErrNotFound)
	assert.ErrorIs(t, r.Book(day, uuid.New(), p), outcome.ErrNotFound)

	require.NoError(t, r.Book(day, slotID, p))
	assert.ErrorIs(t, r.Book(day, slotID, p), outcome.ErrDuplicate)

	s, _ := r.Slot(day, slotID)
	assert.Equal(t, 1, s.Occupied())
	assert.Equal(t, 2, s.Remaining())
}

func TestCancelNonOccupant(t *testing.T) {
	r := NewRegistry()
	slotID, err := r.AddSlot(day, mustWindow(t, "09:00-10:00"), 3)
	require.NoError(t, err)
	p1, p2 := uuid.New(), uuid.New()
	require.NoError(t, r.Book(day, slotID, p1))
	require.NoError(t, r.Book(day, slotID, p2))

	assert.ErrorIs(t, r.Cancel(day, slotID, uuid.New()), outcome.ErrNotFound)
	assert.ErrorIs(t, r.Cancel(day, uuid.New(), p1), outcome.ErrNotFound)

	require.NoError(t, r.Cancel(day, slotID, p1))
	s, _ := r.Slot(day, slotID)
	assert.Equal(t, []uuid.UUID{p2}, s.Occupants)

	assert.ErrorIs(t, r.Cancel(day, slotID, p1), outcome.ErrNotFound)
}

func TestRemoveSlot(t *testing.T) {
	r := NewRegistry()
	a, err := r.AddSlot(day, mustWindow(t, "09:00-10:00"), 1)
	require.NoError(t, err)
	b, err := r.AddSlot(day, mustWindow(t, "10:00-11:00"), 1)
	require.NoError(t, err)
	p := uuid.New()
	require.NoError(t, r.Book(day, a, p))

	err = r.RemoveSlot(day, a)
	assert.ErrorIs(t, err, outcome.ErrState)
	assert.ErrorIs(t, r.RemoveSlot(day, uuid.New()), outcome.ErrNotFound)

	require.NoError(t, r.RemoveSlot(day, b))
	assert.Len(t, r.Slots(day), 1)

	require.NoError(t, r.Cancel(day, a, p))
	require.NoError(t, r.RemoveSlot(day, a))
	assert.Empty(t, r.Dates(), "empty date entry is dropped")
	assert.ErrorIs(t, r.RemoveSlot(day, a), outcome.ErrNotFound)
}

func TestAvailable(t *testing.T) {
	r := NewRegistry()
	full, err := r.AddSlot(day, mustWindow(t, "09:00-10:00"), 1)
	require.NoError(t, err)
	open, err := r.AddSlot(day, mustWindow(t, "11:00-12:00"), 3)
	require.NoError(t, err)
	early, err := r.AddSlot(day, mustWindow(t, "08:00-08:30"), 2)
	require.NoError(t, err)
	require.NoError(t, r.Book(day, full, uuid.New()))
	require.NoError(t, r.Book(day, open, uuid.New()))

	seq := r.Available(day)
	got := slices.Collect(seq)
	require.Len(t, got, 2)
	assert.Equal(t, early, got[0].SlotID)
	assert.Equal(t, 2, got[0].Remaining)
	assert.Equal(t, open, got[1].SlotID)
	assert.Equal(t, 2, got[1].Remaining)

	// ranging again observes the current state
	require.NoError(t, r.Book(day, early, uuid.New()))
	require.NoError(t, r.Book(day, early, uuid.New()))
	again := slices.Collect(seq)
	require.Len(t, again, 1)
	assert.Equal(t, open, again[0].SlotID)

	assert.Empty(t, slices.Collect(r.Available("2030-01-01")))

	n := 0
	for range r.Available(day) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestRestore(t *testing.T) {
	r := NewRegistry()
	p := uuid.New()
	s := Slot{ID: uuid.New(), Window: mustWindow(t, "09:00-10:00"), Capacity: 2, Occupants: []uuid.UUID{p}}
	require.NoError(t, r.Restore(day, s))

	got, err := r.Slot(day, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	assert.ErrorIs(t, r.Restore(day, s), outcome.ErrDuplicate)
	overlap := Slot{ID: uuid.New(), Window: mustWindow(t, "09:30-10:30"), Capacity: 1}
	assert.ErrorIs(t, r.Restore(day, overlap), outcome.ErrConflict)
	over := Slot{ID: uuid.New(), Window: mustWindow(t, "12:00-13:00"), Capacity: 1, Occupants: []uuid.UUID{p, uuid.New()}}
	assert.True(t, outcome.IsInvalid(r.Restore(day, over)))

	twice := Slot{ID: uuid.New(), Window: mustWindow(t, "14:00-15:00"), Capacity: 2, Occupants: []uuid.UUID{p, p}}
	err = r.Restore(day, twice)
	assert.True(t, outcome.IsInvalid(err))
	assert.ErrorIs(t, err, outcome.ErrDuplicate)
	_, err = r.Slot(day, twice.ID)
	assert.ErrorIs(t, err, outcome.ErrNotFound)
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewRegistry()
	id, err := r.AddSlot(day, mustWindow(t, "09:00-10:00"), 2)
	require.NoError(t, err)
	c := r.Clone()
	require.NoError(t, r.Book(day, id, uuid.New()))

	s, err := c.Slot(day, id)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Occupied())
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("09:00-10:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(540), w.Start)
	assert.Equal(t, Clock(630), w.End)
	assert.Equal(t, "09:00-10:30", w.String())

	for _, bad := range []string{"", "0900-1000", "10:00-09:00", "09:00-09:00", "9am-10am"} {
		_, err := ParseWindow(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockText(t *testing.T) {
	var c Clock
	require.NoError(t, c.UnmarshalText([]byte("07:05")))
	assert.Equal(t, Clock(425), c)
	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "07:05", string(b))
	assert.Error(t, c.UnmarshalText([]byte("25:00")))
}
