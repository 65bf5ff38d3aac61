package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/clinic-scheduling/internal/outcome"
)

const (
	DateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Clock is a minute of the day.
type Clock int

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, outcome.Invalid(outcome.ErrInvalidInput, "invalid time %q, use HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

func NewWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// ParseWindow accepts the "HH:MM-HH:MM" form.
func ParseWindow(s string) (Window, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return Window{}, outcome.Invalid(outcome.ErrInvalidInput, "invalid time window %q, use HH:MM-HH:MM", s)
	}
	return NewWindow(start, end)
}

func (w Window) Validate() error {
	if w.Start < 0 || w.End > 24*60 || w.Start >= w.End {
		return outcome.Invalid(outcome.ErrInvalidInput, "invalid time window %s", w)
	}
	return nil
}

func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && w.End > o.Start
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// ValidateDate checks the YYYY-MM-DD form used as the schedule key.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return outcome.Invalid(outcome.ErrInvalidInput, "invalid date %q, use YYYY-MM-DD", date)
	}
	return nil
}
