package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindOK},
		{"rejected", Reject(ErrCapacity, "slot full"), KindRejected},
		{"invalid", Invalid(ErrInvalidInput, "bad date"), KindInvalid},
		{"wrapped rejection", fmt.Errorf("book: %w", Reject(ErrDuplicate, "dup")), KindRejected},
		{"foreign", errors.New("boom"), KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrapsToCode(t *testing.T) {
	err := fmt.Errorf("cancel: %w", Reject(ErrNotFound, "patient %s not in slot", "p1"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrState)
	assert.Contains(t, err.Error(), "patient p1 not in slot")
	assert.True(t, IsRejected(err))
	assert.False(t, IsInvalid(err))
}

func TestResult(t *testing.T) {
	ok := OK("cost set to %s", "10.00")
	assert.True(t, ok.Ok())
	assert.NoError(t, ok.Err(ErrState))

	rej := Rejected("cannot add diagnosis")
	assert.False(t, rej.Ok())
	err := rej.Err(ErrState)
	assert.ErrorIs(t, err, ErrState)
	assert.Equal(t, KindRejected, KindOf(err))
	assert.Equal(t, "cannot add diagnosis", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ok", KindOK.String())
	assert.Equal(t, "rejected", KindRejected.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
