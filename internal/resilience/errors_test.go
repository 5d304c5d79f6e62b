package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad input"), false},
		{"marked", Transient(errors.New("boom")), true},
		{"wrapped marked", fmt.Errorf("source: load: %w", Transient(errors.New("boom"))), true},
		{"econnreset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"econnrefused", syscall.ECONNREFUSED, true},
		{"sqlite locked", errors.New("SQLITE_BUSY: database is locked"), true},
		{"pg too many", errors.New("FATAL: sorry, too many connections"), true},
		{"syntax", errors.New(`syntax error at or near "SELEC"`), false},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestTransient_Nil(t *testing.T) {
	assert.NoError(t, Transient(nil))
}
