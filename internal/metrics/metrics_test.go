package metrics

import (
	"errors"
	"testing"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "success"},
		{name: "validation", err: domain.NewValidationError("bad"), want: "rejected"},
		{name: "credentials", err: domain.ErrInvalidCredentials, want: "rejected"},
		{name: "conflict", err: domain.ErrEmailExists, want: "rejected"},
		{name: "storage", err: domain.NewStorageError("create user", errors.New("conn reset")), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.LoginAttemptsTotal.WithLabelValues("success").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.LoginAttemptsTotal.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.LoginAttemptsTotal.WithLabelValues("success")))
}
