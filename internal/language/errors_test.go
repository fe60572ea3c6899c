package language

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &APIError{StatusCode: 429}, true},
		{"internal", &APIError{StatusCode: 500}, true},
		{"unavailable", &APIError{StatusCode: 503}, true},
		{"gateway timeout", &APIError{StatusCode: 504}, true},
		{"bad request", &APIError{StatusCode: 400}, false},
		{"unauthorized", &APIError{StatusCode: 401}, false},
		{"not found", &APIError{StatusCode: 404}, false},
		{"wrapped api error", fmt.Errorf("analyze sentiment: %w", &APIError{StatusCode: 503}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"conn reset", syscall.ECONNRESET, true},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.example.com"}, true},
		{"net timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, true},
		{"plain error", errors.New("parse failure"), false},
		{"canceled", context.Canceled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}
