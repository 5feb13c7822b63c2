package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonandersen/backspread/pkg/tdapi"
)

func TestWithAPIHint(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		suffix string
	}{
		{name: "unauthorized", err: &tdapi.APIError{StatusCode: http.StatusUnauthorized}, suffix: "(run: backspread login)"},
		{name: "forbidden", err: &tdapi.APIError{StatusCode: http.StatusForbidden}, suffix: "(check the API key: backspread configure)"},
		{name: "not found", err: &tdapi.APIError{StatusCode: http.StatusNotFound}, suffix: "(check the symbol)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to fetch quote: %w", tt.err)
			got := withAPIHint(wrapped)

			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, wrapped.Error()+" "+tt.suffix, got.Error())
		})
	}
}

func TestWithAPIHint_Passthrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, withAPIHint(plain))

	serverErr := &tdapi.APIError{StatusCode: http.StatusInternalServerError}
	assert.Equal(t, serverErr, withAPIHint(serverErr))
}
