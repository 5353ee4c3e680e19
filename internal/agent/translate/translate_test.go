package translate

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibhoomi/record-translator/internal/agent/gemini"
)

func TestClassify_APIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{"quota", http.StatusTooManyRequests, KindQuota},
		{"malformed", http.StatusBadRequest, KindMalformed},
		{"timeout", http.StatusRequestTimeout, KindTimeout},
		{"server error", http.StatusInternalServerError, KindUnavailable},
		{"service unavailable", http.StatusServiceUnavailable, KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(&gemini.APIError{StatusCode: tt.status, Message: "m"})
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestClassify_DeadlineExceeded(t *testing.T) {
	err := Classify(context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestClassify_UnknownError(t *testing.T) {
	err := Classify(errors.New("connection refused"))
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestClassify_PreservesCause(t *testing.T) {
	cause := &gemini.APIError{StatusCode: http.StatusTooManyRequests, Message: "quota"}
	err := Classify(cause)

	var apiErr *gemini.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, cause, apiErr)
}

func TestKindOf_UnwrappedErrors(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindUnavailable, KindOf(errors.New("plain")))
	assert.Equal(t, KindQuota, KindOf(NewError(KindQuota, errors.New("x"))))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "quota", KindQuota.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "malformed", KindMalformed.String())
	assert.Equal(t, "unavailable", KindUnavailable.String())
}
