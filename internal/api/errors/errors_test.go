package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "media-notes/internal/app/errors"
)

func TestFromAppErrorStatus(t *testing.T) {
	testCases := []struct {
		kind   apperrors.Kind
		status int
	}{
		{apperrors.KindInsufficientCredit, http.StatusPaymentRequired},
		{apperrors.KindTooLarge, http.StatusRequestEntityTooLarge},
		{apperrors.KindUnsupportedFormat, http.StatusUnsupportedMediaType},
		{apperrors.KindCorruptMedia, http.StatusUnprocessableEntity},
		{apperrors.KindConversion, http.StatusUnprocessableEntity},
		{apperrors.KindFetch, http.StatusBadGateway},
		{apperrors.KindTranscription, http.StatusBadGateway},
		{apperrors.KindSummarize, http.StatusBadGateway},
		{apperrors.KindNotFound, http.StatusNotFound},
		{apperrors.KindAlreadyExists, http.StatusConflict},
		{apperrors.KindInvalidInput, http.StatusUnprocessableEntity},
		{apperrors.KindStorage, http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := fmt.Errorf("stage: %w", apperrors.NewKind(tc.kind, "boom"))
			apiErr := FromAppError(err)
			assert.Equal(t, tc.status, apiErr.HTTPStatus())
			assert.Equal(t, string(tc.kind), apiErr.Code)
			assert.Contains(t, apiErr.Message, "boom")
		})
	}
}

func TestFromAppErrorHidesUnknownCauses(t *testing.T) {
	apiErr := FromAppError(fmt.Errorf("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatus())
	assert.NotContains(t, apiErr.Message, "password")

	assert.Nil(t, FromAppError(nil))
}

func TestFromAppErrorKeepsAPIError(t *testing.T) {
	orig := NewUnauthorizedError("missing bearer token")
	assert.Same(t, orig, FromAppError(fmt.Errorf("auth: %w", orig)))
}

func TestWithDetail(t *testing.T) {
	apiErr := NewBadRequestError("bad").WithDetail("job_id", "j-1")
	assert.Equal(t, map[string]string{"job_id": "j-1"}, apiErr.Details)
}
