package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumiattri/task-manager/internal/apperr"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Validation("bad"), http.StatusBadRequest, "validation_error"},
		{apperr.NotFound("Task"), http.StatusNotFound, "not_found"},
		{apperr.Conflict("stale"), http.StatusConflict, "conflict"},
		{apperr.Unauthorized("no"), http.StatusUnauthorized, "unauthorized"},
		{apperr.Forbidden("no"), http.StatusForbidden, "forbidden"},
		{apperr.Storage("op", errors.New("disk")), http.StatusInternalServerError, "internal_error"},
		{errors.New("plain"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := Classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
