package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?bad=x&s=hi&on=true&off=0&flag", nil)

	assert.Equal(t, "hi", QueryString(r, "s", "d"))
	assert.Equal(t, "d", QueryString(r, "missing", "d"))

	assert.True(t, QueryBool(r, "on", false))
	assert.False(t, QueryBool(r, "off", true))
	assert.True(t, QueryBool(r, "flag", false))
	assert.True(t, QueryBool(r, "bad", true))
	assert.False(t, QueryBool(r, "missing", false))
}

func TestErrorWithCode(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorWithCode(w, http.StatusConflict, "busy")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorResponse{Code: http.StatusConflict, Message: "busy"}, resp)
}

func TestNotFoundDefaultMessage(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(w, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestInternalErrorDefaultMessage(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
