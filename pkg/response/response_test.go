package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeta(t *testing.T) {
	assert.Equal(t, 3, NewMeta(1, 20, 41).TotalPages)
	assert.Equal(t, 2, NewMeta(1, 20, 40).TotalPages)
	assert.Equal(t, 0, NewMeta(1, 20, 0).TotalPages)
}

func TestError_WritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Conflict(rec, "Time slot already booked")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Time slot already booked", body.Message)
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessWithMeta(rec, http.StatusOK, "ok", []int{1, 2}, NewMeta(2, 2, 5))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 3, meta["total_pages"])
}
