package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"gte=0"`
}

func TestDecodeReportsJSONFieldNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","age":-1}`))
	w := httptest.NewRecorder()

	var body signup
	ok := Decode(w, req, &body)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "email", resp.Errors[0].Field)
	assert.Equal(t, "email", resp.Errors[0].Rule)
	assert.Equal(t, "age", resp.Errors[1].Field)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	w := httptest.NewRecorder()

	var body signup
	assert.False(t, Decode(w, req, &body))
	assert.JSONEq(t, `{"error":"invalid json"}`, w.Body.String())
}

func TestDecodeAcceptsValidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","age":3}`))
	w := httptest.NewRecorder()

	var body signup
	require.True(t, Decode(w, req, &body))
	assert.Equal(t, "a@b.co", body.Email)
}

type trimmed struct {
	Email string `json:"email" validate:"required,email"`
}

func (t *trimmed) Normalize() { t.Email = strings.TrimSpace(t.Email) }

func TestDecodeNormalizesBeforeValidating(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"  a@b.co "}`))
	w := httptest.NewRecorder()

	var body trimmed
	require.True(t, Decode(w, req, &body), w.Body.String())
	assert.Equal(t, "a@b.co", body.Email)
}
