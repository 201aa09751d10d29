package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pointRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type decodeRequest struct {
	Title  string         `json:"title" validate:"required"`
	Tags   []pointRequest `json:"tags"`
	Where  *pointRequest  `json:"where"`
	Secret string         `json:"-"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{name: "valid", body: `{"title":"Bike","where":{"lat":1,"lng":2}}`},
		{name: "keys match case-insensitively", body: `{"Title":"Bike","WHERE":{"Lat":1}}`},
		{name: "blank", body: "", err: ErrBlankBody},
		{name: "trailing object", body: `{"title":"Bike"} {"role":"admin"}`, err: errMalformed},
		{name: "trailing garbage", body: `{"title":"Bike"}x`, err: errMalformed},
		{name: "syntax error", body: `{"title":`, err: errMalformed},
		{name: "wrong type", body: `{"title":5}`, err: errMalformed},
		{name: "unknown top-level field", body: `{"title":"Bike","role":"admin"}`, err: ErrInvalidOperation},
		{name: "ignored field is unknown", body: `{"title":"Bike","-":"x"}`, err: ErrInvalidOperation},
		{name: "unknown nested field", body: `{"title":"Bike","where":{"lat":1,"alt":3}}`, err: ErrInvalidOperation},
		{name: "unknown field in slice element", body: `{"title":"Bike","tags":[{"lat":1},{"zoom":2}]}`, err: ErrInvalidOperation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req decodeRequest
			r := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(tc.body))
			err := DecodeJSON(httptest.NewRecorder(), r, &req)
			if tc.err == nil {
				require.NoError(t, err)
				assert.Equal(t, "Bike", req.Title)
				return
			}
			assert.Equal(t, tc.err, err)
		})
	}
}

func TestDecodeJSON_Validates(t *testing.T) {
	var req decodeRequest
	r := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(`{"where":null}`))
	err := DecodeJSON(httptest.NewRecorder(), r, &req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "title", verr.Fields[0].Field)
}
