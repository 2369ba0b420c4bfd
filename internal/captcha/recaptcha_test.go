package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithoutKeyAcceptsEverything(t *testing.T) {
	v := New("")
	assert.True(t, v.Verify(context.Background(), "", ""))
}

func TestRecaptcha_Verify(t *testing.T) {
	var gotSecret, gotResponse, gotIP string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotSecret = r.PostForm.Get("secret")
		gotResponse = r.PostForm.Get("response")
		gotIP = r.PostForm.Get("remoteip")
		w.Header().Set("Content-Type", "application/json")
		if gotResponse == "good" {
			_, _ = w.Write([]byte(`{"success": true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := NewRecaptcha("private", srv.URL)
	ctx := context.Background()

	assert.True(t, v.Verify(ctx, "good", "10.0.0.1"))
	assert.Equal(t, "private", gotSecret)
	assert.Equal(t, "10.0.0.1", gotIP)

	assert.False(t, v.Verify(ctx, "bad", ""))
	assert.False(t, v.Verify(ctx, "", ""), "empty token never reaches the API")
	assert.Equal(t, "bad", gotResponse)
}

func TestRecaptcha_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "500", handler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{name: "malformed json", handler: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			assert.False(t, NewRecaptcha("k", srv.URL).Verify(context.Background(), "token", ""))
		})
	}
}
