package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
)

func TestMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	owner := uuid.New()

	valid, err := auth.IssueToken(secret, owner, time.Hour)
	require.NoError(t, err)

	expired, err := auth.IssueToken(secret, owner, -time.Hour)
	require.NoError(t, err)

	otherKey, err := auth.IssueToken([]byte("other"), owner, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: owner.String()}).SignedString(secret)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	type testCase struct {
		name       string
		header     string
		wantStatus int
	}

	tests := []testCase{
		{name: "Valid", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "Missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "WrongKey", header: "Bearer " + otherKey, wantStatus: http.StatusUnauthorized},
		{name: "NoExpiry", header: "Bearer " + noExpiry, wantStatus: http.StatusUnauthorized},
		{name: "SubjectNotUUID", header: "Bearer " + badSubject, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID

			h := auth.Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = auth.OwnerID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, owner, got)
			}
		})
	}
}
