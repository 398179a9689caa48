package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bulletin/app/auth"
	"bulletin/app/lock"
	"bulletin/app/models"
	"bulletin/app/repositories"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "letmein"

func setupTestStore(t *testing.T) *repositories.BadgerStore {
	store, err := repositories.NewBadgerStore(repositories.Options{InMemory: true, ConflictRetries: 3})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func setupTestRouter(t *testing.T) *mux.Router {
	return SetupRoutes(Dependencies{
		Store:      setupTestStore(t),
		Locker:     lock.NewLocalLocker(),
		Issuer:     auth.NewTokenIssuer("test-secret", time.Hour),
		AdminToken: testAdminToken,
	})
}

type response struct {
	Code   int
	Header http.Header
	Body   struct {
		Status int             `json:"status"`
		Code   string          `json:"code"`
		Data   json.RawMessage `json:"data"`
		Error  string          `json:"error"`
	}
}

func (r *response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body.Data, v))
}

func call(t *testing.T, router http.Handler, method, path, token, body string) *response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	res := &response{Code: w.Code, Header: w.Header()}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res.Body), w.Body.String())
	return res
}

// signup registers name and returns a bearer token for it.
func signup(t *testing.T, router http.Handler, name, adminToken string) string {
	t.Helper()
	body, err := json.Marshal(models.SignupRequest{Username: name, Password: "password1", AdminToken: adminToken})
	require.NoError(t, err)
	res := call(t, router, "POST", "/api/auth/signup", "", string(body))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.Error)

	res = call(t, router, "POST", "/api/auth/login", "", `{"username":"`+name+`","password":"password1"}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.Error)
	var token auth.Token
	res.decode(t, &token)
	return token.Token
}
