package server

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Daskott/vitals/server/auth/key"
	"github.com/Daskott/vitals/server/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	testKeyPairOnce sync.Once
	testKeyPair     *key.KeyPair
)

func sharedTestKeyPair(t *testing.T) *key.KeyPair {
	t.Helper()

	testKeyPairOnce.Do(func() {
		privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKeyPair = key.NewKeyPair(privateKey)
	})

	return testKeyPair
}

type testServer struct {
	srv    *Server
	router *mux.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := models.OpenInMemoryDB()
	require.Nil(t, err)

	srv, err := NewServer(Options{
		DB:             db,
		KeyPair:        sharedTestKeyPair(t),
		BcryptCost:     bcrypt.MinCost,
		AllowedOrigins: []string{"*"},
	})
	require.Nil(t, err)

	return &testServer{srv: srv, router: srv.Router()}
}

// do sends body as JSON unless it is already a string
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody []byte
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = []byte(b)
	default:
		var err error
		reqBody, err = json.Marshal(b)
		require.Nil(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.serveRequest(req)
}

func (ts *testServer) serveRequest(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	return rec
}

// signup creates a user with email and returns their access token
func (ts *testServer) signup(t *testing.T, email string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/create_user", "", map[string]string{
		"fname":        "tony",
		"lname":        "stark",
		"email":        email,
		"passwordHash": "very-secure",
		"phoneNumber":  "4165550100",
		"gender":       "male",
		"dob":          "1970-05-29",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payload := ResponsePayload{}
	decodeBody(t, rec, &payload)
	require.NotEmpty(t, payload.AccessToken)

	return payload.AccessToken
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	payload := ResponsePayload{}
	decodeBody(t, rec, &payload)
	return payload.Message
}
