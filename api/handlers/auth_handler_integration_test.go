// api/handlers/auth_handler_integration_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-docstore/api"
	"github.com/Annany2002/nebula-docstore/api/models"
	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/auth"
	"github.com/Annany2002/nebula-docstore/internal/docstore"
	"github.com/Annany2002/nebula-docstore/internal/storage"
)

const testJWTSecret = "test_secret_key_for_integration_tests_1234567890"

// testStoreSetup opens a fresh document store in a temp dir.
func testStoreSetup(t *testing.T) (*storage.Repository, *config.Config) {
	t.Helper()

	testCfg := &config.Config{
		ServerPort:       "0",
		JWTSecret:        testJWTSecret,
		JWTExpiration:    time.Minute * 5,
		DataDir:          t.TempDir(),
		StoreDriver:      config.StoreDriverSQLite,
		StoreFile:        "test_maindb.sqlite",
		RowsDefaultLimit: 20,
	}

	store, err := docstore.Open(context.Background(), testCfg)
	require.NoError(t, err, "Failed to open test store at '%s'", filepath.Join(testCfg.DataDir, testCfg.StoreFile))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: failed to close test store: %v", err)
		}
	})

	return storage.NewRepository(store), testCfg
}

// setupTestServer creates a test server instance with a test store.
func setupTestServer(t *testing.T) (*httptest.Server, *storage.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, cfg := testStoreSetup(t)
	server := httptest.NewServer(api.SetupRouter(repo, cfg))
	t.Cleanup(server.Close)

	return server, repo
}

// doJSON sends body as JSON with an optional bearer token and decodes the
// response into out when out is non-nil.
func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		dec := json.NewDecoder(res.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(out), "Failed to decode %s %s response", method, url)
	}
	return res
}

// registerUser signs up a fresh user and returns its token.
func registerUser(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()
	var resBody models.LoginResponse
	res := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", models.SignupRequest{Email: email, Password: "StrongPassword123!"}, &resBody)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.NotEmpty(t, resBody.Token)
	return resBody.Token
}

// TestAuthEndpoints performs integration tests on /auth/register and /auth/login.
func TestAuthEndpoints(t *testing.T) {
	server, repo := setupTestServer(t)

	assert := assert.New(t)

	testEmail := "test.user." + strconv.FormatInt(time.Now().UnixNano(), 10) + "@integration.com" // Unique email per run
	testPassword := "StrongPassword123!"

	// --- Test Register ---
	t.Run("Register Success", func(t *testing.T) {
		var resBody models.LoginResponse
		res := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", models.SignupRequest{Email: testEmail, Password: testPassword}, &resBody)

		assert.Equal(http.StatusCreated, res.StatusCode, "Expected status 201 Created")
		assert.Equal("User registered successfully", resBody.Message)
		assert.Equal(testEmail, resBody.User.DisplayName, "display name defaults to email")

		user, err := repo.GetUserByEmail(context.Background(), testEmail)
		require.NoError(t, err, "Finding user after register should not fail")
		assert.Equal(testEmail, user.Email)
		assert.True(auth.CheckPasswordHash(testPassword, user.PasswordHash), "Stored password hash should match")

		roles, err := repo.GetUserRoles(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal([]string{"user"}, roles)
	})

	t.Run("Register Conflict (Duplicate Email)", func(t *testing.T) {
		var resBody map[string]string
		res := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", models.SignupRequest{Email: testEmail, Password: "anotherPassword"}, &resBody)
		assert.Equal(http.StatusConflict, res.StatusCode, "Expected status 409 Conflict")
		assert.Contains(resBody["error"], "already exists")
	})

	t.Run("Register Bad Request (Invalid Email Format)", func(t *testing.T) {
		res := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", models.SignupRequest{Email: "invalid-email-format", Password: testPassword}, nil)
		assert.Equal(http.StatusBadRequest, res.StatusCode, "Expected status 400 Bad Request")
	})

	t.Run("Register Bad Request (Short Password)", func(t *testing.T) {
		res := doJSON(t, http.MethodPost, server.URL+"/auth/register", "", models.SignupRequest{Email: "shortpass@example.com", Password: "short"}, nil)
		assert.Equal(http.StatusBadRequest, res.StatusCode, "Expected status 400 Bad Request")
	})

	// --- Test Login ---
	var token string
	t.Run("Login Success", func(t *testing.T) {
		var resBody models.LoginResponse
		res := doJSON(t, http.MethodPost, server.URL+"/auth/login", "", models.LoginRequest{Email: testEmail, Password: testPassword}, &resBody)
		assert.Equal(http.StatusOK, res.StatusCode, "Expected status 200 OK")
		assert.Equal("Login successful", resBody.Message)
		assert.NotEmpty(resBody.Token, "Token should not be empty on successful login")

		userID, err := auth.ValidateJWT(resBody.Token, testJWTSecret)
		assert.NoError(err, "Returned token should be valid")
		assert.Equal(resBody.User.ID, userID)
		token = resBody.Token
	})

	t.Run("Login Unauthorized (Wrong Password)", func(t *testing.T) {
		res := doJSON(t, http.MethodPost, server.URL+"/auth/login", "", models.LoginRequest{Email: testEmail, Password: "IncorrectPassword"}, nil)
		assert.Equal(http.StatusUnauthorized, res.StatusCode, "Expected status 401 Unauthorized for wrong password")
	})

	t.Run("Login Unauthorized (User Not Found)", func(t *testing.T) {
		res := doJSON(t, http.MethodPost, server.URL+"/auth/login", "", models.LoginRequest{Email: "nosuchuser@example.com", Password: "anyPassword"}, nil)
		assert.Equal(http.StatusUnauthorized, res.StatusCode, "Unknown users look the same as wrong passwords")
	})

	// --- Test Profile ---
	t.Run("Me Requires Token", func(t *testing.T) {
		res := doJSON(t, http.MethodGet, server.URL+"/api/v1/me", "", nil, nil)
		assert.Equal(http.StatusUnauthorized, res.StatusCode)

		res = doJSON(t, http.MethodGet, server.URL+"/api/v1/me", "not-a-jwt", nil, nil)
		assert.Equal(http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("Profile And Password", func(t *testing.T) {
		var updated struct {
			User models.UserResponse `json:"user"`
		}
		res := doJSON(t, http.MethodPatch, server.URL+"/api/v1/me/profile", token, models.UpdateProfileRequest{DisplayName: "Ada"}, &updated)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal("Ada", updated.User.DisplayName)

		res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/me/password", token, models.ChangePasswordRequest{Password: "12345"}, nil)
		assert.Equal(http.StatusBadRequest, res.StatusCode, "passwords need at least 6 characters")

		res = doJSON(t, http.MethodPatch, server.URL+"/api/v1/me/password", token, models.ChangePasswordRequest{Password: "NewPassword!"}, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doJSON(t, http.MethodPost, server.URL+"/auth/login", "", models.LoginRequest{Email: testEmail, Password: "NewPassword!"}, nil)
		assert.Equal(http.StatusOK, res.StatusCode)

		var me struct {
			User models.UserResponse `json:"user"`
		}
		res = doJSON(t, http.MethodGet, server.URL+"/api/v1/me", token, nil, &me)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal("Ada", me.User.DisplayName)
		assert.Equal([]string{"user"}, me.User.Roles)
	})
}
