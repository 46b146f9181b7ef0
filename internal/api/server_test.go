package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"roster/internal/api/handlers"
	"roster/internal/api/middleware"
	"roster/internal/config"
	"roster/internal/database"
	"roster/internal/models"
)

// MockUserStore is a mock implementation of store.UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ListUsers(ctx context.Context, txn *database.Txn, q models.Query[models.UserFilter]) ([]models.User, int64, error) {
	args := m.Called(ctx, txn, q)
	var users []models.User
	if args.Get(0) != nil {
		users = args.Get(0).([]models.User)
	}
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserStore) GetUser(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, txn, id)
	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserStore) GetUserByUsername(ctx context.Context, txn *database.Txn, username string) (*models.User, error) {
	args := m.Called(ctx, txn, username)
	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserStore) GetUserPasswordHash(ctx context.Context, txn *database.Txn, id uuid.UUID) (string, error) {
	args := m.Called(ctx, txn, id)
	return args.String(0), args.Error(1)
}

func (m *MockUserStore) CreateUser(ctx context.Context, txn *database.Txn, user *models.User) (*models.User, error) {
	args := m.Called(ctx, txn, user)
	var created *models.User
	if args.Get(0) != nil {
		created = args.Get(0).(*models.User)
	}
	return created, args.Error(1)
}

func (m *MockUserStore) UpdateUser(ctx context.Context, txn *database.Txn, user *models.User) (*models.User, error) {
	args := m.Called(ctx, txn, user)
	var updated *models.User
	if args.Get(0) != nil {
		updated = args.Get(0).(*models.User)
	}
	return updated, args.Error(1)
}

func (m *MockUserStore) DeleteUser(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, txn, id)
	var deleted *models.User
	if args.Get(0) != nil {
		deleted = args.Get(0).(*models.User)
	}
	return deleted, args.Error(1)
}

func (m *MockUserStore) DeleteUsers(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, txn, ids)
	var deleted []models.User
	if args.Get(0) != nil {
		deleted = args.Get(0).([]models.User)
	}
	return deleted, args.Error(1)
}

// MockGroupPermissionStore is a mock implementation of store.GroupPermissionStore.
type MockGroupPermissionStore struct {
	mock.Mock
}

func (m *MockGroupPermissionStore) ListGroupPermissions(ctx context.Context, txn *database.Txn, q models.Query[models.GroupPermissionFilter]) ([]models.GroupPermission, int64, error) {
	args := m.Called(ctx, txn, q)
	var grants []models.GroupPermission
	if args.Get(0) != nil {
		grants = args.Get(0).([]models.GroupPermission)
	}
	return grants, args.Get(1).(int64), args.Error(2)
}

func (m *MockGroupPermissionStore) GetGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error) {
	args := m.Called(ctx, txn, groupID, permissionID)
	var grant *models.GroupPermission
	if args.Get(0) != nil {
		grant = args.Get(0).(*models.GroupPermission)
	}
	return grant, args.Error(1)
}

func (m *MockGroupPermissionStore) GroupPermissionExists(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, txn, groupID, permissionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupPermissionStore) CreateGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error) {
	args := m.Called(ctx, txn, groupID, permissionID)
	var grant *models.GroupPermission
	if args.Get(0) != nil {
		grant = args.Get(0).(*models.GroupPermission)
	}
	return grant, args.Error(1)
}

func (m *MockGroupPermissionStore) DeleteGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error) {
	args := m.Called(ctx, txn, groupID, permissionID)
	var grant *models.GroupPermission
	if args.Get(0) != nil {
		grant = args.Get(0).(*models.GroupPermission)
	}
	return grant, args.Error(1)
}

func (m *MockGroupPermissionStore) DeleteGroupPermissionsByGroup(ctx context.Context, txn *database.Txn, groupID uuid.UUID) ([]models.GroupPermission, error) {
	args := m.Called(ctx, txn, groupID)
	var grants []models.GroupPermission
	if args.Get(0) != nil {
		grants = args.Get(0).([]models.GroupPermission)
	}
	return grants, args.Error(1)
}

func (m *MockGroupPermissionStore) DeleteGroupPermissionsByPermission(ctx context.Context, txn *database.Txn, permissionID uuid.UUID) ([]models.GroupPermission, error) {
	args := m.Called(ctx, txn, permissionID)
	var grants []models.GroupPermission
	if args.Get(0) != nil {
		grants = args.Get(0).([]models.GroupPermission)
	}
	return grants, args.Error(1)
}

// The validation tests run with a nil pool: every rejected request must
// fail before a transaction is ever begun, so the store is never touched.

func TestListUsersHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := new(MockUserStore)
	links := models.LinkBuilder{BaseURL: "http://localhost:8080/api", Path: "users"}

	router := gin.New()
	router.GET("/users", handlers.ListUsersHandler(nil, mockStore, links))

	tests := []struct {
		name  string
		query string
	}{
		{"NonNumericPage", "?page=abc"},
		{"PageZero", "?page=0"},
		{"NonNumericSize", "?size=ten"},
		{"SizeZero", "?size=0"},
		{"NegativeSize", "?size=-5"},
		{"BadOrder", "?order=sideways"},
		{"BadFilterUUID", "?user_group_id=not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/users"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	mockStore.AssertExpectations(t)
}

func TestGetUserHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := new(MockUserStore)
	router := gin.New()
	router.GET("/users/:id", handlers.GetUserHandler(nil, mockStore))

	req, _ := http.NewRequest("GET", "/users/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

func TestCreateUserHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := new(MockUserStore)
	router := gin.New()
	router.POST("/users", handlers.CreateUserHandler(nil, mockStore))

	t.Run("MissingPassword", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{"username": "ripley"})
		req, _ := http.NewRequest("POST", "/users", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/users", bytes.NewBufferString("not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPutUserHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := new(MockUserStore)
	router := gin.New()
	router.PUT("/users", handlers.PutUserHandler(nil, mockStore))

	// No id means insert, and an insert needs a password.
	body, _ := json.Marshal(map[string]interface{}{"username": "ripley"})
	req, _ := http.NewRequest("PUT", "/users", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password is required")
}

func TestDeleteUsersHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := new(MockUserStore)
	router := gin.New()
	router.DELETE("/users", handlers.DeleteUsersHandler(nil, mockStore))

	t.Run("MissingIDs", func(t *testing.T) {
		req, _ := http.NewRequest("DELETE", "/users", bytes.NewBufferString("{}"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MalformedUUID", func(t *testing.T) {
		req, _ := http.NewRequest("DELETE", "/users", bytes.NewBufferString(`{"ids": ["nope"]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteGroupPermissionsHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := new(MockGroupPermissionStore)
	router := gin.New()
	router.DELETE("/group-permissions", handlers.DeleteGroupPermissionsHandler(nil, mockStore))

	t.Run("NeitherFilter", func(t *testing.T) {
		req, _ := http.NewRequest("DELETE", "/group-permissions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Exactly one")
	})

	t.Run("BothFilters", func(t *testing.T) {
		url := "/group-permissions?group_id=" + uuid.New().String() + "&permission_id=" + uuid.New().String()
		req, _ := http.NewRequest("DELETE", url, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Exactly one")
	})

	t.Run("MalformedGroupID", func(t *testing.T) {
		req, _ := http.NewRequest("DELETE", "/group-permissions?group_id=nope", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(sessions.Sessions("roster_session", memstore.NewStore([]byte("test-secret"))))
	router.POST("/seed", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(middleware.SessionUserIDKey, uuid.New().String())
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	protected := router.Group("/api")
	protected.Use(middleware.SessionAuth())
	protected.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	t.Run("RejectsAnonymous", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Unauthenticated")
	})

	t.Run("AllowsSessionHolder", func(t *testing.T) {
		seedReq, _ := http.NewRequest("POST", "/seed", nil)
		seedW := httptest.NewRecorder()
		router.ServeHTTP(seedW, seedReq)
		assert.Equal(t, http.StatusOK, seedW.Code)

		cookie := seedW.Header().Get("Set-Cookie")
		assert.NotEmpty(t, cookie)

		req, _ := http.NewRequest("GET", "/api/ping", nil)
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.NewDefaultConfig()
	sessionStore := memstore.NewStore([]byte("test-secret"))
	server := NewServer(cfg, nil, sessionStore, nil, nil, nil, nil, nil, nil, nil, nil)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.NewDefaultConfig()
	sessionStore := memstore.NewStore([]byte("test-secret"))
	server := NewServer(cfg, nil, sessionStore, nil, nil, nil, nil, nil, nil, nil, nil)

	paths := []string{
		"/api/users",
		"/api/user-groups",
		"/api/permissions",
		"/api/group-permissions",
		"/api/user-permissions",
		"/api/contents",
		"/api/stats",
	}

	for _, path := range paths {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "expected 401 for %s", path)
	}
}
