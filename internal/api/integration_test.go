package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"roster/internal/config"
	"roster/internal/database"
	"roster/internal/models"
	"roster/internal/service"
	"roster/internal/store"
)

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

func TestRosterLifecycle(t *testing.T) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("roster_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(10*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %s", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate postgres container: %s", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Setup
	cfg := config.NewDefaultConfig()
	cfg.DatabaseURL = connStr
	cfg.SessionSecret = "integration-secret"
	cfg.RateLimitAPI.Enabled = false
	cfg.RateLimitAuth.Enabled = false

	absPath, _ := filepath.Abs("../../migrations")
	require.NoError(t, database.Migrate(cfg.DatabaseURL, absPath))

	pool, err := database.New(ctx, cfg.DatabaseURL)
	require.NoError(t, err)
	defer pool.Close()

	// Initialize Stores
	userStore := store.NewPostgresUserStore()
	groupStore := store.NewPostgresUserGroupStore()
	permStore := store.NewPostgresPermissionStore()
	gpStore := store.NewPostgresGroupPermissionStore()
	upStore := store.NewPostgresUserPermissionStore()
	contentStore := store.NewPostgresContentStore()
	statsStore := store.NewPostgresStatsStore()
	authService := service.NewAuthService(userStore)

	sessionStore := memstore.NewStore([]byte(cfg.SessionSecret))
	server := NewServer(cfg, pool, sessionStore, userStore, groupStore, permStore, gpStore, upStore, contentStore, statsStore, authService)

	// Seed the admin account the walk logs in as.
	hash, err := service.HashPassword("sotheycantbreakout")
	require.NoError(t, err)
	txn, err := database.Begin(ctx, pool)
	require.NoError(t, err)
	defer txn.Rollback(ctx)
	admin, err := userStore.CreateUser(ctx, txn, models.NewUser("admin", hash, nil))
	require.NoError(t, err)

	// Step 1: Login
	t.Log("Step 1: Login")
	var sessionCookie string
	{
		body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
		req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, "wrong password should be 401")

		body, _ = json.Marshal(map[string]string{"username": "ghost", "password": "whatever"})
		req, _ = http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code, "unknown user should be 400")

		body, _ = json.Marshal(map[string]string{"username": "admin", "password": "sotheycantbreakout"})
		req, _ = http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Nil(t, resp.Pagination)
		var loggedIn models.UserResponse
		require.NoError(t, json.Unmarshal(resp.Data, &loggedIn))
		assert.Equal(t, admin.ID, loggedIn.ID)
		assert.NotContains(t, w.Body.String(), "password")

		sessionCookie = w.Header().Get("Set-Cookie")
		require.NotEmpty(t, sessionCookie)
	}

	// Step 2: Anonymous requests are rejected
	t.Log("Step 2: Anonymous requests are rejected")
	{
		req, _ := http.NewRequest("GET", "/api/users", nil)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// Step 3: Create User Group
	t.Log("Step 3: Create User Group")
	var crewID uuid.UUID
	{
		body, _ := json.Marshal(map[string]string{"group_name": "crew"})
		req, _ := http.NewRequest("POST", "/api/user-groups", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var group models.UserGroupResponse
		require.NoError(t, json.Unmarshal(resp.Data, &group))
		assert.Equal(t, "crew", group.GroupName)
		crewID = group.ID

		// Same name again collides.
		req, _ = http.NewRequest("POST", "/api/user-groups", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusConflict, w.Code)
	}

	// Step 4: Create Users
	t.Log("Step 4: Create Users")
	var crew01ID uuid.UUID
	{
		names := []string{
			"crew-01", "crew-02", "crew-03", "crew-04", "crew-05", "crew-06",
			"crew-07", "crew-08", "crew-09", "crew-10", "crew-11", "crew-12",
		}
		for _, name := range names {
			body, _ := json.Marshal(map[string]interface{}{
				"username":      name,
				"password":      "pw-" + name,
				"user_group_id": crewID,
			})
			req, _ := http.NewRequest("POST", "/api/users", bytes.NewBuffer(body))
			req.Header.Set("Cookie", sessionCookie)
			w := httptest.NewRecorder()
			server.Router.ServeHTTP(w, req)
			require.Equal(t, http.StatusCreated, w.Code)

			if name == "crew-01" {
				var resp envelope
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				var created models.UserResponse
				require.NoError(t, json.Unmarshal(resp.Data, &created))
				crew01ID = created.ID
			}
		}

		// Duplicate username collides.
		body, _ := json.Marshal(map[string]interface{}{"username": "crew-01", "password": "pw"})
		req, _ := http.NewRequest("POST", "/api/users", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusConflict, w.Code)
	}

	// Step 5: List Users with pagination
	t.Log("Step 5: List Users with pagination")
	{
		// 13 users total (admin + 12 crew); size 5 page 2 is users 6-10.
		req, _ := http.NewRequest("GET", "/api/users?size=5&page=2", nil)
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var page []models.UserResponse
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Len(t, page, 5)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(13), resp.Pagination.Total)
		require.NotNil(t, resp.Pagination.PrevPage)
		assert.Contains(t, *resp.Pagination.PrevPage, "page=1&size=5")
		require.NotNil(t, resp.Pagination.NextPage)
		assert.Contains(t, *resp.Pagination.NextPage, "page=3&size=5")

		// Last page holds the remaining 3 and no next link.
		req, _ = http.NewRequest("GET", "/api/users?size=5&page=3", nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Len(t, page, 3)
		require.NotNil(t, resp.Pagination)
		assert.Nil(t, resp.Pagination.NextPage)
		require.NotNil(t, resp.Pagination.PrevPage)

		// Filtered by group: the admin drops out.
		req, _ = http.NewRequest("GET", "/api/users?user_group_id="+crewID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(12), resp.Pagination.Total)

		// Sorted by username descending.
		req, _ = http.NewRequest("GET", "/api/users?sort=username&order=desc", nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		require.NotEmpty(t, page)
		assert.Equal(t, "crew-12", page[0].Username)

		// Unknown sort column is rejected.
		req, _ = http.NewRequest("GET", "/api/users?sort=height", nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}

	// Step 6: PUT upserts
	t.Log("Step 6: PUT upserts")
	var wildcardID uuid.UUID
	{
		// Known id: full replace, password untouched.
		body, _ := json.Marshal(map[string]interface{}{
			"id":            crew01ID,
			"username":      "crew-01-renamed",
			"user_group_id": crewID,
		})
		req, _ := http.NewRequest("PUT", "/api/users", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var renamed models.UserResponse
		require.NoError(t, json.Unmarshal(resp.Data, &renamed))
		assert.Equal(t, crew01ID, renamed.ID)
		assert.Equal(t, "crew-01-renamed", renamed.Username)

		// The old password still works for the renamed account.
		body, _ = json.Marshal(map[string]string{"username": "crew-01-renamed", "password": "pw-crew-01"})
		req, _ = http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		// Unknown id: inserts, but under a server-generated id.
		suppliedID := uuid.New()
		body, _ = json.Marshal(map[string]interface{}{
			"id":       suppliedID,
			"username": "wildcard",
			"password": "pw-wildcard",
		})
		req, _ = http.NewRequest("PUT", "/api/users", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var wildcard models.UserResponse
		require.NoError(t, json.Unmarshal(resp.Data, &wildcard))
		assert.NotEqual(t, suppliedID, wildcard.ID)
		assert.Equal(t, "wildcard", wildcard.Username)
		wildcardID = wildcard.ID

		// Groups keep the id the client supplied.
		suppliedGroupID := uuid.New()
		body, _ = json.Marshal(map[string]interface{}{
			"id":         suppliedGroupID,
			"group_name": "reserves",
		})
		req, _ = http.NewRequest("PUT", "/api/user-groups", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var reserves models.UserGroupResponse
		require.NoError(t, json.Unmarshal(resp.Data, &reserves))
		assert.Equal(t, suppliedGroupID, reserves.ID)
	}

	// Step 7: Permissions and grants
	t.Log("Step 7: Permissions and grants")
	{
		body, _ := json.Marshal(map[string]string{"name": "content.read", "description": "read published content"})
		req, _ := http.NewRequest("POST", "/api/permissions", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var perm models.PermissionResponse
		require.NoError(t, json.Unmarshal(resp.Data, &perm))
		readID := perm.ID

		body, _ = json.Marshal(map[string]string{"name": "content.write"})
		req, _ = http.NewRequest("POST", "/api/permissions", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NoError(t, json.Unmarshal(resp.Data, &perm))
		writeID := perm.ID
		assert.Nil(t, perm.Description)

		// PUT with an unknown id inserts and keeps the supplied id.
		suppliedPermID := uuid.New()
		body, _ = json.Marshal(map[string]interface{}{"id": suppliedPermID, "name": "content.admin"})
		req, _ = http.NewRequest("PUT", "/api/permissions", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NoError(t, json.Unmarshal(resp.Data, &perm))
		assert.Equal(t, suppliedPermID, perm.ID)

		grant := func(groupID, permissionID uuid.UUID) *httptest.ResponseRecorder {
			body, _ := json.Marshal(map[string]interface{}{"group_id": groupID, "permission_id": permissionID})
			req, _ := http.NewRequest("POST", "/api/group-permissions", bytes.NewBuffer(body))
			req.Header.Set("Cookie", sessionCookie)
			w := httptest.NewRecorder()
			server.Router.ServeHTTP(w, req)
			return w
		}
		require.Equal(t, http.StatusCreated, grant(crewID, readID).Code)
		require.Equal(t, http.StatusCreated, grant(crewID, writeID).Code)
		require.Equal(t, http.StatusConflict, grant(crewID, readID).Code, "granting twice should collide")

		// Composite get round-trips.
		req, _ = http.NewRequest("GET", "/api/group-permissions/"+crewID.String()+"/"+readID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var gp models.GroupPermissionResponse
		require.NoError(t, json.Unmarshal(resp.Data, &gp))
		assert.Equal(t, crewID, gp.GroupID)
		assert.Equal(t, readID, gp.PermissionID)

		// Filter by group.
		req, _ = http.NewRequest("GET", "/api/group-permissions?group_id="+crewID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(2), resp.Pagination.Total)

		// Bulk delete requires exactly one owner filter.
		req, _ = http.NewRequest("DELETE", "/api/group-permissions", nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)

		req, _ = http.NewRequest("DELETE", "/api/group-permissions?group_id="+crewID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var removed []models.GroupPermissionResponse
		require.NoError(t, json.Unmarshal(resp.Data, &removed))
		assert.Len(t, removed, 2)
		assert.Nil(t, resp.Pagination)

		// Per-user grants follow the same composite shape.
		body, _ = json.Marshal(map[string]interface{}{"user_id": admin.ID, "permission_id": writeID})
		req, _ = http.NewRequest("POST", "/api/user-permissions", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		req, _ = http.NewRequest("DELETE", "/api/user-permissions/"+admin.ID.String()+"/"+writeID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		req, _ = http.NewRequest("GET", "/api/user-permissions/"+admin.ID.String()+"/"+writeID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	// Step 8: Contents
	t.Log("Step 8: Contents")
	{
		create := func(text string) models.ContentResponse {
			body, _ := json.Marshal(map[string]interface{}{"body": text, "author_id": admin.ID})
			req, _ := http.NewRequest("POST", "/api/contents", bytes.NewBuffer(body))
			req.Header.Set("Cookie", sessionCookie)
			w := httptest.NewRecorder()
			server.Router.ServeHTTP(w, req)
			require.Equal(t, http.StatusCreated, w.Code)

			var resp envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			var content models.ContentResponse
			require.NoError(t, json.Unmarshal(resp.Data, &content))
			return content
		}

		first := create("orientation notes")
		second := create("duty schedule")
		third := create("mess hall menu")
		require.NotNil(t, first.AuthorID)
		assert.Equal(t, admin.ID, *first.AuthorID)

		body, _ := json.Marshal(map[string]interface{}{"body": "orientation notes (rev 2)", "author_id": admin.ID})
		req, _ := http.NewRequest("PUT", "/api/contents/"+first.ID.String(), bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var edited models.ContentResponse
		require.NoError(t, json.Unmarshal(resp.Data, &edited))
		assert.Equal(t, "orientation notes (rev 2)", edited.Body)

		// Bulk delete: unknown ids are skipped, known ones come back.
		body, _ = json.Marshal(map[string]interface{}{"ids": []uuid.UUID{second.ID, third.ID, uuid.New()}})
		req, _ = http.NewRequest("DELETE", "/api/contents", bytes.NewBuffer(body))
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var removed []models.ContentResponse
		require.NoError(t, json.Unmarshal(resp.Data, &removed))
		assert.Len(t, removed, 2)
		assert.Nil(t, resp.Pagination)

		req, _ = http.NewRequest("GET", "/api/contents", nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(1), resp.Pagination.Total)
	}

	// Step 9: Overview stats
	t.Log("Step 9: Overview stats")
	{
		req, _ := http.NewRequest("GET", "/api/stats", nil)
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Nil(t, resp.Pagination)
		var stats models.OverviewStats
		require.NoError(t, json.Unmarshal(resp.Data, &stats))

		// admin, crew-01-renamed through crew-12 and wildcard.
		assert.Equal(t, 14, stats.TotalUsers)
		assert.Equal(t, 14, stats.TotalUsersChange)
		assert.Equal(t, 2, stats.TotalUserGroups)
		assert.Equal(t, 3, stats.TotalPermissions)
		assert.Equal(t, 0, stats.TotalGroupGrants, "grants were all revoked in step 7")
		assert.Equal(t, 0, stats.TotalUserGrants)
		assert.Equal(t, 1, stats.TotalContents)
		assert.Equal(t, 1, stats.TotalContentsChange)
		require.Len(t, stats.RecentContents, 1)
		assert.Equal(t, "orientation notes (rev 2)", stats.RecentContents[0].Body)

		// Scoped to the crew group the admin and wildcard drop out.
		req, _ = http.NewRequest("GET", "/api/stats?user_group_id="+crewID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NoError(t, json.Unmarshal(resp.Data, &stats))
		assert.Equal(t, 12, stats.TotalUsers)
		assert.Equal(t, 2, stats.TotalUserGroups, "group count stays global")

		req, _ = http.NewRequest("GET", "/api/stats?user_group_id=not-a-uuid", nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}

	// Step 10: Delete User
	t.Log("Step 10: Delete User")
	{
		req, _ := http.NewRequest("DELETE", "/api/users/"+wildcardID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var deleted models.UserResponse
		require.NoError(t, json.Unmarshal(resp.Data, &deleted))
		assert.Equal(t, "wildcard", deleted.Username)

		req, _ = http.NewRequest("GET", "/api/users/"+wildcardID.String(), nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	// Step 11: Logout
	t.Log("Step 11: Logout")
	{
		req, _ := http.NewRequest("POST", "/api/auth/logout", nil)
		req.Header.Set("Cookie", sessionCookie)
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		req, _ = http.NewRequest("GET", "/api/users", nil)
		req.Header.Set("Cookie", sessionCookie)
		w = httptest.NewRecorder()
		server.Router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, "the session should be gone after logout")
	}
}
