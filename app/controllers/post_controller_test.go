package controllers

import (
	"net/http"
	"testing"

	"bulletin/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostController(t *testing.T) {
	env := setupTestEnv(t)
	env.addUser(t, "writer", models.RoleUser)
	env.addUser(t, "other", models.RoleUser)
	env.addUser(t, "admin", models.RoleAdmin)

	t.Run("create post", func(t *testing.T) {
		var post models.PostView
		status, envelope := env.do(t, "POST", "/api/post", "writer", `{"title":"Test Post","body":"Test body"}`, &post)

		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, http.StatusCreated, envelope.Status)
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, "Test Post", post.Title)
		assert.Equal(t, "writer", post.Username)
		assert.NotNil(t, post.Comments)
	})

	t.Run("create rejects bad payloads", func(t *testing.T) {
		status, envelope := env.do(t, "POST", "/api/post", "writer", `{"title":`, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, envelope.Error, "invalid JSON")

		status, _ = env.do(t, "POST", "/api/post", "writer", `{"title":"","body":"x"}`, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("create without user", func(t *testing.T) {
		status, _ := env.do(t, "POST", "/api/post", "", `{"title":"t","body":"b"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("list posts", func(t *testing.T) {
		var posts []*models.PostView
		status, _ := env.do(t, "GET", "/api/posts", "", "", &posts)
		assert.Equal(t, http.StatusOK, status)
		require.Len(t, posts, 1)
		assert.Equal(t, "Test Post", posts[0].Title)
	})

	t.Run("get post", func(t *testing.T) {
		var post models.PostView
		status, _ := env.do(t, "GET", "/api/post/1", "", "", &post)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Test body", post.Body)
	})

	t.Run("get missing or malformed post", func(t *testing.T) {
		status, envelope := env.do(t, "GET", "/api/post/999", "", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, CodeNotFound, envelope.Code)

		status, _ = env.do(t, "GET", "/api/post/abc", "", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("update by stranger", func(t *testing.T) {
		status, envelope := env.do(t, "PUT", "/api/post/1", "other", `{"title":"mine","body":"now"}`, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, CodeNotOwner, envelope.Code)
	})

	t.Run("update by owner and admin", func(t *testing.T) {
		var post models.PostView
		status, _ := env.do(t, "PUT", "/api/post/1", "writer", `{"title":"Updated","body":"b"}`, &post)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Updated", post.Title)

		status, _ = env.do(t, "PUT", "/api/post/1", "admin", `{"title":"Moderated","body":"b"}`, &post)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Moderated", post.Title)
	})

	t.Run("delete post", func(t *testing.T) {
		status, envelope := env.do(t, "DELETE", "/api/post/999", "other", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, CodeNotFound, envelope.Code)

		var ack models.Ack
		status, _ = env.do(t, "DELETE", "/api/post/1", "writer", "", &ack)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "post deleted", ack.Message)

		status, _ = env.do(t, "GET", "/api/post/1", "", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
