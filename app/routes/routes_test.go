package routes

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"bulletin/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRoutes(t *testing.T) {
	router := setupTestRouter(t)
	token := signup(t, router, "alice", "")
	require.Equal(t, http.StatusCreated, call(t, router, "POST", "/api/post", token, `{"title":"t","body":"b"}`).Code)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{"GET posts", "GET", "/api/posts", "", http.StatusOK},
		{"GET single post", "GET", "/api/post/1", "", http.StatusOK},
		{"Missing post", "GET", "/api/post/2", "", http.StatusNotFound},
		{"Invalid post ID", "GET", "/api/post/invalid", "", http.StatusNotFound},
		{"Unknown route", "GET", "/api/nothing", "", http.StatusNotFound},
		{"Wrong method", "PATCH", "/api/post/1", token, http.StatusMethodNotAllowed},
		{"Create needs a token", "POST", "/api/post", "", http.StatusUnauthorized},
		{"Update needs a token", "PUT", "/api/post/1", "", http.StatusUnauthorized},
		{"Comment needs a token", "POST", "/api/comment/1", "", http.StatusUnauthorized},
		{"Like needs a token", "PUT", "/api/likes/post/1", "", http.StatusUnauthorized},
		{"Bad token", "GET", "/api/posts", "forged", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, router, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.expectedStatus, res.Code)
			assert.Equal(t, tt.expectedStatus, res.Body.Status)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
		})
	}
}

// TestBoardOverHTTP runs the post, thread and like lifecycle against badger.
func TestBoardOverHTTP(t *testing.T) {
	router := setupTestRouter(t)
	u1 := signup(t, router, "userone", "")
	u2 := signup(t, router, "usertwo", "")
	u3 := signup(t, router, "userthree", "")
	admin := signup(t, router, "admin", testAdminToken)

	res := call(t, router, "POST", "/api/post", u1, `{"title":"A","body":"b"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var post models.PostView
	res.decode(t, &post)
	assert.Equal(t, 1, post.ID)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	res = call(t, router, "POST", "/api/comment/1", u2, `{"body":"c1"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var c1 models.CommentView
	res.decode(t, &c1)

	res = call(t, router, "POST", "/api/comment/1", u3, fmt.Sprintf(`{"body":"c2","parentCommentId":%d}`, c1.ID))
	require.Equal(t, http.StatusCreated, res.Code)

	res = call(t, router, "GET", "/api/post/1", "", "")
	res.decode(t, &post)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "c1", post.Comments[0].Body)
	require.Len(t, post.Comments[0].Children, 1)
	assert.Equal(t, "c2", post.Comments[0].Children[0].Body)

	res = call(t, router, "PUT", "/api/likes/post/1", u2, "")
	res.decode(t, &post)
	assert.Equal(t, 1, post.LikeCount)
	res = call(t, router, "PUT", "/api/likes/post/1", u2, "")
	res.decode(t, &post)
	assert.Equal(t, 0, post.LikeCount)

	res = call(t, router, "PUT", "/api/post/1", u3, `{"title":"X","body":"y"}`)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "NOT_WRITER", res.Body.Code)

	before := post.ModifiedAt
	res = call(t, router, "PUT", "/api/post/1", admin, `{"title":"X","body":"y"}`)
	require.Equal(t, http.StatusOK, res.Code)
	res.decode(t, &post)
	assert.True(t, post.ModifiedAt.After(before))

	res = call(t, router, "DELETE", "/api/comment/99", u1, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "NOT_FOUND_WRITING", res.Body.Code)

	res = call(t, router, "DELETE", "/api/post/1", u1, "")
	assert.Equal(t, http.StatusOK, res.Code)
	res = call(t, router, "PUT", "/api/likes/comment/1", u2, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestConcurrentLikeToggles(t *testing.T) {
	router := setupTestRouter(t)
	token := signup(t, router, "alice", "")
	require.Equal(t, http.StatusCreated, call(t, router, "POST", "/api/post", token, `{"title":"t","body":"b"}`).Code)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := call(t, router, "PUT", "/api/likes/post/1", token, "")
			assert.Equal(t, http.StatusOK, res.Code)
		}()
	}
	wg.Wait()

	var post models.PostView
	call(t, router, "GET", "/api/post/1", "", "").decode(t, &post)
	assert.Equal(t, 0, post.LikeCount)
}
