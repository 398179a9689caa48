package controllers

import (
	"net/http"

	"bulletin/app/auth"
	"bulletin/app/models"
	"bulletin/app/services"
)

// PostController handles HTTP requests for posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PostRequest
	if err := decode(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), &req, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Edit handles updating an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	var req models.PostRequest
	if err := decode(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), id, &req, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	ack, err := pc.postService.DeletePost(r.Context(), id, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, ack)
}
