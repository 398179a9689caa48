package controllers

import (
	"net/http"

	"bulletin/app/auth"
	"bulletin/app/models"
	"bulletin/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// Create handles adding a comment, or a reply when the body names a parent
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		sendError(w, r, err)
		return
	}

	var req models.CommentRequest
	if err := decode(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	comment, err := cc.commentService.CreateComment(r.Context(), postID, &req, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// Edit handles updating a comment body
func (cc *CommentController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	var req models.CommentRequest
	if err := decode(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	comment, err := cc.commentService.UpdateComment(r.Context(), id, &req, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Delete handles deleting a comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	ack, err := cc.commentService.DeleteComment(r.Context(), id, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, ack)
}
