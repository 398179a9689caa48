package controllers

import (
	"net/http"

	"bulletin/app/auth"
	"bulletin/app/services"
)

// LikeController handles like toggles
type LikeController struct {
	likeService *services.LikeService
}

// NewLikeController creates a new LikeController
func NewLikeController(likeService *services.LikeService) *LikeController {
	return &LikeController{likeService: likeService}
}

// TogglePost likes or unlikes a post and returns it with the new count
func (lc *LikeController) TogglePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	post, err := lc.likeService.ToggleLikeOnPost(r.Context(), id, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// ToggleComment likes or unlikes a comment and returns it with the new count
func (lc *LikeController) ToggleComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	comment, err := lc.likeService.ToggleLikeOnComment(r.Context(), id, auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}
