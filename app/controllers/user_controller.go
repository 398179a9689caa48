package controllers

import (
	"net/http"

	"bulletin/app/auth"
	"bulletin/app/models"
	"bulletin/app/services"
)

// UserController handles signup, login and account removal
type UserController struct {
	userService *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

type userResponse struct {
	ID       int         `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// Signup creates an account
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decode(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	user, err := uc.userService.Signup(r.Context(), &req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username, Role: user.Role})
}

// Login exchanges credentials for a bearer token
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	token, err := uc.userService.Login(r.Context(), &req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, token)
}

// DeleteMe removes the caller's account and everything it owns
func (uc *UserController) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ack, err := uc.userService.DeleteAccount(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, ack)
}
