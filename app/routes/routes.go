package routes

import (
	"encoding/json"
	"net/http"

	"bulletin/app/auth"
	"bulletin/app/controllers"
	"bulletin/app/lock"
	"bulletin/app/middleware"
	"bulletin/app/models"
	"bulletin/app/repositories"
	"bulletin/app/services"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the router builds its services from.
type Dependencies struct {
	Store      repositories.Store
	Locker     lock.Locker
	Issuer     *auth.TokenIssuer
	AdminToken string
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Authenticate(deps.Issuer))

	postController := controllers.NewPostController(services.NewPostService(deps.Store))
	commentController := controllers.NewCommentController(services.NewCommentService(deps.Store))
	likeController := controllers.NewLikeController(services.NewLikeService(deps.Store, deps.Locker))
	userController := controllers.NewUserController(services.NewUserService(deps.Store, deps.Issuer, deps.AdminToken))

	api := router.PathPrefix("/api").Subrouter()

	// Account endpoints
	api.HandleFunc("/auth/signup", userController.Signup).Methods("POST")
	api.HandleFunc("/auth/login", userController.Login).Methods("POST")
	api.Handle("/auth/me", requireUser(userController.DeleteMe)).Methods("DELETE")

	// Post endpoints
	api.HandleFunc("/posts", postController.Index).Methods("GET")
	api.Handle("/post", requireUser(postController.Create)).Methods("POST")
	api.HandleFunc("/post/{id:[0-9]+}", postController.Show).Methods("GET")
	api.Handle("/post/{id:[0-9]+}", requireUser(postController.Edit)).Methods("PUT")
	api.Handle("/post/{id:[0-9]+}", requireUser(postController.Delete)).Methods("DELETE")

	// Comment endpoints
	api.Handle("/comment/{postId:[0-9]+}", requireUser(commentController.Create)).Methods("POST")
	api.Handle("/comment/{id:[0-9]+}", requireUser(commentController.Edit)).Methods("PUT")
	api.Handle("/comment/{id:[0-9]+}", requireUser(commentController.Delete)).Methods("DELETE")

	// Like endpoints
	api.Handle("/likes/post/{id:[0-9]+}", requireUser(likeController.TogglePost)).Methods("PUT")
	api.Handle("/likes/comment/{id:[0-9]+}", requireUser(likeController.ToggleComment)).Methods("PUT")

	return router
}

func requireUser(h http.HandlerFunc) http.Handler {
	return middleware.RequireUser(h)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Envelope{Status: status, Error: message})
}
