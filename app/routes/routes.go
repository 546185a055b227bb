// Package routes wires the repositories, services and controllers into
// the HTTP router.
package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"microsocial/app/auth"
	"microsocial/app/config"
	"microsocial/app/controllers"
	"microsocial/app/metrics"
	"microsocial/app/middleware"
	"microsocial/app/repositories"
	"microsocial/app/services"

	"github.com/gorilla/mux"
)

// Options carries what SetupRoutes needs to build the application.
type Options struct {
	Store   *repositories.Store
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) (*mux.Router, error) {
	cfg, logger, m := opts.Config, opts.Logger, opts.Metrics

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	authors, err := services.NewAuthorCache(opts.Store.Users, cfg.AuthorCacheSize)
	if err != nil {
		return nil, fmt.Errorf("author cache: %w", err)
	}
	counter := services.NewCounterCoordinator(opts.Store.Posts, logger, m)

	userService := services.NewUserService(opts.Store.Users, opts.Store.Posts, tokens, authors, cfg.BcryptCost)
	postService := services.NewPostService(opts.Store.Posts, opts.Store.Comments, opts.Store.Likes, authors, logger)
	commentService := services.NewCommentService(opts.Store.Comments, opts.Store.Posts, counter, authors, m)
	likeService := services.NewLikeService(opts.Store.Likes, opts.Store.Posts, counter, m)

	authController := controllers.NewAuthController(userService, logger)
	userController := controllers.NewUserController(userService, logger)
	postController := controllers.NewPostController(postService, logger)
	commentController := controllers.NewCommentController(commentService, logger)
	likeController := controllers.NewLikeController(likeService, logger)
	requireAuth := middleware.NewAuth(tokens, logger, m).RequireAuth

	router := mux.NewRouter()

	// Apply global middleware
	global := []mux.MiddlewareFunc{
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Metrics(m),
		middleware.Recoverer(logger),
		middleware.ContentTypeJSON,
	}
	router.Use(global...)

	// router.Use only wraps matched routes
	router.NotFoundHandler = chain(http.HandlerFunc(controllers.NotFound), global)
	router.MethodNotAllowedHandler = chain(http.HandlerFunc(controllers.MethodNotAllowed), global)

	router.HandleFunc("/health", controllers.Health).Methods("GET")
	router.Handle("/metrics", m.Handler()).Methods("GET")

	// Auth endpoints
	authRoutes := router.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/signup", authController.Signup).Methods("POST")
	authRoutes.HandleFunc("/login", authController.Login).Methods("POST")
	authRoutes.Handle("/me", requireAuth(http.HandlerFunc(authController.Me))).Methods("GET")

	// Posts endpoints; fixed segments precede {id}
	posts := router.PathPrefix("/posts").Subrouter()
	posts.Use(requireAuth)
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/feed", postController.Feed).Methods("GET")
	posts.HandleFunc("/user/{id}", postController.ByUser).Methods("GET")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id}", postController.Update).Methods("PUT")
	posts.HandleFunc("/{id}", postController.Delete).Methods("DELETE")

	likes := router.PathPrefix("/likes").Subrouter()
	likes.Use(requireAuth)
	likes.HandleFunc("/{postId}", likeController.Toggle).Methods("POST")

	// Comments endpoints. POST and GET take a post id, DELETE a comment id.
	comments := router.PathPrefix("/comments").Subrouter()
	comments.Use(requireAuth)
	comments.HandleFunc("/{postId}", commentController.Create).Methods("POST")
	comments.HandleFunc("/{postId}", commentController.Index).Methods("GET")
	comments.HandleFunc("/{id}", commentController.Delete).Methods("DELETE")

	users := router.PathPrefix("/users").Subrouter()
	users.Use(requireAuth)
	users.HandleFunc("/search", userController.Search).Methods("GET")
	users.HandleFunc("/profile", userController.UpdateProfile).Methods("PUT")
	users.HandleFunc("/{id}", userController.Show).Methods("GET")

	return router, nil
}

func chain(h http.Handler, mws []mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
