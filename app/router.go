package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/mikotobay/inkwell/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activate", app.activateUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:username", app.getUserProfileHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/:username/followers", app.listFollowersHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/:username/following", app.listFollowingHandler)
	router.HandlerFunc(http.MethodPut, "/v1/profile", app.requireActivatedUser(app.updateProfileHandler))

	// follows
	router.HandlerFunc(http.MethodPost, "/v1/follows/:username", app.requireActivatedUser(app.followUserHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/follows/:username", app.requireActivatedUser(app.unfollowUserHandler))

	// blog service
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requirePermission(app.createPostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:id", app.getPostHandler)
	router.HandlerFunc(http.MethodPut, "/v1/posts/:id", app.requirePermission(app.updatePostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:id", app.requirePermission(app.deletePostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:id/similar", app.similarPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/drafts", app.requireActivatedUser(app.listDraftsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/categories", app.listCategoriesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tags", app.requirePermission(app.createTagHandler, userservice.PermissionWritePost))

	// comment service
	router.HandlerFunc(http.MethodGet, "/v1/posts/:id/comments", app.getThreadHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/comments", app.requireActivatedUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireActivatedUser(app.deleteCommentHandler))

	// reactions
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/like", app.requireActivatedUser(app.likePostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/dislike", app.requireActivatedUser(app.dislikePostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/comments/:id/like", app.requireActivatedUser(app.likeCommentHandler))
	router.HandlerFunc(http.MethodPost, "/v1/comments/:id/dislike", app.requireActivatedUser(app.dislikeCommentHandler))

	// notifications
	router.HandlerFunc(http.MethodGet, "/v1/notifications", app.requireAuthUser(app.listNotificationsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/notifications/unread", app.requireAuthUser(app.unreadNotificationsHandler))
	router.HandlerFunc(http.MethodPut, "/v1/notifications/:id/read", app.requireAuthUser(app.markNotificationReadHandler))

	return app.recoverPanic(app.rateLimit(app.logRequest(app.authenticate(router))))
}
