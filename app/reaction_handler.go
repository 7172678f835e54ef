package main

import (
	"errors"
	"net/http"

	"github.com/mikotobay/inkwell/internal/common"
	"github.com/mikotobay/inkwell/internal/reactionservice"
)

func (app *application) toggleReaction(w http.ResponseWriter, r *http.Request, target reactionservice.TargetKind, kind reactionservice.Kind) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	result, err := app.reactionService.Toggle(r.Context(), user.ID, target, id, kind)
	if err != nil {
		switch {
		case errors.Is(err, reactionservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"reaction": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) likePostHandler(w http.ResponseWriter, r *http.Request) {
	app.toggleReaction(w, r, reactionservice.TargetPost, reactionservice.KindLike)
}

func (app *application) dislikePostHandler(w http.ResponseWriter, r *http.Request) {
	app.toggleReaction(w, r, reactionservice.TargetPost, reactionservice.KindDislike)
}

func (app *application) likeCommentHandler(w http.ResponseWriter, r *http.Request) {
	app.toggleReaction(w, r, reactionservice.TargetComment, reactionservice.KindLike)
}

func (app *application) dislikeCommentHandler(w http.ResponseWriter, r *http.Request) {
	app.toggleReaction(w, r, reactionservice.TargetComment, reactionservice.KindDislike)
}
