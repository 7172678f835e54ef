package main

import (
	"errors"
	"net/http"

	"github.com/mikotobay/inkwell/internal/common"
	"github.com/mikotobay/inkwell/internal/notificationservice"
)

func (app *application) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	notifications, err := app.notificationService.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"notifications": notifications}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) unreadNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	count, err := app.notificationService.UnreadCount(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"unread": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) markNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.notificationService.MarkRead(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, notificationservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "notification marked as read"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
