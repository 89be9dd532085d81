package web

import (
	"net/http"
	"strconv"

	"github.com/ETTyler/football/controller"
	"github.com/unrolled/render"
)

type countResponse struct {
	Count int `json:"count"`
}

func listNotificationsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			var err error
			if limit, err = strconv.Atoi(l); err != nil {
				renderBadRequest(render, w, "Failed to load notifications: limit must be a number")
				return
			}
		}

		notifications, err := ctrl.ListNotifications(r.Context(), currentUser(r).ID, limit)
		if err != nil {
			renderError(render, w, r, err, "Failed to load notifications")
			return
		}
		render.JSON(w, http.StatusOK, notifications)
	}
}

func unreadCountHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, countResponse{Count: ctrl.UnreadNotificationCount(r.Context(), currentUser(r).ID)})
	}
}

func markReadHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "notificationID")
		if err != nil {
			renderError(render, w, r, err, "Failed to mark notification as read")
			return
		}

		if err := ctrl.MarkNotificationRead(r.Context(), currentUser(r).ID, id); err != nil {
			renderError(render, w, r, err, "Failed to mark notification as read")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func markAllReadHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.MarkAllNotificationsRead(r.Context(), currentUser(r).ID); err != nil {
			renderError(render, w, r, err, "Failed to mark all notifications as read")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteNotificationHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "notificationID")
		if err != nil {
			renderError(render, w, r, err, "Failed to delete notification")
			return
		}

		if err := ctrl.DeleteNotification(r.Context(), currentUser(r).ID, id); err != nil {
			renderError(render, w, r, err, "Failed to delete notification")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
