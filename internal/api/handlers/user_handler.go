package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/St1cky1/user-service/internal/entity"
	"github.com/St1cky1/user-service/internal/upload"
	"github.com/St1cky1/user-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type UserHandler struct {
	userService *usecase.UserService
	guard       *upload.Guard
}

func NewUserHandler(userService *usecase.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		guard:       upload.NewGuard(upload.MaxFileSize),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// все ошибки наружу уходят в одном виде: {"error": "..."}
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ошибки Upload Guard все маппятся в 400
func writeUploadError(w http.ResponseWriter, err error) {
	switch err {
	case entity.ErrUnsupportedMedia:
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
	case entity.ErrFileTooLarge:
		writeError(w, http.StatusBadRequest, "File too large. Maximum size is 10MB")
	case entity.ErrUnexpectedFile:
		writeError(w, http.StatusBadRequest, "Unexpected file field")
	default:
		writeError(w, http.StatusBadRequest, "Invalid form data")
	}
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}

func userId(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// ListUsers - GET /users?page=&limit=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	limit := queryInt(r, "limit", defaultLimit)

	result, err := h.userService.ListUsers(r.Context(), page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateUser - POST /users, multipart: name + опциональный файл image
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	form, err := h.guard.ParseForm(r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	var image []byte
	if form.File != nil {
		image = form.File.Data
	}

	user, err := h.userService.CreateUser(r.Context(), form.Fields["name"], image)
	if err != nil {
		switch err {
		case entity.ErrNameRequired:
			writeError(w, http.StatusBadRequest, "Name is a required field")
		default:
			// путь создания остальные ошибки отдает как 400
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUser - GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		switch err {
		case entity.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser - PUT /users/{id}, multipart: любое подмножество полей.
// Ответ отдаем как есть, без перекладки image -> imageBase64.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	form, err := h.guard.ParseForm(r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	var name *string
	if value, ok := form.Fields["name"]; ok {
		name = &value
	}
	var image []byte
	if form.File != nil {
		image = form.File.Data
	}

	user, err := h.userService.UpdateUser(r.Context(), id, name, image)
	if err != nil {
		switch err {
		case entity.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser - DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	err = h.userService.DeleteUser(r.Context(), id)
	if err != nil {
		switch err {
		case entity.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetImage - GET /users/{id}/image, сырые байты картинки
func (h *UserHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := userId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	data, err := h.userService.GetImage(r.Context(), id)
	if err != nil {
		switch err {
		case entity.ErrImageNotFound:
			writeError(w, http.StatusNotFound, "Image not found")
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

// UpdateImage - PUT /users/{id}/image, файл обязателен
func (h *UserHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, err := userId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	form, err := h.guard.ParseForm(r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	if form.File == nil {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}

	result, err := h.userService.UpdateImage(r.Context(), id, form.File.Data)
	if err != nil {
		switch err {
		case entity.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetAuditTrail - GET /users/{id}/audit
func (h *UserHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := userId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	audits, err := h.userService.GetAuditTrail(r.Context(), id)
	if err != nil {
		switch err {
		case entity.ErrUserNotFound:
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, audits)
}
