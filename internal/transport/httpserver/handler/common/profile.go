package common

import (
	"errors"
	"net/http"
	"strings"
	"time"

	userdomain "colors-app-go/internal/domain/user"
	"colors-app-go/internal/storage/s3"
	"colors-app-go/internal/transport/httpserver/middleware"
)

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarKey   *string `json:"avatar_key"`
}

type avatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

type profileResponse struct {
	UserID      string    `json:"user_id"`
	Phone       *string   `json:"phone"`
	DisplayName string    `json:"display_name"`
	AvatarKey   *string   `json:"avatar_key"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Profiles.GetProfile(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, userdomain.ErrProfileNotFound) {
			h.log.BusinessError("profile.get: profile not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
			return
		}
		h.log.InternalError("profile.get: get profile failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, h.toProfileResponse(r, profile))
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if req.AvatarKey != nil {
		key := strings.TrimSpace(*req.AvatarKey)
		if key != "" && h.Avatars != nil && !h.Avatars.OwnsKey(user.ID, key) {
			writeError(w, http.StatusBadRequest, "invalid_request", "avatar_key was not issued to this user")
			return
		}
	}

	profile, err := h.Profiles.UpdateProfile(r.Context(), user.ID, userdomain.UpdateInput{
		DisplayName: req.DisplayName,
		AvatarKey:   req.AvatarKey,
	})
	if err != nil {
		var validation *userdomain.ValidationError
		switch {
		case errors.As(err, &validation):
			writeError(w, http.StatusBadRequest, "invalid_request", validation.Error())
		case errors.Is(err, userdomain.ErrProfileNotFound):
			h.log.BusinessError("profile.update: profile not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
		default:
			h.log.InternalError("profile.update: update profile failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, h.toProfileResponse(r, profile))
}

func (h *Handlers) CreateAvatarUpload(w http.ResponseWriter, r *http.Request) {
	if h.Avatars == nil {
		writeError(w, http.StatusServiceUnavailable, "avatars_disabled", "avatar storage not configured")
		return
	}

	var req avatarUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	upload, err := h.Avatars.PresignUpload(r.Context(), user.ID, req.ContentType)
	if err != nil {
		if errors.Is(err, s3.ErrUnsupportedContentType) {
			writeError(w, http.StatusBadRequest, "invalid_request", "content_type must be image/jpeg, image/png or image/webp")
			return
		}
		h.log.InternalError("profile.avatar: presign upload failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, upload)
}

func (h *Handlers) toProfileResponse(r *http.Request, profile *userdomain.Profile) profileResponse {
	response := profileResponse{
		UserID:      profile.UserID,
		Phone:       profile.Phone,
		DisplayName: profile.DisplayName,
		AvatarKey:   profile.AvatarKey,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
	if h.Avatars != nil && profile.AvatarKey != nil && *profile.AvatarKey != "" {
		url, err := h.Avatars.PresignRead(r.Context(), *profile.AvatarKey)
		if err != nil {
			h.log.InternalError("profile: presign avatar read failed", err, "user_id", profile.UserID)
		} else {
			response.AvatarURL = url
		}
	}
	return response
}
