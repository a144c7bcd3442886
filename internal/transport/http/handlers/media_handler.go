package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	mediasvc "github.com/MwahCodes/dates-and-debates/internal/services/media"
	"github.com/MwahCodes/dates-and-debates/internal/transport/http/dto"
	httperrors "github.com/MwahCodes/dates-and-debates/internal/transport/http/errors"
)

const avatarFormField = "avatar"

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "avatar file is required")
		return
	}
	defer file.Close()

	key, err := h.service.UploadAvatar(r.Context(), identity.UserID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid avatar upload")
		case errors.Is(err, mediasvc.ErrUnsupportedType):
			writeBadRequest(w, "UNSUPPORTED_MEDIA_TYPE", "avatar must be jpeg, png or webp")
		case errors.Is(err, mediasvc.ErrTooLarge):
			writeBadRequest(w, "PAYLOAD_TOO_LARGE", "avatar exceeds the size limit")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to upload avatar")
		}
		return
	}

	resp := dto.AvatarUploadResponse{OK: true, AvatarKey: key}
	if url, err := h.service.AvatarURL(r.Context(), key); err == nil {
		resp.AvatarURL = url
	}

	httperrors.Write(w, http.StatusOK, resp)
}
