package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	mediasvc "github.com/MwahCodes/dates-and-debates/internal/services/media"
	profilesvc "github.com/MwahCodes/dates-and-debates/internal/services/profiles"
	"github.com/MwahCodes/dates-and-debates/internal/transport/http/dto"
	httperrors "github.com/MwahCodes/dates-and-debates/internal/transport/http/errors"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

const birthdayLayout = "2006-01-02"

type ProfileHandler struct {
	service *profilesvc.Service
	media   *mediasvc.Service
}

func NewProfileHandler(service *profilesvc.Service, media *mediasvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service, media: media}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	user, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, h.mapProfile(r.Context(), user, true))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	update := profilesvc.ProfileUpdate{
		Name:           req.Name,
		EducationLevel: req.EducationLevel,
		HeightCM:       req.HeightCM,
		WeightKG:       req.WeightKG,
		MBTIType:       req.MBTIType,
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(birthdayLayout, *req.Birthday)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "birthday must be formatted as YYYY-MM-DD")
			return
		}
		update.Birthday = &birthday
	}

	user, err := h.service.Update(r.Context(), identity.UserID, update)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, h.mapProfile(r.Context(), user, true))
}

func (h *ProfileHandler) mapProfile(ctx context.Context, user pgrepo.UserRecord, includeEmail bool) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ID:             user.ID.String(),
		Name:           user.Name,
		EducationLevel: user.EducationLevel,
		HeightCM:       user.HeightCM,
		WeightKG:       user.WeightKG,
		MBTIType:       user.MBTIType,
		CreatedAt:      user.CreatedAt.UTC().Format(time.RFC3339),
	}
	if includeEmail {
		resp.Email = user.Email
	}
	if user.Birthday != nil {
		resp.Birthday = user.Birthday.UTC().Format(birthdayLayout)
	}
	if user.AvatarKey != "" && h.media != nil {
		if url, err := h.media.AvatarURL(ctx, user.AvatarKey); err == nil {
			resp.AvatarURL = url
		}
	}
	return resp
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile payload")
	case errors.Is(err, profilesvc.ErrUserNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user does not exist")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process profile request")
	}
}
