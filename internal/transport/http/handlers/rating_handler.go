package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	mediasvc "github.com/MwahCodes/dates-and-debates/internal/services/media"
	ratingsvc "github.com/MwahCodes/dates-and-debates/internal/services/ratings"
	"github.com/MwahCodes/dates-and-debates/internal/transport/http/dto"
	httperrors "github.com/MwahCodes/dates-and-debates/internal/transport/http/errors"
)

type RatingHandler struct {
	service *ratingsvc.Service
	media   *mediasvc.Service
}

func NewRatingHandler(service *ratingsvc.Service, media *mediasvc.Service) *RatingHandler {
	return &RatingHandler{service: service, media: media}
}

func (h *RatingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RATINGS_SERVICE_UNAVAILABLE", "ratings service is unavailable")
		return
	}

	var req dto.RatingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	ratedID, err := uuid.Parse(req.RatedID)
	if err != nil || ratedID == uuid.Nil {
		writeBadRequest(w, "VALIDATION_ERROR", "rated_id must be a valid user id")
		return
	}

	rating, err := h.service.Submit(r.Context(), identity.UserID, ratedID, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, ratingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "score must be between 1 and 10")
		case errors.Is(err, ratingsvc.ErrSelfRating):
			writeBadRequest(w, "VALIDATION_ERROR", "cannot rate yourself")
		case errors.Is(err, ratingsvc.ErrUserNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "rated user does not exist")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to submit rating")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RatingResponse{
		OK:      true,
		RatedID: rating.RatedID.String(),
		Score:   rating.Score,
	})
}

func (h *RatingHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RATINGS_SERVICE_UNAVAILABLE", "ratings service is unavailable")
		return
	}

	stats, err := h.service.Stats(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ratingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid stats request")
		case errors.Is(err, ratingsvc.ErrUserNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "user does not exist")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load rating stats")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RatingStatsResponse{
		UserID:       stats.UserID.String(),
		Name:         stats.Name,
		MBTIType:     stats.MBTIType,
		AvatarURL:    h.avatarURL(r.Context(), stats.AvatarKey),
		AverageScore: stats.AverageScore,
		RatingCount:  stats.RatingCount,
	})
}

func (h *RatingHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RATINGS_SERVICE_UNAVAILABLE", "ratings service is unavailable")
		return
	}

	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load leaderboard")
		return
	}

	resp := dto.LeaderboardResponse{Entries: make([]dto.RatingStatsResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, dto.RatingStatsResponse{
			UserID:       entry.UserID.String(),
			Name:         entry.Name,
			MBTIType:     entry.MBTIType,
			AvatarURL:    h.avatarURL(r.Context(), entry.AvatarKey),
			AverageScore: entry.AverageScore,
			RatingCount:  entry.RatingCount,
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *RatingHandler) avatarURL(ctx context.Context, key string) string {
	if key == "" || h.media == nil {
		return ""
	}
	url, err := h.media.AvatarURL(ctx, key)
	if err != nil {
		return ""
	}
	return url
}
