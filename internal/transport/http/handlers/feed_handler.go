package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	feedsvc "github.com/MwahCodes/dates-and-debates/internal/services/feed"
	mediasvc "github.com/MwahCodes/dates-and-debates/internal/services/media"
	"github.com/MwahCodes/dates-and-debates/internal/transport/http/dto"
	httperrors "github.com/MwahCodes/dates-and-debates/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
	media   *mediasvc.Service
}

func NewFeedHandler(service *feedsvc.Service, media *mediasvc.Service) *FeedHandler {
	return &FeedHandler{service: service, media: media}
}

func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	var cursor *uuid.UUID
	if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "cursor must be a valid id")
			return
		}
		cursor = &parsed
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	page, err := h.service.List(r.Context(), identity.UserID, cursor, limit)
	if err != nil {
		if errors.Is(err, feedsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feed request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load feed")
		return
	}

	resp := dto.FeedResponse{
		Candidates: make([]dto.CandidateResponse, 0, len(page.Candidates)),
		Remaining:  page.Remaining,
	}
	for _, candidate := range page.Candidates {
		item := dto.CandidateResponse{
			ID:             candidate.ID.String(),
			Name:           candidate.Name,
			EducationLevel: candidate.EducationLevel,
			HeightCM:       candidate.HeightCM,
			WeightKG:       candidate.WeightKG,
			MBTIType:       candidate.MBTIType,
		}
		if candidate.Birthday != nil {
			item.Birthday = candidate.Birthday.UTC().Format(birthdayLayout)
		}
		if candidate.AvatarKey != "" && h.media != nil {
			if url, err := h.media.AvatarURL(r.Context(), candidate.AvatarKey); err == nil {
				item.AvatarURL = url
			}
		}
		resp.Candidates = append(resp.Candidates, item)
	}
	if page.NextCursor != nil {
		resp.NextCursor = page.NextCursor.String()
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
