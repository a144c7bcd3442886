package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	matchessvc "github.com/MwahCodes/dates-and-debates/internal/services/matches"
	mediasvc "github.com/MwahCodes/dates-and-debates/internal/services/media"
	"github.com/MwahCodes/dates-and-debates/internal/transport/http/dto"
	httperrors "github.com/MwahCodes/dates-and-debates/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
	media   *mediasvc.Service
}

func NewMatchesHandler(service *matchessvc.Service, media *mediasvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service, media: media}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, 0)
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		return
	}

	resp := dto.MatchesResponse{Matches: make([]dto.MatchResponse, 0, len(items))}
	for _, item := range items {
		match := dto.MatchResponse{
			MatchID:   item.MatchID,
			PartnerID: item.PartnerID.String(),
			Name:      item.Name,
			MBTIType:  item.MBTIType,
			CreatedAt: formatTime(item.CreatedAt),
		}
		if item.AvatarKey != "" && h.media != nil {
			if url, err := h.media.AvatarURL(r.Context(), item.AvatarKey); err == nil {
				match.AvatarURL = url
			}
		}
		resp.Matches = append(resp.Matches, match)
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	partnerID, err := uuid.Parse(req.PartnerID)
	if err != nil || partnerID == uuid.Nil {
		writeBadRequest(w, "VALIDATION_ERROR", "partner_id must be a valid user id")
		return
	}

	if err := h.service.Unmatch(r.Context(), identity.UserID, partnerID); err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
		case errors.Is(err, matchessvc.ErrMatchNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match does not exist")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true})
}
