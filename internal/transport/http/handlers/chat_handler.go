package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	chatsvc "github.com/MwahCodes/dates-and-debates/internal/services/chat"
	"github.com/MwahCodes/dates-and-debates/internal/transport/http/dto"
	httperrors "github.com/MwahCodes/dates-and-debates/internal/transport/http/errors"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
)

type ChatHandler struct {
	service *chatsvc.Service
	poller  *chatsvc.Poller
}

func NewChatHandler(service *chatsvc.Service, poller *chatsvc.Poller) *ChatHandler {
	return &ChatHandler{service: service, poller: poller}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil || receiverID == uuid.Nil {
		writeBadRequest(w, "VALIDATION_ERROR", "receiver_id must be a valid user id")
		return
	}

	message, err := h.service.Send(r.Context(), identity.UserID, receiverID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid message payload")
		case errors.Is(err, chatsvc.ErrMessageTooLong):
			writeBadRequest(w, "VALIDATION_ERROR", "message content is too long")
		case errors.Is(err, chatsvc.ErrNotMatched):
			writeConflict(w, "NOT_MATCHED", "users are not matched")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to send message")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, mapMessage(message))
}

func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	partnerID, ok := partnerIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "partner id must be a valid user id")
		return
	}

	beforeID := int64(0)
	if raw := strings.TrimSpace(r.URL.Query().Get("before_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "before_id must be a positive integer")
			return
		}
		beforeID = parsed
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

	messages, err := h.service.History(r.Context(), identity.UserID, partnerID, beforeID, limit)
	if err != nil {
		if errors.Is(err, chatsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load conversation")
		return
	}

	resp := dto.ConversationResponse{Messages: make([]dto.MessageResponse, 0, len(messages))}
	for _, message := range messages {
		resp.Messages = append(resp.Messages, mapMessage(message))
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ChatHandler) Threads(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	threads, err := h.service.Threads(r.Context(), identity.UserID, 0)
	if err != nil {
		if errors.Is(err, chatsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid threads request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load threads")
		return
	}

	resp := dto.ThreadsResponse{Threads: make([]dto.ThreadResponse, 0, len(threads))}
	for _, thread := range threads {
		resp.Threads = append(resp.Threads, dto.ThreadResponse{
			PartnerID:     thread.PartnerID.String(),
			LastContent:   thread.LastContent,
			LastSenderID:  thread.LastSenderID.String(),
			LastCreatedAt: formatTime(thread.LastCreatedAt),
			UnreadCount:   thread.UnreadCount,
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	partnerID, ok := partnerIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "partner id must be a valid user id")
		return
	}

	marked, err := h.service.MarkRead(r.Context(), identity.UserID, partnerID)
	if err != nil {
		if errors.Is(err, chatsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid mark read request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to mark conversation read")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{OK: true, Marked: marked})
}

// Stream pushes new conversation messages to the client as server-sent
// events. The connection stays open until the client disconnects; each event
// carries one message JSON payload.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.poller == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	partnerID, ok := partnerIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "partner id must be a valid user id")
		return
	}

	afterID := int64(0)
	if raw := strings.TrimSpace(r.URL.Query().Get("after_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "after_id must be a positive integer")
			return
		}
		afterID = parsed
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeInternal(w, "STREAMING_UNSUPPORTED", "streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for batch := range h.poller.Watch(r.Context(), identity.UserID, partnerID, afterID) {
		for _, message := range batch {
			payload, err := json.Marshal(mapMessage(message))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		flusher.Flush()
	}
}

func partnerIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "partner_id"))
	partnerID, err := uuid.Parse(raw)
	if err != nil || partnerID == uuid.Nil {
		return uuid.Nil, false
	}
	return partnerID, true
}

func mapMessage(message pgrepo.MessageRecord) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:         message.ID,
		SenderID:   message.SenderID.String(),
		ReceiverID: message.ReceiverID.String(),
		Content:    message.Content,
		CreatedAt:  formatTime(message.CreatedAt),
	}
	if message.ReadAt != nil {
		resp.ReadAt = formatTime(*message.ReadAt)
	}
	return resp
}
