package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	pgrepo "github.com/MwahCodes/dates-and-debates/internal/repo/postgres"
	authsvc "github.com/MwahCodes/dates-and-debates/internal/services/auth"
	chatsvc "github.com/MwahCodes/dates-and-debates/internal/services/chat"
)

// streamStoreStub hands out one staged batch, then reports the conversation
// as drained and fires onDrain so the test can end the stream.
type streamStoreStub struct {
	mu      sync.Mutex
	batch   []pgrepo.MessageRecord
	onDrain func()
}

func (s *streamStoreStub) Create(context.Context, uuid.UUID, uuid.UUID, string) (pgrepo.MessageRecord, error) {
	return pgrepo.MessageRecord{}, nil
}

func (s *streamStoreStub) ListConversation(context.Context, uuid.UUID, uuid.UUID, int64, int) ([]pgrepo.MessageRecord, error) {
	return nil, nil
}

func (s *streamStoreStub) ListSince(_ context.Context, _, _ uuid.UUID, afterID int64, _ int) ([]pgrepo.MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.batch) > 0 {
		out := make([]pgrepo.MessageRecord, 0, len(s.batch))
		for _, message := range s.batch {
			if message.ID > afterID {
				out = append(out, message)
			}
		}
		s.batch = nil
		return out, nil
	}

	if s.onDrain != nil {
		s.onDrain()
	}
	return nil, nil
}

func (s *streamStoreStub) ListThreads(context.Context, uuid.UUID, int) ([]pgrepo.ThreadRecord, error) {
	return nil, nil
}

func (s *streamStoreStub) MarkRead(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return 0, nil
}

func newStreamHandler(store *streamStoreStub) *ChatHandler {
	poller := chatsvc.NewPoller(store, time.Millisecond, zap.NewNop())
	return NewChatHandler(nil, poller)
}

func streamRequest(ctx context.Context, userID uuid.UUID, partnerID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/chat/"+partnerID+"/stream", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("partner_id", partnerID)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	ctx = authsvc.WithIdentity(ctx, authsvc.Identity{UserID: userID, SID: "sid"})

	return req.WithContext(ctx)
}

func TestChatStreamRequiresAuth(t *testing.T) {
	handler := newStreamHandler(&streamStoreStub{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat/"+uuid.NewString()+"/stream", nil)
	handler.Stream(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestChatStreamRejectsBadPartnerID(t *testing.T) {
	handler := newStreamHandler(&streamStoreStub{})

	rec := httptest.NewRecorder()
	req := streamRequest(context.Background(), uuid.New(), "not-a-uuid")
	handler.Stream(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if payload := decodeError(t, rec); payload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}
}

func TestChatStreamRejectsBadAfterID(t *testing.T) {
	handler := newStreamHandler(&streamStoreStub{})

	rec := httptest.NewRecorder()
	req := streamRequest(context.Background(), uuid.New(), uuid.NewString())
	req.URL.RawQuery = "after_id=bogus"
	handler.Stream(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatStreamDeliversNewMessages(t *testing.T) {
	userID := uuid.New()
	partnerID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &streamStoreStub{
		batch: []pgrepo.MessageRecord{
			{ID: 7, SenderID: partnerID, ReceiverID: userID, Content: "hello there", CreatedAt: time.Now()},
		},
		onDrain: cancel,
	}
	handler := newStreamHandler(store)

	rec := httptest.NewRecorder()
	handler.Stream(rec, streamRequest(ctx, userID, partnerID.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %q", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "data: ") {
		t.Fatalf("expected an event frame, got %q", body)
	}
	if !strings.Contains(body, `"content":"hello there"`) {
		t.Fatalf("expected the message payload, got %q", body)
	}
}
