package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/medlink/session-client/internal/core/domain"
)

// ListSavedDoctorSessions lists the patient's saved chats.
func (c *Client) ListSavedDoctorSessions(ctx context.Context) domain.Result[[]domain.ChatSession] {
	return call(ctx, c, request{
		op:     "chat.sessions",
		method: http.MethodGet,
		path:   "/chat/showDoctor",
	}, decodeField(func(e struct {
		Session []domain.ChatSession `json:"session"`
	}) []domain.ChatSession {
		return e.Session
	}))
}

// GetChatMessages returns the messages of a session. The backend answers
// with a bare array.
func (c *Client) GetChatMessages(ctx context.Context, sessionID domain.ID) domain.Result[[]domain.ChatMessage] {
	return call(ctx, c, request{
		op:     "chat.messages",
		method: http.MethodGet,
		path:   "/chat/showChat/" + url.PathEscape(sessionID.String()),
	}, decodeJSON[[]domain.ChatMessage])
}

// ListPatientsForDoctor lists the patients the signed-in doctor has seen.
func (c *Client) ListPatientsForDoctor(ctx context.Context) domain.Result[[]domain.User] {
	return call(ctx, c, request{
		op:     "chat.patients",
		method: http.MethodGet,
		path:   "/doctor/client",
	}, decodeField(func(e struct {
		Users []domain.User `json:"users"`
	}) []domain.User {
		return e.Users
	}))
}
