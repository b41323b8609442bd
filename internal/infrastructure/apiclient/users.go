package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/medlink/session-client/internal/core/domain"
)

// GetUserByID looks up any account. The role comes from the record itself.
func (c *Client) GetUserByID(ctx context.Context, id domain.ID) domain.Result[*domain.User] {
	return call(ctx, c, request{
		op:     "users.get",
		method: http.MethodGet,
		path:   "/users/" + url.PathEscape(id.String()),
	}, func(body []byte) (*domain.User, error) {
		env, err := decodeJSON[userEnvelope](body)
		if err != nil {
			return nil, err
		}
		return decodeUser(env.Data, "")
	})
}
