package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/medlink/session-client/internal/core/domain"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPatient signs a patient in through /users/login.
func (c *Client) LoginPatient(ctx context.Context, email, password string) domain.Result[domain.AuthPayload] {
	return call(ctx, c, request{
		op:     "auth.login_patient",
		method: http.MethodPost,
		path:   "/users/login",
		body:   credentials{Email: email, Password: password},
	}, decodeAuth(domain.RolePatient))
}

// LoginDoctor signs a doctor in through /doctors/login. The record may come
// back under "doctor" or "user"; either way the role is doctor.
func (c *Client) LoginDoctor(ctx context.Context, email, password string) domain.Result[domain.AuthPayload] {
	return call(ctx, c, request{
		op:     "auth.login_doctor",
		method: http.MethodPost,
		path:   "/doctors/login",
		body:   credentials{Email: email, Password: password},
	}, decodeAuth(domain.RoleDoctor))
}

func (c *Client) RegisterPatient(ctx context.Context, in domain.PatientRegistration) domain.Result[domain.AuthPayload] {
	return call(ctx, c, request{
		op:     "auth.register_patient",
		method: http.MethodPost,
		path:   "/users",
		body:   in,
	}, decodeAuth(domain.RolePatient))
}

// RegisterDoctor posts the doctor form as multipart, with the picture as a
// file part when given.
func (c *Client) RegisterDoctor(ctx context.Context, in domain.DoctorRegistration, picture *domain.Picture) domain.Result[domain.AuthPayload] {
	body, contentType, err := doctorForm(in, picture)
	if err != nil {
		return domain.Fail[domain.AuthPayload](&domain.APIError{Kind: domain.KindUnexpected, Message: err.Error()})
	}
	return call(ctx, c, request{
		op:          "auth.register_doctor",
		method:      http.MethodPost,
		path:        "/doctors",
		raw:         body,
		contentType: contentType,
	}, decodeAuth(domain.RoleDoctor))
}

func doctorForm(in domain.DoctorRegistration, picture *domain.Picture) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range in.Fields() {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("doctor form field %s: %w", f[0], err)
		}
	}

	if picture != nil && len(picture.Data) > 0 {
		name := picture.Filename
		if name == "" {
			name = "picture.jpg"
		}
		ct := picture.ContentType
		if ct == "" {
			ct = "image/jpeg"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="picture"; filename=%q`, name))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("doctor form picture: %w", err)
		}
		if _, err := part.Write(picture.Data); err != nil {
			return nil, "", fmt.Errorf("doctor form picture: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("doctor form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Logout invalidates the token server-side. A 401 means the token was
// already dead and counts as success.
func (c *Client) Logout(ctx context.Context) domain.Result[struct{}] {
	res := call(ctx, c, request{
		op:     "auth.logout",
		method: http.MethodPost,
		path:   "/users/logout",
	}, ignoreBody)
	if !res.Success && res.Kind == domain.KindAuth {
		c.log.Debug().Msg("logout with an already invalid session")
		return domain.OK(struct{}{})
	}
	return res
}

// GetCurrentUser re-reads the signed-in account from the endpoint group of
// role.
func (c *Client) GetCurrentUser(ctx context.Context, role domain.Role) domain.Result[*domain.User] {
	path := "/users/profile"
	if role == domain.RoleDoctor {
		path = "/doctors/profile"
	}
	return call(ctx, c, request{
		op:     "auth.current_user",
		method: http.MethodPost,
		path:   path,
	}, func(body []byte) (*domain.User, error) {
		env, err := decodeJSON[userEnvelope](body)
		if err != nil {
			return nil, err
		}
		raw := env.record(role)
		if raw == nil && len(bytes.TrimSpace(body)) > 0 && bytes.TrimSpace(body)[0] == '{' {
			raw = body
		}
		return decodeUser(raw, role)
	})
}
