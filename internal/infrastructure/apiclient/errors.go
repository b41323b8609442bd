package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/medlink/session-client/internal/core/domain"
)

// classifyTransport handles failures where no response arrived.
func classifyTransport(err error) *domain.APIError {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) && perm.Err != nil {
		err = perm.Err
	}

	switch {
	case isTimeout(err):
		return &domain.APIError{Kind: domain.KindTimeout, Message: domain.MessageTimeout}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.APIError{Kind: domain.KindConnectivity, Message: domain.MessageConnectivity}
	case errors.Is(err, context.Canceled):
		return &domain.APIError{Kind: domain.KindConnectivity, Message: "request cancelled"}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &domain.APIError{Kind: domain.KindConnectivity, Message: domain.MessageConnectivity}
	}
	return &domain.APIError{Kind: domain.KindUnexpected, Message: err.Error()}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyStatus maps a non-2xx response onto an error kind, preferring the
// message the server put in the body.
func classifyStatus(resp *response) *domain.APIError {
	if resp.status >= 200 && resp.status < 300 {
		return nil
	}

	msg := bodyMessage(resp.body)
	e := &domain.APIError{Status: resp.status, Message: msg}
	switch {
	case resp.status == http.StatusUnauthorized:
		e.Kind = domain.KindAuth
		if msg == "" {
			e.Message = domain.MessageSessionExpired
		}
	case resp.status >= 400 && resp.status < 500:
		e.Kind = domain.KindValidation
		if msg == "" {
			e.Message = http.StatusText(resp.status)
		}
	case resp.status >= 500:
		e.Kind = domain.KindUnexpected
		if msg == "" {
			e.Message = domain.MessageServerError
		}
	default:
		e.Kind = domain.KindUnexpected
		if msg == "" {
			e.Message = fmt.Sprintf("unexpected response status %d", resp.status)
		}
	}
	return e
}

// errorBody is the union of the error shapes the backend emits.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// bodyMessage extracts a human message from an error body: "message", then
// "error", then the first field error in key order.
func bodyMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if m := strings.TrimSpace(eb.Message); m != "" {
		return m
	}
	if m := strings.TrimSpace(eb.Error); m != "" {
		return m
	}

	fields := make([]string, 0, len(eb.Errors))
	for f := range eb.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		for _, m := range eb.Errors[f] {
			if m = strings.TrimSpace(m); m != "" {
				return m
			}
		}
	}
	return ""
}
