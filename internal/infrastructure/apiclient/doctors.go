package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/medlink/session-client/internal/core/domain"
)

// ListDoctors returns one page of the doctor directory.
func (c *Client) ListDoctors(ctx context.Context, f domain.DoctorFilter) domain.Result[domain.DoctorPage] {
	return call(ctx, c, request{
		op:     "doctors.list",
		method: http.MethodGet,
		path:   "/doctors",
		query:  filterQuery(f),
	}, decodeJSON[domain.DoctorPage])
}

// filterQuery maps each set filter field to exactly one wire parameter.
// Unset fields are left out, never sent empty.
func filterQuery(f domain.DoctorFilter) url.Values {
	q := url.Values{}
	eq := func(field, v string) {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(field+"[eq]", v)
		}
	}
	eq("name", f.Name)
	eq("city", f.City)
	eq("speciality", f.Speciality)
	eq("gender", f.Gender)
	eq("status", f.Status)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

func (c *Client) GetDoctorByID(ctx context.Context, id domain.ID) domain.Result[*domain.Doctor] {
	return call(ctx, c, request{
		op:     "doctors.get",
		method: http.MethodGet,
		path:   "/doctors/" + url.PathEscape(id.String()),
	}, decodeField(func(e struct {
		Data *domain.Doctor `json:"data"`
	}) *domain.Doctor {
		return e.Data
	}))
}

// GetDoctorStats feeds the doctor dashboard of the signed-in doctor.
func (c *Client) GetDoctorStats(ctx context.Context) domain.Result[domain.DoctorStats] {
	return call(ctx, c, request{
		op:     "doctors.stats",
		method: http.MethodGet,
		path:   "/doctor/myStats",
	}, decodeJSON[domain.DoctorStats])
}
