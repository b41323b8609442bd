package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/medlink/session-client/internal/core/domain"
)

func (c *Client) GetAppointmentsForPatient(ctx context.Context, patientID domain.ID) domain.Result[[]domain.Appointment] {
	return call(ctx, c, request{
		op:     "appointments.patient",
		method: http.MethodGet,
		path:   "/appointments/user/" + url.PathEscape(patientID.String()),
	}, decodeField(func(e struct {
		Appointments []domain.Appointment `json:"appointments"`
	}) []domain.Appointment {
		return e.Appointments
	}))
}

// GetAvailableSlots lists the open slots of a doctor.
func (c *Client) GetAvailableSlots(ctx context.Context, doctorID domain.ID) domain.Result[[]domain.Slot] {
	return call(ctx, c, request{
		op:     "appointments.open_slots",
		method: http.MethodGet,
		path:   "/appointments/doctor/Scheduled/" + url.PathEscape(doctorID.String()),
	}, slotList)
}

// BookSlot binds patientID to the slot.
func (c *Client) BookSlot(ctx context.Context, slotID, patientID domain.ID) domain.Result[struct{}] {
	return call(ctx, c, request{
		op:     "appointments.book",
		method: http.MethodPatch,
		path:   "/appointments/scheduled/" + url.PathEscape(slotID.String()),
		body: struct {
			UserID domain.ID `json:"userId"`
		}{UserID: patientID},
	}, ignoreBody)
}

// GetDoctorAppointments lists the booked appointments of a doctor.
func (c *Client) GetDoctorAppointments(ctx context.Context, doctorID domain.ID) domain.Result[[]domain.Slot] {
	return call(ctx, c, request{
		op:     "appointments.doctor",
		method: http.MethodGet,
		path:   "/appointments/doctor/" + url.PathEscape(doctorID.String()),
	}, slotList)
}

// AddSlots publishes one slot per time on a single date.
func (c *Client) AddSlots(ctx context.Context, in domain.NewSlots) domain.Result[struct{}] {
	return call(ctx, c, request{
		op:     "appointments.add_slots",
		method: http.MethodPost,
		path:   "/appointments",
		body:   in,
	}, ignoreBody)
}

// DeleteSlot removes a slot. It does not check whether the slot is booked.
func (c *Client) DeleteSlot(ctx context.Context, slotID domain.ID) domain.Result[struct{}] {
	return call(ctx, c, request{
		op:     "appointments.delete_slot",
		method: http.MethodDelete,
		path:   "/appointments/" + url.PathEscape(slotID.String()),
	}, ignoreBody)
}

var slotList = decodeField(func(e struct {
	Data []domain.Slot `json:"data"`
}) []domain.Slot {
	return e.Data
})
