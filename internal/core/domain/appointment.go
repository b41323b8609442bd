package domain

import (
	"sort"
	"strings"
)

// Slot is a bookable date/time published by a doctor, bound to a patient
// once booked.
type Slot struct {
	ID        ID     `json:"id"`
	DoctorID  ID     `json:"doctorId"`
	PatientID *ID    `json:"userId,omitempty"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    string `json:"status,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Booked reports whether a patient is bound to the slot.
func (s Slot) Booked() bool {
	return s.PatientID != nil && *s.PatientID != ""
}

// Appointment is a patient's view of a booked slot.
type Appointment struct {
	ID       ID      `json:"id"`
	DoctorID ID      `json:"doctorId"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Status   string  `json:"status,omitempty"`
	Doctor   *Doctor `json:"doctor,omitempty"`
}

// NewSlots is the bulk slot-creation request: one date, several times.
type NewSlots struct {
	DoctorID ID       `json:"doctorId" validate:"required"`
	Date     string   `json:"date" validate:"required"`
	Times    []string `json:"time" validate:"required,min=1,dive,required"`
}

// DaySlots groups open slots of one date.
type DaySlots struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// GroupSlotsByDate buckets slots by date, dates ascending and times ascending
// within a date.
func GroupSlotsByDate(slots []Slot) []DaySlots {
	byDate := make(map[string][]Slot)
	for _, s := range slots {
		byDate[s.Date] = append(byDate[s.Date], s)
	}

	out := make([]DaySlots, 0, len(byDate))
	for date, group := range byDate {
		sort.SliceStable(group, func(i, j int) bool {
			return strings.Compare(group[i].Time, group[j].Time) < 0
		})
		out = append(out, DaySlots{Date: date, Slots: group})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// RosterEntry is a booked appointment on the doctor side, joined with the
// patient record when it could be fetched.
type RosterEntry struct {
	ID             ID     `json:"id"`
	PatientID      ID     `json:"patientId,omitempty"`
	PatientName    string `json:"patientName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	ChronicDisease string `json:"chronicDisease"`
	BloodGroup     string `json:"groupage"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
}

// Placeholders shown when a patient record is unavailable.
const (
	UnknownPatient   = "Unknown Patient"
	NoEmail          = "No email provided"
	NoPhone          = "No phone provided"
	NoChronicDisease = "No chronic disease"
	NoBloodGroup     = "No blood type"
	StatusUpcoming   = "Upcoming"
)

// NewRosterEntry joins slot with patient; patient may be nil.
func NewRosterEntry(slot Slot, patient *User) RosterEntry {
	e := RosterEntry{
		ID:             slot.ID,
		PatientName:    UnknownPatient,
		Email:          NoEmail,
		PhoneNumber:    NoPhone,
		ChronicDisease: NoChronicDisease,
		BloodGroup:     NoBloodGroup,
		Date:           slot.Date,
		Time:           slot.Time,
		Status:         StatusUpcoming,
	}
	if slot.PatientID != nil {
		e.PatientID = *slot.PatientID
	}
	if patient == nil {
		return e
	}
	e.PatientName = orDefault(patient.Name, UnknownPatient)
	e.Email = orDefault(patient.Email, NoEmail)
	e.PhoneNumber = orDefault(patient.PhoneNumber, NoPhone)
	e.ChronicDisease = orDefault(patient.ChronicDisease, NoChronicDisease)
	e.BloodGroup = orDefault(patient.BloodGroup, NoBloodGroup)
	return e
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
