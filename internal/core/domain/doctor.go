package domain

// Doctor is a directory entry as returned by the doctors endpoints.
type Doctor struct {
	ID               ID     `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Speciality       string `json:"speciality,omitempty"`
	ConsultationType string `json:"typeConsultation,omitempty"`
	City             string `json:"city,omitempty"`
	Street           string `json:"street,omitempty"`
	Picture          string `json:"picture,omitempty"`
	Rating           Number `json:"rating,omitempty"`
	Status           string `json:"status,omitempty"`
}

// DoctorFilter selects doctors. Every non-zero field becomes one equality
// filter on the wire; zero fields are not sent.
type DoctorFilter struct {
	Name       string `query:"name"`
	City       string `query:"city"`
	Speciality string `query:"speciality"`
	Gender     string `query:"gender"`
	Status     string `query:"status"`
	Page       int    `query:"page" validate:"gte=0"`
}

// PageMeta mirrors the backend pagination block.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type DoctorPage struct {
	Data []Doctor `json:"data"`
	Meta PageMeta `json:"meta"`
}

// DoctorStats feeds the doctor dashboard.
type DoctorStats struct {
	TotalPatients Number `json:"totalPatients"`
	Consultations Number `json:"Consultations"`
	Rating        Number `json:"Rating"`
	Balance       Number `json:"balance"`
}
