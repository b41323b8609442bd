package domain

// Credentials is a login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthPayload is what a successful login or registration yields. Token is
// never empty on success.
type AuthPayload struct {
	Token string
	User  *User
}

// PatientRegistration is the patient sign-up form.
type PatientRegistration struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Confirmation   string `json:"password_confirmation" validate:"required,eqfield=Password"`
	PhoneNumber    string `json:"phoneNumber" validate:"required"`
	Age            string `json:"age" validate:"required,numeric"`
	Sex            string `json:"sexe" validate:"required"`
	ChronicDisease string `json:"chronicDisease,omitempty"`
	BloodGroup     string `json:"groupage,omitempty"`
}

// DoctorRegistration is the doctor sign-up form. It goes out as multipart
// form fields, picture alongside.
type DoctorRegistration struct {
	Name             string `form:"name" validate:"required"`
	Email            string `form:"email" validate:"required,email"`
	Password         string `form:"password" validate:"required,min=6"`
	PhoneNumber      string `form:"phoneNumber" validate:"required"`
	Gender           string `form:"gender" validate:"required"`
	Speciality       string `form:"speciality" validate:"required"`
	ConsultationType string `form:"typeConsultation" validate:"required"`
	City             string `form:"city" validate:"required"`
	Street           string `form:"street"`
}

// Fields returns the multipart form fields in a stable order, skipping
// empty optional values.
func (r DoctorRegistration) Fields() [][2]string {
	all := [][2]string{
		{"name", r.Name},
		{"email", r.Email},
		{"password", r.Password},
		{"phoneNumber", r.PhoneNumber},
		{"gender", r.Gender},
		{"speciality", r.Speciality},
		{"typeConsultation", r.ConsultationType},
		{"city", r.City},
		{"street", r.Street},
	}
	out := all[:0]
	for _, f := range all {
		if f[1] != "" {
			out = append(out, f)
		}
	}
	return out
}

// Picture is an optional uploaded profile image.
type Picture struct {
	Filename    string
	ContentType string
	Data        []byte
}
