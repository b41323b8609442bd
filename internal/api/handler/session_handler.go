package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
	"github.com/medlink/session-client/internal/core/service"
)

// maxPictureBytes caps the doctor profile picture accepted at sign-up.
const maxPictureBytes = 5 << 20

type SessionHandler struct {
	auth    ports.AuthFlow
	session ports.SessionReader
}

func NewSessionHandler(auth ports.AuthFlow, session ports.SessionReader) *SessionHandler {
	return &SessionHandler{auth: auth, session: session}
}

type loginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// sessionView is the session as the shell reports it.
type sessionView struct {
	Phase         domain.Phase   `json:"phase"`
	Initialized   bool           `json:"initialized"`
	Authenticated bool           `json:"authenticated"`
	Role          domain.Role    `json:"role,omitempty"`
	User          *domain.User   `json:"user,omitempty"`
	Routes        []domain.Route `json:"routes"`
}

func newSessionView(s domain.SessionState) sessionView {
	v := sessionView{
		Phase:         s.Phase,
		Initialized:   s.IsInitialized,
		Authenticated: s.IsAuthenticated,
		User:          s.User,
		Routes:        service.ReachableRoutes(s),
	}
	if s.IsAuthenticated {
		v.Role = s.Role()
	}
	return v
}

// Show returns the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /session [get]
func (h *SessionHandler) Show(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionView(h.session.Snapshot()))
}

// Login signs in as a patient or a doctor.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and role"
// @Success      200   {object}  sessionView
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	in := ports.LoginInput{
		Credentials: domain.Credentials{Email: req.Email, Password: req.Password},
		Role:        req.Role,
	}
	s, err := h.auth.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionView(s))
}

// RegisterPatient creates a patient account and signs it in.
//
// @Summary      Register a patient
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.PatientRegistration  true  "Patient details"
// @Success      201   {object}  sessionView
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session/register/patient [post]
func (h *SessionHandler) RegisterPatient(c echo.Context) error {
	var req domain.PatientRegistration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	s, err := h.auth.RegisterPatient(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newSessionView(s))
}

// RegisterDoctor creates a doctor account, with an optional picture, and
// signs it in.
//
// @Summary      Register a doctor
// @Tags         session
// @Accept       multipart/form-data
// @Produce      json
// @Param        name              formData  string  true   "Full name"
// @Param        email             formData  string  true   "Email"
// @Param        password          formData  string  true   "Password"
// @Param        phoneNumber       formData  string  true   "Phone number"
// @Param        gender            formData  string  true   "Gender"
// @Param        speciality        formData  string  true   "Speciality"
// @Param        typeConsultation  formData  string  true   "Consultation type"
// @Param        city              formData  string  true   "City"
// @Param        street            formData  string  false  "Street"
// @Param        picture           formData  file    false  "Profile picture"
// @Success      201  {object}  sessionView
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /session/register/doctor [post]
func (h *SessionHandler) RegisterDoctor(c echo.Context) error {
	var req domain.DoctorRegistration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	picture, err := formPicture(c)
	if err != nil {
		return err
	}

	s, err := h.auth.RegisterDoctor(c.Request().Context(), req, picture)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newSessionView(s))
}

// formPicture reads the optional "picture" file; a missing file is nil.
func formPicture(c echo.Context) (*domain.Picture, error) {
	fh, err := c.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid picture upload")
	}
	if fh.Size > maxPictureBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "picture too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open picture: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPictureBytes))
	if err != nil {
		return nil, fmt.Errorf("read picture: %w", err)
	}
	return &domain.Picture{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

// Logout ends the session. The local session is dropped even when the
// backend could not be reached.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Failure      503  {object}  map[string]string
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	s, err := h.auth.Logout(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionView(s))
}

// Refresh reloads the signed-in account from the backend.
//
// @Summary      Refresh current user
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Failure      401  {object}  map[string]string
// @Router       /session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	s, err := h.auth.Refresh(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionView(s))
}
