package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/avoronov/todovault/internal/common"
	"github.com/avoronov/todovault/internal/server/auth"
	"github.com/avoronov/todovault/internal/server/users"
)

// userResponse is the public projection of a user; password and reset
// fields never leave the server.
type userResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, u *users.User, status int) {
	token, err := auth.GenerateToken(u.ID, []byte(s.config.SecretKey), s.config.TokenValidityDuration)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, status, envelope{"token": token, "user": toUserResponse(u)})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}

	u, err := s.users.Register(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		s.replyError(w, r, err)
		return
	}

	s.issueSession(w, r, u, http.StatusCreated)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" {
		s.writeError(w, r, errors.New("please provide email and password"), http.StatusBadRequest)
		return
	}

	u, err := s.users.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		s.replyError(w, r, err)
		return
	}

	s.issueSession(w, r, u, http.StatusOK)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)
	s.writeJSON(w, http.StatusOK, envelope{"user": toUserResponse(u)})
}

// forgotPasswordHandler issues a reset token and mails it. If the mail
// cannot be delivered the token is cleared again so that no live token
// exists that the user never received.
func (s *Server) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}
	if input.Email == "" {
		s.writeError(w, r, errors.New("please provide an email address"), http.StatusBadRequest)
		return
	}

	token, u, err := s.users.IssueResetToken(r.Context(), input.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.writeError(w, r, errors.New("no user found with this email"), http.StatusNotFound)
			return
		}
		s.serverError(w, r, err)
		return
	}

	data := map[string]any{
		"Name":             u.Name,
		"Token":            token,
		"ExpiresInMinutes": int(s.config.ResetTokenValidityDuration.Minutes()),
	}
	if err := s.mailer.Send(u.Email, "reset_password.tmpl", data); err != nil {
		s.logger.Error(r.Context(), "failed to send reset email", "email", u.Email, "error", err.Error())
		s.users.ClearResetToken(r.Context(), u.ID)
		s.writeError(w, r, errors.New("email could not be sent"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"message": "password reset email sent"})
}

func (s *Server) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var input struct {
		Password string `json:"password"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}

	u, err := s.users.ConsumeResetToken(r.Context(), token, input.Password)
	if err != nil {
		s.replyError(w, r, err)
		return
	}

	s.issueSession(w, r, u, http.StatusOK)
}
