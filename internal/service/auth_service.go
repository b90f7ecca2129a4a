package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/models"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgWrongAnswer        = "wrong email or answer"
	msgUserNotFound       = "User not found"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
	Role     string
}

type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

type ProfileInput struct {
	Name     string
	Password string
	Phone    string
	Address  string
}

// AuthService owns registration, login and the account self-service flows.
type AuthService struct {
	users            UserRepository
	hasher           PasswordHasher
	tokens           auth.TokenMaker
	allowAdminSignup bool
	logger           zerolog.Logger
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens auth.TokenMaker, allowAdminSignup bool, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:            users,
		hasher:           hasher,
		tokens:           tokens,
		allowAdminSignup: allowAdminSignup,
		logger:           logger.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Answer = strings.TrimSpace(in.Answer)

	required := []struct{ field, value, label string }{
		{"name", in.Name, "Name"},
		{"email", in.Email, "Email"},
		{"password", in.Password, "Password"},
		{"phone", in.Phone, "Phone"},
		{"address", in.Address, "Address"},
		{"answer", in.Answer, "Answer"},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperror.Validation(r.field, r.label+" is required")
		}
	}

	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	role, ok := models.ParseRole(strings.TrimSpace(in.Role))
	if !ok {
		return nil, apperror.Validation("role", "Role must be user or admin")
	}
	if role.IsAdmin() && !s.allowAdminSignup {
		return nil, apperror.Forbidden("admin registration is disabled")
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("User already exists, please login")
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	answerHash, err := s.hasher.Hash(in.Answer)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Phone:        in.Phone,
		Address:      in.Address,
		AnswerHash:   answerHash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.Hex()).Str("role", string(role)).Msg("user registered")
	return user, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("email", msgInvalidCredentials)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user.Profile()}, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	email = normalizeEmail(email)
	answer = strings.TrimSpace(answer)
	switch {
	case email == "":
		return apperror.Validation("email", "Email is required")
	case answer == "":
		return apperror.Validation("answer", "Answer is required")
	case newPassword == "":
		return apperror.Validation("newPassword", "New password is required")
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.NotFound(msgWrongAnswer)
		}
		return err
	}
	if !s.hasher.Verify(answer, user.AnswerHash) {
		return apperror.NotFound(msgWrongAnswer)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("password reset")
	return nil
}

// UpdateProfile keeps the current value of every field left empty.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	update := models.ProfileUpdate{
		Name:         firstNonEmpty(strings.TrimSpace(in.Name), user.Name),
		Phone:        firstNonEmpty(strings.TrimSpace(in.Phone), user.Phone),
		Address:      firstNonEmpty(strings.TrimSpace(in.Address), user.Address),
		PasswordHash: user.PasswordHash,
	}
	if in.Password != "" {
		if err := auth.ValidatePassword(in.Password); err != nil {
			return nil, err
		}
		if update.PasswordHash, err = s.hasher.Hash(in.Password); err != nil {
			return nil, err
		}
	}

	return s.users.UpdateProfile(ctx, user.ID, update)
}

// Me resolves the user behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := models.ParseID(userID, msgUserNotFound)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
