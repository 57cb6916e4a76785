package service

import (
	"context"
	"strings"

	"nourish/internal/models"
	"nourish/internal/repository"
	"nourish/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	IssueToken(userID uint, handle string) (string, error)
}

type SignupInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Handle    string `json:"handle" validate:"required"`
	Bio       string `json:"bio" validate:"max=500"`
	Role      string `json:"role"`
}

type UpdateProfileInput struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,max=100"`
	Handle          *string `json:"handle"`
	Bio             *string `json:"bio" validate:"omitempty,max=500"`
	ProfessionProof *string `json:"profession_proof" validate:"omitempty,url"`
}

// Session is the result of a successful login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UserService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	cost     int
}

func NewUserService(userRepo repository.UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{userRepo: userRepo, tokens: tokens, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, which tests lower.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) checkHandleFree(ctx context.Context, handle string, self uint) error {
	if err := validation.ValidateHandle(handle); err != nil {
		return models.NewValidationError(err.Error())
	}
	existing, err := s.userRepo.GetByHandle(ctx, handle)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return models.NewConflictError("Handle is already taken")
	}
	return nil
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Handle = strings.TrimSpace(in.Handle)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	role := models.Role(in.Role)
	if role == "" {
		role = models.RoleConsumer
	}
	if !role.Valid() || role == models.RoleAdmin {
		return nil, models.NewValidationError("Invalid role")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}
	if err := s.checkHandleFree(ctx, in.Handle, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Handle:    in.Handle,
		Bio:       in.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords give the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	invalid := models.NewUnauthorizedError("Invalid email or password")

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}

	token, err := s.tokens.IssueToken(user.ID, user.Handle)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return publicProfile(user), nil
}

func (s *UserService) Search(ctx context.Context, query string, limit, skip int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, skip = normalizePage(limit, skip)
	users, err := s.userRepo.Search(ctx, query, limit, skip)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(users))
	for i := range users {
		out = append(out, publicProfile(&users[i]))
	}
	return out, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Handle != nil {
		handle := strings.TrimSpace(*in.Handle)
		if handle != user.Handle {
			if err := s.checkHandleFree(ctx, handle, userID); err != nil {
				return nil, err
			}
			user.Handle = handle
		}
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.ProfessionProof != nil {
		user.ProfessionProof = *in.ProfessionProof
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword replaces the password after checking the current one.
func (s *UserService) ResetPassword(ctx context.Context, userID uint, current, next string) error {
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.userRepo.GetCredentials(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func (s *UserService) ChangeProfilePicture(ctx context.Context, userID uint, url string) (*models.User, error) {
	if strings.TrimSpace(url) == "" {
		return nil, models.NewValidationError("profile_picture is required")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfilePicture = url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
