package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookclub/catalog/internal/store"
	"github.com/bookclub/catalog/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// Registration is the sign-up form.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
	cost int
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, ErrUserNotFound
	}
	return user, err
}

// Register validates the form and creates an active account. Validation
// failures are returned as validation.Errors keyed by form field.
func (s *UserService) Register(ctx context.Context, form Registration) (types.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)

	errs := validation.Errors{}
	if err := validateRegistration(&form); err != nil {
		if !errors.As(err, &errs) {
			return types.User{}, err
		}
	}
	if _, failed := errs["username"]; !failed {
		_, err := s.repo.GetByUsername(ctx, form.Username)
		switch {
		case err == nil:
			errs["username"] = errUsernameTaken
		case !errors.Is(err, store.ErrNotFound):
			return types.User{}, err
		}
	}
	if len(errs) > 0 {
		return types.User{}, errs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: string(hashed),
		IsActive:     true,
	})
	if errors.Is(err, store.ErrUsernameTaken) {
		return types.User{}, validation.Errors{"username": errUsernameTaken}
	}
	return user, err
}

var errUsernameTaken = validation.NewError("validation_username_taken", "A user with that username already exists")

func validateRegistration(form *Registration) error {
	return validation.ValidateStruct(form,
		validation.Field(&form.Username,
			validation.Required.Error("Username is required"),
			validation.RuneLength(5, 0).Error("Username must be at least 5 characters"),
			validation.RuneLength(0, 50).Error("Username can not be more than 50 characters"),
		),
		validation.Field(&form.Email,
			validation.Required.Error("Email is required"),
			validation.RuneLength(0, 320).Error("Email must be shorter than 320 characters"),
			is.EmailFormat.Error("email is invalid"),
		),
		validation.Field(&form.Password,
			validation.Required.Error("Password is required"),
			validation.RuneLength(8, 0).Error("Password must be at least 8 characters"),
			validation.RuneLength(0, 150).Error("Password can not be more than 150 characters"),
			validation.By(passwordStrength),
		),
	)
}

var errWeakPassword = validation.NewError("validation_password_weak", "Password must contain a number and a special character")

// passwordStrength requires at least one digit and one symbol. Spaces are
// not symbols.
func passwordStrength(value any) error {
	password, _ := value.(string)
	var digits, symbols int
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r), unicode.IsSpace(r):
		default:
			symbols++
		}
	}
	if digits == 0 || symbols == 0 {
		return errWeakPassword
	}
	return nil
}

// Authenticate checks the credentials and records the login time. Every
// failure is reported as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if !user.IsActive {
		return types.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	user.LastLogin = &now
	return s.repo.Update(ctx, user)
}

// Promote sets the administrative flags of a user.
func (s *UserService) Promote(ctx context.Context, username string, staff, superuser bool) (types.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return types.User{}, err
	}
	user.IsStaff = staff
	user.IsSuperuser = superuser
	return s.repo.Update(ctx, user)
}
