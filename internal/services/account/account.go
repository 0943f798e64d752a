// Package account содержит регистрацию, вход и шаги онбординга пользователя:
// выбор роли и заполнение профиля.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/movibes/internal/lib/jwt"
	"github.com/magabrotheeeer/movibes/internal/lib/password"
	"github.com/magabrotheeeer/movibes/internal/lib/sl"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleAlreadyChosen  = errors.New("role already chosen")
	ErrInvalidRole        = errors.New("invalid role")
	ErrWrongRole          = errors.New("profile does not match user role")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email или storage.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя по ID или storage.ErrUserNotFound.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	SetRole(ctx context.Context, userID string, role models.Role) error
	CompleteStudentProfile(ctx context.Context, userID string, form models.StudentProfileForm) error
	CompleteProfessionalProfile(ctx context.Context, userID string, form models.ProfessionalProfileForm) error
}

// AccountService отвечает за регистрацию, авторизацию и онбординг.
type AccountService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAccountService создает новый экземпляр AccountService.
func NewAccountService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AccountService {
	return &AccountService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает пользователя с хэшированным паролем и сразу выдаёт токен.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, "", err
	}
	id, err := s.users.CreateUser(ctx, models.User{
		Email:              req.Email,
		PasswordHash:       hashed,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		RegistrationMethod: models.RegistrationEmail,
	})
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user registered", sl.UserID(id))

	if req.Role.Valid() {
		if err := s.users.SetRole(ctx, id, req.Role); err != nil {
			return nil, "", err
		}
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.IsStaff)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AccountService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.IsStaff)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChooseRole фиксирует роль пользователя. Роль выбирается один раз.
func (s *AccountService) ChooseRole(ctx context.Context, user *models.User, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if user.RoleChosen() {
		return ErrRoleAlreadyChosen
	}
	err := s.users.SetRole(ctx, user.ID, role)
	if errors.Is(err, storage.ErrRoleAlreadySet) {
		return ErrRoleAlreadyChosen
	}
	if err != nil {
		return err
	}
	user.Role = role
	s.log.Info("role chosen", sl.UserID(user.ID), slog.String("role", string(role)))
	return nil
}

// CompleteStudentProfile сохраняет профиль ученика и возвращает обновлённого пользователя.
func (s *AccountService) CompleteStudentProfile(ctx context.Context, user *models.User,
	form models.StudentProfileForm) (*models.User, error) {
	if user.Role != models.RoleStudent {
		return nil, ErrWrongRole
	}
	if err := s.users.CompleteStudentProfile(ctx, user.ID, form); err != nil {
		return nil, err
	}
	s.log.Info("student profile completed", sl.UserID(user.ID))
	return s.users.GetUserByID(ctx, user.ID)
}

// CompleteProfessionalProfile сохраняет профиль профессионала и возвращает обновлённого пользователя.
func (s *AccountService) CompleteProfessionalProfile(ctx context.Context, user *models.User,
	form models.ProfessionalProfileForm) (*models.User, error) {
	if user.Role != models.RoleProfessional {
		return nil, ErrWrongRole
	}
	if err := s.users.CompleteProfessionalProfile(ctx, user.ID, form); err != nil {
		return nil, err
	}
	s.log.Info("professional profile completed", sl.UserID(user.ID))
	return s.users.GetUserByID(ctx, user.ID)
}

// User возвращает пользователя по ID.
func (s *AccountService) User(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ParseToken проверяет JWT и возвращает его claims.
func (s *AccountService) ParseToken(token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
