package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

const userColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role,
	u.profile_complete, u.is_staff, u.registration_method, u.created_at,
	s.user_id IS NOT NULL, COALESCE(s.affinities, '{}'), COALESCE(s.preferred_schedule, ''),
	COALESCE(s.practice_level, ''), COALESCE(s.goals, ''), COALESCE(s.vibe_after, ''),
	COALESCE(s.account_tier, 'free'), COALESCE(s.updated_at, u.created_at),
	p.user_id IS NOT NULL, COALESCE(p.specialty, ''), COALESCE(p.bio, ''), COALESCE(p.city, ''),
	COALESCE(p.phone, ''), COALESCE(p.instagram, ''), COALESCE(p.years_teaching, 0),
	COALESCE(p.updated_at, u.created_at)`

const userFrom = `FROM users u
	LEFT JOIN students s ON s.user_id = u.id
	LEFT JOIN professionals p ON p.user_id = u.id`

var typeMap = pgtype.NewMap()

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u          models.User
		st         models.Student
		pr         models.Professional
		hasStudent bool
		hasPro     bool
		role, tier string
		affinities []string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role,
		&u.ProfileComplete, &u.IsStaff, &u.RegistrationMethod, &u.CreatedAt,
		&hasStudent, typeMap.SQLScanner(&affinities), &st.PreferredSchedule,
		&st.PracticeLevel, &st.Goals, &st.VibeAfter, &tier, &st.UpdatedAt,
		&hasPro, &pr.Specialty, &pr.Bio, &pr.City, &pr.Phone, &pr.Instagram, &pr.YearsTeaching,
		&pr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if hasStudent {
		st.UserID = u.ID
		st.Affinities = affinities
		st.AccountTier = models.AccountTier(tier)
		u.Student = &st
	}
	if hasPro {
		pr.UserID = u.ID
		u.Professional = &pr
	}
	return &u, nil
}

// CreateUser сохраняет пользователя и возвращает его ID.
// Email уникален без учёта регистра, при конфликте возвращается storage.ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	method := user.RegistrationMethod
	if method == "" {
		method = models.RegistrationEmail
	}
	var newID string
	query := `INSERT INTO users (email, password_hash, first_name, last_name, role, is_staff,
			      registration_method)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		strings.ToLower(strings.TrimSpace(user.Email)), user.PasswordHash, user.FirstName, user.LastName,
		string(user.Role), user.IsStaff, method).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя вместе с профилями.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` `+userFrom+` WHERE LOWER(u.email) = LOWER($1)`,
		strings.TrimSpace(email))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по ID вместе с профилями.
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	// id из токена может быть любым, а uuid-колонка отвергает некорректный ввод ошибкой.
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` `+userFrom+` WHERE u.id = $1`, userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SetRole фиксирует выбор роли и создаёт пустой профиль соответствующего типа.
// Роль выбирается один раз: повторный вызов возвращает storage.ErrRoleAlreadySet.
func (s *Storage) SetRole(ctx context.Context, userID string, role models.Role) error {
	const op = "storage.SetRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, `UPDATE users SET role = $2 WHERE id = $1 AND role = ''`,
		userID, string(role))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).
			Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, storage.ErrRoleAlreadySet)
	}

	profile := `INSERT INTO students (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if role == models.RoleProfessional {
		profile = `INSERT INTO professionals (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	}
	if _, err := tx.ExecContext(ctx, profile, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) completeProfile(ctx context.Context, op, userID string, role models.Role,
	firstName, lastName, upsert string, args ...any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, `UPDATE users
		SET first_name = $2, last_name = $3, profile_complete = TRUE
		WHERE id = $1 AND role = $4`, userID, firstName, lastName, string(role))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	if _, err := tx.ExecContext(ctx, upsert, append([]any{userID}, args...)...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CompleteStudentProfile сохраняет анкету ученика и отмечает профиль заполненным.
// Пользователь должен иметь роль student, иначе storage.ErrUserNotFound.
func (s *Storage) CompleteStudentProfile(ctx context.Context, userID string, form models.StudentProfileForm) error {
	return s.completeProfile(ctx, "storage.CompleteStudentProfile", userID, models.RoleStudent,
		form.FirstName, form.LastName,
		`INSERT INTO students (user_id, affinities, preferred_schedule, practice_level, goals, vibe_after, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     affinities = EXCLUDED.affinities,
		     preferred_schedule = EXCLUDED.preferred_schedule,
		     practice_level = EXCLUDED.practice_level,
		     goals = EXCLUDED.goals,
		     vibe_after = EXCLUDED.vibe_after,
		     updated_at = EXCLUDED.updated_at`,
		form.Affinities, form.PreferredSchedule, form.PracticeLevel, form.Goals, form.VibeAfter,
		time.Now().UTC())
}

// CompleteProfessionalProfile сохраняет анкету профессионала и отмечает профиль заполненным.
func (s *Storage) CompleteProfessionalProfile(ctx context.Context, userID string,
	form models.ProfessionalProfileForm) error {
	return s.completeProfile(ctx, "storage.CompleteProfessionalProfile", userID, models.RoleProfessional,
		form.FirstName, form.LastName,
		`INSERT INTO professionals (user_id, specialty, bio, city, phone, instagram, years_teaching, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		     specialty = EXCLUDED.specialty,
		     bio = EXCLUDED.bio,
		     city = EXCLUDED.city,
		     phone = EXCLUDED.phone,
		     instagram = EXCLUDED.instagram,
		     years_teaching = EXCLUDED.years_teaching,
		     updated_at = EXCLUDED.updated_at`,
		form.Specialty, form.Bio, form.City, form.Phone, form.Instagram, form.YearsTeaching,
		time.Now().UTC())
}

// SetAccountTier меняет уровень аккаунта ученика.
func (s *Storage) SetAccountTier(ctx context.Context, userID string, tier models.AccountTier) error {
	const op = "storage.SetAccountTier"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE students SET account_tier = $2, updated_at = NOW()
		WHERE user_id = $1`, userID, string(tier))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return nil
}
