// Package models содержит доменные структуры MoVibes: пользователя с профилем
// ученика или профессионала, тарифные планы и подписки.
package models

import "time"

// Role выбранный пользователем тип профиля.
type Role string

const (
	RoleUnset        Role = ""
	RoleStudent      Role = "student"
	RoleProfessional Role = "professional"
)

// Valid сообщает, является ли роль одной из выбираемых (student/professional).
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleProfessional
}

// AccountTier уровень аккаунта ученика.
type AccountTier string

const (
	TierFree    AccountTier = "free"
	TierPremium AccountTier = "premium"
)

// RegistrationMethod способ регистрации.
const (
	RegistrationEmail = "email"
)

// User зарегистрированный пользователь.
type User struct {
	ID                 string        `json:"id"`
	Email              string        `json:"email"`
	PasswordHash       string        `json:"-"`
	FirstName          string        `json:"first_name"`
	LastName           string        `json:"last_name"`
	Role               Role          `json:"role"`
	ProfileComplete    bool          `json:"profile_complete"`
	IsStaff            bool          `json:"is_staff"`
	RegistrationMethod string        `json:"registration_method"`
	Student            *Student      `json:"student,omitempty"`
	Professional       *Professional `json:"professional,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// RoleChosen true, если пользователь уже выбрал тип профиля.
func (u *User) RoleChosen() bool {
	return u.Role != RoleUnset
}

// Student профиль ученика.
type Student struct {
	UserID            string      `json:"-"`
	Affinities        []string    `json:"affinities"`
	PreferredSchedule string      `json:"preferred_schedule"`
	PracticeLevel     string      `json:"practice_level"`
	Goals             string      `json:"goals"`
	VibeAfter         string      `json:"vibe_after"`
	AccountTier       AccountTier `json:"account_tier"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Professional профиль профессионала (преподавателя, студии).
type Professional struct {
	UserID        string    `json:"-"`
	Specialty     string    `json:"specialty"`
	Bio           string    `json:"bio"`
	City          string    `json:"city"`
	Phone         string    `json:"phone"`
	Instagram     string    `json:"instagram"`
	YearsTeaching int       `json:"years_teaching"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RegisterRequest данные регистрации по email. Role необязательна: если указана,
// шаг выбора роли пропускается.
type RegisterRequest struct {
	Email     string `json:"email" form:"email" validate:"required,email,max=254"`
	Password  string `json:"password" form:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" form:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" form:"last_name" validate:"max=150"`
	Role      Role   `json:"role" form:"role" validate:"omitempty,oneof=student professional"`
}

// LoginRequest данные входа.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// StudentProfileForm данные формы завершения профиля ученика.
type StudentProfileForm struct {
	FirstName         string   `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName          string   `json:"last_name" form:"last_name" validate:"max=150"`
	Affinities        []string `json:"affinities" form:"affinities" validate:"required,min=1,dive,required,max=50"`
	PreferredSchedule string   `json:"preferred_schedule" form:"preferred_schedule" validate:"required,oneof=morning afternoon evening flexible"`
	PracticeLevel     string   `json:"practice_level" form:"practice_level" validate:"required,oneof=beginner intermediate advanced"`
	Goals             string   `json:"goals" form:"goals" validate:"max=1000"`
	VibeAfter         string   `json:"vibe_after" form:"vibe_after" validate:"max=255"`
}

// ProfessionalProfileForm данные формы завершения профиля профессионала.
type ProfessionalProfileForm struct {
	FirstName     string `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName      string `json:"last_name" form:"last_name" validate:"max=150"`
	Specialty     string `json:"specialty" form:"specialty" validate:"required,max=100"`
	Bio           string `json:"bio" form:"bio" validate:"max=2000"`
	City          string `json:"city" form:"city" validate:"required,max=100"`
	Phone         string `json:"phone" form:"phone" validate:"omitempty,max=20"`
	Instagram     string `json:"instagram" form:"instagram" validate:"omitempty,max=100"`
	YearsTeaching int    `json:"years_teaching" form:"years_teaching" validate:"gte=0,lte=80"`
}
