package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

func TestStorage_Users(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	t.Run("create and read", func(t *testing.T) {
		id, err := s.CreateUser(ctx, models.User{Email: "  Ana@MoVibes.app ", PasswordHash: "hash"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		u, err := s.GetUserByEmail(ctx, "ana@movibes.app")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "ana@movibes.app", u.Email)
		assert.Equal(t, models.RoleUnset, u.Role)
		assert.Equal(t, models.RegistrationEmail, u.RegistrationMethod)
		assert.False(t, u.ProfileComplete)
		assert.Nil(t, u.Student)
		assert.Nil(t, u.Professional)

		byID, err := s.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, u, byID)
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := s.CreateUser(ctx, models.User{Email: "dup@movibes.app", PasswordHash: "h"})
		require.NoError(t, err)
		_, err = s.CreateUser(ctx, models.User{Email: "DUP@movibes.app", PasswordHash: "h"})
		assert.ErrorIs(t, err, storage.ErrUserExists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetUserByEmail(ctx, "ghost@movibes.app")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
		_, err = s.GetUserByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
		_, err = s.GetUserByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestStorage_StudentOnboarding(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	id, err := s.CreateUser(ctx, models.User{Email: "student@movibes.app", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, s.SetRole(ctx, id, models.RoleStudent))
	assert.ErrorIs(t, s.SetRole(ctx, id, models.RoleProfessional), storage.ErrRoleAlreadySet)

	u, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, u.Role)
	require.NotNil(t, u.Student)
	assert.Nil(t, u.Professional)
	assert.Equal(t, models.TierFree, u.Student.AccountTier)
	assert.Empty(t, u.Student.Affinities)

	form := models.StudentProfileForm{
		FirstName:         "Ana",
		LastName:          "Souza",
		Affinities:        []string{"yoga", "pilates"},
		PreferredSchedule: "morning",
		PracticeLevel:     "beginner",
		Goals:             "flexibility",
		VibeAfter:         "calm",
	}
	require.NoError(t, s.CompleteStudentProfile(ctx, id, form))
	require.NoError(t, s.SetAccountTier(ctx, id, models.TierPremium))

	u, err = s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.ProfileComplete)
	assert.Equal(t, "Ana", u.FirstName)
	assert.Equal(t, []string{"yoga", "pilates"}, u.Student.Affinities)
	assert.Equal(t, "morning", u.Student.PreferredSchedule)
	assert.Equal(t, models.TierPremium, u.Student.AccountTier)

	err = s.CompleteProfessionalProfile(ctx, id, models.ProfessionalProfileForm{FirstName: "Ana", Specialty: "yoga", City: "Recife"})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_ProfessionalOnboarding(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	id, err := s.CreateUser(ctx, models.User{Email: "pro@movibes.app", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, s.SetRole(ctx, id, models.RoleProfessional))
	require.NoError(t, s.CompleteProfessionalProfile(ctx, id, models.ProfessionalProfileForm{
		FirstName: "Bia", Specialty: "pilates", City: "Recife", YearsTeaching: 7,
	}))

	u, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.ProfileComplete)
	require.NotNil(t, u.Professional)
	assert.Nil(t, u.Student)
	assert.Equal(t, "pilates", u.Professional.Specialty)
	assert.Equal(t, 7, u.Professional.YearsTeaching)

	assert.ErrorIs(t, s.SetAccountTier(ctx, id, models.TierPremium), storage.ErrUserNotFound)
	assert.ErrorIs(t, s.SetRole(ctx, "00000000-0000-4000-8000-000000000000", models.RoleStudent), storage.ErrUserNotFound)
}

func TestCheckDatabaseReady(t *testing.T) {
	s := setupTestDatabase(t)
	assert.NoError(t, CheckDatabaseReady(context.Background(), s))

	_, err := s.DB.Exec(`DROP TABLE subscriptions`)
	require.NoError(t, err)
	assert.Error(t, CheckDatabaseReady(context.Background(), s))
}
