package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/models"
	repository "github.com/petalcart/petalcart/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserRepoTest(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewUserRepo(db), mock
}

func userRow(id uuid.UUID, email string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at"}).
		AddRow(id, email, "Ada", "$2a$10$hash", time.Now())
}

func TestCreateUser(t *testing.T) {
	repo, mock := setupUserRepoTest(t)
	ctx := t.Context()

	t.Run("Success - Created Timestamp Returned", func(t *testing.T) {
		// Arrange
		user := &models.User{
			ID:           uuid.New(),
			Email:        "user@example.com",
			Name:         "Ada",
			PasswordHash: "$2a$10$hash",
		}
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO users \(id, email, name, password_hash, created_at\)`).
			WithArgs(user.ID, user.Email, user.Name, user.PasswordHash).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, user.CreatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByEmail(t *testing.T) {
	repo, mock := setupUserRepoTest(t)
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
			WithArgs("user@example.com").
			WillReturnRows(userRow(userID, "user@example.com"))

		// Act
		user, err := repo.GetUserByEmail(ctx, "user@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "Ada", user.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unknown Email", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		// Act
		user, err := repo.GetUserByEmail(ctx, "ghost@example.com")

		// Assert
		assert.Nil(t, user)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListUsersQuery(t *testing.T) {
	repo, mock := setupUserRepoTest(t)
	ctx := t.Context()

	t.Run("Success - Newest First", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM users\s+ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at"}).
				AddRow(uuid.New(), "b@example.com", "B", "hash", time.Now()).
				AddRow(uuid.New(), "a@example.com", "A", "hash", time.Now().Add(-time.Hour)))

		// Act
		users, err := repo.ListUsers(ctx)

		// Assert
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "b@example.com", users[0].Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
