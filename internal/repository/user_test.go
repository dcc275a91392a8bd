package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
		WithArgs("birdwatcher", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).
			AddRow(7, "birdwatcher", "birdwatcher@example.com"))

	user, err := repo.GetByUsername(ctx, "birdwatcher")
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "birdwatcher", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsernameNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	_, err := repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "fresh", Email: "fresh@example.com", Password: "hash"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The listing queries must always carry the full visibility predicate:
// post published, category published via an inner join, pub_date not in
// the future.
func TestPostRepository_PublishedScopeShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT count\(\*\) FROM .*JOIN categories ON categories\.id = posts\.category_id.*posts\.is_published = \$\d.*categories\.is_published = \$\d.*posts\.pub_date <= \$\d`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`SELECT posts\.\*, \(SELECT COUNT\(\*\) FROM comments WHERE comments\.post_id = posts\.id AND comments\.deleted_at IS NULL\) as comment_count FROM .*JOIN categories ON categories\.id = posts\.category_id.*ORDER BY posts\.pub_date DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	posts, total, err := repo.ListPublished(ctx, 10, 0, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
