package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const fullColumns = `id, username, email, full_name, avatar, cover_image, password, refresh_token, created_at, updated_at`

const publicColumns = `id, username, email, full_name, avatar, cover_image, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanFull(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var refresh sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.Password, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.RefreshToken = refresh.String
	return u, nil
}

func wrapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + fullColumns + ` FROM users WHERE id = $1`

	u, err := scanFull(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) FindPublicByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + publicColumns + ` FROM users WHERE id = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.FullName,
		&u.Avatar, &u.CoverImage, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) FindOne(ctx context.Context, username, email string) (*models.User, error) {
	var (
		conds []string
		args  []any
	)
	if username != "" {
		args = append(args, username)
		conds = append(conds, fmt.Sprintf("username = $%d", len(args)))
	}
	if email != "" {
		args = append(args, email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if len(conds) == 0 {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + fullColumns + ` FROM users WHERE ` + strings.Join(conds, " OR ") + ` LIMIT 1`

	u, err := scanFull(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, email, full_name, avatar, cover_image, password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`

	id := uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		id, user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage, user.Password,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET username = $2, email = $3, full_name = $4, avatar = $5, cover_image = $6,
		     password = $7, refresh_token = NULLIF($8, ''), updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage,
		user.Password, user.RefreshToken)
	if err != nil {
		return wrapErr(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	query :=
		`UPDATE users SET refresh_token = NULLIF($2, ''), updated_at = now()
		 WHERE id = $1
		 RETURNING ` + fullColumns

	u, err := scanFull(r.db.QueryRowContext(ctx, query, id, token))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}
