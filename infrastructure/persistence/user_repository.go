package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

const userColumns = `id, name, user_name, password, tier, created_at, updated_at`

type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	stmt, err := r.db.PrepareContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`)
	if err != nil {
		return model.User{}, err
	}
	defer stmt.Close()
	return scanUser(stmt.QueryRowContext(ctx, id))
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	stmt, err := r.db.PrepareContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_name=$1`)
	if err != nil {
		return model.User{}, err
	}
	defer stmt.Close()
	return scanUser(stmt.QueryRowContext(ctx, userName))
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	now := time.Now().UTC()
	stmt, err := r.db.PrepareContext(ctx,
		`INSERT INTO users (name, user_name, password, tier, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.ExecContext(ctx, user.Name, user.UserName, user.Password, string(user.Tier), now)
	return err
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	var tier string
	err := row.Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &tier, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, err
	}
	user.Tier = model.TierName(tier)
	return user, nil
}

var _ repository.IUser = (*UserRepository)(nil)
