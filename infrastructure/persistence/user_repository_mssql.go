package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

type UserRepositoryMSSQL struct{ db *sql.DB }

func NewUserRepositoryMSSQL(db *sql.DB) *UserRepositoryMSSQL {
	return &UserRepositoryMSSQL{db: db}
}

func (r *UserRepositoryMSSQL) GetById(ctx context.Context, id int64) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM dbo.[users] WHERE id=@p1`, id)
	return scanUser(row)
}

func (r *UserRepositoryMSSQL) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM dbo.[users] WHERE user_name=@p1`, userName)
	return scanUser(row)
}

func (r *UserRepositoryMSSQL) CreateUser(ctx context.Context, user model.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dbo.[users] (name, user_name, password, tier, created_at, updated_at) VALUES (@p1,@p2,@p3,@p4,@p5,@p5)`,
		user.Name, user.UserName, user.Password, string(user.Tier), now)
	return err
}

var _ repository.IUser = (*UserRepositoryMSSQL)(nil)
