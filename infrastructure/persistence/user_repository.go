package persistence

import (
	"context"
	"database/sql"
	"time"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
)

type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) repository.IUser { return &UserRepository{db} }

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.email, u.password, u.slack_id, u.is_admin, u.created_at, u.updated_at 
	FROM users AS u 
	WHERE u.id = $1`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error prepare query user by id")
		return u, storeError("user.get", err)
	}
	defer stmt.Close()
	if err := scanUser(stmt.QueryRowContext(ctx, id), &u); err != nil {
		return model.User{}, storeError("user.get", err)
	}
	return u, nil
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var u model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.email, u.password, u.slack_id, u.is_admin, u.created_at, u.updated_at 
	FROM users AS u 
	WHERE u.user_name = $1`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error prepare query user by user name")
		return u, storeError("user.get_by_user_name", err)
	}
	defer stmt.Close()
	if err := scanUser(stmt.QueryRowContext(ctx, userName), &u); err != nil {
		return model.User{}, storeError("user.get_by_user_name", err)
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) (int64, error) {
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO users (name, user_name, email, password, slack_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error prepare create user")
		return 0, storeError("user.create", err)
	}
	defer stmt.Close()
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var id int64
	if err := stmt.QueryRowContext(ctx, user.Name, user.UserName, user.Email, user.Password, user.SlackID, createdAt).Scan(&id); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"user_name": user.UserName,
		}).Error("Error create user")
		return 0, storeError("user.create", err)
	}
	return id, nil
}

func scanUser(row *sql.Row, u *model.User) error {
	var slackID sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Email, &u.Password, &slackID, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.SlackID = stringPtr(slackID)
	return nil
}
