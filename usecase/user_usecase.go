package usecase

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/utils"
)

const tokenTTL = 24 * time.Hour

type IUser interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) error
}

type UserUsecase struct {
	users     repository.IUser
	secretKey string
}

func NewUserUsecase(users repository.IUser, secretKey string) *UserUsecase {
	return &UserUsecase{users: users, secretKey: secretKey}
}

func (u *UserUsecase) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := u.users.GetByUserName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Validation("invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Validation("invalid username or password")
	}
	token, err := utils.GenerateToken(user, u.secretKey, tokenTTL)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{AccessToken: token}, nil
}

func (u *UserUsecase) Register(ctx context.Context, req dto.RegisterRequest) error {
	if _, err := u.users.GetByUserName(ctx, req.UserName); err == nil {
		return apperror.Validation("username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return u.users.CreateUser(ctx, model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: string(hash),
		Tier:     model.TierFree,
	})
}

var _ IUser = (*UserUsecase)(nil)
