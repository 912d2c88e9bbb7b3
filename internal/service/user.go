package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"liveroom/internal/models"
	"liveroom/internal/repository"
	"liveroom/internal/utils"
)

const maxNameLength = 64

type UserService struct {
	userRepo repository.UserRepository
	tokens   *utils.TokenManager
}

func NewUserService(userRepo repository.UserRepository, tokens *utils.TokenManager) *UserService {
	return &UserService{userRepo: userRepo, tokens: tokens}
}

// CreateUser 建立玩家並簽發其 bearer token
func (s *UserService) CreateUser(ctx context.Context, name string, leaderCardID int64) (*models.User, string, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{Name: name, LeaderCardID: leaderCardID}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logrus.WithError(err).Error("Failed to create user")
		return nil, "", storageError(err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		logrus.WithField("user_id", user.ID).WithError(err).Error("Failed to sign token")
		return nil, "", storageError(err)
	}

	logrus.WithField("user_id", user.ID).Info("User created")
	return user, token, nil
}

func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID uint, name string, leaderCardID int64) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	user.Name = name
	user.LeaderCardID = leaderCardID
	if err := s.userRepo.Update(ctx, user); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("Failed to update user")
		return storageError(err)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", validationError("name longer than %d characters", maxNameLength)
	}
	return name, nil
}
