package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskhub/models"
	"taskhub/store"
	"taskhub/utils"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ProfileInput struct {
	Name   *string
	Avatar *string
}

type UpdateUserInput struct {
	Name   *string
	Email  *string
	Avatar *string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validation(err.Error())
	}

	if _, err := s.repo.UserByEmail(ctx, in.Email); err == nil {
		return nil, conflict("user already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, unavailable(err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, unavailable(err)
	}
	user := &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("user already exists")
		}
		return nil, unavailable(err)
	}

	res, err := s.authResult(user)
	if err != nil {
		return nil, err
	}

	s.goBackground(func(ctx context.Context) {
		if _, err := s.SendWelcome(ctx, user.Email, user.Name); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("welcome email not sent")
		}
	})
	return res, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, unauthenticated("invalid credentials")
	}
	return s.authResult(user)
}

// Authenticate resolves a bearer token to a live user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, unauthenticated("no token, authorization denied")
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "token is not valid", Err: err}
	}
	user, err := s.repo.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, unauthenticated("token is not valid")
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}

func (s *Service) Me(ctx context.Context, actor uint) (*models.User, error) {
	return s.GetUser(ctx, actor)
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "user")
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor uint, in ProfileInput) (*models.User, error) {
	return s.UpdateUser(ctx, actor, actor, UpdateUserInput{Name: in.Name, Avatar: in.Avatar})
}

// UpdateUser edits an account. Users may only edit themselves.
func (s *Service) UpdateUser(ctx context.Context, id, actor uint, in UpdateUserInput) (*models.User, error) {
	if id != actor {
		return nil, forbidden("not authorized to update this user")
	}
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "user")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validation("name is required")
		}
		user.Name = name
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Email != nil {
		email := models.NormalizeEmail(*in.Email)
		if err := utils.ValidateEmail(email); err != nil {
			return nil, validation(err.Error())
		}
		if email != user.Email {
			if _, err := s.repo.UserByEmail(ctx, email); err == nil {
				return nil, conflict("email is already in use")
			} else if !errors.Is(err, store.ErrNotFound) {
				return nil, unavailable(err)
			}
			user.Email = email
		}
	}

	if err := s.repo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("email is already in use")
		}
		return nil, unavailable(err)
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, actor uint, current, next string) error {
	if len(next) < 6 {
		return validation("password must be at least 6 characters")
	}
	user, err := s.repo.UserByID(ctx, actor)
	if err != nil {
		return lookup(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return badRequest("current password is incorrect")
	}
	hash, err := hashPassword(next)
	if err != nil {
		return unavailable(err)
	}
	user.PasswordHash = hash
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return unavailable(err)
	}
	return nil
}

// DeleteAccount removes the actor with their notifications and reset tokens.
// Teams and projects referencing the user are left as they are.
func (s *Service) DeleteAccount(ctx context.Context, actor uint) error {
	if err := s.repo.DeleteUser(ctx, actor); err != nil {
		return lookup(err, "user")
	}
	return nil
}

func (s *Service) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, unavailable(err)
	}
	return &AuthResult{Token: token, User: user.Profile()}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
