package services

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

var ErrInvalidInput = errors.New("invalid input")

// AdminService manages the panel's own accounts.
type AdminService struct {
	users repositories.UserRepository
}

func NewAdminService(users repositories.UserRepository) *AdminService {
	return &AdminService{users: users}
}

func (s *AdminService) Create(email, name, password string, role models.AdminRole) (*models.AdminUser, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Provider:     "password",
	}
	if err := s.users.Create(user); err != nil {
		logrus.Error("Error creating admin account: ", err)
		return nil, errors.New("error creating admin account")
	}
	return user, nil
}

func (s *AdminService) List() ([]models.AdminUser, error) {
	return s.users.List()
}

func (s *AdminService) UpdateRole(id uint, role models.AdminRole) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		return err
	}
	user.Role = role
	return s.users.Update(user)
}

func (s *AdminService) SetSuspended(id uint, suspended bool) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		return err
	}
	user.Suspended = suspended
	return s.users.Update(user)
}
