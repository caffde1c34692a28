package services

import (
	"fmt"

	"task-admin-client/logging"
	"task-admin-client/models"
)

// UserService su CRUD pozivi za korisnike. Password polje je
// write-only: prazan password se uopšte ne šalje, što server tumači
// kao "ostavi nepromenjeno".
type UserService struct {
	Factory *ClientFactory
}

func NewUserService(factory *ClientFactory) *UserService {
	return &UserService{Factory: factory}
}

func (s *UserService) List() ([]models.User, error) {
	client := s.Factory.NewClient()

	var users []models.User
	if err := client.Get("/users/", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Create(input models.UserInput) (*models.User, error) {
	client := s.Factory.NewClient()

	var created models.User
	if err := client.Post("/users/", input, &created); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: USER_CREATED, Description: User %s created", created.Username)
	return &created, nil
}

func (s *UserService) Update(id int, input models.UserInput) (*models.User, error) {
	client := s.Factory.NewClient()

	var updated models.User
	if err := client.Put(fmt.Sprintf("/users/%d/", id), input, &updated); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: USER_UPDATED, Description: User %d updated", id)
	return &updated, nil
}

func (s *UserService) Delete(id int) error {
	client := s.Factory.NewClient()

	if err := client.Delete(fmt.Sprintf("/users/%d/", id)); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: USER_DELETED, Description: User %d deleted", id)
	return nil
}

// ListRoles vraća imenovane uloge sa /roles/. Serveri sa starim
// is_staff modelom ovaj endpoint nemaju.
func (s *UserService) ListRoles() ([]models.Role, error) {
	client := s.Factory.NewClient()

	var roles []models.Role
	if err := client.Get("/roles/", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
