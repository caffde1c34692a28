package services

import (
	"fmt"

	"task-admin-client/logging"
	"task-admin-client/models"
)

// TaskService su CRUD pozivi za zadatke. Svaki poziv traži svež
// klijent od fabrike da bi uvek nosio trenutni token.
type TaskService struct {
	Factory *ClientFactory
}

func NewTaskService(factory *ClientFactory) *TaskService {
	return &TaskService{Factory: factory}
}

// List vraća zadatke, filtrirane na klijentskoj strani.
func (s *TaskService) List(filter models.TaskFilter) ([]models.Task, error) {
	client := s.Factory.NewClient()

	var tasks []models.Task
	if err := client.Get("/tasks/", &tasks); err != nil {
		return nil, err
	}

	if filter == (models.TaskFilter{}) {
		return tasks, nil
	}
	filtered := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if filter.Matches(task) {
			filtered = append(filtered, task)
		}
	}
	return filtered, nil
}

func (s *TaskService) Create(input models.TaskInput) (*models.Task, error) {
	client := s.Factory.NewClient()

	var created models.Task
	if err := client.Post("/tasks/", input, &created); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %d created", created.ID)
	return &created, nil
}

func (s *TaskService) Update(id int, input models.TaskInput) (*models.Task, error) {
	client := s.Factory.NewClient()

	var updated models.Task
	if err := client.Put(fmt.Sprintf("/tasks/%d/", id), input, &updated); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: Task %d updated", id)
	return &updated, nil
}

func (s *TaskService) Delete(id int) error {
	client := s.Factory.NewClient()

	if err := client.Delete(fmt.Sprintf("/tasks/%d/", id)); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %d deleted", id)
	return nil
}
