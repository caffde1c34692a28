package cache

import (
	"sync"

	"task-admin-client/logging"
	"task-admin-client/models"
)

// FetchFunc dovlači svežu listu zadataka sa servera.
type FetchFunc func() ([]models.Task, error)

// TaskCache je read-through keš nad fiksnim upitom "lista zadataka".
// Na svaku izmenu ili push notifikaciju keš se obara u celini; nikada
// se ne krpi pojedinačnim izmenama.
type TaskCache struct {
	mu    sync.Mutex
	fetch FetchFunc
	tasks []models.Task
	valid bool
}

func NewTaskCache(fetch FetchFunc) *TaskCache {
	return &TaskCache{fetch: fetch}
}

// Get vraća keširanu listu, ili je dovlači ako je keš oboren.
func (c *TaskCache) Get() ([]models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid {
		return c.tasks, nil
	}
	tasks, err := c.fetch()
	if err != nil {
		return nil, err
	}
	c.tasks = tasks
	c.valid = true
	return tasks, nil
}

// Invalidate obara keš. Idempotentno: obaranje već oborenog keša je
// no-op, nikada greška.
func (c *TaskCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		return
	}
	c.tasks = nil
	c.valid = false
	logging.Logger.Debugf("Event ID: CACHE_INVALIDATED, Description: Task list cache dropped")
}

// Valid javlja da li bi sledeći Get prošao bez mrežnog poziva.
func (c *TaskCache) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid
}
