package models

const EventTypeTaskUpdate = "task_update"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TaskEvent stiže preko push kanala posle svake izmene zadatka.
// Task polje server šalje za sve akcije osim brisanja, ali se keš
// uvek osvežava ponovnim čitanjem cele liste.
type TaskEvent struct {
	Type   string `json:"type"`
	TaskID int    `json:"task_id"`
	Action string `json:"action"`
	Task   *Task  `json:"task,omitempty"`
}
