package models

import (
	"strings"
	"time"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// AssignedUser je skraćeni prikaz korisnika na zadatku.
type AssignedUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type Task struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     time.Time     `json:"due_date"`
	Priority    string        `json:"priority"`
	Status      string        `json:"status"`
	AssignedTo  *AssignedUser `json:"assigned_to"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// TaskInput su polja koja klijent sme da piše. Status je opcioni,
// server ga podrazumevano postavlja na PENDING.
type TaskInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DueDate      time.Time `json:"due_date"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status,omitempty"`
	AssignedToID *int      `json:"assigned_to_id,omitempty"`
}

// TaskFilter filtrira listu zadataka na klijentskoj strani.
type TaskFilter struct {
	Priority string
	Status   string
	Search   string
}

func (f TaskFilter) Matches(t Task) bool {
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}
