package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"task-admin-client/cache"
	"task-admin-client/config"
	"task-admin-client/listeners"
	"task-admin-client/logging"
	"task-admin-client/models"
	"task-admin-client/services"
	"task-admin-client/store"
	"task-admin-client/utils"
)

func main() {
	logging.InitLogger()

	cmd := flag.String("cmd", "tasks", "Command: login|logout|whoami|tasks|task-create|task-update|task-delete|users|user-create|user-update|user-delete|roles|watch")
	id := flag.Int("id", 0, "Task or user ID (for update/delete)")
	username := flag.String("username", "", "Username (login, user-create/update)")
	password := flag.String("password", "", "Password (login, user-create/update; empty on update leaves it unchanged)")
	email := flag.String("email", "", "Email (user-create/update)")
	roleID := flag.Int("role-id", 0, "Role ID (user-create/update)")
	title := flag.String("title", "", "Task title")
	description := flag.String("description", "", "Task description")
	due := flag.String("due", "", "Task due date, RFC3339 (e.g. 2024-01-01T10:00:00Z)")
	priority := flag.String("priority", "", "Task priority: LOW|MEDIUM|HIGH (also a list filter)")
	status := flag.String("status", "", "Task status: PENDING|IN_PROGRESS|COMPLETED (also a list filter)")
	search := flag.String("search", "", "List filter: match title/description")
	assigned := flag.Int("assigned", 0, "Assigned user ID (task-create/update)")
	flag.Parse()

	cfg := config.Load()

	sessionStore, err := store.NewSessionStore(cfg.SessionFile)
	if err != nil {
		logging.Logger.Fatalf("Event ID: SESSION_STORE_ERROR, Description: Failed to open session store: %v", err)
	}

	factory := services.NewClientFactory(cfg.APIBaseURL, sessionStore, func() {
		fmt.Println("Session expired. Please log in again.")
	})
	authService := services.NewAuthService(factory, sessionStore)
	taskService := services.NewTaskService(factory)
	userService := services.NewUserService(factory)

	// Sve osim prijave zahteva sačuvan access token.
	if *cmd != "login" && !sessionStore.IsAuthenticated() {
		fmt.Println("Not logged in. Run: task-admin-client -cmd login -username <user> -password <pass>")
		os.Exit(1)
	}

	switch *cmd {
	case "login":
		requireFlags(map[string]string{"-username": *username, "-password": *password})
		identity, err := authService.SignIn(*username, *password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				fail("Invalid username or password.")
			}
			fail("Login failed: %v", err)
		}
		fmt.Printf("Logged in as %s (%s)\n", identity.Username, identity.Role)
		fmt.Printf("Opening %s view\n", landingView(identity.Role))

	case "logout":
		if err := authService.Logout(); err != nil {
			fail("Logout failed: %v", err)
		}
		fmt.Println("Logged out.")

	case "whoami":
		session := sessionStore.Get()
		fmt.Printf("Username: %s\nRole: %s\n", session.Username, session.Role)
		if expiry, err := utils.TokenExpiry(session.AccessToken); err == nil && !expiry.IsZero() {
			fmt.Printf("Token expires: %s\n", expiry.Format(time.RFC3339))
		}

	case "tasks":
		listTasks(taskService, models.TaskFilter{Priority: *priority, Status: *status, Search: *search})

	case "task-create":
		requireFlags(map[string]string{"-title": *title, "-due": *due})
		dueDate, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			fail("Invalid -due value, expected RFC3339: %v", err)
		}
		input := models.TaskInput{
			Title:       *title,
			Description: *description,
			DueDate:     dueDate,
			Priority:    defaultString(*priority, models.PriorityMedium),
			Status:      *status,
		}
		if *assigned != 0 {
			input.AssignedToID = assigned
		}
		task, err := taskService.Create(input)
		if err != nil {
			fail("Failed to create task: %v", err)
		}
		fmt.Println("Task created successfully")
		printTask(*task)

	case "task-update":
		requireID(*id)
		requireFlags(map[string]string{"-title": *title, "-due": *due})
		dueDate, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			fail("Invalid -due value, expected RFC3339: %v", err)
		}
		input := models.TaskInput{
			Title:       *title,
			Description: *description,
			DueDate:     dueDate,
			Priority:    defaultString(*priority, models.PriorityMedium),
			Status:      *status,
		}
		if *assigned != 0 {
			input.AssignedToID = assigned
		}
		task, err := taskService.Update(*id, input)
		if err != nil {
			fail("Failed to update task: %v", err)
		}
		fmt.Println("Task updated successfully")
		printTask(*task)

	case "task-delete":
		requireID(*id)
		if err := taskService.Delete(*id); err != nil {
			fail("Failed to delete task: %v", err)
		}
		fmt.Println("Task deleted successfully")

	case "users", "user-create", "user-update", "user-delete", "roles":
		// Upravljanje korisnicima je samo za admina; ostali se vraćaju
		// na pregled zadataka.
		if !sessionStore.HasRole(models.RoleAdmin) {
			fmt.Println("Access forbidden: insufficient permissions. Opening tasks view.")
			listTasks(taskService, models.TaskFilter{})
			return
		}
		runUserCommand(*cmd, userService, *id, *username, *password, *email, *roleID)

	case "watch":
		runWatch(cfg.WSURL, taskService)

	default:
		fail("Unknown command %q", *cmd)
	}
}

func runUserCommand(cmd string, userService *services.UserService, id int, username, password, email string, roleID int) {
	switch cmd {
	case "users":
		users, err := userService.List()
		if err != nil {
			fail("Failed to fetch users: %v", err)
		}
		for _, user := range users {
			fmt.Printf("#%d  %-20s %-30s %s\n", user.ID, user.Username, user.Email, user.RoleName())
		}

	case "user-create":
		requireFlags(map[string]string{"-username": username, "-password": password, "-email": email})
		input := models.UserInput{Username: username, Email: email, Password: password}
		if roleID != 0 {
			input.RoleID = &roleID
		}
		user, err := userService.Create(input)
		if err != nil {
			fail("Failed to create user: %v", err)
		}
		fmt.Printf("User %s created\n", user.Username)

	case "user-update":
		requireID(id)
		requireFlags(map[string]string{"-username": username, "-email": email})
		// Prazan -password znači da lozinka ostaje kakva jeste.
		input := models.UserInput{Username: username, Email: email, Password: password}
		if roleID != 0 {
			input.RoleID = &roleID
		}
		user, err := userService.Update(id, input)
		if err != nil {
			fail("Failed to update user: %v", err)
		}
		fmt.Printf("User %s updated\n", user.Username)

	case "user-delete":
		requireID(id)
		if err := userService.Delete(id); err != nil {
			fail("Failed to delete user: %v", err)
		}
		fmt.Println("User deleted successfully")

	case "roles":
		roles, err := userService.ListRoles()
		if err != nil {
			fail("Failed to fetch roles: %v", err)
		}
		for _, role := range roles {
			fmt.Printf("#%d  %s\n", role.ID, role.Name)
		}
	}
}

// runWatch drži push kanal otvoren i posle svake notifikacije ispiše
// svežu listu, kao toast + refetch u starom panelu.
func runWatch(wsURL string, taskService *services.TaskService) {
	taskCache := cache.NewTaskCache(func() ([]models.Task, error) {
		return taskService.List(models.TaskFilter{})
	})

	tasks, err := taskCache.Get()
	if err != nil {
		fail("Failed to fetch tasks: %v", err)
	}
	fmt.Printf("Watching %d tasks. Press Ctrl-C to stop.\n", len(tasks))

	listener := listeners.NewTaskListener(wsURL, taskCache, &watchNotifier{cache: taskCache})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	listener.Run(ctx)
	fmt.Println("Stopped watching.")
}

type watchNotifier struct {
	cache *cache.TaskCache
}

func (n *watchNotifier) Notify(eventID, message string) {
	fmt.Printf("[%s] %s\n", eventID, message)
	tasks, err := n.cache.Get()
	if err != nil {
		fmt.Printf("Failed to refresh tasks: %v\n", err)
		return
	}
	fmt.Printf("Task list refreshed, %d tasks.\n", len(tasks))
}

func listTasks(taskService *services.TaskService, filter models.TaskFilter) {
	tasks, err := taskService.List(filter)
	if err != nil {
		fail("Failed to fetch tasks: %v", err)
	}
	for _, task := range tasks {
		printTask(task)
	}
	fmt.Printf("%d tasks.\n", len(tasks))
}

func printTask(task models.Task) {
	assignee := "-"
	if task.AssignedTo != nil {
		assignee = task.AssignedTo.Username
	}
	fmt.Printf("#%d  %-30s %-8s %-12s due %s  assigned to %s\n",
		task.ID, task.Title, task.Priority, task.Status, task.DueDate.Format("2006-01-02 15:04"), assignee)
}

func landingView(role string) string {
	if role == models.RoleAdmin {
		return "users"
	}
	return "tasks"
}

func requireFlags(flags map[string]string) {
	for name, value := range flags {
		if value == "" {
			fail("%s is required", name)
		}
	}
}

func requireID(id int) {
	if id == 0 {
		fail("-id is required")
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func fail(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
