package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"task-admin-client/logging"
	"task-admin-client/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Invalidator obara keširanu listu zadataka.
type Invalidator interface {
	Invalidate()
}

// Notifier prikazuje prolaznu notifikaciju korisniku.
type Notifier interface {
	Notify(eventID, message string)
}

// TaskListener drži trajnu websocket konekciju ka push kanalu i na
// svaki task_update događaj prvo obara keš, pa tek onda obaveštava
// korisnika, da bi reakcija na notifikaciju uvek videla sveže podatke.
type TaskListener struct {
	URL      string
	Cache    Invalidator
	Notifier Notifier

	// Ponovno povezivanje sa eksponencijalnim backoff-om.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func NewTaskListener(url string, cache Invalidator, notifier Notifier) *TaskListener {
	return &TaskListener{
		URL:            url,
		Cache:          cache,
		Notifier:       notifier,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// Run održava konekciju dok se ctx ne otkaže. Redosled poruka posle
// ponovnog povezivanja nije garantovan; obaranje keša je idempotentno
// pa to ne smeta.
func (l *TaskListener) Run(ctx context.Context) {
	backoff := l.InitialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.URL, nil)
		if err != nil {
			logging.Logger.Warnf("Event ID: WS_CONNECT_FAILED, Description: Failed to connect to %s, retrying in %s: %v", l.URL, backoff, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, l.MaxBackoff)
			continue
		}

		logging.Logger.Infof("Event ID: WS_CONNECTED, Description: Connected to push channel at %s", l.URL)
		backoff = l.InitialBackoff

		l.readLoop(ctx, conn)
		conn.Close()
	}
}

func (l *TaskListener) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logging.Logger.Warnf("Event ID: WS_READ_ERROR, Description: Push channel read failed, reconnecting: %v", err)
			}
			return
		}

		var event models.TaskEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logging.Logger.Warnf("Event ID: WS_BAD_MESSAGE, Description: Ignoring malformed push message: %v", err)
			continue
		}
		if event.Type != models.EventTypeTaskUpdate {
			continue
		}

		l.Cache.Invalidate()

		eventID := uuid.New().String()
		message := fmt.Sprintf("Task %d was %s", event.TaskID, event.Action)
		logging.Logger.Infof("Event ID: TASK_EVENT, Description: %s (notification %s)", message, eventID)
		if l.Notifier != nil {
			l.Notifier.Notify(eventID, message)
		}
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
