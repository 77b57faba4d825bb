package bot

import (
	"fmt"
	"log"
	"sync"
	"time"

	"guardian-bot/model"
	"guardian-bot/moderation"
	"guardian-bot/utils"
	"guardian-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// tickInterval is the polling cadence of both scheduler loops. Pending work
// has second-level granularity; nothing here is suitable for sub-second
// deadlines.
const tickInterval = time.Second

// workerLimit bounds the number of pending actions executing concurrently in
// one tick, so a large backlog becoming due at once cannot spike resources.
const workerLimit = 8

// Scheduler runs the two polling loops that drain the durable queues: due
// pending actions through the executor, and due deescalations through the
// escalation manager. The loops are independent and never coordinate.
type Scheduler struct {
	db         *sqlx.DB
	executor   *moderation.Executor
	manager    *moderation.Manager
	self       moderation.Authorizer
	webhookURL string
	done       chan struct{}
	wg         sync.WaitGroup
	now        func() time.Time
}

// NewScheduler creates a scheduler. self is the identity recorded as the
// authorizer on automatic deescalations.
func NewScheduler(db *sqlx.DB, executor *moderation.Executor, manager *moderation.Manager, self moderation.Authorizer, webhookURL string) *Scheduler {
	return &Scheduler{
		db:         db,
		executor:   executor,
		manager:    manager,
		self:       self,
		webhookURL: webhookURL,
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Start begins both polling loops.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.actionLoop()
	go s.deescalationLoop()
}

// Stop terminates both loops and waits for in-flight work to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) actionLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drainActions(s.now())
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) deescalationLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drainDeescalations(s.now())
		case <-s.done:
			return
		}
	}
}

// drainActions dispatches every due pending action to a worker and waits for
// the batch. A long batch can make an individual tick exceed the cadence;
// the ticker keeps its fixed schedule regardless.
func (s *Scheduler) drainActions(now time.Time) {
	rows, err := database.GetDuePendingActions(s.db, now)
	if err != nil {
		log.Printf("Error getting due pending actions: %v", err)
		return
	}

	var wg sync.WaitGroup
	guard := make(chan struct{}, workerLimit)
	for _, row := range rows {
		wg.Add(1)
		guard <- struct{}{}
		go func(row model.PendingAction) {
			defer func() {
				<-guard
				wg.Done()
			}()
			s.runPendingAction(row)
		}(row)
	}
	wg.Wait()
}

// runPendingAction executes one due row and reconciles the store. Success
// and client-class failures delete the row; anything else leaves it in place
// to retry on the next tick.
func (s *Scheduler) runPendingAction(row model.PendingAction) {
	action, err := database.DecodePendingAction(row)
	if err != nil {
		// a blob that no longer parses will never parse; drop it
		log.Printf("Dropping unreadable pending action %d: %v", row.ID, err)
		utils.LogError(s.webhookURL, "scheduler", "drop unreadable pending action",
			fmt.Sprintf("id=%d: %v", row.ID, err))
		s.deleteActionRow(row.ID)
		return
	}

	err = s.executor.Execute(action)
	if err == nil {
		s.deleteActionRow(row.ID)
		return
	}

	if moderation.IsClientError(err) {
		log.Printf("Dropping pending action %d (%s for user %s): %v", row.ID, action.Kind, action.UserID, err)
		utils.LogWarn(s.webhookURL, "scheduler", "drop pending action",
			fmt.Sprintf("id=%d kind=%s user=%s: %v", row.ID, action.Kind, action.UserID, err))
		s.deleteActionRow(row.ID)
		return
	}

	// transient or server-side; the row stays due and is retried next tick
	log.Printf("Pending action %d failed, will retry: %v", row.ID, err)
}

func (s *Scheduler) deleteActionRow(id int64) {
	if err := database.DeletePendingAction(s.db, id); err != nil {
		log.Printf("Failed to delete pending action %d: %v", id, err)
	}
}

// drainDeescalations applies one automatic level-down for every due row. The
// manager replaces or clears the schedule itself, so a successful apply
// consumes the row; a failed one stays due and is retried.
func (s *Scheduler) drainDeescalations(now time.Time) {
	rows, err := database.GetDuePendingDeescalations(s.db, now)
	if err != nil {
		log.Printf("Error getting due deescalations: %v", err)
		return
	}

	var wg sync.WaitGroup
	guard := make(chan struct{}, workerLimit)
	for _, row := range rows {
		wg.Add(1)
		guard <- struct{}{}
		go func(row model.PendingDeescalation) {
			defer func() {
				<-guard
				wg.Done()
			}()
			if _, err := s.manager.Apply(row.GuildID, row.UserID, s.self, moderation.AutoDeescalateReason, row.Amount); err != nil {
				log.Printf("Automatic deescalation for user %s in guild %s failed: %v", row.UserID, row.GuildID, err)
			}
		}(row)
	}
	wg.Wait()
}
