package bot

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"guardian-bot/model"
	"guardian-bot/moderation"
	"guardian-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDiscord implements only the calls these tests exercise; anything else
// panics through the embedded nil interface.
type fakeDiscord struct {
	moderation.Discord
	mu        sync.Mutex
	muteErr   error
	muteCalls int
}

func (f *fakeDiscord) GuildMemberMute(guildID, userID string, mute bool, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muteCalls++
	return f.muteErr
}

func (f *fakeDiscord) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Username: "target"}}, nil
}

func (f *fakeDiscord) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muteCalls
}

type fakeConfig struct {
	ladders map[string][]model.Rung
}

func (f *fakeConfig) GuildLadder(guildID string) []model.Rung { return f.ladders[guildID] }
func (f *fakeConfig) ModLogChannel(guildID string) string     { return "" }

func newTestScheduler(t *testing.T, fd *fakeDiscord, ladder []model.Rung) (*Scheduler, *sqlx.DB) {
	t.Helper()
	db, err := database.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	self := moderation.Authorizer{ID: "bot", Name: "Guardian"}
	executor := moderation.NewExecutor(fd, db, self)
	manager := moderation.NewManager(db, executor, fd, &fakeConfig{
		ladders: map[string][]model.Rung{"g1": ladder},
	})
	return NewScheduler(db, executor, manager, self, ""), db
}

func queueMute(t *testing.T, db *sqlx.DB, dueAt time.Time) int64 {
	t.Helper()
	action, err := model.NewMute("g1", "u1", "timed mute", model.StatusApply, 0)
	require.NoError(t, err)
	id, err := database.AddPendingAction(db, action, dueAt)
	require.NoError(t, err)
	return id
}

func TestDrainActionsSkipsFutureRows(t *testing.T) {
	fd := &fakeDiscord{}
	s, db := newTestScheduler(t, fd, nil)
	now := time.Now()

	queueMute(t, db, now.Add(time.Hour))
	s.drainActions(now)

	assert.Zero(t, fd.calls())
	rows, err := database.GetDuePendingActions(db, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDrainActionsExecutesAndDeletesDueRows(t *testing.T) {
	fd := &fakeDiscord{}
	s, db := newTestScheduler(t, fd, nil)
	now := time.Now()

	queueMute(t, db, now.Add(-time.Second))
	s.drainActions(now)

	assert.Equal(t, 1, fd.calls())
	rows, err := database.GetDuePendingActions(db, now)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClientErrorIsTerminalAfterOneAttempt(t *testing.T) {
	fd := &fakeDiscord{muteErr: &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Message: "Missing Permissions"},
	}}
	s, db := newTestScheduler(t, fd, nil)
	now := time.Now()

	queueMute(t, db, now.Add(-time.Second))
	s.drainActions(now)
	s.drainActions(now)

	assert.Equal(t, 1, fd.calls())
	rows, err := database.GetDuePendingActions(db, now)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTransientErrorLeavesRowForRetry(t *testing.T) {
	fd := &fakeDiscord{muteErr: errors.New("connection reset")}
	s, db := newTestScheduler(t, fd, nil)
	now := time.Now()

	queueMute(t, db, now.Add(-time.Second))
	s.drainActions(now)

	rows, err := database.GetDuePendingActions(db, now)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// still due, attempted again on the next tick
	s.drainActions(now)
	assert.Equal(t, 2, fd.calls())
}

func TestDrainActionsDropsUnreadableBlob(t *testing.T) {
	fd := &fakeDiscord{}
	s, db := newTestScheduler(t, fd, nil)
	now := time.Now()

	_, err := db.Exec(`INSERT INTO pending_actions (due_at, action_json) VALUES (?, ?)`,
		now.Add(-time.Second).UTC(), "{not json")
	require.NoError(t, err)

	s.drainActions(now)

	assert.Zero(t, fd.calls())
	rows, err := database.GetDuePendingActions(db, now)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDrainDeescalationsAppliesLevelDown(t *testing.T) {
	fd := &fakeDiscord{}
	ladder := []model.Rung{
		{DisplayName: "Warned"},
		{DisplayName: "Muted", DeescalationPeriod: 3600},
	}
	s, db := newTestScheduler(t, fd, ladder)
	now := time.Now()

	// seed a user at level 1 with a deescalation already due
	tx, err := db.Beginx()
	require.NoError(t, err)
	entry := model.EscalationEntry{
		GuildID: "g1", UserID: "u1",
		AuthorizerID: "admin1", AuthorizerName: "admin",
		DisplayName: "Muted", Timestamp: now.Add(-2 * time.Hour).Unix(),
		ActionsJSON: "[]", LevelDelta: 2,
	}
	entryID, err := database.AddEscalationEntry(tx, entry)
	require.NoError(t, err)
	require.NoError(t, database.UpsertPendingDeescalation(tx, model.PendingDeescalation{
		GuildID: "g1", UserID: "u1",
		DueAt: now.Add(-time.Minute), Amount: -1, EntryID: entryID,
	}))
	require.NoError(t, tx.Commit())

	s.drainDeescalations(now)

	entries, err := database.GetEscalationEntries(db, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, -1, entries[1].LevelDelta)
	assert.Equal(t, "Deescalate", entries[1].DisplayName)
	assert.Equal(t, 0, model.CurrentLevel(entries))

	// level 0 has no period, so the schedule is consumed and not replaced
	pending, err := database.GetPendingDeescalation(db, "g1", "u1")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestSchedulerStartStop(t *testing.T) {
	fd := &fakeDiscord{}
	s, _ := newTestScheduler(t, fd, nil)
	s.Start()
	s.Stop()
}
