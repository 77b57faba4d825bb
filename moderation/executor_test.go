package moderation

import (
	"errors"
	"testing"
	"time"

	"guardian-bot/model"
	"guardian-bot/utils/database"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestExecutor(t *testing.T) (*Executor, *fakeDiscord, *sqlx.DB, time.Time) {
	t.Helper()
	db := newTestDB(t)
	fd := newFakeDiscord()
	ex := NewExecutor(fd, db, Authorizer{ID: "bot", Name: "Guardian"})
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	ex.now = func() time.Time { return now }
	return ex, fd, db, now
}

func TestExecuteTimedMuteSchedulesInverse(t *testing.T) {
	ex, fd, db, now := newTestExecutor(t)

	action, err := model.NewMute("g1", "u1", "spam", model.StatusApply, 600)
	require.NoError(t, err)
	require.NoError(t, ex.Execute(action))

	assert.Equal(t, []string{"Mute g1 u1 true"}, fd.callLog())

	// not due one second before the deadline
	rows, err := database.GetDuePendingActions(db, now.Add(599*time.Second))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = database.GetDuePendingActions(db, now.Add(600*time.Second))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	inverse, err := database.DecodePendingAction(rows[0])
	require.NoError(t, err)
	assert.Equal(t, model.ActionMute, inverse.Kind)
	assert.Equal(t, model.StatusUnapply, inverse.Status)
	assert.Equal(t, "u1", inverse.UserID)
	assert.Zero(t, inverse.Duration)
}

func TestExecuteFailureWritesNoPendingAction(t *testing.T) {
	ex, fd, db, now := newTestExecutor(t)
	fd.errs["Mute"] = errors.New("gateway exploded")

	action, err := model.NewMute("g1", "u1", "spam", model.StatusApply, 600)
	require.NoError(t, err)
	require.Error(t, ex.Execute(action))

	rows, err := database.GetDuePendingActions(db, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecuteUntimedLeavesQueueEmpty(t *testing.T) {
	ex, _, db, now := newTestExecutor(t)

	action, err := model.NewKick("g1", "u1", "bye")
	require.NoError(t, err)
	require.NoError(t, ex.Execute(action))

	rows, err := database.GetDuePendingActions(db, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestToggleMuteReadsMemberState(t *testing.T) {
	ex, fd, _, _ := newTestExecutor(t)
	fd.member.Mute = true

	action, err := model.NewMute("g1", "u1", "r", model.StatusToggle, 0)
	require.NoError(t, err)
	require.NoError(t, ex.Execute(action))

	assert.Equal(t, []string{"GuildMember g1 u1", "Mute g1 u1 false"}, fd.callLog())
}

func TestSoftbanBansThenUnbans(t *testing.T) {
	ex, fd, _, _ := newTestExecutor(t)

	action, err := model.NewBan("g1", "u1", "purge", model.BanModeSoftban, 1, 0)
	require.NoError(t, err)
	require.NoError(t, ex.Execute(action))

	assert.Equal(t, []string{"BanCreate g1 u1 days=1", "BanDelete g1 u1"}, fd.callLog())
}

func TestRoleToggleResolvesAgainstMemberRoles(t *testing.T) {
	ex, fd, _, _ := newTestExecutor(t)
	fd.member.Roles = []string{"r1"}

	action, err := model.NewChangeRole("g1", "u1", "r", model.StatusToggle, []string{"r1", "r2"}, 0)
	require.NoError(t, err)
	require.NoError(t, ex.Execute(action))

	assert.Equal(t, []string{"GuildMember g1 u1", "RoleRemove g1 u1 r1", "RoleAdd g1 u1 r2"}, fd.callLog())
}

func TestDirectMessageOpensChannelFirst(t *testing.T) {
	ex, fd, _, _ := newTestExecutor(t)

	action, err := model.NewDirectMessage("g1", "u1", "you have been warned")
	require.NoError(t, err)
	require.NoError(t, ex.Execute(action))

	assert.Equal(t, []string{"UserChannelCreate u1", "MessageSend dm-u1 you have been warned"}, fd.callLog())
}

func TestDeleteMessagesSingleVsBulk(t *testing.T) {
	ex, fd, _, _ := newTestExecutor(t)

	single, err := model.NewDeleteMessages("g1", "u1", "c1", []string{"m1"})
	require.NoError(t, err)
	require.NoError(t, ex.Execute(single))

	bulk, err := model.NewDeleteMessages("g1", "u1", "c1", []string{"m1", "m2"})
	require.NoError(t, err)
	require.NoError(t, ex.Execute(bulk))

	assert.Equal(t, []string{"MessageDelete c1 m1", "BulkDelete c1 n=2"}, fd.callLog())
}

func TestExecuteRejectsInvalidAction(t *testing.T) {
	ex, fd, _, _ := newTestExecutor(t)

	timedKick := model.Action{GuildID: "g1", UserID: "u1", Kind: model.ActionKick, Duration: 60}
	assert.ErrorIs(t, ex.Execute(timedKick), model.ErrIllegalDuration)
	assert.Empty(t, fd.callLog())
}
