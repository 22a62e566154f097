package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maddielabs/maddie/internal/log"
	"github.com/maddielabs/maddie/internal/storage"
)

func TestLog(t *testing.T) {
	t.Parallel()

	t.Run("append and read back", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemStore()
		l := NewLog(store, log.NewNop())

		user := NewUserMessage("hello")
		require.NoError(t, l.Append(user))
		require.NoError(t, l.Append(NewBotMessage("", "hi there", nil, nil)))

		msgs := l.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, SenderUser, msgs[0].Sender)
		assert.Equal(t, StatusPending, msgs[0].Status)
		assert.Equal(t, SenderBot, msgs[1].Sender)
	})

	t.Run("persists across instances", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemStore()
		l := NewLog(store, log.NewNop())

		bot := NewBotMessage("doozer_1", "answer", []Citation{{Name: "doc1", Content: "x"}}, []string{"next?"})
		require.NoError(t, l.Append(NewUserMessage("question")))
		require.NoError(t, l.Append(bot))

		reloaded := NewLog(store, log.NewNop())
		msgs := reloaded.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "doozer_1", msgs[1].ID)
		require.Len(t, msgs[1].Sources, 1)
		assert.Equal(t, "doc1", msgs[1].Sources[0].Name)
		assert.Equal(t, []string{"next?"}, msgs[1].FollowUpQuestions)
	})

	t.Run("confirm and fail update status", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemStore()
		l := NewLog(store, log.NewNop())

		user := NewUserMessage("hello")
		require.NoError(t, l.Append(user))

		require.NoError(t, l.Confirm(user.ID))
		assert.Equal(t, StatusConfirmed, l.Messages()[0].Status)

		require.NoError(t, l.Fail(user.ID))
		assert.Equal(t, StatusFailed, l.Messages()[0].Status)

		// Unknown IDs are ignored.
		require.NoError(t, l.Confirm("missing"))
	})

	t.Run("clear wipes log and persisted state", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemStore()
		l := NewLog(store, log.NewNop())

		require.NoError(t, l.Append(NewUserMessage("hello")))
		require.NoError(t, l.Clear())

		assert.Zero(t, l.Len())
		_, ok := store.Get(storage.KeyConversation)
		assert.False(t, ok)
	})

	t.Run("corrupt persisted log starts empty", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemStore()
		require.NoError(t, store.Set(storage.KeyConversation, "[{broken"))

		l := NewLog(store, log.NewNop())
		assert.Zero(t, l.Len())
	})

	t.Run("reload picks up external wipe", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemStore()
		l := NewLog(store, log.NewNop())
		require.NoError(t, l.Append(NewUserMessage("hello")))

		// Session expiry clears the stored conversation out from under us.
		require.NoError(t, store.Delete(storage.KeyConversation))
		l.Reload()

		assert.Zero(t, l.Len())
	})
}
