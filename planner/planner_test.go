package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roverkit/seeker/core"
	"github.com/roverkit/seeker/spatial"
)

func newStoreWithRooms(t *testing.T) (*spatial.Store, map[string]string) {
	t.Helper()
	store := spatial.NewStore()
	ids := map[string]string{}
	for _, rt := range []string{"kitchen", "bedroom", "living_room", "office"} {
		id, err := store.AddRoom(spatial.RoomRecord{DetectedType: rt})
		require.NoError(t, err)
		ids[rt] = id
	}
	return store, ids
}

func TestCreatePlan_HighConfidence(t *testing.T) {
	store, ids := newStoreWithRooms(t)
	for i := 0; i < 4; i++ {
		require.NoError(t, store.LearnObjectLocation("keys", ids["kitchen"]))
	}

	plan := New(store).CreatePlan("keys", true)
	assert.Equal(t, StrategyHighConfidence, plan.Strategy)
	require.NotEmpty(t, plan.Predictions)
	assert.Equal(t, ids["kitchen"], plan.Predictions[0].RoomID)
	assert.InDelta(t, 0.8, plan.Predictions[0].Confidence, 1e-9)
	assert.Equal(t, time.Minute, plan.EstimatedDuration)
	assert.Equal(t, FallbackExhaustive, plan.Fallback)
}

func TestCreatePlan_MultiRoomAndDuration(t *testing.T) {
	store, ids := newStoreWithRooms(t)
	require.NoError(t, store.LearnObjectLocation("charger", ids["bedroom"]))
	require.NoError(t, store.LearnObjectLocation("charger", ids["office"]))

	plan := New(store).CreatePlan("charger", true)
	assert.Equal(t, StrategyMultiRoom, plan.Strategy)
	assert.Len(t, plan.Predictions, 2)
	assert.Equal(t, 3*time.Minute, plan.EstimatedDuration)
}

func TestCreatePlan_SingleRoom(t *testing.T) {
	store, ids := newStoreWithRooms(t)
	require.NoError(t, store.LearnObjectLocation("wallet", ids["bedroom"]))

	plan := New(store).CreatePlan("wallet", true)
	assert.Equal(t, StrategySingleRoom, plan.Strategy)
	// Single-room plans get the long estimate, capped by MaxDuration.
	assert.Equal(t, 4*time.Minute, plan.EstimatedDuration)
}

func TestCreatePlan_DefaultsWhenNothingLearned(t *testing.T) {
	store, ids := newStoreWithRooms(t)

	// "remote" defaults to living_room and bedroom; both exist, both get
	// the flat default confidence, which classifies as multi_room_priority.
	plan := New(store).CreatePlan("remote", true)
	assert.Equal(t, StrategyMultiRoom, plan.Strategy)
	require.Len(t, plan.Predictions, 2)
	got := map[string]bool{}
	for _, p := range plan.Predictions {
		assert.InDelta(t, 0.6, p.Confidence, 1e-9)
		got[p.RoomID] = true
	}
	assert.True(t, got[ids["living_room"]])
	assert.True(t, got[ids["bedroom"]])
}

func TestCreatePlan_DefaultsSurviveRename(t *testing.T) {
	store, ids := newStoreWithRooms(t)
	require.NoError(t, store.RenameRoom(ids["kitchen"], "Emma's kitchen"))
	require.NoError(t, store.RenameRoom(ids["bedroom"], "guest room"))

	// Default predictions key on the detected room type, so user-assigned
	// names must not hide a room from the table.
	plan := New(store).CreatePlan("wallet", true)
	require.Len(t, plan.Predictions, 2)
	got := map[string]bool{}
	for _, p := range plan.Predictions {
		assert.InDelta(t, 0.6, p.Confidence, 1e-9)
		got[p.RoomID] = true
	}
	assert.True(t, got[ids["kitchen"]])
	assert.True(t, got[ids["bedroom"]])
}

func TestCreatePlan_Exploratory(t *testing.T) {
	store, _ := newStoreWithRooms(t)

	// Unknown object with no learned history and no default table entry.
	plan := New(store).CreatePlan("umbrella", true)
	assert.Equal(t, StrategyExploratory, plan.Strategy)
	assert.Empty(t, plan.Predictions)
	assert.Equal(t, 4*time.Minute, plan.EstimatedDuration)

	// Learning disabled ignores history entirely.
	plan = New(store).CreatePlan("umbrella", false)
	assert.Equal(t, StrategyExploratory, plan.Strategy)
}

func TestCreatePlan_CapsPredictions(t *testing.T) {
	store := spatial.NewStore()
	var ids []string
	for i := 0; i < 7; i++ {
		id, err := store.AddRoom(spatial.RoomRecord{DetectedType: "room"})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids {
		require.NoError(t, store.LearnObjectLocation("sock", id))
	}

	plan := New(store).CreatePlan("sock", true)
	assert.Len(t, plan.Predictions, 5)
}

func TestLearn(t *testing.T) {
	store, ids := newStoreWithRooms(t)
	p := New(store)

	p.Learn("keys", core.SearchResult{
		Found:   true,
		Outcome: core.Found{RoomID: ids["kitchen"], Location: "kitchen"},
	})
	preds := store.PredictRooms("keys")
	require.Len(t, preds, 1)
	assert.Equal(t, ids["kitchen"], preds[0].RoomID)

	// Misses must not create or weaken associations.
	p.Learn("keys", core.SearchResult{Found: false, Outcome: core.NotFound{}})
	assert.Equal(t, preds, store.PredictRooms("keys"))
}

func TestLearningSummary(t *testing.T) {
	store, ids := newStoreWithRooms(t)
	p := New(store)
	require.NoError(t, store.LearnObjectLocation("keys", ids["kitchen"]))
	require.NoError(t, store.LearnObjectLocation("keys", ids["bedroom"]))
	require.NoError(t, store.LearnObjectLocation("keys", ids["bedroom"]))

	sum := p.LearningSummary()
	assert.Equal(t, 1, sum.ObjectsLearned)
	assert.Equal(t, 4, sum.RoomsMapped)
	entries := sum.Patterns["keys"]
	require.Len(t, entries, 2)
	assert.Equal(t, "bedroom", entries[0].Room)
	assert.GreaterOrEqual(t, entries[0].Confidence, entries[1].Confidence)
}
