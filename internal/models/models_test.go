package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityJSON(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    Quantity
	}{
		{name: "absent", payload: `{"id":"1"}`, want: Unlimited()},
		{name: "null", payload: `{"id":"1","quantity":null}`, want: Unlimited()},
		{name: "zero", payload: `{"id":"1","quantity":0}`, want: Limited(0)},
		{name: "positive", payload: `{"id":"1","quantity":3}`, want: Limited(3)},
		{name: "negative clamps", payload: `{"id":"1","quantity":-2}`, want: Limited(0)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var prize Prize
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &prize))
			assert.Equal(t, tc.want, prize.Quantity)
		})
	}
}

func TestQuantityJSONRejectsInvalidCounts(t *testing.T) {
	for _, payload := range []string{
		`{"id":"1","quantity":1e300}`,
		`{"id":"1","quantity":-1e300}`,
		`{"id":"1","quantity":2147483648}`,
		`{"id":"1","quantity":2.5}`,
		`{"id":"1","quantity":"3"}`,
	} {
		var prize Prize
		assert.Error(t, json.Unmarshal([]byte(payload), &prize), payload)
	}

	var prize Prize
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","quantity":2147483647}`), &prize))
	n, ok := prize.Quantity.Count()
	assert.True(t, ok)
	assert.Equal(t, 2147483647, n)
}

func TestPrizeMarshalOmitsUnlimitedQuantity(t *testing.T) {
	raw, err := json.Marshal(Prize{ID: "1", Name: "Toy", Cost: 5})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "quantity")

	raw, err = json.Marshal(Prize{ID: "1", Name: "Toy", Cost: 5, Quantity: Limited(0), Archived: true})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"quantity":0`)
	assert.Contains(t, string(raw), `"archived":true`)
}

func TestQuantityAdd(t *testing.T) {
	assert.Equal(t, Limited(0), Limited(1).Add(-1))
	assert.Equal(t, Limited(0), Limited(0).Add(-1))
	assert.Equal(t, Unlimited(), Unlimited().Add(-1))
	assert.True(t, Limited(0).Exhausted())
	assert.False(t, Unlimited().Exhausted())
}

func TestPrizeSyncArchived(t *testing.T) {
	limited := Prize{Quantity: Limited(0)}
	limited.SyncArchived()
	assert.True(t, limited.Archived)

	limited.Quantity = Limited(2)
	limited.SyncArchived()
	assert.False(t, limited.Archived)

	manual := Prize{Archived: true}
	manual.SyncArchived()
	assert.True(t, manual.Archived)
}

func TestSubgroupTarget(t *testing.T) {
	all := SpecificSubgroup("all")
	assert.True(t, all.IsAll())
	assert.True(t, all.Matches("sg-1"))
	assert.Equal(t, "all", all.String())

	specific := SpecificSubgroup("sg-1")
	id, ok := specific.ID()
	assert.True(t, ok)
	assert.Equal(t, "sg-1", id)
	assert.True(t, specific.Matches("sg-1"))
	assert.False(t, specific.Matches("sg-2"))
	assert.True(t, SpecificSubgroup("").IsAll())
}

func TestLessonPlanJSON(t *testing.T) {
	var plans []LessonPlan
	payload := `[
		{"id":"a","date":"2024-01-01","title":"A","description":"","classId":"c1"},
		{"id":"b","date":"2024-01-02","title":"B","description":"","files":[],"classId":"c1","subgroupId":null},
		{"id":"c","date":"2024-01-03","title":"C","description":"","files":[],"classId":"c1","subgroupId":"all"},
		{"id":"d","date":"2024-01-04","title":"D","description":"","files":[],"classId":"c1","subgroupId":"sg"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &plans))
	require.Len(t, plans, 4)

	assert.True(t, plans[0].SubgroupID.IsAll())
	assert.NotNil(t, plans[0].Files)
	assert.True(t, plans[1].SubgroupID.IsAll())
	assert.True(t, plans[2].SubgroupID.IsAll())
	assert.Equal(t, SpecificSubgroup("sg"), plans[3].SubgroupID)
	assert.Equal(t, "c1", plans[3].ClassID)

	raw, err := json.Marshal(plans[3])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subgroupId":"sg"`)

	raw, err = json.Marshal(plans[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subgroupId":"all"`)
}

func TestSnapshotAbsentCollections(t *testing.T) {
	var snap Snapshot
	payload := `{"version":"1.0.0","exportDate":"2024-05-01T10:00:00.000Z","students":[],"classes":[{"id":"c","name":"A","color":"#fff","subgroups":[]}]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &snap))

	assert.Equal(t, "1.0.0", snap.Version)
	assert.NotNil(t, snap.Students)
	assert.Empty(t, snap.Students)
	assert.Nil(t, snap.Prizes)
	assert.Nil(t, snap.LessonPlans)
	assert.Len(t, snap.Classes, 1)
}

func TestStudentLookups(t *testing.T) {
	student := Student{
		Lessons:         []LessonRecord{{Date: "2024-01-01"}, {Date: "2024-01-08"}},
		PurchaseHistory: []PurchaseHistoryEntry{{ID: "p1"}},
	}
	assert.Equal(t, 1, student.LessonIndex("2024-01-08"))
	assert.Equal(t, -1, student.LessonIndex("2024-01-15"))
	assert.Equal(t, 0, student.PurchaseIndex("p1"))
	assert.Equal(t, -1, student.PurchaseIndex("p2"))
}

func TestDefaultPrizes(t *testing.T) {
	prizes := DefaultPrizes()
	require.Len(t, prizes, 6)
	assert.Equal(t, 10, prizes[0].Cost)
	assert.Equal(t, 100, prizes[5].Cost)
	for _, p := range prizes {
		assert.False(t, p.Quantity.IsLimited())
	}
}
