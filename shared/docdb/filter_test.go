package docdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func mustRaw(t *testing.T, v any) bson.Raw {
	t.Helper()

	data, err := bson.Marshal(v)
	require.NoError(t, err)

	return data
}

func TestFilter_Match(t *testing.T) {
	owner := bson.NewObjectID()
	doc := mustRaw(t, bson.D{
		{Key: "owner", Value: owner},
		{Key: "name", Value: "Admin"},
		{Key: "meta", Value: bson.D{{Key: "tier", Value: "gold"}}},
	})

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"all", All(), true},
		{"eq string", Eq("name", "Admin"), true},
		{"eq is case sensitive", Eq("name", "ADMIN"), false},
		{"eq object id", Eq("owner", owner), true},
		{"eq other object id", Eq("owner", bson.NewObjectID()), false},
		{"eq nil on missing", Eq("missing", nil), true},
		{"eq nil on present", Eq("name", nil), false},
		{"fold", EqFold("name", "aDmIn"), true},
		{"fold missing", EqFold("missing", ""), false},
		{"nested", Eq("meta.tier", "gold"), true},
		{"in", In("name", "User", "Admin"), true},
		{"in none", In[string]("name"), false},
		{"and", And(Eq("name", "Admin"), Eq("owner", owner)), true},
		{"and short", And(Eq("name", "Admin"), Eq("owner", nil)), false},
		{"and empty", And(), true},
		{"or", Or(Eq("name", "x"), EqFold("name", "admin")), true},
		{"or empty", Or(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(doc))
		})
	}
}

func TestFilter_Document(t *testing.T) {
	id := bson.NewObjectID()

	assert.Equal(t, bson.D{}, All().Document())
	assert.Equal(t, bson.D{{Key: "user_id", Value: id}}, Eq("user_id", id).Document())
	assert.Equal(t,
		bson.D{{Key: "name", Value: bson.Regex{Pattern: `^a\.b$`, Options: "i"}}},
		EqFold("name", "a.b").Document(),
	)
	assert.Equal(t,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{id}}}}},
		In("_id", id).Document(),
	)
	assert.Equal(t,
		bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "a", Value: 1}},
			bson.D{{Key: "b", Value: 2}},
		}}},
		Or(Eq("a", 1), Eq("b", 2)).Document(),
	)
	assert.Equal(t, bson.D{{Key: "$expr", Value: false}}, Or().Document())
}
