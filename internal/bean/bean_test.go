package bean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	b := New("movie")

	assert.Equal(t, "movie", b.Type)
	assert.True(t, b.IsNew())
	assert.Empty(t, b.Fields)
	assert.NotNil(t, b.Shared)
}

func TestBean_GetSet(t *testing.T) {
	b := New("movie")
	b.Set("title", String("Alien")).Set("year", Int(1979))

	assert.Equal(t, String("Alien"), b.Get("title"))
	assert.Equal(t, Int(1979), b.Get("year"))
	assert.Equal(t, Null{}, b.Get("missing"))
	assert.Equal(t, "1979", b.String("year"))

	b.Set("year", nil)
	assert.Equal(t, Null{}, b.Get("year"))
}

func TestBean_SetOnZeroValue(t *testing.T) {
	var b Bean
	b.Set("title", String("x"))
	assert.Equal(t, String("x"), b.Get("title"))

	b.SetShared("tag", nil)
	_, ok := b.SharedList("tag")
	assert.True(t, ok)
}

func TestBean_SameAs(t *testing.T) {
	a := &Bean{Type: "movie", ID: "1"}
	b := &Bean{Type: "movie", ID: "1"}
	c := &Bean{Type: "book", ID: "1"}
	fresh := New("movie")

	assert.True(t, a.SameAs(b))
	assert.False(t, a.SameAs(c))
	assert.False(t, a.SameAs(fresh))
	assert.True(t, fresh.SameAs(fresh))
	assert.False(t, fresh.SameAs(New("movie")))
	assert.False(t, a.SameAs(nil))
}

func TestBean_SharedList(t *testing.T) {
	b := New("movie")

	_, ok := b.SharedList("tag")
	assert.False(t, ok, "slot should be unloaded")

	tag := &Bean{Type: "tag", ID: "t1"}
	b.SetShared("tag", []*Bean{tag})

	list, ok := b.SharedList("tag")
	assert.True(t, ok)
	assert.Equal(t, []*Bean{tag}, list)

	b.ForgetShared("tag")
	_, ok = b.SharedList("tag")
	assert.False(t, ok, "forgotten slot reads as unloaded")
}

func TestBean_Row(t *testing.T) {
	b := New("movie")
	b.Set("title", String("Alien"))
	assert.Equal(t, Row{"title": String("Alien")}, b.Row())

	b.ID = "m1"
	assert.Equal(t, Row{"title": String("Alien"), "id": String("m1")}, b.Row())
}

func TestBean_FieldNames(t *testing.T) {
	b := New("movie")
	b.Set("year", Int(1)).Set("title", String("x")).Set("genre", String("y"))

	assert.Equal(t, []string{"genre", "title", "year"}, b.FieldNames())
}
