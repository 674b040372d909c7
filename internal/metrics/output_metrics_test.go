package metrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	assert := assert.New(t)

	c := NewCollector(SimpleCounter{}, 2)
	c.Add(KindFile, "/vol/a.txt", "This is a test.\nIt has two lines.")
	c.Add(KindFile, "/vol/b.txt", "Another test item")
	c.Add(KindPrompt, "prompt", "Summarize")
	c.Wait()
	c.Wait()

	entries := c.Entries()
	assert.Len(entries, 3)
	assert.Equal(Key{Kind: KindFile, Name: "/vol/a.txt"}, entries[0].Key)
	assert.Equal(Key{Kind: KindFile, Name: "/vol/b.txt"}, entries[1].Key)
	assert.Equal(Key{Kind: KindPrompt, Name: "prompt"}, entries[2].Key)

	a, ok := c.Get(KindFile, "/vol/a.txt")
	assert.True(ok)
	assert.Equal(2, a.Lines)
	assert.Equal(33, a.Bytes)
	assert.Equal(8, a.Tokens)

	sum := c.SumBy(KindFile)
	assert.Equal(33+17, sum.Bytes)
	assert.Equal(8+4, sum.Tokens)

	_, ok = c.Get(KindFile, "/vol/missing.txt")
	assert.False(ok)
}

func TestCollector_SameKeyAccumulates(t *testing.T) {
	assert := assert.New(t)

	c := NewCollector(SimpleCounter{}, 4)
	for range 10 {
		c.Add(KindFile, "x", "12345678")
	}
	c.Wait()

	item, _ := c.Get(KindFile, "x")
	assert.Equal(Item{Bytes: 80, Tokens: 20, Lines: 10}, item)
}

func TestCollector_MarshalJSON(t *testing.T) {
	c := FromItems(map[Key]Item{
		{Kind: KindFile, Name: "/vol/a.go"}: {Bytes: 4, Tokens: 1, Lines: 1},
	})
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"file:/vol/a.go":{"bytes":4,"tokens":1,"lines":1}}`, string(b))
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "file:path/to/file.go", Key{Kind: KindFile, Name: "path/to/file.go"}.String())
}

func TestSimpleCounter(t *testing.T) {
	assert := assert.New(t)

	bytes, tokens, lines := SimpleCounter{}.Count("")
	assert.Equal([3]int{0, 0, 0}, [3]int{bytes, tokens, lines})

	text := "Hello, world!\nThis is a test."
	bytes, tokens, lines = SimpleCounter{}.Count(text)
	assert.Equal(len(text), bytes)
	assert.Equal(len(text)/4, tokens)
	assert.Equal(2, lines)

	_, _, lines = SimpleCounter{}.Count("one\ntwo\n")
	assert.Equal(2, lines)
}

func TestNewCounter(t *testing.T) {
	assert := assert.New(t)

	c, err := NewCounter("")
	assert.NoError(err)
	assert.IsType(SimpleCounter{}, c)

	c, err = NewCounter("simple")
	assert.NoError(err)
	assert.IsType(SimpleCounter{}, c)

	_, err = NewCounter("wordcount")
	assert.ErrorContains(err, "unknown token estimator")
}
