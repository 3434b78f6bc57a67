package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRoundTrip(t *testing.T) {
	d := NewDraft("owner", "server", "Pick {ROLE:Rust} or {ROLE:Python}")
	content := d.Rewrite([]string{"crab", "snake"}, testRoles())

	got := NewDecoder(ULIDPattern).Decode(content)
	assert.Equal(t, Mapping{"crab": rustID, "snake": pythonID}, got)
}

func TestDecodeEmptyAndDuplicates(t *testing.T) {
	dec := NewDecoder(ULIDPattern)
	assert.Empty(t, dec.Decode("just text"))
	assert.Empty(t, dec.Decode(":crab:[](not-a-ulid)"))

	got := dec.Decode(Tag("crab", rustID, "Rust") + " " + Tag("crab", pythonID, "Python"))
	assert.Equal(t, Mapping{"crab": pythonID}, got)
}

func TestDecodeSnowflakeIDs(t *testing.T) {
	dec := NewDecoder(SnowflakePattern)
	content := Tag("2705", "123456789012345678", "Rust") + "\n" + Tag("1f40d", "223456789012345678", "Python")
	assert.Equal(t, Mapping{"2705": "123456789012345678", "1f40d": "223456789012345678"}, dec.Decode(content))
	assert.Empty(t, NewDecoder(ULIDPattern).Decode(content))
}
