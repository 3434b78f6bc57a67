package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAct(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		target Rank
		want   bool
	}{
		{"owner over top role", Owner(), 0, true},
		{"owner over bottom role", Owner(), 1000, true},
		{"strictly below", Member(3), 4, true},
		{"same rank", Member(3), 3, false},
		{"above", Member(3), 2, false},
		{"rankless over low role", Member(NoRank), 1 << 30, false},
		{"rankless over rankless", Member(NoRank), NoRank, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAct(tt.actor, tt.target))
		})
	}
}

func TestCanActMonotonic(t *testing.T) {
	for target := Rank(0); target < 10; target++ {
		for a := Rank(0); a < 10; a++ {
			if CanAct(Member(a+1), target) {
				assert.True(t, CanAct(Member(a), target), "actor %d target %d", a, target)
			}
		}
	}
}

func TestMemberRank(t *testing.T) {
	roles := testRoles()
	assert.Equal(t, Rank(5), MemberRank([]string{pythonID, rustID}, roles))
	assert.Equal(t, Rank(6), MemberRank([]string{pythonID, "gone"}, roles))
	assert.Equal(t, NoRank, MemberRank(nil, roles))
	// los nombres no cuentan como ids
	assert.Equal(t, NoRank, MemberRank([]string{"Rust"}, roles))
}

func TestAuthorityString(t *testing.T) {
	assert.Equal(t, "owner", AuthorityOwner.String())
	assert.Equal(t, "normal", AuthorityNormal.String())
}
