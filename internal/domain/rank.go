package domain

import "math"

// Rank: menor número = más autoridad.
type Rank int

// NoRank es el rank de quien no tiene roles (la menor autoridad posible).
const NoRank Rank = math.MaxInt

type Authority int

const (
	AuthorityNormal Authority = iota
	AuthorityOwner
)

func (a Authority) String() string {
	if a == AuthorityOwner {
		return "owner"
	}
	return "normal"
}

// Actor es quien intenta dar (o tener) un rol.
type Actor struct {
	Rank      Rank
	Authority Authority
}

// Owner del servidor: pasa cualquier chequeo.
func Owner() Actor { return Actor{Rank: -math.MaxInt, Authority: AuthorityOwner} }

// Member arma un actor normal a partir de su rank.
func Member(r Rank) Actor { return Actor{Rank: r, Authority: AuthorityNormal} }

// CanAct: el owner siempre puede; el resto solo sobre roles estrictamente por debajo.
func CanAct(actor Actor, target Rank) bool {
	if actor.Authority == AuthorityOwner {
		return true
	}
	return target > actor.Rank
}

// MemberRank es el rank del rol más alto del miembro. Los ids que no están en
// roles se ignoran.
func MemberRank(roleIDs []string, roles RoleLookup) Rank {
	best := NoRank
	for _, id := range roleIDs {
		if r, ok := roles.ByID(id); ok && r.Rank < best {
			best = r.Rank
		}
	}
	return best
}
