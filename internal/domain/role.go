package domain

// Role es la vista mínima de un rol del servidor.
type Role struct {
	ID   string
	Name string
	Rank Rank
}

// RoleLookup resuelve un rol por nombre visible o por id (match exacto).
type RoleLookup map[string]Role

// NewRoleLookup arma el lookup de un snapshot de roles. Si un nombre coincide
// con el id de otro rol, gana el id.
func NewRoleLookup(roles []Role) RoleLookup {
	out := make(RoleLookup, len(roles)*2)
	for _, r := range roles {
		out[r.Name] = r
	}
	for _, r := range roles {
		out[r.ID] = r
	}
	return out
}

// ByID busca solo por id; los nombres no cuentan.
func (l RoleLookup) ByID(id string) (Role, bool) {
	r, ok := l[id]
	if !ok || r.ID != id {
		return Role{}, false
	}
	return r, true
}
