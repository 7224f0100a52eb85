// Package social maintains the in-memory friend graph used for network
// purchase aggregation.
//
// Friend relationships are stored as sets of user ids and resolved through
// the Directory, which is the single owner of User state. Befriend and
// unfriend events may arrive out of order; each side of a relationship
// keeps the latest befriend and unfriend timestamps it has seen and
// re-evaluates membership against them, so a stale event is ignored
// without reordering the feed.
package social

import (
	"sort"

	"peerspend/internal/purchase"
)

// User is one participant: identity, friend edges with tie-break
// bookkeeping, and the user's own recent-purchase window.
type User struct {
	ID string

	friends      map[string]struct{}
	lastBefriend map[string]string // other id → latest befriend timestamp seen
	lastUnfriend map[string]string // other id → latest unfriend timestamp seen

	Purchases *purchase.Window
}

func newUser(id string, window *purchase.Window) *User {
	return &User{
		ID:           id,
		friends:      make(map[string]struct{}),
		lastBefriend: make(map[string]string),
		lastUnfriend: make(map[string]string),
		Purchases:    window,
	}
}

// Befriend applies one side of a befriend event. The dispatcher invokes it
// on both users of the event so the friend set stays symmetric.
//
// The stored befriend timestamp only moves forward (ties do not
// overwrite). The edge is added unless a strictly later unfriend is
// already recorded; on an exact timestamp tie, befriend wins.
func (u *User) Befriend(timestamp string, other *User) {
	if prev, ok := u.lastBefriend[other.ID]; !ok || prev < timestamp {
		u.lastBefriend[other.ID] = timestamp
	}
	if prev, ok := u.lastUnfriend[other.ID]; !ok || prev <= timestamp {
		u.friends[other.ID] = struct{}{}
	}
}

// Unfriend is the mirror image of Befriend: the edge is removed unless a
// strictly later befriend is already recorded; on an exact timestamp tie,
// unfriend wins. At an equal timestamp the later-arriving event therefore
// decides the relationship: befriend then unfriend removes the edge,
// unfriend then befriend re-adds it.
func (u *User) Unfriend(timestamp string, other *User) {
	if prev, ok := u.lastUnfriend[other.ID]; !ok || prev < timestamp {
		u.lastUnfriend[other.ID] = timestamp
	}
	if prev, ok := u.lastBefriend[other.ID]; !ok || prev <= timestamp {
		delete(u.friends, other.ID)
	}
}

// IsFriend reports whether other is currently a direct friend.
func (u *User) IsFriend(otherID string) bool {
	_, ok := u.friends[otherID]
	return ok
}

// Friends returns the ids of direct friends in sorted order.
func (u *User) Friends() []string {
	out := make([]string, 0, len(u.friends))
	for id := range u.friends {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Directory is the run-scoped user registry. Creating it per run keeps
// independent runs (and tests) free of shared state.
type Directory struct {
	users     map[string]*User
	threshold int
	seq       *purchase.Sequencer
}

// NewDirectory creates an empty directory. threshold is the per-user
// purchase window capacity T; seq is the run's shared sequencer.
func NewDirectory(threshold int, seq *purchase.Sequencer) *Directory {
	return &Directory{
		users:     make(map[string]*User),
		threshold: threshold,
		seq:       seq,
	}
}

// GetOrCreate returns the existing User for id, or registers a new one
// with no friends and an empty purchase window. It never fails.
func (d *Directory) GetOrCreate(id string) *User {
	u, ok := d.users[id]
	if !ok {
		u = newUser(id, purchase.NewWindow(d.threshold, d.seq))
		d.users[id] = u
	}
	return u
}

// Len returns the number of registered users.
func (d *Directory) Len() int {
	return len(d.users)
}

// All returns every registered user ordered by id.
func (d *Directory) All() []*User {
	out := make([]*User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Network returns every user reachable from u within depth friend hops,
// excluding u itself. Breadth-first with a visited set, so work is linear
// in the edges reachable within depth hops even on dense or cyclic
// graphs. depth ≤ 1 returns direct friends. Results are ordered by id.
func (d *Directory) Network(u *User, depth int) []*User {
	visited := map[string]struct{}{u.ID: {}}
	frontier := []string{u.ID}

	var members []*User
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			node, ok := d.users[id]
			if !ok {
				continue
			}
			for friendID := range node.friends {
				if _, seen := visited[friendID]; seen {
					continue
				}
				visited[friendID] = struct{}{}
				if friend, ok := d.users[friendID]; ok {
					members = append(members, friend)
					next = append(next, friendID)
				}
			}
		}
		frontier = next
	}

	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}
