package social

import (
	"testing"

	"peerspend/internal/purchase"
)

func newTestDirectory() *Directory {
	return NewDirectory(50, &purchase.Sequencer{})
}

func ids(users []*User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func befriendBoth(t1 string, a, b *User) {
	a.Befriend(t1, b)
	b.Befriend(t1, a)
}

func unfriendBoth(t1 string, a, b *User) {
	a.Unfriend(t1, b)
	b.Unfriend(t1, a)
}

func TestGetOrCreate(t *testing.T) {
	dir := newTestDirectory()

	u := dir.GetOrCreate("266")
	if u.ID != "266" {
		t.Errorf("expected id 266, got %s", u.ID)
	}
	count := dir.Len()

	same := dir.GetOrCreate("266")
	if same != u {
		t.Error("expected the same User instance on second lookup")
	}
	if dir.Len() != count {
		t.Errorf("expected user count unchanged, got %d", dir.Len())
	}
}

func TestAllOrderedByID(t *testing.T) {
	dir := newTestDirectory()
	for _, id := range []string{"567", "890", "667"} {
		dir.GetOrCreate(id)
	}

	got := ids(dir.All())
	want := []string{"567", "667", "890"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("All() ids = %v, want %v", got, want)
		}
	}
}

func TestBefriendSymmetric(t *testing.T) {
	dir := newTestDirectory()
	a := dir.GetOrCreate("1")
	b := dir.GetOrCreate("2")

	befriendBoth("2017-07-01 00:00:00", a, b)

	if !a.IsFriend("2") || !b.IsFriend("1") {
		t.Error("expected symmetric friendship after befriend on both sides")
	}
}

func TestUnfriendRemovesEdge(t *testing.T) {
	dir := newTestDirectory()
	a := dir.GetOrCreate("1")
	b := dir.GetOrCreate("2")

	befriendBoth("2017-07-01 00:00:00", a, b)
	unfriendBoth("2017-07-02 00:00:00", a, b)

	if a.IsFriend("2") || b.IsFriend("1") {
		t.Error("expected friendship removed by later unfriend")
	}
}

func TestSameTimestampTieBreaks(t *testing.T) {
	ts := "2017-07-03 12:00:00"

	// Unfriend wins a tie on the befriend side: befriend then unfriend at
	// the identical timestamp removes the edge.
	dir := newTestDirectory()
	a := dir.GetOrCreate("1")
	b := dir.GetOrCreate("2")
	befriendBoth(ts, a, b)
	unfriendBoth(ts, a, b)
	if a.IsFriend("2") || b.IsFriend("1") {
		t.Error("befriend+unfriend at same timestamp should leave users unfriended")
	}

	// Befriend wins a tie on the unfriend side: unfriend then befriend at
	// the identical timestamp re-adds the edge.
	dir = newTestDirectory()
	a = dir.GetOrCreate("1")
	b = dir.GetOrCreate("2")
	unfriendBoth(ts, a, b)
	befriendBoth(ts, a, b)
	if !a.IsFriend("2") || !b.IsFriend("1") {
		t.Error("unfriend+befriend at same timestamp should leave users friends")
	}
}

func TestOutOfOrderUnfriendIgnored(t *testing.T) {
	dir := newTestDirectory()
	a := dir.GetOrCreate("1")
	b := dir.GetOrCreate("2")

	befriendBoth("2017-07-03 00:00:00", a, b)
	// Stale unfriend from before the befriend arrives late: ignored.
	unfriendBoth("2017-07-01 00:00:00", a, b)
	if !a.IsFriend("2") || !b.IsFriend("1") {
		t.Error("stale unfriend should not break a later friendship")
	}

	// A genuinely later unfriend still works.
	unfriendBoth("2017-07-05 00:00:00", a, b)
	if a.IsFriend("2") || b.IsFriend("1") {
		t.Error("later unfriend should remove the friendship")
	}
}

func TestOutOfOrderBefriendIgnored(t *testing.T) {
	dir := newTestDirectory()
	a := dir.GetOrCreate("1")
	b := dir.GetOrCreate("2")

	unfriendBoth("2017-07-04 00:00:00", a, b)
	// Stale befriend from before the unfriend arrives late: ignored.
	befriendBoth("2017-07-02 00:00:00", a, b)
	if a.IsFriend("2") || b.IsFriend("1") {
		t.Error("stale befriend should not resurrect an ended friendship")
	}
}

func TestReplayIdempotent(t *testing.T) {
	dir := newTestDirectory()
	a := dir.GetOrCreate("1")
	b := dir.GetOrCreate("2")

	for i := 0; i < 3; i++ {
		befriendBoth("2017-07-01 00:00:00", a, b)
	}
	if len(a.Friends()) != 1 {
		t.Errorf("expected 1 friend after replay, got %v", a.Friends())
	}
}

// chain builds 1-2-3-4-5 as a friendship path.
func chain(dir *Directory) {
	ts := "2017-01-01 00:00:00"
	prev := dir.GetOrCreate("1")
	for _, id := range []string{"2", "3", "4", "5"} {
		next := dir.GetOrCreate(id)
		befriendBoth(ts, prev, next)
		prev = next
	}
}

func TestNetworkDepthOne(t *testing.T) {
	dir := newTestDirectory()
	chain(dir)

	got := ids(dir.Network(dir.GetOrCreate("3"), 1))
	want := []string{"2", "4"}
	if len(got) != len(want) {
		t.Fatalf("network = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("network = %v, want %v", got, want)
		}
	}
}

func TestNetworkDepthTwo(t *testing.T) {
	dir := newTestDirectory()
	chain(dir)

	got := ids(dir.Network(dir.GetOrCreate("3"), 2))
	want := []string{"1", "2", "4", "5"}
	if len(got) != len(want) {
		t.Fatalf("network = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("network = %v, want %v", got, want)
		}
	}
}

func TestNetworkExcludesSelfOnCycle(t *testing.T) {
	dir := newTestDirectory()
	ts := "2017-01-01 00:00:00"
	a := dir.GetOrCreate("1")
	b := dir.GetOrCreate("2")
	c := dir.GetOrCreate("3")
	befriendBoth(ts, a, b)
	befriendBoth(ts, b, c)
	befriendBoth(ts, c, a)

	got := ids(dir.Network(a, 5))
	for _, id := range got {
		if id == "1" {
			t.Fatalf("network contains the user itself: %v", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("network = %v, want 2 members", got)
	}
}

func TestNetworkIsolatedUser(t *testing.T) {
	dir := newTestDirectory()
	loner := dir.GetOrCreate("99")

	if got := dir.Network(loner, 3); len(got) != 0 {
		t.Errorf("expected empty network for isolated user, got %v", ids(got))
	}
}
