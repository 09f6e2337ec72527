package resource

import (
	"testing"
)

type fakeResource struct {
	kind   Kind
	closed int
}

func (r *fakeResource) Kind() Kind   { return r.kind }
func (r *fakeResource) Close() error { r.closed++; return nil }

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	r := &fakeResource{kind: KindFile}
	rid := table.Add(r)
	if rid == 0 {
		t.Fatal("expected non-zero rid")
	}

	got, ok := table.Get(rid)
	if !ok || got != Resource(r) {
		t.Fatal("Get failed")
	}

	if _, ok := table.GetKind(rid, KindFile); !ok {
		t.Fatal("GetKind with correct kind failed")
	}
	if _, ok := table.GetKind(rid, KindTCPConn); ok {
		t.Fatal("GetKind with wrong kind should fail")
	}

	if _, ok := table.Remove(rid); !ok {
		t.Fatal("Remove failed")
	}
	if table.Len() != 0 {
		t.Fatal("expected empty table after Remove")
	}
	if r.closed != 0 {
		t.Fatal("Remove must not close the resource")
	}
	if _, ok := table.Remove(rid); ok {
		t.Fatal("second Remove should fail")
	}
}

func TestTable_ZeroRidInvalid(t *testing.T) {
	table := NewTable()
	if _, ok := table.Get(0); ok {
		t.Fatal("rid 0 must be invalid")
	}
	if _, ok := table.Remove(0); ok {
		t.Fatal("rid 0 must be invalid")
	}
}

func TestTable_RidReuse(t *testing.T) {
	table := NewTable()
	a := table.Add(&fakeResource{kind: KindFile})
	b := table.Add(&fakeResource{kind: KindFile})
	table.Remove(a)
	c := table.Add(&fakeResource{kind: KindTCPConn})
	if c != a {
		t.Fatalf("expected freed rid %d to be reused, got %d", a, c)
	}
	if b == c {
		t.Fatal("rids must be distinct while live")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	rid := table.Add(&fakeResource{kind: KindTCPListener})
	table.Remove(rid)

	if len(obs.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventOpened || obs.events[0].Kind != KindTCPListener {
		t.Fatalf("unexpected open event: %+v", obs.events[0])
	}
	if obs.events[1].Type != EventClosed || obs.events[1].Rid != rid {
		t.Fatalf("unexpected close event: %+v", obs.events[1])
	}

	table.Unsubscribe(obs)
	table.Add(&fakeResource{kind: KindFile})
	if len(obs.events) != 2 {
		t.Fatal("unsubscribed observer still notified")
	}
}

func TestTable_ClearClosesResources(t *testing.T) {
	table := NewTable()
	r1 := &fakeResource{kind: KindFile}
	r2 := &fakeResource{kind: KindUDPConn}
	table.Add(r1)
	table.Add(r2)

	table.Clear()

	if table.Len() != 0 {
		t.Fatal("expected empty table")
	}
	if r1.closed != 1 || r2.closed != 1 {
		t.Fatalf("expected each resource closed once, got %d and %d", r1.closed, r2.closed)
	}
}

func TestTable_CloseRejectsNewResources(t *testing.T) {
	table := NewTable()
	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	if rid := table.Add(&fakeResource{kind: KindFile}); rid != 0 {
		t.Fatalf("closed table issued rid %d", rid)
	}
}

func TestKind_String(t *testing.T) {
	if KindFile.String() != "file" {
		t.Fatalf("got %q", KindFile.String())
	}
	if Kind(200).String() != "unknown" {
		t.Fatalf("got %q", Kind(200).String())
	}
}
