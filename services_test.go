package meridian

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meridian-cloud/meridian/internal/domain"
)

// fakeStore records executed command lines and replays canned replies in
// order.
type fakeStore struct {
	commands []string
	replies  [][]byte
	errs     []error
}

func (f *fakeStore) Execute(_ context.Context, command string) ([]byte, error) {
	i := len(f.commands)
	f.commands = append(f.commands, command)
	var raw []byte
	if i < len(f.replies) {
		raw = f.replies[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return raw, err
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) WaitForReady(context.Context, time.Duration) error { return nil }

func (f *fakeStore) Close() {}

func newTestClient(store *fakeStore) *Client {
	return &Client{store: store}
}

func lastCommand(t *testing.T, f *fakeStore) string {
	t.Helper()
	if len(f.commands) == 0 {
		t.Fatal("no command executed")
	}
	return f.commands[len(f.commands)-1]
}

func TestObjectSet_Point(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true}`)}}
	c := newTestClient(store)

	err := c.Objects("fleet").Set("truck1").
		Point(Point{Lat: -23.5505, Lon: -46.6333}).
		Field("speed", 70).
		Expire(30 * time.Second).
		IfNotExists().
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	want := "SET fleet truck1 FIELD speed 70 EX 30 NX POINT -23.5505 -46.6333"
	if got := lastCommand(t, store); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestObjectSet_RequiresGeometry(t *testing.T) {
	c := newTestClient(&fakeStore{})

	err := c.Objects("fleet").Set("truck1").Do(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestObjectSet_GeoJSON(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true}`)}}
	c := newTestClient(store)

	err := c.Objects("fleet").Set("truck1").
		GeoJSON([]byte(`{"type": "Point", "coordinates": [1, 2]}`)).
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	want := `SET fleet truck1 OBJECT {"type":"Point","coordinates":[1,2]}`
	if got := lastCommand(t, store); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestObjectGet(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{
		"ok": true,
		"object": {"type":"Point","coordinates":[-46.6333,-23.5505]},
		"fields": {"speed": 70}
	}`)}}
	c := newTestClient(store)

	obj, err := c.Objects("fleet").Get(context.Background(), "truck1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := lastCommand(t, store); got != "GET fleet truck1" {
		t.Errorf("command = %q", got)
	}
	if obj.ID != "truck1" {
		t.Errorf("id = %q", obj.ID)
	}
	if obj.Fields["speed"] != 70 {
		t.Errorf("fields = %v", obj.Fields)
	}
}

func TestObjectGet_NotFound(t *testing.T) {
	store := &fakeStore{errs: []error{&domain.ProtocolError{Message: "id not found"}}}
	c := newTestClient(store)

	_, err := c.Objects("fleet").Get(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestObjectDelete(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true}`)}}
	c := newTestClient(store)

	if err := c.Objects("fleet").Delete(context.Background(), "truck1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := lastCommand(t, store); got != "DEL fleet truck1" {
		t.Errorf("command = %q", got)
	}
}

func TestObjectScan_Options(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{
		"ok": true,
		"fields": ["speed"],
		"objects": [
			{"id": "truck1", "object": {"type":"Point","coordinates":[1,2]}, "fields": [88]}
		]
	}`)}}
	c := newTestClient(store)

	objs, err := c.Objects("fleet").Scan(context.Background(), Where("speed", 70), Limit(10))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := lastCommand(t, store); got != "SCAN fleet WHERE speed 70 LIMIT 10" {
		t.Errorf("command = %q", got)
	}
	if len(objs) != 1 || objs[0].ID != "truck1" || objs[0].Fields["speed"] != 88 {
		t.Errorf("objects = %+v", objs)
	}
}

func TestSearchNearby(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true,"objects":[]}`)}}
	c := newTestClient(store)

	_, err := c.Search("fleet").Nearby(context.Background(), Point{Lat: 33.5, Lon: -112.26}, 6000)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if got := lastCommand(t, store); got != "NEARBY fleet POINT 33.5 -112.26 6000" {
		t.Errorf("command = %q", got)
	}
}

func TestSearchWithin_Bounds(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true,"objects":[]}`)}}
	c := newTestClient(store)

	_, err := c.Search("zones").Within(context.Background(),
		Bounds{MinLat: -5.25, MinLon: -10.5, MaxLat: 5.25, MaxLon: 10.5})
	if err != nil {
		t.Fatalf("Within: %v", err)
	}
	if got := lastCommand(t, store); got != "WITHIN zones BOUNDS -5.25 -10.5 5.25 10.5" {
		t.Errorf("command = %q", got)
	}
}

func TestSearchWithinObject(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true,"objects":[]}`)}}
	c := newTestClient(store)

	_, err := c.Search("fleet").WithinObject(context.Background(), "zones", "downtown")
	if err != nil {
		t.Fatalf("WithinObject: %v", err)
	}
	if got := lastCommand(t, store); got != "WITHIN fleet GET zones downtown" {
		t.Errorf("command = %q", got)
	}
}

func TestSearchTestPoint(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true,"objects":[]}`)}}
	c := newTestClient(store)

	_, err := c.Search("zones").TestPoint(context.Background(), Point{Lat: 33.5, Lon: -112.26})
	if err != nil {
		t.Fatalf("TestPoint: %v", err)
	}
	if got := lastCommand(t, store); got != "INTERSECTS zones POINT 33.5 -112.26" {
		t.Errorf("command = %q", got)
	}
}

func TestCollectionsList(t *testing.T) {
	store := &fakeStore{replies: [][]byte{
		[]byte(`{"ok":true,"keys":["fleet","zones"]}`),
		[]byte(`{"ok":true,"stats":[{"num_objects":12,"in_memory_size":4096}]}`),
		[]byte(`{"ok":true,"stats":[{"num_objects":3,"in_memory_size":512}]}`),
	}}
	c := newTestClient(store)

	infos, err := c.Collections().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(store.commands) != 3 || store.commands[0] != "KEYS *" ||
		store.commands[1] != "STATS fleet" || store.commands[2] != "STATS zones" {
		t.Errorf("commands = %v", store.commands)
	}
	if len(infos) != 2 || infos[0].Key != "fleet" || infos[0].NumObjects != 12 || infos[1].InMemorySize != 512 {
		t.Errorf("infos = %+v", infos)
	}
}

func TestCollectionsDrop(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true}`)}}
	c := newTestClient(store)

	if err := c.Collections().Drop(context.Background(), "fleet"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if got := lastCommand(t, store); got != "DROP fleet" {
		t.Errorf("command = %q", got)
	}
}

func TestHooksSet_Circle(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true}`)}}
	c := newTestClient(store)

	err := c.Hooks().Set(context.Background(), HookSpec{
		Name:       "warehouse",
		Endpoint:   "http://10.0.20.78:9000/endpoint",
		Collection: "fleet",
		Fence:      FenceNearby,
		Detect:     []DetectEvent{DetectEnter, DetectExit},
		Area:       AreaCircle(Point{Lat: 33.462, Lon: -112.268}, 6000),
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := "SETHOOK warehouse http://10.0.20.78:9000/endpoint NEARBY fleet FENCE DETECT enter,exit POINT 33.462 -112.268 6000"
	if got := lastCommand(t, store); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestHooksSet_RequiresArea(t *testing.T) {
	c := newTestClient(&fakeStore{})

	err := c.Hooks().Set(context.Background(), HookSpec{
		Name:       "warehouse",
		Endpoint:   "http://example.com/hook",
		Collection: "fleet",
		Fence:      FenceWithin,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestHooksList(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{
		"ok": true,
		"hooks": [
			{"name": "warehouse", "key": "fleet",
			 "endpoints": ["http://example.com/hook"],
			 "command": ["NEARBY", "fleet", "FENCE", "DETECT", "enter,exit", "POINT", "33.462", "-112.268", "6000"]}
		]
	}`)}}
	c := newTestClient(store)

	hooks, err := c.Hooks().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := lastCommand(t, store); got != "HOOKS *" {
		t.Errorf("command = %q", got)
	}
	if len(hooks) != 1 || hooks[0].Name != "warehouse" || hooks[0].Collection != "fleet" {
		t.Errorf("hooks = %+v", hooks)
	}
	h := hooks[0]
	if h.Fence != FenceNearby {
		t.Errorf("fence = %q", h.Fence)
	}
	if len(h.Detect) != 2 || h.Detect[0] != DetectEnter || h.Detect[1] != DetectExit {
		t.Errorf("detect = %v", h.Detect)
	}
	if h.Area != "POINT 33.462 -112.268 6000" {
		t.Errorf("area = %q", h.Area)
	}
}

func TestHooksDelete(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true}`)}}
	c := newTestClient(store)

	if err := c.Hooks().Delete(context.Background(), "warehouse"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := lastCommand(t, store); got != "DELHOOK warehouse" {
		t.Errorf("command = %q", got)
	}
}

func TestClientExecute(t *testing.T) {
	store := &fakeStore{replies: [][]byte{[]byte(`{"ok":true,"keys":[]}`)}}
	c := newTestClient(store)

	raw, err := c.Execute(context.Background(), "KEYS *")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(raw) != `{"ok":true,"keys":[]}` {
		t.Errorf("raw = %s", raw)
	}
}
