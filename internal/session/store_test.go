package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thywilljoshua/study-companion/internal/study"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Hour)
	if _, err := m.Load(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	st := NewState()
	st.Transcript = []ChatTurn{{Role: RoleUser, Content: "q"}}
	if err := m.Save(ctx, "a", st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st.Transcript[0].Content = "changed after save"

	got, err := m.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Transcript[0].Content != "q" {
		t.Error("store should keep its own copy")
	}

	_ = m.Delete(ctx, "a")
	if _, err := m.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Error("deleted session should be gone")
	}
}

func TestMemoryStoreExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemoryStore(30 * time.Minute)
	m.now = c.now

	_ = m.Save(ctx, "idle", NewState())
	_ = m.Save(ctx, "busy", NewState())

	c.advance(20 * time.Minute)
	if _, err := m.Load(ctx, "busy"); err != nil {
		t.Fatalf("busy session: %v", err)
	}
	c.advance(20 * time.Minute)

	if n := m.Sweep(); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, err := m.Load(ctx, "idle"); !errors.Is(err, ErrNotFound) {
		t.Error("idle session should have expired")
	}
	if _, err := m.Load(ctx, "busy"); err != nil {
		t.Errorf("recently used session expired: %v", err)
	}
}

func TestMemoryStoreJanitorStops(t *testing.T) {
	m := NewMemoryStore(time.Nanosecond)
	_ = m.Save(context.Background(), "x", NewState())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Janitor(ctx, time.Millisecond)
		close(done)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for m.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
	if m.Len() != 0 {
		t.Error("janitor should have swept the expired session")
	}
}

func TestManagerPersistsEvents(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "summary"}
	store := NewMemoryStore(time.Hour)
	mgr := NewManager(newEngine(threePages, gen), store, nil)

	_, err := mgr.Do(ctx, "s1", func(s *Session) error { return s.Upload("c.pdf", []byte("x")) })
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	st, err := mgr.Do(ctx, "s1", func(s *Session) error { return s.Summarize(ctx) })
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if st.Phase() != HasSummary {
		t.Errorf("phase = %s", st.Phase())
	}

	other, err := mgr.View(ctx, "s2")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if other.Phase() != Idle {
		t.Error("sessions should not share state")
	}
}

func TestManagerSavesFailedChatTurn(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{err: errors.New("boom")}
	mgr := NewManager(newEngine(threePages, gen), NewMemoryStore(0), nil)

	_, err := mgr.Do(ctx, "s", func(s *Session) error {
		_, err := s.Ask(ctx, "q")
		return err
	})
	if err == nil {
		t.Fatal("expected error")
	}
	st, _ := mgr.View(ctx, "s")
	if len(st.Transcript) != 1 {
		t.Errorf("transcript = %+v", st.Transcript)
	}
}

func TestManagerSerializesPerSession(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "a"}
	mgr := NewManager(newEngine(threePages, gen), NewMemoryStore(0), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mgr.Do(ctx, "shared", func(s *Session) error {
				_, err := s.Ask(ctx, "q")
				return err
			})
		}()
	}
	wg.Wait()

	st, _ := mgr.View(ctx, "shared")
	if len(st.Transcript) != 40 {
		t.Errorf("transcript has %d turns, want 40", len(st.Transcript))
	}
	if len(mgr.locks.locks) != 0 {
		t.Error("locks should be released")
	}
}

func TestManagerDoesNotStoreBlankSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	broken := fakeExtractor{err: errors.New("not a pdf")}
	mgr := NewManager(newEngine(broken, &fakeGenerator{}), store, nil)

	st, err := mgr.View(ctx, "visitor")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if st.Phase() != Idle || st.Level != study.Beginner {
		t.Errorf("state = %+v", st)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries after a view, want 0", store.Len())
	}

	_, err = mgr.Do(ctx, "visitor", func(s *Session) error { return s.Upload("c.pdf", []byte("x")) })
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if store.Len() != 0 {
		t.Error("failed first upload should store nothing")
	}
}

func TestManagerDeletesSessionResetToBlank(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	mgr := NewManager(newEngine(threePages, &fakeGenerator{}), store, nil)

	_, _ = mgr.Do(ctx, "s", func(s *Session) error { return s.Upload("c.pdf", []byte("x")) })
	if store.Len() != 1 {
		t.Fatalf("store has %d entries, want 1", store.Len())
	}
	if _, err := mgr.Do(ctx, "s", func(s *Session) error { s.Reset(); return nil }); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.Len() != 0 {
		t.Error("blank session should be deleted")
	}

	_, _ = mgr.Do(ctx, "kept", func(s *Session) error { return s.SetLevel(study.Advanced) })
	_, _ = mgr.Do(ctx, "kept", func(s *Session) error { s.Reset(); return nil })
	st, err := store.Load(ctx, "kept")
	if err != nil {
		t.Fatalf("session with a chosen level should survive reset: %v", err)
	}
	if st.Level != study.Advanced {
		t.Errorf("level = %s", st.Level)
	}
}

func TestEncodedStateOmitsUpload(t *testing.T) {
	s := newEngine(threePages, &fakeGenerator{}).Open(nil)
	raw := bytes.Repeat([]byte("%PDF-payload"), 1<<12)
	if err := s.Upload("c.pdf", raw); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	payload, err := encodeState(s.Snapshot())
	if err != nil {
		t.Fatalf("encodeState: %v", err)
	}
	if len(payload) > 1024 {
		t.Errorf("payload is %d bytes, want the upload left out", len(payload))
	}
	if bytes.Contains(payload, []byte(`"raw"`)) || bytes.Contains(payload, []byte("JVBERi1wYXlsb2Fk")) {
		t.Errorf("payload carries the upload: %.200s", payload)
	}

	got, err := decodeState(payload)
	if err != nil {
		t.Fatalf("decodeState: %v", err)
	}
	if got.Document == nil || got.Document.Text != "A\nB\n" || got.Document.Pages != 3 || got.Document.Raw != nil {
		t.Errorf("decoded document = %+v", got.Document)
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("COMPANION_TEST_REDIS_URL")
	if url == "" {
		t.Skip("COMPANION_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := ConnectRedis(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rdb.Close()

	store := NewRedisStore(rdb, time.Minute, "companion:test:")
	id := uuid.NewString()
	defer store.Delete(ctx, id)

	if _, err := store.Load(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	st := NewState()
	st.Level = study.Advanced
	st.Document = &Document{Name: "c.pdf", Text: "A\nB\n", Pages: 3}
	st.Transcript = []ChatTurn{{Role: RoleUser, Content: "q"}}
	if err := store.Save(ctx, id, st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Level != study.Advanced || got.Document.Pages != 3 || got.Transcript[0].Content != "q" {
		t.Errorf("round trip lost data: %+v", got)
	}
	ttl, err := rdb.TTL(ctx, store.key(id)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, %v", ttl, err)
	}
}
