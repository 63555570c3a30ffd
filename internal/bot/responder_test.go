package bot

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"chathub/pkg/models"
)

type fakeStore struct {
	mu   sync.Mutex
	msgs []models.Message
	fail bool
}

func (f *fakeStore) Append(sender, text string) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.Message{}, errors.New("append failed")
	}
	m := models.Message{
		ID:        int64(len(f.msgs) + 1),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
	f.msgs = append(f.msgs, m)
	return m, nil
}

func (f *fakeStore) snapshot() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.msgs)
}

func userMessage() models.Message {
	return models.Message{ID: 1, Sender: "alice123", Text: "hi"}
}

func TestReplyAfterDelay(t *testing.T) {
	store := &fakeStore{}
	var mu sync.Mutex
	var published []models.Message
	r := New(store, 5*time.Millisecond, func(m models.Message) {
		mu.Lock()
		published = append(published, m)
		mu.Unlock()
	})

	r.Notify(userMessage())

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(store.snapshot()) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no reply appended before deadline")
		}
		time.Sleep(time.Millisecond)
	}

	got := store.snapshot()[0]
	if got.Sender != Name {
		t.Fatalf("sender = %q, want %q", got.Sender, Name)
	}
	if !slices.Contains(Replies(), got.Text) {
		t.Fatalf("reply %q is not a candidate text", got.Text)
	}

	r.Close()
	mu.Lock()
	defer mu.Unlock()
	if len(published) != 1 || published[0].Sender != Name {
		t.Fatalf("published = %+v, want one bot message", published)
	}
}

func TestIgnoresOwnMessages(t *testing.T) {
	store := &fakeStore{}
	r := New(store, time.Millisecond, nil)
	defer r.Close()

	r.Notify(models.Message{ID: 1, Sender: Name, Text: "Good point!"})

	time.Sleep(50 * time.Millisecond)
	if n := len(store.snapshot()); n != 0 {
		t.Fatalf("bot replied to itself, %d messages", n)
	}
}

func TestCloseCancelsPendingReplies(t *testing.T) {
	store := &fakeStore{}
	r := New(store, time.Second, nil)

	r.Notify(userMessage())
	r.Close()

	if n := len(store.snapshot()); n != 0 {
		t.Fatalf("reply appended after Close, %d messages", n)
	}

	// notifications after Close are ignored
	r.Notify(userMessage())
	time.Sleep(10 * time.Millisecond)
	if n := len(store.snapshot()); n != 0 {
		t.Fatalf("reply scheduled after Close, %d messages", n)
	}
}

func TestAppendFailureDoesNotPublish(t *testing.T) {
	store := &fakeStore{fail: true}
	published := false
	r := New(store, time.Millisecond, func(models.Message) { published = true })

	r.Notify(userMessage())
	time.Sleep(50 * time.Millisecond)
	r.Close()

	if published {
		t.Fatal("failed append was published")
	}
}
