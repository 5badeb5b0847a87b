package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dvila/faro/internal/llm"
)

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := NewStore()

	for i := 0; i < 5; i++ {
		s.Append("chat-1", llm.Message{Role: "user", Content: fmt.Sprintf("msg %d", i)})
	}

	msgs := s.Messages("chat-1")
	if len(msgs) != 5 {
		t.Fatalf("len = %d, want 5", len(msgs))
	}
	for i, m := range msgs {
		want := fmt.Sprintf("msg %d", i)
		if m.Content != want {
			t.Errorf("messages[%d] = %q, want %q", i, m.Content, want)
		}
	}
}

func TestStore_UnknownKeyIsEmpty(t *testing.T) {
	s := NewStore()
	if got := s.Messages("nope"); len(got) != 0 {
		t.Errorf("unknown key returned %d messages", len(got))
	}
	if got := s.Len("nope"); got != 0 {
		t.Errorf("Len = %d, want 0", got)
	}
}

func TestStore_KeysAreIsolated(t *testing.T) {
	s := NewStore()
	s.Append("a", llm.Message{Role: "user", Content: "for a"})
	s.Append("b", llm.Message{Role: "user", Content: "for b"})

	if got := s.Len("a"); got != 1 {
		t.Errorf("a: len = %d, want 1", got)
	}
	if msgs := s.Messages("b"); msgs[0].Content != "for b" {
		t.Errorf("b: got %q", msgs[0].Content)
	}
}

func TestStore_MessagesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append("chat", llm.Message{Role: "user", Content: "original"})

	msgs := s.Messages("chat")
	msgs[0].Content = "mutated"

	if got := s.Messages("chat")[0].Content; got != "original" {
		t.Errorf("store was mutated through returned slice: %q", got)
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Append("chat", llm.Message{Role: "user", Content: "hola"})
	s.Clear("chat")

	if got := s.Len("chat"); got != 0 {
		t.Errorf("len after clear = %d, want 0", got)
	}
}

func TestStore_ConcurrentAppendsDifferentKeys(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for k := 0; k < 8; k++ {
		key := fmt.Sprintf("chat-%d", k)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Append(key, llm.Message{Role: "user", Content: "x"})
			}
		}()
	}
	wg.Wait()

	for k := 0; k < 8; k++ {
		key := fmt.Sprintf("chat-%d", k)
		if got := s.Len(key); got != 50 {
			t.Errorf("%s: len = %d, want 50", key, got)
		}
	}
}

func TestStore_LockTurnSerializesOneKey(t *testing.T) {
	s := NewStore()

	unlock := s.LockTurn("chat")
	acquired := make(chan struct{})
	go func() {
		u := s.LockTurn("chat")
		close(acquired)
		u()
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second turn acquired the lock while the first held it")
	default:
	}

	unlock()
	<-acquired
}

func TestStore_Stats(t *testing.T) {
	s := NewStore()
	s.Append("a", llm.Message{Role: "user"})
	s.Append("a", llm.Message{Role: "assistant"})
	s.Append("b", llm.Message{Role: "user"})

	stats := s.Stats()
	if stats["conversations"] != 2 {
		t.Errorf("conversations = %v, want 2", stats["conversations"])
	}
	if stats["total_messages"] != 3 {
		t.Errorf("total_messages = %v, want 3", stats["total_messages"])
	}
}
