package chat_test

import (
	"context"
	"strings"
	"testing"

	modelchat "github.com/zhouzirui/crystal-voice/backend/internal/model/chat"
	chat "github.com/zhouzirui/crystal-voice/backend/internal/service/chat"
)

func TestConversationStartsWithPersona(t *testing.T) {
	conv, err := chat.NewConversation("session_1", "You are a helpful voice assistant.")
	if err != nil {
		t.Fatalf("NewConversation err: %v", err)
	}

	history := conv.History()
	if len(history) != 1 {
		t.Fatalf("expected persona only, got %d messages", len(history))
	}
	if history[0].Role != modelchat.RoleSystem {
		t.Fatalf("first message role = %s, want system", history[0].Role)
	}
}

func TestConversationAppendKeepsOrder(t *testing.T) {
	conv, _ := chat.NewConversation("session_1", "persona")

	user := conv.AppendUser("What is Crystal Group?")
	assistant := conv.AppendAssistant("A cold chain company.")

	if user.Role != modelchat.RoleUser || assistant.Role != modelchat.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", user.Role, assistant.Role)
	}

	history := conv.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	if history[1].Content != "What is Crystal Group?" || history[2].Content != "A cold chain company." {
		t.Fatalf("unexpected history: %+v", history)
	}
	if history[2].Timestamp.Before(history[1].Timestamp) {
		t.Fatal("timestamps must not go backwards")
	}
}

func TestConversationHistoryIsSnapshot(t *testing.T) {
	conv, _ := chat.NewConversation("session_1", "persona")
	conv.AppendUser("hello")

	snapshot := conv.History()
	snapshot[0].Content = "tampered"
	_ = append(snapshot, modelchat.UserMessage("extra"))

	again := conv.History()
	if again[0].Content != "persona" {
		t.Fatalf("persona was modified through snapshot: %q", again[0].Content)
	}
	if conv.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", conv.Len())
	}
}

func TestConversationRequiresPrompt(t *testing.T) {
	if _, err := chat.NewConversation("session_1", "  "); err != chat.ErrSystemPromptRequired {
		t.Fatalf("expected ErrSystemPromptRequired, got %v", err)
	}
}

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService("persona")
	ctx := context.Background()

	conv, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if !strings.HasPrefix(conv.Info().ID, "session_") {
		t.Fatalf("unexpected session id %q", conv.Info().ID)
	}

	got, err := svc.GetSession(ctx, conv.Info().ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got != conv {
		t.Fatal("GetSession returned a different conversation")
	}
	if svc.ActiveCount() != 1 {
		t.Fatalf("ActiveCount = %d, want 1", svc.ActiveCount())
	}

	svc.EndSession(ctx, conv.Info().ID)
	if _, err := svc.GetSession(ctx, conv.Info().ID); err != chat.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after EndSession, got %v", err)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService("persona")

	if _, err := svc.GetSession(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}
