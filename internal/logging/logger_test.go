package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Spok95/gradebook-bot/internal/ctxutil"
)

func TestInitFallsBackToInfo(t *testing.T) {
	l, err := Init("nonsense", "dev")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer l.Closer()
	if l.Level.Level() != zap.InfoLevel {
		t.Fatalf("level = %v", l.Level.Level())
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := ctxutil.WithOp(ctxutil.WithChatID(context.Background(), 7), "delete")

	FromContext(ctx, zap.New(core)).Info("x")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["chat_id"] != int64(7) || fields["op"] != "delete" {
		t.Fatalf("fields = %v", fields)
	}
	if _, ok := fields["user_id"]; ok {
		t.Fatal("user_id must be absent")
	}
}
