package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		wantErr bool
	}{
		{"prod", "", false},
		{"local", "debug", false},
		{"dev", "warn", false},
		{"staging", "", true},
		{"prod", "loud", true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("nil logger")
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fallback := zap.New(core)

	FromContext(context.Background(), fallback).Info("fallback")
	FromContext(context.Background(), nil).Info("nop")

	ctx := ContextWithLogger(context.Background(), fallback)
	ctx = With(ctx, zap.String("request_id", "r-1"))
	FromContext(ctx, nil).Info("scoped")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Message != "fallback" {
		t.Errorf("first = %q", entries[0].Message)
	}
	if got := entries[1].ContextMap()["request_id"]; got != "r-1" {
		t.Errorf("request_id = %v", got)
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("dev", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info enabled under warn override")
	}
	if !l.Core().Enabled(zap.WarnLevel) {
		t.Error("warn disabled under warn override")
	}
}
