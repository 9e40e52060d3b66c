package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// pipelineRecorder captures pipelined commands instead of sending them.
type pipelineRecorder struct {
	mu   sync.Mutex
	cmds []string
	err  error
}

func (r *pipelineRecorder) DialHook(next redis.DialHook) redis.DialHook { return next }

func (r *pipelineRecorder) ProcessHook(next redis.ProcessHook) redis.ProcessHook { return next }

func (r *pipelineRecorder) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, cmd := range cmds {
			parts := make([]string, 0, len(cmd.Args()))
			for _, arg := range cmd.Args() {
				parts = append(parts, fmt.Sprint(arg))
			}
			r.cmds = append(r.cmds, strings.Join(parts, " "))
		}
		return r.err
	}
}

func newRecordingClient(t *testing.T, rec *pipelineRecorder) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(rec)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisStatsStore_Record(t *testing.T) {
	rec := &pipelineRecorder{}
	s := NewRedisStatsStore(newRecordingClient(t, rec), WithStatsPrefix("leads"), WithStatsTTL(time.Hour))
	at := time.Date(2026, 5, 4, 10, 3, 59, 0, time.FixedZone("EDT", -4*60*60))

	if err := s.Record(context.Background(), Event{Key: "203.0.113.9", Allowed: true, Route: "POST /api/leads/camp", At: at}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(context.Background(), Event{Key: "203.0.113.9", Route: "POST /api/leads/camp", At: at}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := []string{
		"hincrby leads:total allowed 1",
		"hincrby leads:minute:202605041403 allowed 1",
		"expire leads:minute:202605041403 3600",
		"hincrby leads:route POST /api/leads/camp:allowed 1",
		"hincrby leads:total denied 1",
		"hincrby leads:minute:202605041403 denied 1",
		"expire leads:minute:202605041403 3600",
		"hincrby leads:route POST /api/leads/camp:denied 1",
	}
	if len(rec.cmds) != len(want) {
		t.Fatalf("expected %d commands, got %d: %q", len(want), len(rec.cmds), rec.cmds)
	}
	for i := range want {
		if rec.cmds[i] != want[i] {
			t.Fatalf("command %d: expected %q, got %q", i, want[i], rec.cmds[i])
		}
	}
	for _, cmd := range rec.cmds {
		if strings.Contains(cmd, "203.0.113.9") {
			t.Fatalf("client key written to redis: %q", cmd)
		}
	}
}

func TestRedisStatsStore_NoExpireWithoutTTL(t *testing.T) {
	rec := &pipelineRecorder{}
	s := NewRedisStatsStore(newRecordingClient(t, rec), WithStatsTTL(0))

	if err := s.Record(context.Background(), Event{Allowed: true, At: time.Date(2026, 5, 4, 10, 3, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := []string{
		"hincrby ratelimit:stats:total allowed 1",
		"hincrby ratelimit:stats:minute:202605041003 allowed 1",
	}
	if fmt.Sprint(rec.cmds) != fmt.Sprint(want) {
		t.Fatalf("expected %q, got %q", want, rec.cmds)
	}
}

func TestRedisStatsStore_ExecErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	rec := &pipelineRecorder{err: boom}
	s := NewRedisStatsStore(newRecordingClient(t, rec))

	err := s.Record(context.Background(), Event{Allowed: true})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped exec error, got %v", err)
	}
}

func TestDialRedisStats_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	store, client, err := DialRedisStats(ctx, &redis.Options{Addr: addr, MaxRetries: -1})
	if err == nil {
		t.Fatal("expected dial error")
	}
	if store != nil || client != nil {
		t.Fatal("expected no store or client when redis is unreachable")
	}
}
