package grpc

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type recordingLogger struct {
	nopLogger
	mu    *sync.Mutex
	warns *[]string
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{mu: &sync.Mutex{}, warns: &[]string{}}
}

func (r recordingLogger) Warn(_ context.Context, msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.warns = append(*r.warns, msg)
}

func (r recordingLogger) With(...any) logging.Logger { return r }

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	l := newRecordingLogger()
	s := NewGRPCServer("", l)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return "resp:" + req.(string), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "resp:req" {
		t.Fatalf("resp = %v", resp)
	}
	if len(*l.warns) != 0 {
		t.Fatalf("unexpected warnings: %v", *l.warns)
	}
}

func TestLoggingInterceptor_LogsFailures(t *testing.T) {
	l := newRecordingLogger()
	s := NewGRPCServer("", l)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	_, err := s.loggingInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
	if len(*l.warns) != 1 || (*l.warns)[0] != "grpc call failed" {
		t.Fatalf("warns = %v", *l.warns)
	}
}
