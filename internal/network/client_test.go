package network

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClientRefusesWhenEveryProxyIsBanned(t *testing.T) {
	rotator, err := NewRotator([]string{"http://a:1"}, time.Hour)
	if err != nil {
		t.Fatalf("NewRotator() error = %v", err)
	}
	proxy, err := rotator.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	rotator.Report(proxy, 429)

	client, err := NewClient(Options{TimeoutSeconds: 1, Rotator: rotator})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Get(context.Background(), "http://127.0.0.1:1/careers")
	if !errors.Is(err, ErrNoProxies) {
		t.Fatalf("expected ErrNoProxies, got %v", err)
	}
}

func TestClientDefaults(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.UserAgent() != DefaultUserAgent {
		t.Fatalf("UserAgent() = %q", client.UserAgent())
	}
	if proxy, err := client.rotateProxy(); proxy != nil || err != nil {
		t.Fatalf("rotateProxy() without rotator = %v, %v", proxy, err)
	}
}
