package http

import (
	"errors"
	"net"
	"syscall"
	"testing"
)

func TestListen_PreferredPort(t *testing.T) {
	lis, err := Listen(ListenConfig{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	if lis.Addr().(*net.TCPAddr).Port == 0 {
		t.Error("expected a bound port")
	}
}

func TestListen_PortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	t.Run("without fallback", func(t *testing.T) {
		_, err := Listen(ListenConfig{Host: "127.0.0.1", Port: port})
		if err == nil {
			t.Fatal("expected an error for a busy port")
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			t.Errorf("expected EADDRINUSE, got %v", err)
		}
	})

	t.Run("with fallback", func(t *testing.T) {
		lis, err := Listen(ListenConfig{Host: "127.0.0.1", Port: port, Fallback: true})
		if err != nil {
			t.Fatalf("fallback listen: %v", err)
		}
		defer lis.Close()

		if got := lis.Addr().(*net.TCPAddr).Port; got == port {
			t.Errorf("fallback should pick a different port than %d", port)
		}
	})
}
