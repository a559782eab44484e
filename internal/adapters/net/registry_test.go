package net_test

import (
	"context"
	"net"
	"testing"

	podiumnet "github.com/okian/podium/internal/adapters/net"
	"github.com/okian/podium/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestRegistryInsertAndRemove(t *testing.T) {
	reg := podiumnet.NewRegistry()

	server, client := net.Pipe()
	defer client.Close()
	conn := podiumnet.NewConnection(server)

	reg.Insert(conn)
	if reg.Len() != 1 {
		t.Fatalf("expected 1 tracked connection, got %d", reg.Len())
	}

	reg.Remove(conn.ID)
	if reg.Len() != 0 {
		t.Errorf("expected 0 tracked connections after remove, got %d", reg.Len())
	}
}

func TestRegistryShutdownAll(t *testing.T) {
	reg := podiumnet.NewRegistry()

	var conns []*podiumnet.Connection
	var clients []net.Conn
	for i := 0; i < 3; i++ {
		server, client := net.Pipe()
		conn := podiumnet.NewConnection(server)
		reg.Insert(conn)
		conns = append(conns, conn)
		clients = append(clients, client)
	}
	defer func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}()

	reg.ShutdownAll(context.Background())

	if reg.Len() != 0 {
		t.Errorf("expected registry to be empty after ShutdownAll, got %d", reg.Len())
	}
	for i, c := range conns {
		if c.Active() {
			t.Errorf("expected connection %d to be inactive after ShutdownAll", i)
		}
	}
}
