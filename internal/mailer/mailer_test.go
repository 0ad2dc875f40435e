package mailer

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"

	"pinpoint.dev/pinpoint/internal/config"
)

// fakeRelay accepts one connection, greets, and answers QUIT.
func fakeRelay(t *testing.T) config.SMTPConfig {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fmt.Fprint(conn, "220 fake relay ready\r\n")
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if strings.HasPrefix(line, "QUIT") {
				fmt.Fprint(conn, "221 bye\r\n")
				return
			}
			fmt.Fprint(conn, "250 ok\r\n")
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return config.SMTPConfig{Host: host, Port: port, From: "pinpoint@example.com"}
}

func TestSMTPMailer_Ping(t *testing.T) {
	m := NewSMTPMailer(fakeRelay(t))
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestSMTPMailer_Ping_Unreachable(t *testing.T) {
	// A listener that is closed before the dial guarantees a dead port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	_ = ln.Close()

	m := NewSMTPMailer(config.SMTPConfig{Host: host, Port: port})
	if err := m.Ping(context.Background()); err == nil {
		t.Fatal("Ping() against a dead port must fail")
	}
}

func TestSMTPMailer_Send_NoRecipient(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 2525})
	if err := m.Send(context.Background(), Message{Subject: "s", HTML: "<p>b</p>"}); err == nil {
		t.Fatal("Send() without a recipient must fail")
	}
}

func TestSMTPMailer_Send_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 2525})
	err := m.Send(ctx, Message{To: "u@example.com", Subject: "s", HTML: "b"})
	if err != context.Canceled {
		t.Fatalf("Send() error = %v, want context.Canceled", err)
	}
}
