package smtp

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeServer speaks just enough SMTP to accept one message.
type fakeServer struct {
	ln   net.Listener
	mu   sync.Mutex
	rcpt string
	data strings.Builder
	done chan struct{}
}

func startFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, done: make(chan struct{})}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeServer) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(line string) { conn.Write([]byte(line + "\r\n")) }
	reply("220 fake ESMTP")

	inData := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if inData {
			if line == "." {
				inData = false
				reply("250 OK")
				continue
			}
			s.mu.Lock()
			s.data.WriteString(line + "\n")
			s.mu.Unlock()
			continue
		}
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 fake")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.mu.Lock()
			s.rcpt = line
			s.mu.Unlock()
			reply("250 OK")
		case cmd == "DATA":
			inData = true
			reply("354 go ahead")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 unsupported")
		}
	}
}

func TestMailer_SendCode(t *testing.T) {
	srv := startFakeServer(t)
	addr := srv.ln.Addr().(*net.TCPAddr)

	m := New(Config{Host: addr.IP.String(), Port: addr.Port, From: "noreply@veritas.test", Timeout: 2 * time.Second})
	if err := m.SendCode(context.Background(), "alice@pwc.com", "654321"); err != nil {
		t.Fatalf("SendCode failed: %v", err)
	}
	<-srv.done

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if !strings.Contains(srv.rcpt, "alice@pwc.com") {
		t.Errorf("rcpt = %q", srv.rcpt)
	}
	body := srv.data.String()
	if !strings.Contains(body, "Your verification code is: 654321") {
		t.Errorf("body missing code: %q", body)
	}
	if !strings.Contains(body, "Subject: Your verification code") {
		t.Errorf("body missing subject: %q", body)
	}
}

func TestMailer_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	m := New(Config{Host: "127.0.0.1", Port: addr.Port, From: "a@b", Timeout: time.Second})
	if err := m.SendCode(context.Background(), "x@pwc.com", "1"); err == nil {
		t.Fatal("expected dial error")
	}
}
