// Package e2etest runs the pilatesapp web server in-process and exposes a
// session-aware HTTP client for black-box tests.
package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sofiamaki/pilatesapp/internal/logging"
)

// Log keys the server is expected to emit during startup. The harness reads
// the dynamically allocated listen address and the SQLite DSN off the log
// stream, which keeps the production startup path identical in tests.
const (
	LogAddrKey = "addr"
	LogDsnKey  = "sqlDsn"
)

// Server is a running application under test.
type Server struct {
	url        string
	client     *Client
	db         *sql.DB
	cancel     context.CancelCauseFunc
	serverDone chan struct{}
}

// startupProbe collects the startup attrs the harness needs out of the
// server's log records while passing every record through to logSink.
type startupProbe struct {
	addrCh chan string
	dsnCh  chan string
}

func newStartupProbe() *startupProbe {
	return &startupProbe{
		addrCh: make(chan string, 1),
		dsnCh:  make(chan string, 1),
	}
}

func (p *startupProbe) logger(logSink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case LogAddrKey:
				p.addrCh <- a.Value.String()
			case LogDsnKey:
				p.dsnCh <- a.Value.String()
			}
			return a
		},
	})))
}

// wait blocks until both startup attrs have been logged or ctx is cancelled.
func (p *startupProbe) wait(ctx context.Context) (addr, dsn string, err error) {
	for dsn == "" || addr == "" {
		select {
		case <-ctx.Done():
			return "", "", fmt.Errorf("server exited during startup: %w", context.Cause(ctx))
		case addr = <-p.addrCh:
		case dsn = <-p.dsnCh:
		}
	}
	return addr, dsn, nil
}

// StartServer runs the application in a goroutine, waits until it serves
// /api/healthy, and returns a handle with a cookie-jar client plus a direct
// database connection for fixture checks. The server is shut down on test
// cleanup.
//
// logSink receives the server logs; testhelpers.NewWriter routes them to
// t.Log. lookupEnv has the signature of [os.LookupEnv]. run is the
// application entrypoint, expected to log its listen address under
// LogAddrKey and its DSN under LogDsnKey.
func StartServer(
	t *testing.T,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run func(context.Context, *slog.Logger, func(string) (string, bool)) error,
) (*Server, error) {
	var (
		server *Server
		ctx    = t.Context()
	)
	t.Cleanup(func() {
		if server != nil {
			server.Shutdown()
		}
	})
	ctx, cancel := context.WithCancelCause(ctx)
	serverDone := make(chan struct{})

	probe := newStartupProbe()
	go func() {
		defer close(serverDone)
		if err := run(ctx, probe.logger(logSink), lookupEnv); err != nil {
			cancel(err)
		}
	}()

	addr, dsn, err := probe.wait(ctx)
	if err != nil {
		return nil, err
	}

	serverURL := fmt.Sprintf("http://%s", addr)
	client, err := NewClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	server = &Server{
		url:        serverURL,
		client:     client,
		db:         db,
		cancel:     cancel,
		serverDone: serverDone,
	}

	return server, nil
}

// Client returns the session-aware HTTP client pointed at the server.
func (s *Server) Client() *Client {
	return s.client
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.url
}

// DB returns a connection to the server's database for direct assertions on
// persisted classes and usage records.
func (s *Server) DB() *sql.DB {
	return s.db
}

// Shutdown stops the server and waits for it to exit.
func (s *Server) Shutdown() {
	s.cancel(nil)
	<-s.serverDone
}
