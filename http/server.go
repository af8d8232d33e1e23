package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	Name      string
	Routes    *RouteTable
	Templates Templates

	NotFound NotFoundHandler
	OnError  ErrorHandler

	Workers   int
	QueueSize int
}

func NewServer(name string, routes *RouteTable, templates Templates) *Server {
	return &Server{
		Name:      name,
		Routes:    routes,
		Templates: templates,
		NotFound:  DefaultNotFoundHandler,
		OnError:   DefaultErrorHandler,
		Workers:   4,
		QueueSize: DefaultQueueSize,
	}
}

// ListenAndServe binds addr and serves until ctx is done. A bind failure is
// returned before any connection is accepted.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http: bind %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections and hands each one to the worker pool. Every
// error report that comes back is remembered and may be replayed to the
// next client instead of routing its request. Serve returns nil once ctx
// is done and every queued connection has been handled; any other accept
// failure is returned as is.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	onError := s.OnError
	if onError == nil {
		onError = DefaultErrorHandler
	}

	pool := NewWorkerPool(s.Workers, s.QueueSize, func(err error) ErrorPage {
		return onError(err)
	})
	defer pool.Close()

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	defer stop()

	logger.Info("accepting connections", "server", s.Name, "addr", listener.Addr().String(), "workers", pool.Size())

	var errs history[ErrorPage]
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("listener closed; draining workers", "server", s.Name)
				return nil
			}
			return fmt.Errorf("http: accept: %w", err)
		}

		var override *Response
		if page, ok := errs.Override(); ok {
			res := page.Response()
			override = &res
			overrideCnt.Add(ctx, 1)
		}

		report, err := pool.Execute(func(ctx context.Context) error {
			return s.ServeConn(ctx, conn, override)
		})

		switch {
		case err == nil:
			errs.Record(report)
		case errors.Is(err, ErrNoReport):
			errs.Reset()
		case errors.Is(err, ErrQueueFull):
			s.reject(ctx, conn)
		default:
			conn.Close()
			return err
		}
	}
}

func (s *Server) reject(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	rejectCnt.Add(ctx, 1)
	logger.Warn("job queue full; rejecting connection", "server", s.Name, "remote", conn.RemoteAddr().String())

	body := StatusServiceUnavailable.Line()
	if err := WriteResponse(bufio.NewWriter(conn), StatusServiceUnavailable, body); err != nil {
		logger.Warn("writing rejection failed", "error", err)
	}
}

// ServeConn handles exactly one request on conn and closes it. When
// override is non-nil it is rendered in place of routing the request.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn, override *Response) (err error) {
	defer conn.Close()

	connID := uuid.New().String()
	ctx, span := tracer.Start(ctx, "werver.conn", trace.WithAttributes(
		attribute.String("conn.id", connID),
		attribute.Bool("conn.override", override != nil),
	))
	defer span.End()

	defer func() {
		outcome := "ok"
		if kind, ok := KindOf(err); ok {
			outcome = kind.String()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		connCnt.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}()

	line, err := ReadRequestLine(bufio.NewReaderSize(conn, DefaultReadBufferSize))
	if err != nil {
		return err
	}

	req, err := ParseRequestLine(line)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("http.method", req.Method.String()), attribute.String("http.path", req.Path))
	logger.InfoContext(ctx, "request", "conn", connID, "method", req.Method.String(), "path", req.Path)

	res, err := s.resolve(ctx, req, override)
	if err != nil {
		return err
	}

	if s.Templates == nil {
		return TransportError(errors.New("http: no template store configured"))
	}
	body, err := res.Page.Render(s.Templates)
	if err != nil {
		return TransportError(err)
	}

	if err := WriteResponse(bufio.NewWriterSize(conn, DefaultWriteBufferSize), res.Status, body); err != nil {
		return TransportError(err)
	}

	span.SetAttributes(attribute.Int("http.status", int(res.Status)))
	return nil
}

func (s *Server) resolve(ctx context.Context, req Request, override *Response) (Response, error) {
	if override != nil {
		return *override, nil
	}

	rest, handler, found := s.Routes.Match(req.Method, req.Path)
	if !found {
		logger.DebugContext(ctx, "falling back to not found", "error", NoRouteError(req.Path))
		notFound := s.NotFound
		if notFound == nil {
			notFound = DefaultNotFoundHandler
		}
		return notFound(), nil
	}

	res, err := handler.Serve(SplitArgs(rest))
	if err != nil {
		return Response{}, RouteHandlerError(err)
	}
	return res, nil
}
