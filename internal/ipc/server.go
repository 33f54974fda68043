package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// LaunchSink receives forwarded launches. Implemented by the launch
// aggregator; kept as an interface so the transport stays decoupled.
type LaunchSink interface {
	HandleLaunch(req domain.LaunchRequest)
}

// CommandSurface is the set of session operations exposed to connected
// clients. Implemented by usecase.Surface.
type CommandSurface interface {
	Compress(ctx context.Context, sources []string, destination, kindTag string) (string, error)
	Decompress(ctx context.Context, sources []string) (string, error)
	SupportedKinds() []string
	ValidateKind(sources []string, kindTag string) (bool, error)
	Close() (int, error)
	Acknowledge(count int64)
	OpenContainingFolder(path string) error
}

// Server exposes launch forwarding and the command surface via JSON-RPC over
// a unix domain socket. Only the primary instance runs one.
type Server struct {
	path      string
	listener  net.Listener
	rpcServer *rpc.Server
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer configures the forward server at the given socket path, replacing
// any stale socket file left from a previous run.
func NewServer(ctx context.Context, path string, sink LaunchSink, logger *zap.Logger) (*Server, error) {
	if sink == nil {
		return nil, errors.New("ipc server requires a launch sink")
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Parcel", &service{sink: sink, logger: logger}); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		listener:  listener,
		rpcServer: rpcServer,
		logger:    logger,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// RegisterSurface exposes the command surface on this server so a connected
// client can drive compress, decompress, acknowledge and the rest of the
// session operations. Call before Serve.
func (s *Server) RegisterSurface(surface CommandSurface) error {
	if surface == nil {
		return errors.New("ipc server requires a command surface")
	}
	svc := &surfaceService{surface: surface, ctx: s.ctx, logger: s.logger}
	if err := s.rpcServer.RegisterName("Surface", svc); err != nil {
		return fmt.Errorf("register surface service: %w", err)
	}
	return nil
}

// Serve accepts connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("session server listening", zap.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", zap.Error(err))
				continue
			}
			s.track(conn)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.untrack(c)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server, disconnects every open client and removes the
// socket file. A client that never hangs up must not block shutdown.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			zap.String("socket", s.path),
			zap.Error(err))
	}
}

func (s *Server) track(c net.Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	_ = c.Close()
}

// service is the RPC-visible launch surface.
type service struct {
	sink   LaunchSink
	logger *zap.Logger
}

// Forward hands a redirected launch to the aggregator. The expected-total
// counter is bumped before this returns, so the secondary can exit as soon as
// the call completes.
func (s *service) Forward(req ForwardRequest, resp *ForwardResponse) error {
	intent := domain.IntentCompress
	if req.Intent == string(domain.IntentDecompress) {
		intent = domain.IntentDecompress
	}

	s.logger.Info("launch forwarded",
		zap.Int("argc", len(req.Args)),
		zap.String("intent", string(intent)))

	s.sink.HandleLaunch(domain.LaunchRequest{
		Argv:   req.Args,
		Intent: intent,
	})

	resp.Accepted = true
	return nil
}

// surfaceService is the RPC-visible command surface of the running session.
type surfaceService struct {
	surface CommandSurface
	ctx     context.Context
	logger  *zap.Logger
}

func (s *surfaceService) Compress(req CompressRequest, resp *CompressResponse) error {
	msg, err := s.surface.Compress(s.ctx, req.Sources, req.Destination, req.Kind)
	if err != nil {
		return err
	}
	resp.Message = msg
	return nil
}

func (s *surfaceService) Decompress(req DecompressRequest, resp *DecompressResponse) error {
	msg, err := s.surface.Decompress(s.ctx, req.Sources)
	if err != nil {
		return err
	}
	resp.Message = msg
	return nil
}

func (s *surfaceService) Kinds(_ KindsRequest, resp *KindsResponse) error {
	resp.Kinds = s.surface.SupportedKinds()
	return nil
}

func (s *surfaceService) Validate(req ValidateRequest, resp *ValidateResponse) error {
	valid, err := s.surface.ValidateKind(req.Sources, req.Kind)
	if err != nil {
		return err
	}
	resp.Valid = valid
	return nil
}

func (s *surfaceService) Acknowledge(req AcknowledgeRequest, resp *AcknowledgeResponse) error {
	s.surface.Acknowledge(req.Count)
	resp.Accepted = true
	return nil
}

func (s *surfaceService) OpenFolder(req OpenFolderRequest, resp *OpenFolderResponse) error {
	if err := s.surface.OpenContainingFolder(req.Path); err != nil {
		return err
	}
	resp.Opened = true
	return nil
}

func (s *surfaceService) Close(_ CloseRequest, resp *CloseResponse) error {
	killed, err := s.surface.Close()
	resp.Killed = killed
	return err
}
