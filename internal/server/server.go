// SPDX-License-Identifier: AGPL-3.0-only
package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/ThinkInAIXYZ/go-mcp/transport"

	"github.com/jolks/mcp-remind/internal/config"
	"github.com/jolks/mcp-remind/internal/errors"
	"github.com/jolks/mcp-remind/internal/logging"
	"github.com/jolks/mcp-remind/internal/model"
	"github.com/jolks/mcp-remind/internal/scheduler"
)

// Make the file logger mockable for testing
var newFileLogger = logging.FileLogger

// TaskStore is the part of the task store the tools mutate and read
type TaskStore interface {
	Add(ctx context.Context, name, deadline string) (model.Task, error)
	Remove(ctx context.Context, name string) error
	List() []model.Task
}

// MCPServer exposes the reminder store and scheduler as MCP tools
type MCPServer struct {
	tasks          TaskStore
	scheduler      scheduler.Scheduler
	server         *server.Server
	cutoff         model.TimeOfDay
	stopCh         chan struct{}
	wg             sync.WaitGroup
	config         *config.Config
	logger         *logging.Logger
	shutdownMutex  sync.Mutex
	isShuttingDown bool
}

// NewMCPServer creates a new MCP reminder server
func NewMCPServer(cfg *config.Config, tasks TaskStore, sched scheduler.Scheduler) (*MCPServer, error) {
	// Create default config if not provided
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	logger := logging.GetDefaultLogger()

	// stdout carries JSON-RPC in stdio mode, so keep server logs in a file
	if cfg.Server.TransportMode == "stdio" {
		logPath := cfg.Logging.FilePath
		if strings.TrimSpace(logPath) == "" {
			logPath = filepath.Join(config.DefaultWorkDir(), config.DefaultLogFile)
		}
		fileLogger, err := newFileLogger(logPath, logging.ParseLevel(cfg.Logging.Level))
		if err != nil {
			logger.Errorf("Failed to open log file at %s: %v", logPath, err)
		} else {
			logger = fileLogger
			logger.Infof("Logging to %s", logPath)
		}
	}

	s := &MCPServer{
		tasks:     tasks,
		scheduler: sched,
		cutoff:    cfg.SummaryCutoff(),
		stopCh:    make(chan struct{}),
		config:    cfg,
		logger:    logger,
	}

	// Create transport based on mode
	var svrTransport transport.ServerTransport
	var err error

	switch cfg.Server.TransportMode {
	case "stdio":
		logger.Infof("Using stdio transport")
		svrTransport = transport.NewStdioServerTransport()
	case "sse":
		addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
		logger.Infof("Using SSE transport on %s", addr)

		svrTransport, err = transport.NewSSEServerTransport(addr)
		if err != nil {
			return nil, errors.Internal(fmt.Errorf("failed to create SSE transport: %w", err))
		}
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported transport mode: %s", cfg.Server.TransportMode))
	}

	s.server, err = server.NewServer(
		svrTransport,
		server.WithServerInfo(protocol.Implementation{
			Name:    cfg.Server.Name,
			Version: cfg.Server.Version,
		}),
	)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to create MCP server: %w", err))
	}

	return s, nil
}

// Start registers the tools and serves requests until ctx is cancelled
func (s *MCPServer) Start(ctx context.Context) error {
	s.registerToolsDeclarative()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.server.Run(); err != nil {
			s.logger.Errorf("Error running MCP server: %v", err)
			return
		}
	}()

	// Listen for context cancellation
	go func() {
		select {
		case <-ctx.Done():
		case <-s.stopCh:
			return
		}
		if err := s.Stop(); err != nil {
			s.logger.Errorf("Error stopping MCP server: %v", err)
		}
	}()

	return nil
}

// Stop shuts the MCP server down. Safe to call more than once.
func (s *MCPServer) Stop() error {
	s.shutdownMutex.Lock()
	defer s.shutdownMutex.Unlock()

	if s.isShuttingDown {
		s.logger.Debugf("Stop called but server is already shutting down, ignoring")
		return nil
	}
	s.isShuttingDown = true
	close(s.stopCh)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Internal(fmt.Errorf("error shutting down MCP server: %w", err))
	}

	s.wg.Wait()
	return nil
}
