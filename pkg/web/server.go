// Package web provides the live diagnostics dashboard: current hazard level,
// navigation state and scheduler counters over REST and websocket. It is a
// read-only surface apart from the simulated voice command endpoint used in
// demos.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/dlaveaga/go-guidedog/pkg/feedback"
	"github.com/dlaveaga/go-guidedog/pkg/hub"
	"github.com/dlaveaga/go-guidedog/pkg/nav"
)

const maxEvents = 500

// Status is the aggregate state pushed to dashboard clients.
type Status struct {
	HazardLevel string            `json:"hazard_level"`
	Navigation  nav.Status        `json:"navigation"`
	Scheduler   feedback.Snapshot `json:"scheduler"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Event is one line in the dashboard's live event feed.
type Event struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // hazard, speech, nav, command
	Message string `json:"message"`
}

// Server is the dashboard server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	statusMu sync.RWMutex
	status   Status

	eventsMu sync.RWMutex
	events   []Event

	statusHub *hub.Hub
	eventHub  *hub.Hub

	// OnCommand handles a simulated voice command and returns the parsed
	// command kind. Left nil, the endpoint answers 503.
	OnCommand func(ctx context.Context, text string) (string, error)
}

// NewServer builds the dashboard server on the given port.
func NewServer(port string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:      port,
		logger:    logger.With("component", "web"),
		events:    make([]Event, 0, maxEvents),
		statusHub: hub.New("status", logger),
		eventHub:  hub.New("events", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Guidedog Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/events", s.handleEvents)
	api.Post("/command", s.handleCommand)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start runs the hubs and blocks serving HTTP.
func (s *Server) Start() error {
	go s.statusHub.Run()
	go s.eventHub.Run()
	s.logger.Info("dashboard listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync runs Start in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard server failed", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server and disconnects all websocket clients.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.statusHub.Stop()
	s.eventHub.Stop()
	return err
}

// UpdateStatus replaces the published status and broadcasts it.
func (s *Server) UpdateStatus(status Status) {
	status.UpdatedAt = time.Now()
	s.statusMu.Lock()
	s.status = status
	s.statusMu.Unlock()

	s.statusHub.BroadcastJSON(status)
}

// AddEvent appends to the event feed and broadcasts the entry.
func (s *Server) AddEvent(eventType, message string) {
	entry := Event{
		Time:    time.Now().Format("15:04:05"),
		Type:    eventType,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	s.eventHub.BroadcastJSON(entry)
}
