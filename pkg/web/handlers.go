package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/dlaveaga/go-guidedog/pkg/hub"
)

func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return c.JSON(s.status)
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return c.JSON(s.events)
}

// CommandRequest is the body for the simulated voice command endpoint.
type CommandRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCommand(c *fiber.Ctx) error {
	var req CommandRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must be {\"text\": \"...\"}",
		})
	}

	if s.OnCommand == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "command handling not configured",
		})
	}

	kind, err := s.OnCommand(c.UserContext(), req.Text)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   err.Error(),
			"command": kind,
		})
	}

	s.AddEvent("command", req.Text)
	return c.JSON(fiber.Map{"command": kind})
}

// handleStatusWS streams status updates; the current status is sent first so
// a fresh client never waits for the next change.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.statusMu.RLock()
	c.WriteJSON(s.status)
	s.statusMu.RUnlock()

	hub.NewClient(s.statusHub, c).Run()
}

// handleEventsWS replays recent events, then streams new ones.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	s.eventsMu.RLock()
	for _, entry := range s.events {
		c.WriteJSON(entry)
	}
	s.eventsMu.RUnlock()

	hub.NewClient(s.eventHub, c).Run()
}
