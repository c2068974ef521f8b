package handler

import (
	"strings"

	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/pkg/serverutils"
	internalWS "councellorx-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedHandler upgrades authenticated clients onto the chat session feed.
type FeedHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *FeedHandler {
	return &FeedHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs authenticates before the upgrade. Browsers cannot set headers on
// a websocket handshake, so the token may come as ?token=.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if tokenStr == "" {
		return serverutils.ErrUnauthenticated
	}

	userID, err := serverutils.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("FeedHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return serverutils.ErrUnauthenticated
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("FeedHandler", "Feed session started", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("FeedHandler", "Feed session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chat/feed", h.ServeWs)
}
