package websocket

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
)

// Claims are the JWT claims expected on socket attach.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager authenticates and upgrades WebSocket connections and hands the
// resulting session to a per-connection handler.
type Manager struct {
	registry *Registry
	cfg      models.JWTConfig
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager(registry *Registry, jwtConfig models.JWTConfig) *Manager {
	return &Manager{
		registry: registry,
		cfg:      jwtConfig,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Registry exposes the underlying session registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// HandleConnection authenticates the request, upgrades it, registers the
// session and runs handleClient until the connection drops. The session
// is unregistered on return unless a newer session has supplanted it.
func (m *Manager) HandleConnection(c echo.Context, role string, handleClient func(*Session) error) error {
	claims, err := m.authenticate(c)
	if err != nil {
		return err
	}
	if claims.Role != role {
		return echo.NewHTTPError(http.StatusForbidden, "wrong role for this endpoint")
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	session := NewSession(claims.UserID, claims.Role, ws)
	m.registry.Register(session)
	defer m.registry.Unregister(session)

	return handleClient(session)
}

// ReadMessage blocks on the next inbound envelope for a session.
func (m *Manager) ReadMessage(s *Session) (*models.WSMessage, error) {
	var msg models.WSMessage
	if err := s.conn.ReadJSON(&msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			logger.Warn("websocket read failed",
				logger.String("session_id", s.ID),
				logger.Err(err))
		}
		return nil, err
	}
	return &msg, nil
}

// SendError sends an error event on the session.
func (m *Manager) SendError(s *Session, code, message string) {
	s.Enqueue(constants.EventError, models.WSErrorMessage{Code: code, Message: message})
}

func (m *Manager) authenticate(c echo.Context) (*Claims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		// Fall back to a query token for browser clients that cannot
		// set headers on the upgrade request.
		authHeader = "Bearer " + c.QueryParam("token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
	}

	claims, err := m.validateToken(parts[1])
	if err != nil {
		logger.Warn("token validation failed", logger.Err(err))
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return claims, nil
}

func (m *Manager) validateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token missing user_id")
	}
	return claims, nil
}
