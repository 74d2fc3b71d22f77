package messaging

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/alerts"
	"github.com/worklane/worklane/internal/db"
)

// projectParties resolves the two participants of a project thread
func projectParties(ctx context.Context, projectID string) (customerID, providerID string, err error) {
	err = db.Conn.QueryRow(ctx,
		`SELECT customer_id, provider_id FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID)
	return
}

// SendMessage - customer or provider sends a message in a project thread
func SendMessage(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing project id"})
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil || body.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx := context.Background()

	customerID, providerID, err := projectParties(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}

	var recipientID string
	switch userID {
	case customerID:
		recipientID = providerID
	case providerID:
		recipientID = customerID
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	msgID := uuid.New().String()
	var createdAt time.Time
	err = db.Conn.QueryRow(ctx,
		`INSERT INTO messages (id, project_id, sender_id, recipient_id, content)
         VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		msgID, projectID, userID, recipientID, body.Content,
	).Scan(&createdAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send message"})
	}

	BroadcastNewMessage(projectID, echo.Map{
		"id":           msgID,
		"project_id":   projectID,
		"sender_id":    userID,
		"recipient_id": recipientID,
		"content":      body.Content,
		"created_at":   createdAt.UTC().Format(time.RFC3339),
	})

	// In-app notification for recipient
	ref := msgID
	_ = alerts.CreateNotification(recipientID, "message:new", "New message on your project", body.Content, &ref, nil)

	// Email notification (best-effort)
	var recipientEmail string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, recipientID).Scan(&recipientEmail)
	if recipientEmail != "" {
		_ = alerts.EnqueueMessageNew(projectID, userID, recipientID, recipientEmail, body.Content)
	}

	return c.JSON(http.StatusOK, echo.Map{"message_id": msgID})
}

// ListMessages - get the conversation for a project
func ListMessages(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing project id"})
	}

	ctx := context.Background()

	customerID, providerID, err := projectParties(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}
	if userID != customerID && userID != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	// Optional since filter for incremental fetches
	query := `SELECT id, sender_id, recipient_id, content, created_at, read_at
              FROM messages WHERE project_id = $1`
	args := []interface{}{projectID}
	if sinceStr := c.QueryParam("since"); sinceStr != "" {
		sinceTime, perr := time.Parse(time.RFC3339, sinceStr)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid since timestamp, use RFC3339"})
		}
		query += ` AND created_at > $2`
		args = append(args, sinceTime)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list messages"})
	}
	defer rows.Close()

	type message struct {
		ID          string  `json:"id"`
		SenderID    string  `json:"sender_id"`
		RecipientID string  `json:"recipient_id"`
		Content     string  `json:"content"`
		CreatedAt   string  `json:"created_at"`
		ReadAt      *string `json:"read_at"`
	}

	var msgs []message
	for rows.Next() {
		var m message
		var createdAt time.Time
		var readAt *time.Time
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &createdAt, &readAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		m.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		if readAt != nil {
			s := readAt.UTC().Format(time.RFC3339)
			m.ReadAt = &s
		}
		msgs = append(msgs, m)
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// UnreadCount - unread count for the current user in a project thread
func UnreadCount(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing project id"})
	}

	ctx := context.Background()

	customerID, providerID, err := projectParties(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}
	if userID != customerID && userID != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	var count int64
	err = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE project_id = $1 AND recipient_id = $2 AND read_at IS NULL`,
		projectID, userID,
	).Scan(&count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute unread count"})
	}

	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// MarkMessageRead - recipient marks a specific message as read
func MarkMessageRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")
	msgID := c.Param("message_id")
	if projectID == "" || msgID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing project or message id"})
	}

	ctx := context.Background()

	var recipientID string
	err := db.Conn.QueryRow(ctx,
		`SELECT recipient_id FROM messages WHERE id = $1 AND project_id = $2`, msgID, projectID,
	).Scan(&recipientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch message"})
	}
	if recipientID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the recipient"})
	}

	var readTS time.Time
	err = db.Conn.QueryRow(ctx,
		`UPDATE messages SET read_at = NOW() WHERE id = $1 AND recipient_id = $2 RETURNING read_at`, msgID, userID,
	).Scan(&readTS)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark read"})
	}

	BroadcastMessageRead(projectID, echo.Map{
		"message_id": msgID,
		"project_id": projectID,
		"user_id":    userID,
		"read_at":    readTS.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"message_id": msgID, "read_at": readTS.UTC().Format(time.RFC3339)})
}
