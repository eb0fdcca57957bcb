package middleware

import (
	"context"
	"log/slog"
	"time"

	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LastSeenRecorder persists the time a user was last active.
type LastSeenRecorder interface {
	TouchLastSeen(ctx context.Context, userID uint, at time.Time) error
}

// LastSeen stamps the authenticated requester's last_seen before the handler runs.
// It must be mounted after AuthRequired. A token whose user no longer exists is
// rejected with 401; other failures are logged and never fail the request.
func LastSeen(recorder LastSeenRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserIDFromContext(c.UserContext())
		if !ok || recorder == nil {
			return c.Next()
		}

		err := recorder.TouchLastSeen(c.UserContext(), userID, time.Now().UTC())
		if models.HasCode(err, models.CodeNotFound) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}
		if err != nil {
			Logger.WarnContext(c.UserContext(), "failed to update last_seen",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
		}
		return c.Next()
	}
}
