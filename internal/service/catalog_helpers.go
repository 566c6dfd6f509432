package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// ErrNameRequired is returned when a name or title is empty after sanitising.
var ErrNameRequired = errors.New("name must not be empty")

// cleanText strips markup and keeps the remaining text unescaped.
func cleanText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}

// removeMediaAfterCommit deletes files of cascaded units once the database work is done.
func removeMediaAfterCommit(ctx context.Context, media MediaService, logger zerolog.Logger, urls []string) {
	if media == nil || len(urls) == 0 {
		return
	}
	logger.Info().Int("files", len(urls)).Msg("removing media of deleted units")
	media.Remove(context.WithoutCancel(ctx), urls)
}
