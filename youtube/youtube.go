package youtube

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

var ErrMissingKey = errors.New("missing youtube API key")

const (
	StatusLive    = "live"
	StatusOffline = "offline"
)

type Status struct {
	Status  string `json:"status"`
	VideoID string `json:"videoId,omitempty"`
}

type Client struct {
	apiKey  string
	options []option.ClientOption
	logger  *log.Logger
}

func NewClient(apiKey string, logger *log.Logger, options ...option.ClientOption) *Client {
	return &Client{
		apiKey:  apiKey,
		options: options,
		logger:  logger,
	}
}

// LiveStatus reports whether channelID currently has a live broadcast.
func (c *Client) LiveStatus(ctx context.Context, channelID string) (Status, error) {
	if c.apiKey == "" {
		return Status{}, ErrMissingKey
	}

	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.options...)
	service, err := yt.NewService(ctx, opts...)
	if err != nil {
		return Status{}, fmt.Errorf("failed to create youtube service: %w", err)
	}

	resp, err := service.Search.List([]string{"id"}).
		ChannelId(channelID).
		EventType("live").
		Type("video").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return Status{}, fmt.Errorf("youtube search failed: %w", err)
	}

	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			c.logger.Debug("live", "channel", channelID, "video", item.Id.VideoId)
			return Status{Status: StatusLive, VideoID: item.Id.VideoId}, nil
		}
	}

	return Status{Status: StatusOffline}, nil
}
