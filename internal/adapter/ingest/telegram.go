package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// TelegramFeed parses the social collector's output (telegram_feed.json).
// Posts keep their raw text; the narrative correlator matches locations in
// it at query time, so no mention edges are created here.
type TelegramFeed struct {
	path string
}

func NewTelegramFeed(path string) *TelegramFeed {
	return &TelegramFeed{path: path}
}

func (f *TelegramFeed) Name() string {
	return "telegram-posts"
}

type telegramDocument struct {
	Messages []telegramRecord `json:"messages"`
}

type telegramRecord struct {
	SourceID  string `json:"source_id"` // telegram_<channel>
	Text      string `json:"text"`
	Date      string `json:"date"`
	MessageID int64  `json:"message_id"`
}

func (f *TelegramFeed) Load(ctx context.Context) (*ports.GraphBatch, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read telegram feed: %w", err)
	}

	var doc telegramDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse telegram feed: %w", err)
	}

	batch := &ports.GraphBatch{}
	seenChannels := map[string]bool{}

	for _, rec := range doc.Messages {
		if strings.TrimSpace(rec.Text) == "" {
			continue
		}

		channel := strings.TrimPrefix(rec.SourceID, "telegram_")
		if channel == "" {
			continue
		}

		if !seenChannels[channel] {
			seenChannels[channel] = true
			batch.Channels = append(batch.Channels, domain.Channel{Name: channel})
		}

		postID := fmt.Sprintf("%d_%s", rec.MessageID, channel)
		batch.Posts = append(batch.Posts, domain.Post{
			ID:          postID,
			ChannelName: channel,
			Text:        rec.Text,
			Date:        parseFeedTime(rec.Date),
		})
		batch.Edges = append(batch.Edges, ports.Edge{
			FromID: channel, Kind: domain.Posted, ToID: postID,
		})
	}

	return batch, nil
}
