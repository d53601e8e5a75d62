package telegramx

import (
	"fmt"

	"github.com/amarnathcjd/gogram/telegram"
)

// Dialog is one conversation the account participates in, with the marked id
// usable directly in the watch configuration.
type Dialog struct {
	ID    int64
	Kind  string // chat | group | channel
	Title string
	Forum bool
}

// ListDialogs fetches the account's dialogs and returns the chats and channels
// among them, ids already in the marked form the watch tables use.
func (c *Client) ListDialogs(limit int32) ([]Dialog, error) {
	if limit <= 0 {
		limit = 100
	}
	res, err := c.tg.MessagesGetDialogs(&telegram.MessagesGetDialogsParams{
		OffsetPeer: &telegram.InputPeerEmpty{},
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch dialogs: %w", err)
	}

	var chats []telegram.Chat
	switch d := res.(type) {
	case *telegram.MessagesDialogsObj:
		chats = d.Chats
	case *telegram.MessagesDialogsSlice:
		chats = d.Chats
	default:
		return nil, fmt.Errorf("fetch dialogs: unexpected response %T", res)
	}

	out := make([]Dialog, 0, len(chats))
	for _, raw := range chats {
		switch ch := raw.(type) {
		case *telegram.ChatObj:
			out = append(out, Dialog{ID: -ch.ID, Kind: "chat", Title: ch.Title})
		case *telegram.Channel:
			kind := "channel"
			if ch.Megagroup {
				kind = "group"
			}
			out = append(out, Dialog{
				ID:    MarkChannelID(ch.ID),
				Kind:  kind,
				Title: ch.Title,
				Forum: ch.Forum,
			})
		}
	}
	return out, nil
}
