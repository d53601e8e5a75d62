package telegramx

import (
	"strings"
	"time"

	"github.com/amarnathcjd/gogram/telegram"
)

// channelMark is the prefix applied to channel/supergroup ids in the marked id
// convention (the -100... form the original watch tables use).
const channelMark = 1000000000000

// Message is the subset of an incoming Telegram update the radar cares about.
type Message struct {
	ChatID    int64
	ThreadID  int64
	MessageID int64
	Sender    string
	Text      string
	Date      time.Time
	Raw       string // marshaled library message, for the raw debug dump
}

// Source is the message feed the capture path consumes. *Client implements it;
// tests substitute a fake.
type Source interface {
	OnNewMessage(fn func(Message) error)
	Idle()
	Stop()
}

// MarkChannelID converts a bare channel/supergroup id to its marked form.
func MarkChannelID(id int64) int64 {
	if id > 0 {
		return -(channelMark + id)
	}
	return id
}

// SameChat reports whether two chat ids refer to the same chat, accepting
// either the bare or the marked convention on both sides.
func SameChat(a, b int64) bool {
	if a == b {
		return true
	}
	return MarkChannelID(a) == b || a == MarkChannelID(b)
}

// threadID derives the forum topic id from a reply header, matching the
// platform semantics: the top id when present, otherwise the direct reply id
// but only inside a forum topic. Zero means "no topic" (the general thread).
func threadID(topID, replyToID int64, forumTopic bool) int64 {
	if topID != 0 {
		return topID
	}
	if forumTopic {
		return replyToID
	}
	return 0
}

// TopicID extracts the thread/topic id from a message reply header.
func TopicID(reply telegram.MessageReplyHeader) int64 {
	h, ok := reply.(*telegram.MessageReplyHeaderObj)
	if !ok || h == nil {
		return 0
	}
	return threadID(int64(h.ReplyToTopID), int64(h.ReplyToMsgID), h.ForumTopic)
}

// senderName builds a printable sender handle from the message author,
// preferring first/last name and falling back to the username.
func senderName(u *telegram.UserObj) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		name = u.Username
	}
	return name
}

func fromNewMessage(m *telegram.NewMessage) Message {
	out := Message{
		ChatID: m.ChatID(),
		Sender: senderName(m.Sender),
		Text:   m.Text(),
		Raw:    m.Marshal(),
	}
	if m.Message != nil {
		out.MessageID = int64(m.Message.ID)
		out.Date = time.Unix(int64(m.Message.Date), 0).UTC()
		out.ThreadID = TopicID(m.Message.ReplyTo)
	}
	return out
}
