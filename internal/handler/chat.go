package handler

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Chat channels.
const (
	ChannelSay    = "say"
	ChannelGlobal = "global"
)

const globalPrefix = "/g "

// cleanText normalises client text: NFC, full-width forms folded, control
// characters and markup brackets dropped, trimmed, cut to limit runes.
func cleanText(s string, limit int) string {
	s = width.Fold.String(norm.NFC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '<' || r == '>' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
	}
	return s
}

// HandleChat processes CHAT(text). Plain text reaches the adjacent groups;
// text starting with "/g " reaches every player.
func HandleChat(sess *net.Session, r *packet.Reader, deps *Deps) {
	raw := r.String()
	p := playerOf(sess, deps)
	if p == nil {
		return
	}

	channel := ChannelSay
	if strings.HasPrefix(raw, globalPrefix) {
		channel = ChannelGlobal
		raw = raw[len(globalPrefix):]
	}
	text := cleanText(raw, deps.Config.World.ChatMaxLength)
	if text == "" {
		return
	}

	deps.Log.Debug("chat",
		zap.String("player", p.Player.Name),
		zap.String("channel", channel),
		zap.String("text", text),
	)

	msg := packet.Chat(p.ID, text, channel)
	if channel == ChannelGlobal {
		deps.World.Out.PushBroadcast(msg, "")
		return
	}
	deps.World.Out.PushToAdjacentGroups(p.Group, msg, "")
}
