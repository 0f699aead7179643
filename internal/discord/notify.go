package discord

import (
	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
	"github.com/rs/zerolog"

	"skipjack/internal/core"
	"skipjack/internal/music/engine"
)

// ChannelNotifier posts playback notifications to the text channel the join
// command was issued in. Delivery failures are logged and swallowed; playback
// never depends on a message landing.
type ChannelNotifier struct {
	dg  *discordgo.Session
	log zerolog.Logger

	// onTrack, when set, is called once per now-playing notification
	// (feeds the tracks-played counter).
	onTrack func()
}

func NewNotifier(dg *discordgo.Session, log zerolog.Logger) *ChannelNotifier {
	return &ChannelNotifier{dg: dg, log: log}
}

func (n *ChannelNotifier) OnTrack(fn func()) { n.onTrack = fn }

func (n *ChannelNotifier) NowPlaying(channelID string, t engine.Track) {
	if n.onTrack != nil {
		n.onTrack()
	}
	if _, err := n.dg.ChannelMessageSendEmbed(channelID, NowPlayingEmbed(t)); err != nil {
		n.log.Warn().Err(err).Str("channel", channelID).Msg("failed to send now-playing")
	}
}

func (n *ChannelNotifier) QueueEmpty(channelID string) {
	if _, err := n.dg.ChannelMessageSend(channelID, "🕳 Queue is empty! That's sad... I guess..."); err != nil {
		n.log.Warn().Err(err).Str("channel", channelID).Msg("failed to send queue-empty")
	}
}

// NowPlayingEmbed renders the shared now-playing card used by the notifier
// and the join command.
func NowPlayingEmbed(t engine.Track) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle("Now playing").
		AddField("Title", t.DisplayTitle())
	if t.SourceURL != "" {
		e.AddField("URL", t.SourceURL)
	}
	e.AddField("Duration", core.FormatDuration(t.Duration))
	if t.Thumbnail != "" {
		e.SetThumbnail(t.Thumbnail)
	}
	return e.MessageEmbed
}
