package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/bot"
	"github.com/chaezuha/Discord-MP3-Bot/internal/music/player"
	"github.com/rs/zerolog/log"
)

// VoiceProvider joins voice channels through the gateway.
type VoiceProvider struct {
	dg *discordgo.Session
}

// Connect joins channelID. An empty channel is reported as
// player.ErrNotInChannel.
func (p *VoiceProvider) Connect(ctx context.Context, guildID, channelID string) (player.VoiceConn, error) {
	if channelID == "" {
		return nil, player.ErrNotInChannel
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := p.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	log.Info().Str("guild", guildID).Str("channel", channelID).Msg("[Voice] Joined voice channel")
	return &voiceConn{vc: vc}, nil
}

// FindUserVoiceState reports the voice channel a member is in, from the
// gateway state cache.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*bot.VoiceState, error) {
	vs, err := b.dg.State.VoiceState(guildID, userID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return nil, bot.ErrNotInVoice
		}
		return nil, err
	}
	if vs == nil || vs.ChannelID == "" {
		return nil, bot.ErrNotInVoice
	}
	return &bot.VoiceState{ChannelID: vs.ChannelID, UserID: vs.UserID}, nil
}

// voiceConn adapts a discordgo voice connection to the playback engine and
// to the opus sink used by stream sessions.
type voiceConn struct {
	vc *discordgo.VoiceConnection
}

func (c *voiceConn) ChannelID() string {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.ChannelID
}

func (c *voiceConn) IsConnected() bool {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready
}

func (c *voiceConn) MoveTo(ctx context.Context, channelID string) error {
	if channelID == "" {
		return player.ErrNotInChannel
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.vc.ChangeChannel(channelID, false, true)
}

func (c *voiceConn) Disconnect() error { return c.vc.Disconnect() }

func (c *voiceConn) Opus() chan<- []byte { return c.vc.OpusSend }

func (c *voiceConn) Speaking(speaking bool) error { return c.vc.Speaking(speaking) }
