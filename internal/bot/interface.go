// Package bot holds the small Discord helpers shared by commands: voice
// state lookup and interaction replies.
package bot

import "errors"

var ErrNotInVoice = errors.New("user not in any voice channel")

// BotVoice locates the voice channel a member is sitting in.
type BotVoice interface {
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
}

// VoiceState holds minimal voice channel state for a user.
type VoiceState struct {
	ChannelID string
	UserID    string
}
