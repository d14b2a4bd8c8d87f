// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package scope

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Scope is a single permission scope string.
type Scope string

// Analytics and bits.
const (
	AnalyticsReadExtensions Scope = "analytics:read:extensions"
	AnalyticsReadGames      Scope = "analytics:read:games"
	BitsRead                Scope = "bits:read"
)

// Channel scopes.
const (
	ChannelBot               Scope = "channel:bot"
	ChannelManageAds         Scope = "channel:manage:ads"
	ChannelReadAds           Scope = "channel:read:ads"
	ChannelManageBroadcast   Scope = "channel:manage:broadcast"
	ChannelReadCharity       Scope = "channel:read:charity"
	ChannelEditCommercial    Scope = "channel:edit:commercial"
	ChannelReadEditors       Scope = "channel:read:editors"
	ChannelManageExtensions  Scope = "channel:manage:extensions"
	ChannelReadGoals         Scope = "channel:read:goals"
	ChannelReadGuestStar     Scope = "channel:read:guest_star"
	ChannelManageGuestStar   Scope = "channel:manage:guest_star"
	ChannelReadHypeTrain     Scope = "channel:read:hype_train"
	ChannelManageModerators  Scope = "channel:manage:moderators"
	ChannelReadPolls         Scope = "channel:read:polls"
	ChannelManagePolls       Scope = "channel:manage:polls"
	ChannelReadPredictions   Scope = "channel:read:predictions"
	ChannelManagePredictions Scope = "channel:manage:predictions"
	ChannelManageRaids       Scope = "channel:manage:raids"
	ChannelReadRedemptions   Scope = "channel:read:redemptions"
	ChannelManageRedemptions Scope = "channel:manage:redemptions"
	ChannelManageSchedule    Scope = "channel:manage:schedule"
	ChannelReadStreamKey     Scope = "channel:read:stream_key"
	ChannelReadSubscriptions Scope = "channel:read:subscriptions"
	ChannelManageVideos      Scope = "channel:manage:videos"
	ChannelReadVIPs          Scope = "channel:read:vips"
	ChannelManageVIPs        Scope = "channel:manage:vips"
	ChannelModerate          Scope = "channel:moderate"
	ClipsEdit                Scope = "clips:edit"
	ModerationRead           Scope = "moderation:read"
)

// Moderator scopes.
const (
	ModeratorManageAnnouncements   Scope = "moderator:manage:announcements"
	ModeratorManageAutomod         Scope = "moderator:manage:automod"
	ModeratorReadAutomodSettings   Scope = "moderator:read:automod_settings"
	ModeratorManageAutomodSettings Scope = "moderator:manage:automod_settings"
	ModeratorManageBannedUsers     Scope = "moderator:manage:banned_users"
	ModeratorReadBlockedTerms      Scope = "moderator:read:blocked_terms"
	ModeratorManageBlockedTerms    Scope = "moderator:manage:blocked_terms"
	ModeratorManageChatMessages    Scope = "moderator:manage:chat_messages"
	ModeratorReadChatSettings      Scope = "moderator:read:chat_settings"
	ModeratorManageChatSettings    Scope = "moderator:manage:chat_settings"
	ModeratorReadChatters          Scope = "moderator:read:chatters"
	ModeratorReadFollowers         Scope = "moderator:read:followers"
	ModeratorReadGuestStar         Scope = "moderator:read:guest_star"
	ModeratorManageGuestStar       Scope = "moderator:manage:guest_star"
	ModeratorReadShieldMode        Scope = "moderator:read:shield_mode"
	ModeratorManageShieldMode      Scope = "moderator:manage:shield_mode"
	ModeratorReadShoutouts         Scope = "moderator:read:shoutouts"
	ModeratorManageShoutouts       Scope = "moderator:manage:shoutouts"
	ModeratorReadUnbanRequests     Scope = "moderator:read:unban_requests"
	ModeratorManageUnbanRequests   Scope = "moderator:manage:unban_requests"
	ModeratorReadWarnings          Scope = "moderator:read:warnings"
	ModeratorManageWarnings        Scope = "moderator:manage:warnings"
)

// User scopes.
const (
	UserBot                   Scope = "user:bot"
	UserEdit                  Scope = "user:edit"
	UserEditBroadcast         Scope = "user:edit:broadcast"
	UserReadBlockedUsers      Scope = "user:read:blocked_users"
	UserManageBlockedUsers    Scope = "user:manage:blocked_users"
	UserReadBroadcast         Scope = "user:read:broadcast"
	UserReadChat              Scope = "user:read:chat"
	UserManageChatColor       Scope = "user:manage:chat_color"
	UserReadEmail             Scope = "user:read:email"
	UserReadEmotes            Scope = "user:read:emotes"
	UserReadFollows           Scope = "user:read:follows"
	UserReadModeratedChannels Scope = "user:read:moderated_channels"
	UserReadSubscriptions     Scope = "user:read:subscriptions"
	UserManageWhispers        Scope = "user:manage:whispers"
	UserReadWhispers          Scope = "user:read:whispers"
	UserWriteChat             Scope = "user:write:chat"
)

// Chat (IRC) scopes and OpenID.
const (
	ChatEdit     Scope = "chat:edit"
	ChatRead     Scope = "chat:read"
	WhispersRead Scope = "whispers:read"
	WhispersEdit Scope = "whispers:edit"
	OpenID       Scope = "openid"
)

// ErrUnknownScope is returned by ValidateAll for scopes outside the enumeration.
var ErrUnknownScope = errors.New("unknown scope")

var all = []Scope{
	AnalyticsReadExtensions, AnalyticsReadGames, BitsRead,
	ChannelBot, ChannelManageAds, ChannelReadAds, ChannelManageBroadcast,
	ChannelReadCharity, ChannelEditCommercial, ChannelReadEditors,
	ChannelManageExtensions, ChannelReadGoals, ChannelReadGuestStar,
	ChannelManageGuestStar, ChannelReadHypeTrain, ChannelManageModerators,
	ChannelReadPolls, ChannelManagePolls, ChannelReadPredictions,
	ChannelManagePredictions, ChannelManageRaids, ChannelReadRedemptions,
	ChannelManageRedemptions, ChannelManageSchedule, ChannelReadStreamKey,
	ChannelReadSubscriptions, ChannelManageVideos, ChannelReadVIPs,
	ChannelManageVIPs, ChannelModerate, ClipsEdit, ModerationRead,
	ModeratorManageAnnouncements, ModeratorManageAutomod,
	ModeratorReadAutomodSettings, ModeratorManageAutomodSettings,
	ModeratorManageBannedUsers,
	ModeratorReadBlockedTerms, ModeratorManageBlockedTerms,
	ModeratorManageChatMessages, ModeratorReadChatSettings,
	ModeratorManageChatSettings, ModeratorReadChatters, ModeratorReadFollowers,
	ModeratorReadGuestStar, ModeratorManageGuestStar, ModeratorReadShieldMode,
	ModeratorManageShieldMode, ModeratorReadShoutouts, ModeratorManageShoutouts,
	ModeratorReadUnbanRequests, ModeratorManageUnbanRequests,
	ModeratorReadWarnings, ModeratorManageWarnings,
	UserBot, UserEdit, UserEditBroadcast, UserReadBlockedUsers,
	UserManageBlockedUsers, UserReadBroadcast, UserReadChat,
	UserManageChatColor, UserReadEmail, UserReadEmotes, UserReadFollows,
	UserReadModeratedChannels, UserReadSubscriptions, UserManageWhispers,
	UserReadWhispers, UserWriteChat,
	ChatEdit, ChatRead, WhispersRead, WhispersEdit, OpenID,
}

var known = func() map[Scope]struct{} {
	m := make(map[Scope]struct{}, len(all))
	for _, s := range all {
		m[s] = struct{}{}
	}
	return m
}()

// All returns every known scope. The returned slice is a copy.
func All() []Scope {
	return slices.Clone(all)
}

// Known reports whether s is part of the enumeration.
func (s Scope) Known() bool {
	_, ok := known[s]
	return ok
}

// String implements fmt.Stringer.
func (s Scope) String() string {
	return string(s)
}

// Parse splits a space-separated scope string. Unknown scopes are kept.
func Parse(raw string) []Scope {
	return FromStrings(strings.Fields(raw))
}

// FromStrings converts raw strings to scopes, dropping empty entries.
func FromStrings(raw []string) []Scope {
	out := make([]Scope, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, Scope(r))
		}
	}
	return out
}

// Strings converts scopes to plain strings.
func Strings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}

// Join returns the space-separated form used in authorization URLs.
func Join(scopes []Scope) string {
	return strings.Join(Strings(scopes), " ")
}

// Contains reports whether set includes s.
func Contains(set []Scope, s Scope) bool {
	return slices.Contains(set, s)
}

// Missing returns the scopes in required that are not in granted, in the
// order they appear in required.
func Missing(granted, required []Scope) []Scope {
	var out []Scope
	for _, r := range required {
		if !Contains(granted, r) && !Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

// ValidateAll returns an error naming every unknown scope in scopes.
func ValidateAll(scopes []Scope) error {
	var unknown []string
	for _, s := range scopes {
		if !s.Known() {
			unknown = append(unknown, fmt.Sprintf("%q", string(s)))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownScope, strings.Join(unknown, ", "))
	}
	return nil
}
