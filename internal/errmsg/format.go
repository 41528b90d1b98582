// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Session operations
	OpLogin   Op = "sign in"
	OpLogout  Op = "sign out"
	OpRefresh Op = "refresh session"

	// Sync operations
	OpSyncLibrary   Op = "sync library"
	OpSyncPlaylists Op = "sync playlists"

	// Library operations
	OpLibraryLoad    Op = "load library"
	OpSearchLibrary  Op = "search library"
	OpFavoriteToggle Op = "update favorites"
	OpFollowToggle   Op = "update followed artists"

	// Playlist operations
	OpPlaylistCreate  Op = "create playlist"
	OpPlaylistUpdate  Op = "update playlist"
	OpPlaylistDelete  Op = "delete playlist"
	OpPlaylistAdd     Op = "add song to playlist"
	OpPlaylistRemove  Op = "remove song from playlist"
	OpPlaylistReorder Op = "reorder playlist"

	// Queue operations
	OpQueueLoad Op = "restore queue"
	OpQueueSave Op = "save queue"
	OpQueueAdd  Op = "add to queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"

	// Lyrics
	OpLyricsLoad Op = "load lyrics"

	// Initialization
	OpInitialize Op = "initialize client"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
