package cache

import (
	"fmt"
	"strings"
)

// Cache key construction lives in one place so the naming scheme cannot drift
// between the services that populate keys and the ones that delete them.
//
// Two kinds of keys exist:
//
//   - versioned keys (eventID::version::artifact) that become unreachable in
//     bulk when the event version is bumped, and
//   - fixed aux keys (per-photo URLs and metadata, per-event timeline,
//     per-user event list) that mutating services must delete individually.

// Artifact names under the versioned namespace.
const (
	ArtifactStats          = "stats"
	ArtifactPhotos         = "photos:all"
	ArtifactApprovedPhotos = "photos:approved"
	ArtifactPendingPhotos  = "photos:pending"
)

func eventVersionKey(eventID uint) string {
	return fmt.Sprintf("event:%d:version", eventID)
}

func PhotoMetaKey(photoID uint) string {
	return fmt.Sprintf("photo:%d:meta", photoID)
}

func PhotoURLKey(photoID uint) string {
	return fmt.Sprintf("photo:%d:url", photoID)
}

func PhotoThumbURLKey(photoID uint) string {
	return fmt.Sprintf("photo:%d:thumb:url", photoID)
}

func EventTimelineKey(eventID uint) string {
	return fmt.Sprintf("event:%d:timeline", eventID)
}

func UserEventsKey(userID uint) string {
	return fmt.Sprintf("user:%d:events", userID)
}

// EventByCodeKey is namespaced by the normalized code so lookups with any
// casing or stray whitespace land on the same entry.
func EventByCodeKey(code string) string {
	return "event:code:" + strings.ToUpper(strings.TrimSpace(code))
}
