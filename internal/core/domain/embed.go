package domain

import "regexp"

var (
	youtubePattern   = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\s]+)`)
	vimeoPattern     = regexp.MustCompile(`vimeo\.com/(\d+)`)
	driveFilePattern = regexp.MustCompile(`drive\.google\.com/file/d/([^/]+)`)
	driveOpenPattern = regexp.MustCompile(`drive\.google\.com/open\?id=([^&]+)`)
	directPattern    = regexp.MustCompile(`(?i)\.(mp4|webm|ogg)$`)
)

// EmbedURL converts a video link into a player URL. It returns "" for links
// that cannot be previewed.
func EmbedURL(url string) string {
	if url == "" {
		return ""
	}
	if m := youtubePattern.FindStringSubmatch(url); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := vimeoPattern.FindStringSubmatch(url); m != nil {
		return "https://player.vimeo.com/video/" + m[1]
	}
	if m := driveFilePattern.FindStringSubmatch(url); m != nil {
		return "https://drive.google.com/file/d/" + m[1] + "/preview"
	}
	if m := driveOpenPattern.FindStringSubmatch(url); m != nil {
		return "https://drive.google.com/file/d/" + m[1] + "/preview"
	}
	if directPattern.MatchString(url) {
		return url
	}
	return ""
}
