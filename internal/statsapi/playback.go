package statsapi

import "strings"

// preferredBitrates orders mp4 variant labels from best to worst. Upstream
// names look like "FLASH_2500K_1280X720" or "mp4Avc".
var preferredBitrates = []string{"2500k", "1800k", "1200k", "800k", "450k"}

// SelectPlayback picks the playback variant to hand to the renderer:
// a specific mp4 encoding over a streaming manifest, higher nominal bitrate
// first, then any mp4, then whatever is available. Returns false when the
// highlight has no variants at all.
func SelectPlayback(playbacks []Playback) (Playback, bool) {
	if len(playbacks) == 0 {
		return Playback{}, false
	}

	for _, bitrate := range preferredBitrates {
		for _, pb := range playbacks {
			if !isMP4(pb) {
				continue
			}
			if strings.Contains(strings.ToLower(pb.Name), bitrate) ||
				strings.Contains(strings.ToLower(pb.URL), bitrate) {
				return pb, true
			}
		}
	}

	for _, pb := range playbacks {
		if isMP4(pb) {
			return pb, true
		}
	}
	return playbacks[0], true
}

func isMP4(pb Playback) bool {
	name := strings.ToLower(pb.Name)
	url := strings.ToLower(pb.URL)
	if strings.Contains(url, ".m3u8") || strings.Contains(name, "hls") {
		return false
	}
	return strings.Contains(name, "mp4") || strings.Contains(url, ".mp4") || strings.Contains(name, "flash")
}
