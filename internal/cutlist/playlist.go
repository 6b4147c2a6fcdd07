package cutlist

import (
	"fmt"

	"github.com/grafov/m3u8"
)

// Part is one produced cut file, ready to be listed in a playlist.
type Part struct {
	// URI is the part's path or URL as the player should request it
	URI string

	// Duration is the part's length in seconds
	Duration float64
}

// Playlist builds a VOD media playlist of the produced parts. Any
// HLS-capable player can then audition the whole edit in sequence.
func Playlist(parts []Part) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("cannot build playlist with zero parts")
	}

	pl, err := m3u8.NewMediaPlaylist(0, uint(len(parts)))
	if err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}
	pl.MediaType = m3u8.VOD

	for _, part := range parts {
		if err := pl.Append(part.URI, part.Duration, ""); err != nil {
			return "", fmt.Errorf("failed to append %s: %w", part.URI, err)
		}
	}

	// Close marks the playlist complete (EXT-X-ENDLIST).
	pl.Close()

	return pl.Encode().String(), nil
}
