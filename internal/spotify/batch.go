package spotify

import (
	"context"
	"fmt"
)

// MaxTracksPerRequest is Spotify's per-request item limit for playlist adds.
const MaxTracksPerRequest = 100

// chunkURIs splits uris into consecutive chunks of at most size, preserving
// order.
func chunkURIs(uris []string, size int) [][]string {
	if size <= 0 || len(uris) == 0 {
		return nil
	}

	chunks := make([][]string, 0, (len(uris)+size-1)/size)
	for start := 0; start < len(uris); start += size {
		end := start + size
		if end > len(uris) {
			end = len(uris)
		}
		chunks = append(chunks, uris[start:end])
	}
	return chunks
}

// AddTracks adds the given track URIs to a playlist in order, one chunk of
// at most [MaxTracksPerRequest] per call, strictly sequentially.
//
// It returns the number of items confirmed committed. On the first chunk
// failure it stops immediately, with no further chunks attempted; the
// returned count reports exactly how much of the mutation was applied.
func (c *Client) AddTracks(ctx context.Context, playlistID string, uris []string) (int, error) {
	committed := 0
	chunks := chunkURIs(uris, MaxTracksPerRequest)

	for i, chunk := range chunks {
		if err := c.addPlaylistItems(ctx, playlistID, chunk); err != nil {
			return committed, fmt.Errorf("chunk %d/%d failed after %d tracks committed: %w", i+1, len(chunks), committed, err)
		}
		committed += len(chunk)
	}

	return committed, nil
}
