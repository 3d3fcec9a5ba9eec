// Package compositor renders hero/overlay pairs into deliverable creatives.
//
// The static path composites a still overlay onto a normalized hero image and
// writes a PNG. The video path builds an ffmpeg filter graph that loops an
// alpha-channel overlay over the hero and encodes an H.264 MP4 with fixed
// encode settings. Both paths write through a temp sibling and rename into
// place so interrupted renders never leave partial deliverables behind.
package compositor
