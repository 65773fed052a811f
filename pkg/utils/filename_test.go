package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"face.jpg", "face.jpg"},
		{"../../etc/passwd", "passwd"},
		{"dir/sub/face.png", "face.png"},
		{"win\\path\\face.png", "face.png"},
		{"fa<ce>:?.jpg", "face.jpg"},
		{"  spaced.png  ", "spaced.png"},
		{"nul\x00byte.gif", "nulbyte.gif"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestArchiveFilename(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	assert.Equal(t, "DownSyndrome_20250314_092653_alice.png",
		ArchiveFilename("Down Syndrome", ts, "alice", "png"))
	assert.Equal(t, "Normal_20250314_092653_bob.jpg",
		ArchiveFilename("Normal", ts, "bob", "jpg"))
	// Missing extension defaults to jpg.
	assert.Equal(t, "Normal_20250314_092653_bob.jpg",
		ArchiveFilename("Normal", ts, "bob", ""))
}
