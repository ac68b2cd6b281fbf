package app

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "holiday", "holiday"},
		{"uppercase folded", "MyVideo", "myvideo"},
		{"spaces become hyphens", "my summer video", "my-summer-video"},
		{"diacritics stripped", "Mon Vidéo Préféré", "mon-video-prefere"},
		{"punctuation runs collapse", "a--b__c!!d", "a-b-c-d"},
		{"leading and trailing junk trimmed", "  --hello--  ", "hello"},
		{"digits kept", "clip 2024 v2", "clip-2024-v2"},
		{"all non ascii", "映画予告編", ""},
		{"emoji only", "🎬🎬🎬", ""},
		{"empty", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Slugify(c.in))
		})
	}
}

func TestNewUploadID_SlugPlusSuffix(t *testing.T) {
	id := newUploadID("Mon Vidéo.mp4")

	assert.True(t, strings.HasPrefix(id, "mon-video-"))
	assert.Regexp(t, regexp.MustCompile(`^mon-video-[0-9a-z]{6}$`), id)
}

func TestNewUploadID_StripsExtensionBeforeSlugging(t *testing.T) {
	id := newUploadID("archive.tar.MP4")

	// only the final extension is dropped
	assert.True(t, strings.HasPrefix(id, "archive-tar-"))
}

func TestNewUploadID_FallsBackToSuffixAlone(t *testing.T) {
	id := newUploadID("映画.mp4")

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-z]{6}$`), id)
}

func TestNewUploadID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := newUploadID("clip.mp4")
		assert.False(t, seen[id])
		seen[id] = true
	}
}
