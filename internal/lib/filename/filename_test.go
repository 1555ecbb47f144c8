package filename_test

import (
	"regexp"
	"testing"

	"floral_essence/internal/lib/filename"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed() string { return "123456" }

func TestGenerator_ForUpload(t *testing.T) {
	g := filename.NewWithSuffix(fixed)

	tests := []struct {
		name     string
		original string
		want     string
	}{
		{"plain", "rose.jpg", "rose-123456.jpg"},
		{"spaces and case", "Red Rose Bouquet.PNG", "red-rose-bouquet-123456.png"},
		{"vietnamese", "Bó hoa Đẹp.webp", "bo-hoa-dep-123456.webp"},
		{"only symbols", "###.gif", "image-123456.gif"},
		{"path is stripped", "../../etc/passwd.jpg", "passwd-123456.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.ForUpload(tt.original))
		})
	}
}

func TestGenerator_ForRename(t *testing.T) {
	g := filename.NewWithSuffix(fixed)

	t.Run("keeps old extension", func(t *testing.T) {
		got, err := g.ForRename("rose-111111.JPG", "Hoa hồng đỏ")
		require.NoError(t, err)
		assert.Equal(t, "hoa-hong-do-123456.JPG", got)
	})

	t.Run("empty after sanitizing", func(t *testing.T) {
		_, err := g.ForRename("rose.jpg", "  !!! ")
		assert.ErrorIs(t, err, filename.ErrEmptyName)
	})
}

func TestNew_SuffixIsSixDigits(t *testing.T) {
	g, err := filename.New()
	require.NoError(t, err)

	re := regexp.MustCompile(`^rose-[0-9]{6}\.jpg$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, re, g.ForUpload("rose.jpg"))
	}
}
