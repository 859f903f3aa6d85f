package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cdn.staplewise.com/staplewise-images/1700000000000-w320.jpg", "1700000000000-w320.jpg"},
		{"https://cdn.staplewise.com/staplewise-images/1700-my%20photo.jpg", "1700-my photo.jpg"},
		{"https://cdn.staplewise.com/staplewise-images/1700-a%2Fb.jpg", "1700-a/b.jpg"},
		{"https://cdn.staplewise.com/staplewise-images/1700-x.jpg?X-Amz-Expires=60", "1700-x.jpg"},
		{"http://localhost:9000/staplewise-images/1700-x.jpg/", "1700-x.jpg"},
	}
	for _, tt := range tests {
		got, err := ObjectName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ObjectName("https://cdn.staplewise.com/")
	assert.ErrorIs(t, err, ErrNoObjectName)
}

func TestURLRewriter(t *testing.T) {
	r := NewURLRewriter("http://10.0.0.5:9000", "10.0.0.5", "https://storage.staplewise.com/")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"legacy base prefix", "http://10.0.0.5:9000/staplewise-images/a.jpg", "https://storage.staplewise.com/staplewise-images/a.jpg"},
		{"legacy host on other port", "http://10.0.0.5:9001/staplewise-images/a.jpg", "https://storage.staplewise.com/staplewise-images/a.jpg"},
		{"already canonical", "https://storage.staplewise.com/staplewise-images/a.jpg", "https://storage.staplewise.com/staplewise-images/a.jpg"},
		{"third party", "https://images.pexels.com/photos/1.jpeg", "https://images.pexels.com/photos/1.jpeg"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Rewrite(tt.in))
		})
	}
}

func TestURLRewriterDisabled(t *testing.T) {
	r := NewURLRewriter("", "", "https://storage.staplewise.com")
	in := "http://10.0.0.5:9000/staplewise-images/a.jpg"
	assert.Equal(t, in, r.Rewrite(in))
}
