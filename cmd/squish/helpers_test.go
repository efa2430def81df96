package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{10 * 1024 * 1024, "10.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5120.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.bytes))
	}
}

func TestShortUUID(t *testing.T) {
	assert.Equal(t, "0b1f2c3d", shortUUID("0b1f2c3d-9a8b-4c7d-8e9f-001122334455"))
	assert.Equal(t, "short", shortUUID("short"))
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"FILE", "SIZE"},
		[][]string{{"clip.mkv", "10.00 MB"}, {"other.mp4", "1.50 KB"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "clip.mkv")
	assert.Contains(t, out, "10.00 MB")
	assert.Equal(t, 6, len(strings.Split(out, "\n")), "header, two rows and borders")
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))
}
