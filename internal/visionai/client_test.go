package visionai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "чистый JSON без обрамления",
			content: `{"disease_detected": true}`,
			want:    `{"disease_detected": true}`,
		},
		{
			name:    "обрамление json",
			content: "```json\n{\"disease_detected\": true}\n```",
			want:    `{"disease_detected": true}`,
		},
		{
			name:    "обрамление без языка",
			content: "```\n{\"disease_detected\": false}\n```",
			want:    `{"disease_detected": false}`,
		},
		{
			name:    "пробелы вокруг ответа",
			content: "  \n{\"severity\": \"mild\"}\n  ",
			want:    `{"severity": "mild"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripJSONFences(tt.content))
		})
	}
}
