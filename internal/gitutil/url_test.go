package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePullRequestURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantID    int
		wantErr   bool
	}{
		{
			name:      "Valid HTTPS URL",
			url:       "https://github.com/sevigo/code-council/pull/123",
			wantOwner: "sevigo",
			wantRepo:  "code-council",
			wantID:    123,
			wantErr:   false,
		},
		{
			name:      "Valid URL without scheme",
			url:       "github.com/sevigo/code-council/pull/456",
			wantOwner: "sevigo",
			wantRepo:  "code-council",
			wantID:    456,
			wantErr:   false,
		},
		{
			name:      "URL with trailing slash",
			url:       "https://github.com/sevigo/code-council/pull/789/",
			wantOwner: "sevigo",
			wantRepo:  "code-council",
			wantID:    789,
			wantErr:   false,
		},
		{
			name:    "Invalid PR ID",
			url:     "https://github.com/sevigo/code-council/pull/abc",
			wantErr: true,
		},
		{
			name:    "Invalid format (missing pull)",
			url:     "https://github.com/sevigo/code-council/issues/123",
			wantErr: true,
		},
		{
			name:      "Files tab",
			url:       "https://github.com/sevigo/code-council/pull/123/files",
			wantOwner: "sevigo",
			wantRepo:  "code-council",
			wantID:    123,
		},
		{
			name:      "Short form",
			url:       "sevigo/code-council#42",
			wantOwner: "sevigo",
			wantRepo:  "code-council",
			wantID:    42,
		},
		{
			name:    "Zero PR number",
			url:     "sevigo/code-council#0",
			wantErr: true,
		},
		{
			name:    "Invalid format (too many segments)",
			url:     "https://github.com/sevigo/code-council/pull/123/files/abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, id, err := ParsePullRequestURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantOwner, owner)
				assert.Equal(t, tt.wantRepo, repo)
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}
