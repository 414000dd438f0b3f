package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantSlot int
		wantErr  bool
	}{
		{name: "builtin correct", input: "correct", wantKind: Builtin},
		{name: "builtin translate", input: "translate", wantKind: Builtin},
		{name: "help", input: "help", wantKind: Help},
		{name: "snippet search", input: "snippet_search", wantKind: SnippetSearch},
		{name: "snippet slot 1", input: "snippet_1", wantKind: SnippetSlot, wantSlot: 1},
		{name: "snippet slot 9", input: "snippet_9", wantKind: SnippetSlot, wantSlot: 9},
		{name: "snippet slot 0", input: "snippet_0", wantErr: true},
		{name: "snippet slot 10", input: "snippet_10", wantErr: true},
		{name: "snippet slot garbage", input: "snippet_x", wantErr: true},
		{name: "custom slug", input: "summarize_fr", wantKind: Custom},
		{name: "custom uppercase", input: "Summarize", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, a.Kind)
			assert.Equal(t, tt.wantSlot, a.Slot)
			assert.Equal(t, tt.input, a.Name())
		})
	}
}

func TestIsTransform(t *testing.T) {
	assert.True(t, MustParse("correct").IsTransform())
	assert.True(t, MustParse("my_prompt").IsTransform())
	assert.False(t, MustParse("help").IsTransform())
	assert.False(t, MustParse("snippet_search").IsTransform())
	assert.False(t, ForSlot(3).IsTransform())
}

func TestValidateCustomID(t *testing.T) {
	assert.NoError(t, ValidateCustomID("email-reply"))
	assert.Error(t, ValidateCustomID("help"))
	assert.Error(t, ValidateCustomID("snippet_search"))
	assert.Error(t, ValidateCustomID("snippet_custom"))
	assert.Error(t, ValidateCustomID("has space"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "email_reply", Slugify("  Email Reply! "))
	assert.Equal(t, "r_sum", Slugify("Résumé"))
	assert.Equal(t, "", Slugify("!!!"))
}
