package mention_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/oxygen/pkg/internal/mention"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "just words", nil},
		{"single", "look at @main.go", []string{"main.go"}},
		{"trailing punctuation", "compare @a.go, and @b.go?", []string{"a.go", "b.go"}},
		{"only one char stripped", "see @notes.md!!", []string{"notes.md!"}},
		{"bare at ignored", "mail me @ home", nil},
		{"at followed by symbol", "@! nothing", nil},
		{"not at word start", "foo@bar.go", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mention.Parse(tt.text))
		})
	}
}

func TestSuggest(t *testing.T) {
	files := []string{"Main.go", "main_test.go", "README.md", "makefile", "map.go", "mod.go", "mux.go"}

	assert.Equal(t, []string{"Main.go", "main_test.go"}, mention.Suggest("open @mai", files, 0))
	assert.Equal(t, []string{"README.md"}, mention.Suggest("@re", files, mention.DefaultSuggestLimit))
	assert.Len(t, mention.Suggest("@m", files, mention.DefaultSuggestLimit), mention.DefaultSuggestLimit)
	assert.Len(t, mention.Suggest("@", files, 0), len(files))
	assert.Nil(t, mention.Suggest("no mention", files, 0))
	assert.Nil(t, mention.Suggest("@mai ", files, 0))
	assert.Nil(t, mention.Suggest("", files, 0))
}

func TestComplete(t *testing.T) {
	assert.Equal(t, "explain @main.go", mention.Complete("explain @ma", "main.go"))
	assert.Equal(t, "@README.md", mention.Complete("@", "README.md"))
	assert.Equal(t, "no mention here", mention.Complete("no mention here", "x.go"))
	assert.Equal(t, "@a.go then @b.go", mention.Complete("@a.go then @b", "b.go"))
}
