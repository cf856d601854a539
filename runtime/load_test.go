package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_Loads_The_Embedded_Dictionaries(t *testing.T) {
	req := require.New(t)
	loader := NewCensoredLoader(censoredFS)

	// When the embedded directory is loaded
	data, err := loader.LoadAll("censored")

	// Then every language file contributes unique, non-empty words
	req.NoError(err)
	req.Contains(data.Languages, "en")
	req.NotEmpty(data.Words)
	for _, w := range data.Words {
		req.NotEmpty(w)
	}
}

func TestCensoredLoader_Rejects_A_Missing_Directory(t *testing.T) {
	req := require.New(t)
	loader := NewCensoredLoader(censoredFS)

	_, err := loader.LoadAll("does-not-exist")

	req.Error(err)
}

func TestLoadCensoredWords_Uses_The_Default_Dictionaries(t *testing.T) {
	req := require.New(t)

	data, err := LoadCensoredWords()

	req.NoError(err)
	req.NotEmpty(data.Words)
}
