package tokenizer

// Tokenizer converts text to token IDs and back.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// Name returns the encoding name.
	Name() string
}

// Pieces decodes each token on its own, giving one display label per token.
func Pieces(tok Tokenizer, tokens []int32) ([]string, error) {
	pieces := make([]string, len(tokens))
	for i, id := range tokens {
		s, err := tok.Decode([]int32{id})
		if err != nil {
			return nil, err
		}
		pieces[i] = s
	}
	return pieces, nil
}
