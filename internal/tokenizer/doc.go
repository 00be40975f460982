// Package tokenizer turns text into token IDs and token IDs into feature rows,
// so that attention can be inspected on real text.
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, _ := tok.Encode("the cat sat")
//	x := tokenizer.Embed[float32](ids, 16)
package tokenizer
