package cartstore

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// record is the persisted form of a CartLine.
type record struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Amount   int     `json:"amount"`
}

// Encode serializes a cart as a compact JSON array in cart order. An empty
// cart encodes as "[]". Strings are written without HTML or line separator
// escapes, so Encode(Decode(s)) == s for any compact persisted cart.
func Encode(c Cart) (string, error) {
	records := make([]record, 0, len(c.lines))
	for _, l := range c.lines {
		records = append(records, record{
			ID:       l.ProductID,
			Title:    l.Title,
			Price:    l.Price,
			ImageURL: l.ImageURL,
			Amount:   l.Amount,
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return "", errors.Wrap(err, "cartstore: encode cart")
	}
	return string(unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into the raw runes.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		// any other escape is copied as a pair so an escaped backslash is
		// never read as the start of a new escape
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// Decode parses a string produced by Encode. It fails on invalid JSON, a
// top level other than an array, duplicate product ids and amounts below one.
func Decode(s string) (Cart, error) {
	var records []record
	if err := json.Unmarshal([]byte(s), &records); err != nil {
		return Cart{}, errors.Wrap(err, "cartstore: decode cart")
	}
	if records == nil {
		return Cart{}, errors.New("cartstore: decode cart: not a JSON array")
	}

	lines := make([]CartLine, 0, len(records))
	for _, r := range records {
		lines = append(lines, CartLine{
			ProductID: r.ID,
			Title:     r.Title,
			ImageURL:  r.ImageURL,
			Price:     r.Price,
			Amount:    r.Amount,
		})
	}
	return NewCart(lines...)
}
