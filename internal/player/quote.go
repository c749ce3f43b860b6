package player

import "context"

// QuoteNotFound is the answer for an index that has no quote.
const QuoteNotFound = "*The requested quote was not found*"

var quotes = map[int]string{
	1:  "Take small steps - use the ladder, not the vaulting pole. - Henrik Bærbak Christensen",
	7:  "The true sign of intelligence is not knowledge but imagination. - Albert Einstein",
	13: "Education is what remains after one has forgotten what one has learned in school. - Albert Einstein",
}

// Quote returns quote number index as "<quote> - <author>".
func (s *Servant) Quote(_ context.Context, index int) (string, error) {
	q, ok := quotes[index]
	if !ok {
		return QuoteNotFound, nil
	}
	return q, nil
}
