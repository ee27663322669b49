package ledger

import "strings"

// DefaultPaymentVocabulary is the stock list of payment markers. It is data,
// not code: institutions with unusual payment descriptors get an extended
// copy at construction time without touching cycle logic.
var DefaultPaymentVocabulary = []string{
	"payment",
	"pymt",
	"autopay",
	"ach payment",
	"online payment",
	"mobile payment",
	"phone payment",
	"web payment",
	"bank payment",
	"electronic payment",
}

// Classifier decides whether a ledger entry is a payment/credit (excluded
// from spend) based on its name. It is a heuristic: false negatives inflate
// spend, false positives (a merchant name containing "payment") suppress it.
type Classifier struct {
	vocabulary []string
}

// NewClassifier creates a classifier with the default vocabulary plus any
// institution-specific extensions.
func NewClassifier(extra ...string) *Classifier {
	vocab := make([]string, 0, len(DefaultPaymentVocabulary)+len(extra))
	for _, term := range DefaultPaymentVocabulary {
		vocab = append(vocab, strings.ToLower(term))
	}
	for _, term := range extra {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			vocab = append(vocab, term)
		}
	}
	return &Classifier{vocabulary: vocab}
}

// IsPayment reports whether the entry name matches the payment vocabulary.
// Case-insensitive substring match; pure and total.
func (c *Classifier) IsPayment(name string) bool {
	if name == "" {
		return false
	}
	lowered := strings.ToLower(name)
	for _, term := range c.vocabulary {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// Vocabulary returns a copy of the active vocabulary.
func (c *Classifier) Vocabulary() []string {
	out := make([]string, len(c.vocabulary))
	copy(out, c.vocabulary)
	return out
}
