// Package matching implements the candidate matcher: a pure ranking of
// open payables against one observed transaction, using amount-tolerance
// and date-window rules. It performs no I/O; callers supply the payable
// pool and a Policy.
package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evozago/financeiro/internal/models"
)

// Match is one ranked candidate. Score is the absolute distance in days
// between the transaction date and the payable's due date (zero when the
// transaction has no recognized date).
type Match struct {
	Payable models.Payable `json:"payable"`
	Score   int            `json:"score"`
	TextHit bool           `json:"text_hit"`
}

// FindCandidates returns the payables plausibly settled by the given
// transaction, ranked best first.
//
// A payable is a candidate when its status is allowed by the policy, its
// original amount lies within |amount|×(1±tolerance) inclusive, and its
// due date lies within ±window days of the transaction date (skipped when
// the transaction has no date). Candidates are ordered by ascending date
// distance, ties broken by due date then ID; if the transaction carries
// free text whose tokens hit a supplier name, the first such hit is moved
// ahead of the date-ranked list.
func FindCandidates(txn *models.Transaction, openPayables []models.Payable, policy Policy) []Match {
	if txn == nil || txn.Amount == nil {
		return nil
	}

	amount := txn.Amount.Abs()
	if amount.IsZero() {
		return nil
	}

	one := decimal.NewFromInt(1)
	min := amount.Mul(one.Sub(policy.Tolerance))
	max := amount.Mul(one.Add(policy.Tolerance))
	tokens := textTokens(txn)

	var matches []Match
	for _, p := range openPayables {
		if !policy.allows(p.Status) {
			continue
		}
		if p.OriginalAmount.LessThan(min) || p.OriginalAmount.GreaterThan(max) {
			continue
		}

		distance := 0
		if txn.Date != nil {
			distance = dayDistance(*txn.Date, p.DueDate)
			if distance > policy.WindowDays {
				continue
			}
		}

		matches = append(matches, Match{
			Payable: p,
			Score:   distance,
			TextHit: supplierNameHit(&p, tokens),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score < matches[j].Score
		}
		if !matches[i].Payable.DueDate.Equal(matches[j].Payable.DueDate) {
			return matches[i].Payable.DueDate.Before(matches[j].Payable.DueDate)
		}
		return matches[i].Payable.ID < matches[j].Payable.ID
	})

	// A text hit outranks the date ordering outright. Only the first hit
	// is promoted; it is not scored further.
	for i := range matches {
		if matches[i].TextHit {
			hit := matches[i]
			copy(matches[1:i+1], matches[:i])
			matches[0] = hit
			break
		}
	}

	if policy.MaxResults > 0 && len(matches) > policy.MaxResults {
		matches = matches[:policy.MaxResults]
	}
	return matches
}

// textTokens extracts the words usable for supplier-name matching from the
// transaction's free text. Tokens of 3 characters or fewer are too weak a
// signal and are dropped.
func textTokens(txn *models.Transaction) []string {
	raw := strings.Fields(strings.ToUpper(txn.Memo + " " + txn.PayerText))
	var tokens []string
	for _, w := range raw {
		if len(w) > 3 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func supplierNameHit(p *models.Payable, tokens []string) bool {
	if p.Supplier == nil || len(tokens) == 0 {
		return false
	}
	name := strings.ToUpper(p.Supplier.LegalName)
	for _, token := range tokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}

func dayDistance(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(ad.Sub(bd).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
