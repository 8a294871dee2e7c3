package hportfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/etnz/hportfolio/date"
	"github.com/shopspring/decimal"
)

// ErrInvalidJournal is returned when a journal file cannot be understood.
var ErrInvalidJournal = errors.New("invalid journal")

// jsonJournal is the on-disk shape of a journal file.
type jsonJournal struct {
	Currency   string `json:"currency,omitempty"`
	Operations struct {
		Deposit map[date.Date]decimal.Decimal `json:"deposit"`
	} `json:"operations"`
	// Status holds the dated snapshots and the special "last" one.
	Status         map[string]jsonSnapshot    `json:"status"`
	ForceCostBasis map[string]json.RawMessage `json:"force_cost_basis,omitempty"`
}

type jsonSnapshot struct {
	Date   *date.Date  `json:"date,omitempty"`
	Stocks Composition `json:"stocks"`
}

const latestKey = "last"

// ReadJournal decodes the journal file at path.
func ReadJournal(path string) (*Journal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	j, err := DecodeJournal(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return j, nil
}

// DecodeJournal decodes a journal from its json form.
func DecodeJournal(r io.Reader) (*Journal, error) {
	var in jsonJournal
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJournal, err)
	}

	j := NewJournal(in.Currency)
	// map iteration is random, Deposits.Append keeps the ledger sorted.
	for on, amount := range in.Operations.Deposit {
		j.Deposit(on, M(amount, j.Currency))
	}

	latest, ok := in.Status[latestKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q status", ErrInvalidJournal, latestKey)
	}
	var latestOn date.Date
	if latest.Date != nil {
		latestOn = *latest.Date
	}
	j.SetLatest(latestOn, nonNil(latest.Stocks))

	for key, snap := range in.Status {
		if key == latestKey {
			continue
		}
		on, err := date.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("%w: status key: %w", ErrInvalidJournal, err)
		}
		j.Snapshot(on, nonNil(snap.Stocks))
	}

	for ticker, raw := range in.ForceCostBasis {
		cost, err := decodeForcedCost(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: force_cost_basis %q: %w", ErrInvalidJournal, ticker, err)
		}
		j.ForceCostBasis(ticker, M(cost, j.Currency))
	}
	return j, nil
}

// decodeForcedCost accepts either a bare number or a list whose second
// element is the cost (the first one being free for the user's notes).
func decodeForcedCost(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return decimal.Zero, err
		}
		if len(list) < 2 {
			return decimal.Zero, fmt.Errorf("want [note, cost] got %d element(s)", len(list))
		}
		raw = list[1]
	}
	var cost decimal.Decimal
	if err := json.Unmarshal(raw, &cost); err != nil {
		return decimal.Zero, err
	}
	return cost, nil
}

func nonNil(c Composition) Composition {
	if c == nil {
		return make(Composition)
	}
	return c
}

// EncodeJournal writes the journal in its json form.
func EncodeJournal(w io.Writer, j *Journal) error {
	var out jsonJournal
	out.Currency = j.Currency
	out.Operations.Deposit = make(map[date.Date]decimal.Decimal, j.Deposits.Len())
	for on, amount := range j.Deposits.Values() {
		out.Operations.Deposit[on] = amount.Decimal()
	}
	out.Status = make(map[string]jsonSnapshot, len(j.Snapshots)+1)
	latest := jsonSnapshot{Stocks: j.Latest}
	if !j.LatestOn.IsZero() {
		on := j.LatestOn
		latest.Date = &on
	}
	out.Status[latestKey] = latest
	for on, c := range j.Snapshots {
		out.Status[on.String()] = jsonSnapshot{Stocks: c}
	}
	if len(j.ForcedCostBasis) > 0 {
		out.ForceCostBasis = make(map[string]json.RawMessage, len(j.ForcedCostBasis))
		for ticker, cost := range j.ForcedCostBasis {
			data, err := cost.MarshalJSON()
			if err != nil {
				return err
			}
			out.ForceCostBasis[ticker] = data
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
