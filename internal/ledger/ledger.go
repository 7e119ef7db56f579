// Package ledger derives cylinder stock positions from sale and purchase
// records. Everything here is a pure projection over already-fetched rows:
// idempotent, order-independent, and free of persistence so the same inputs
// always reduce to the same totals.
package ledger

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Qty is a permissively parsed quantity. Records from older exports carry
// quantities as numbers, numeric strings, or garbage; anything that is not a
// number decodes to 0 rather than failing the whole document.
type Qty int64

func (q *Qty) UnmarshalJSON(b []byte) error {
	*q = Qty(ParseQty(string(bytes.Trim(bytes.TrimSpace(b), `"`))))
	return nil
}

// ParseQty converts an arbitrary scalar to an int64 quantity, defaulting to 0.
func ParseQty(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0
			}
			return int64(f)
		}
		return n
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == "null" {
			return 0
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
		return 0
	default:
		return 0
	}
}

// Line is one product movement: quantity supplied out and received back.
type Line struct {
	ProductName string `json:"productName"`
	SupplyQty   Qty    `json:"supplyQty"`
	ReceivedQty Qty    `json:"receivedQty"`
}

// Entry is a sale or purchase record. Multi-product invoices carry their
// lines in Products; single-product records use the embedded Line directly.
type Entry struct {
	Line
	InvoiceNo   string `json:"invoiceNo"`
	Date        string `json:"date"`
	AccountName string `json:"accountName,omitempty"`
	Products    []Line `json:"products,omitempty"`
}

// Lines flattens an entry to its product lines, preferring the nested array
// when present. Lines without a usable product name are dropped.
func (e Entry) Lines() []Line {
	src := e.Products
	if len(src) == 0 {
		src = []Line{e.Line}
	}
	out := make([]Line, 0, len(src))
	for _, l := range src {
		if skipName(l.ProductName) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func skipName(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, "N/A")
}

// Opening seeds the two pools from a product's opening stock.
type Opening struct {
	Full  int64
	Empty int64
}

// Position is the running product ledger state. A purchase receives full
// cylinders and returns empties to the supplier; a sale supplies full
// cylinders and takes empties back from the customer.
type Position struct {
	Opening        Opening
	FilledReceived int64
	FilledSupplied int64
	EmptyReceived  int64
	EmptySupplied  int64
}

// Filled is the closing full-cylinder count: opening + received − supplied.
func (p Position) Filled() int64 {
	return p.Opening.Full + p.FilledReceived - p.FilledSupplied
}

// Empty is the closing empty-cylinder count.
func (p Position) Empty() int64 {
	return p.Opening.Empty + p.EmptyReceived - p.EmptySupplied
}

// ProductLedger reduces the purchase and sale entries touching the named
// product into a Position. Entries for other products are ignored, so the
// full record set for a period can be passed as-is.
func ProductLedger(product string, opening Opening, purchases, sales []Entry) Position {
	pos := Position{Opening: opening}
	for _, e := range purchases {
		for _, l := range e.Lines() {
			if !strings.EqualFold(l.ProductName, product) {
				continue
			}
			pos.FilledReceived += int64(l.ReceivedQty)
			pos.EmptySupplied += int64(l.SupplyQty)
		}
	}
	for _, e := range sales {
		for _, l := range e.Lines() {
			if !strings.EqualFold(l.ProductName, product) {
				continue
			}
			pos.FilledSupplied += int64(l.SupplyQty)
			pos.EmptyReceived += int64(l.ReceivedQty)
		}
	}
	return pos
}

// Net is a customer's signed balance for one product.
type Net struct {
	ProductName string `json:"productName"`
	Supplied    int64  `json:"supplied"`
	Received    int64  `json:"received"`
}

// Balance is supplied − received: positive when the customer still holds
// cylinders, negative when they over-returned.
func (n Net) Balance() int64 {
	return n.Supplied - n.Received
}

// CustomerStock accumulates a customer's sales into per-product nets. The
// caller passes only that customer's sales; single- and multi-product shapes
// are handled uniformly through Lines. Results are sorted by product name
// for stable output.
func CustomerStock(sales []Entry) []Net {
	byProduct := make(map[string]*Net)
	var order []string
	for _, e := range sales {
		for _, l := range e.Lines() {
			key := strings.ToLower(strings.TrimSpace(l.ProductName))
			n, ok := byProduct[key]
			if !ok {
				n = &Net{ProductName: strings.TrimSpace(l.ProductName)}
				byProduct[key] = n
				order = append(order, key)
			}
			n.Supplied += int64(l.SupplyQty)
			n.Received += int64(l.ReceivedQty)
		}
	}
	sort.Strings(order)
	out := make([]Net, 0, len(order))
	for _, key := range order {
		out = append(out, *byProduct[key])
	}
	return out
}

// Movement is one row of a product's stock movement timeline.
type Movement struct {
	Date          string `json:"date"`
	Source        string `json:"source"`
	InvoiceNo     string `json:"invoiceNo"`
	AccountName   string `json:"accountName,omitempty"`
	FilledIn      int64  `json:"filledIn"`
	FilledOut     int64  `json:"filledOut"`
	EmptyIn       int64  `json:"emptyIn"`
	EmptyOut      int64  `json:"emptyOut"`
	FilledBalance int64  `json:"filledBalance"`
	EmptyBalance  int64  `json:"emptyBalance"`
}

// MovementSource labels for Movement.Source.
const (
	SourcePurchase = "purchase"
	SourceSale     = "sale"
)

// Movements builds the date-ordered timeline for one product with running
// balances seeded from the opening stock. Ties on date keep purchases before
// sales, matching how closing totals are reported.
func Movements(product string, opening Opening, purchases, sales []Entry) []Movement {
	var rows []Movement
	for _, e := range purchases {
		for _, l := range e.Lines() {
			if !strings.EqualFold(l.ProductName, product) {
				continue
			}
			rows = append(rows, Movement{
				Date:        e.Date,
				Source:      SourcePurchase,
				InvoiceNo:   e.InvoiceNo,
				AccountName: e.AccountName,
				FilledIn:    int64(l.ReceivedQty),
				EmptyOut:    int64(l.SupplyQty),
			})
		}
	}
	for _, e := range sales {
		for _, l := range e.Lines() {
			if !strings.EqualFold(l.ProductName, product) {
				continue
			}
			rows = append(rows, Movement{
				Date:        e.Date,
				Source:      SourceSale,
				InvoiceNo:   e.InvoiceNo,
				AccountName: e.AccountName,
				FilledOut:   int64(l.SupplyQty),
				EmptyIn:     int64(l.ReceivedQty),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Source == SourcePurchase && rows[j].Source == SourceSale
	})

	filled, empty := opening.Full, opening.Empty
	for i := range rows {
		filled += rows[i].FilledIn - rows[i].FilledOut
		empty += rows[i].EmptyIn - rows[i].EmptyOut
		rows[i].FilledBalance = filled
		rows[i].EmptyBalance = empty
	}
	return rows
}
