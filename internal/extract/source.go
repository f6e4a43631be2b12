// Package extract recovers canonical transaction records from the two
// supported statement sources: tabular rows pulled out of PDF statements,
// and free-text SMS notifications.
package extract

import (
	"github.com/example/mpesa-tools/pkg/transaction"
)

// Source produces canonical transaction records from some input already
// held in memory. Malformed individual rows or messages are dropped, not
// surfaced as errors; classification and rendering are written against
// this interface only.
type Source interface {
	Transactions() transaction.List
}

var (
	_ Source = (*TableSource)(nil)
	_ Source = (*SMSSource)(nil)
)
