package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/mpesa-tools/internal/normalize"
	"github.com/example/mpesa-tools/pkg/transaction"
)

// smsPattern pairs a message pattern with the direction of the record it
// produces. Patterns are tried in order; the first match wins.
type smsPattern struct {
	re       *regexp.Regexp
	outbound bool
}

var smsPatterns = []smsPattern{
	// Outbound transfer: sent to / paid to / bought / transfered to,
	// optional transaction cost.
	{
		re: regexp.MustCompile(`(?i)(?P<receipt_number>[A-Z0-9]{8,10})\s+Confirmed\.?\s*(?:(?P<buy_action>You bought)\s+)?Ksh(?P<amount>[\d,.]+)\s+(?P<details>(?P<action>sent to|paid to|of|transfered to)\s+(?P<name>.+?)(?: (?P<phone>\d{10})| for account (?P<account>.+?))?) on (?P<date>\d{1,2}/\d{1,2}/\d{2,4}) at (?P<time>\d{1,2}:\d{2} [AP]M)\.?[ \t]*(?:New\s+)?M-PESA balance is Ksh(?P<balance>[\d,.]+)\.(?:\s*Transaction cost, Ksh(?P<charge>[\d,.]+)\.?)?`),
		outbound: true,
	},
	// Agent withdrawal, mandatory transaction cost.
	{
		re: regexp.MustCompile(`(?i)(?P<receipt_number>[A-Z0-9]+)\s+Confirmed\.on\s+(?P<date>\d{1,2}/\d{1,2}/\d{2})\s+at\s+(?P<time>\d{1,2}:\d{2}\s+[APM]{2})Withdraw\s+Ksh(?P<amount>[\d,]+\.\d{2})\s+from\s+(?P<details>.*?)\s+New M-PESA balance is Ksh(?P<balance>[\d,]+\.\d{2})\.\s+Transaction cost,\s+Ksh(?P<charge>[\d,]+\.\d{2})`),
		outbound: true,
	},
	// Inbound transfer, optional M-Shwari secondary balance.
	{
		re: regexp.MustCompile(`(?i)(?P<receipt_number>[A-Z0-9]{10})\s+Confirmed\.?\s*(?:You have received\s+)?Ksh(?P<amount>[\d,.]+)\s+(?P<details>(?P<action>transferred from|from)\s+(?P<sender_source>.+?)(?:\s+in\s+(?P<location>[A-Z]{2,3}))?(?:\s+via\s+(?P<method>[\w\s]+?))?)\s+on\s+(?P<date>\d{1,2}/\d{1,2}/\d{2,4})\s+at\s+(?P<time>\d{1,2}:\d{2}\s+[AP]M)\.?(?:\s*M-Shwari balance is Ksh(?P<mshwari_balance>[\d,.]+)\s*\.?)?\s*(?:New\s+)?M-PESA balance is Ksh(?P<balance>[\d,.]+)\.?(?:\s*Transaction cost\s+Ksh\.?(?P<charge>[\d,.]+))?`),
		outbound: false,
	},
	// Cash deposit given to an agent.
	{
		re: regexp.MustCompile(`(?i)(?P<receipt_number>[A-Z0-9]+) Confirmed\. On (?P<date>\d{1,2}/\d{1,2}/\d{2}) at (?P<time>\d{1,2}:\d{2} [APM]+) Give Ksh(?P<amount>[\d,.]+) cash to (?P<details>.*?) New M-PESA balance is Ksh(?P<balance>[\d,.]+)\.`),
		outbound: false,
	},
}

// Loosely-scoped metadata patterns, used to fill gaps when a primary
// pattern's corresponding named group came up empty.
var smsMetaPatterns = map[string]*regexp.Regexp{
	"balance": regexp.MustCompile(`(?i)balance is Ksh(?P<balance>[\d,.]+)`),
	"charge":  regexp.MustCompile(`(?i)Transaction cost, Ksh(?P<charge>[\d,.]+)`),
	"date":    regexp.MustCompile(`(?i)on (?P<date>\d{1,2}/\d{1,2}/\d{2,4})`),
	"time":    regexp.MustCompile(`(?i)at (?P<time>\d{1,2}:\d{2} [AP]M)`),
}

// SMSSource extracts transactions from M-PESA SMS notification bodies.
// Messages matching no pattern yield no records; most inboxes hold plenty
// of non-transactional traffic, so that is not an error.
type SMSSource struct {
	Messages []string

	log zerolog.Logger
}

// NewSMSSource returns an SMSSource over the given message bodies.
func NewSMSSource(messages []string, log zerolog.Logger) *SMSSource {
	return &SMSSource{Messages: messages, log: log}
}

// Transactions parses every message and collects the resulting records.
func (s *SMSSource) Transactions() transaction.List {
	var list transaction.List
	for _, msg := range s.Messages {
		list.Append(s.parseMessage(msg)...)
	}
	return list
}

// parseMessage matches a single message body against the ordered pattern
// list. A non-zero transaction charge yields a second synthetic outbound
// record sharing the receipt number and timestamp.
func (s *SMSSource) parseMessage(msg string) []transaction.Transaction {
	msg = strings.TrimSpace(strings.ReplaceAll(msg, "\n", " "))

	for _, p := range smsPatterns {
		m := p.re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}

		meta := extractMetadata(msg)
		pick := func(name string) string {
			if v := group(p.re, m, name); v != "" {
				return v
			}
			return meta[name]
		}

		amount := normalize.AmountOrZero(group(p.re, m, "amount"))
		balance := normalize.AmountOrZero(pick("balance"))
		charge := normalize.AmountOrZero(pick("charge"))

		ts, err := parseSMSTimestamp(pick("date"), pick("time"))
		if err != nil {
			s.log.Debug().Err(err).Str("message", msg).Msg("skipping message with unparsable timestamp")
			return nil
		}

		base := transaction.Transaction{
			ReceiptNo:      group(p.re, m, "receipt_number"),
			CompletionTime: ts,
			Details:        normalize.Text(group(p.re, m, "details")),
			Status:         "Completed",
			Balance:        &balance,
		}
		if p.outbound {
			base.Withdrawn = &amount
		} else {
			base.PaidIn = &amount
		}

		records := []transaction.Transaction{base}
		if p.outbound && charge.IsPositive() {
			fee := base
			fee.Details = "Mpesa Charge"
			fee.PaidIn = nil
			fee.Withdrawn = &charge
			records = append(records, fee)
		}
		return records
	}
	return nil
}

func extractMetadata(msg string) map[string]string {
	meta := make(map[string]string)
	for key, re := range smsMetaPatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			meta[key] = m[1]
		}
	}
	return meta
}

func group(re *regexp.Regexp, m []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

// parseSMSTimestamp combines a day/month/year date and a 12-hour clock
// time into a timestamp at second precision. Two- and four-digit years
// are both accepted; seconds are always zero.
func parseSMSTimestamp(dateStr, timeStr string) (time.Time, error) {
	combined := normalize.Text(dateStr) + " " + strings.ToUpper(normalize.Text(timeStr))
	var lastErr error
	for _, layout := range []string{"2/1/06 3:04 PM", "2/1/2006 3:04 PM"} {
		t, err := time.Parse(layout, combined)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
