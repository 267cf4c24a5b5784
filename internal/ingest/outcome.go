package ingest

// Outcome is the terminal state of one ingestion attempt. Every call to
// ProcessFile reaches exactly one of these; the processor never retries
// in-process.
type Outcome int

const (
	// OutcomeCommitted: the aggregate and any new companies/products were
	// committed in one unit of work.
	OutcomeCommitted Outcome = iota
	// OutcomeRejected: an invoice with the same (issuer, number) already
	// exists. Logged as a warning, never retried.
	OutcomeRejected
	// OutcomeDropped: the file cannot be parsed into a valid document.
	// Logged, never retried; a malformed file will not parse differently.
	OutcomeDropped
	// OutcomeRetrying: a transient failure; the original file reference was
	// resubmitted to the retry channel.
	OutcomeRetrying
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeDropped:
		return "dropped"
	case OutcomeRetrying:
		return "retrying"
	default:
		return "unknown"
	}
}
