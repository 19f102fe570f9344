package domain

// DataSource tells where the metrics of a record were resolved from.
type DataSource string

const (
	// DataSourceField marks metrics taken from real-user CrUX data.
	DataSourceField DataSource = "Field (CrUX)"
	// DataSourceLab marks records for which the Lighthouse lab pass ran. The
	// record may still mix field and lab values; see Record.Source.
	DataSourceLab DataSource = "Lab (Lighthouse)"
)

// Record is the outcome of auditing one URL. It either carries Error, in
// which case every other field except URL is empty, or a best-effort set of
// metrics where each metric may independently be absent.
type Record struct {
	// URL is the input line, verbatim.
	URL string
	// Source is the label of the last resolution pass that ran. It is empty
	// when the request failed.
	Source DataSource
	// PerformanceScore is the Lighthouse performance score scaled to 0..100.
	PerformanceScore *float64

	// LCPSeconds is the Largest Contentful Paint rounded to 2 decimals.
	LCPSeconds  *float64
	LCPCategory Category

	// INPMilliseconds is the Interaction to Next Paint rounded to an integer.
	// When resolved from lab data it holds Time to Interactive instead.
	INPMilliseconds *float64
	INPCategory     Category

	// CLS is the Cumulative Layout Shift rounded to 3 decimals.
	CLS         *float64
	CLSCategory Category

	// Error is "{status}: {body}" for a non-200 API response, or the failure
	// message when no response could be obtained at all.
	Error string
}

// Failed reports whether the record carries a request-level error.
func (r Record) Failed() bool {
	return r.Error != ""
}

// ErrorRecord builds the record of a URL whose API call failed.
func ErrorRecord(url, msg string) Record {
	return Record{URL: url, Error: msg}
}
