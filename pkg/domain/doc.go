// Package domain contains the core types of a Core Web Vitals audit: the
// per-URL record written to the report, the data source it was resolved
// from, and the classification of each metric against its thresholds. The
// types are free of transport and file-format concerns so they can be shared
// by the auditor and the report writers.
package domain
