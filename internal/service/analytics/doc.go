// Package analytics implements the disposal reporting pipeline.
//
// Every report follows the same path: validate the requested date range,
// read the Completed disposals inside it from the Repository, enrich each
// item from the static lookup table, then run one of the aggregators
// (time series, manufacturer totals, pharmacy locations, category spikes or
// a narrative summary). Nothing is shared between requests except the
// immutable lookup table and, when configured, a Cache.
//
// The service layer depends only on the interfaces in repository.go. It
// never imports net/http or database/sql directly.
package analytics
