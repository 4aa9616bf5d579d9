// Package ticketing imports registrations from the ticketing platform.
//
// Attendees come either from the platform's REST API (paged, bearer token) or
// from an XLSX attendee export. Either way they are upserted into the attendee
// store keyed by ticket barcode, so repeated imports refresh registration details
// without losing the printed and emailed markers.
package ticketing
