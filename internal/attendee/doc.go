// Package attendee models registered attendees and persists them in PostgreSQL.
//
// The store expects an existing attendees table keyed by ticket barcode:
//
//	CREATE TABLE attendees (
//	    barcode     text PRIMARY KEY,
//	    order_id    text NOT NULL DEFAULT '',
//	    first_name  text NOT NULL,
//	    last_name   text NOT NULL,
//	    email       text NOT NULL,
//	    company     text NOT NULL DEFAULT '',
//	    job_title   text NOT NULL DEFAULT '',
//	    ticket_type text NOT NULL DEFAULT '',
//	    printed_at  timestamptz,
//	    emailed_at  timestamptz
//	);
package attendee
