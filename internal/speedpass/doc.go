// Package speedpass composes SpeedPass credentials: the admission ticket, the
// raffle tickets and the name badge printed on one sheet per attendee.
package speedpass
