// Package schedule fetches and models conference schedule data.
//
// The schedule package reads the public "grid" view of a conference schedule (the
// Sessionize GridSmart JSON shape): one entry per conference day, each with its rooms
// and its time slots, and for every slot the session occupying each room. Sessions
// carry the service/plenum flags the layout engine uses to decide which slots become
// rows of the printed schedule.
package schedule
