// Package render produces the printable documents: schedule grids and SpeedPass
// credential sheets.
//
// Documents are built in two steps. html/template turns layout or credential data
// into a self-contained HTML page, then a DocumentRenderer turns that HTML into PDF
// bytes. ChromedpRenderer drives a headless Chrome through the DevTools protocol;
// any other backend can be plugged in behind the same interface.
package render
