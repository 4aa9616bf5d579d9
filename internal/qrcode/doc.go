// Package qrcode produces PNG QR codes for SpeedPass credentials, either with a
// local encoder or through a remote QR generator service.
package qrcode
