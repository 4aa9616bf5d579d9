// Package mailer submits SpeedPass emails.
//
// SMTPSender hands messages to an SMTP relay with the PDF attached. Throttled
// spaces sends out to stay under relay rate limits, and DryRunSender prints what
// would be sent without contacting any server.
package mailer
