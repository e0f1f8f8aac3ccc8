// Package submit implements an SMTP submission client as defined in RFC
// 5321, with MIME body and attachment framing per RFC 2045/2046.
//
// A Client drives a single EHLO/AUTH/MAIL/RCPT/DATA/QUIT conversation per
// call to SendMail. Three constructors pick the transport mode:
// NewCleartextClient never uses TLS, NewOpportunisticClient upgrades with
// STARTTLS when the server offers it and otherwise falls back to
// cleartext, and NewForcedClient performs the TLS handshake before any
// SMTP bytes are exchanged.
//
// The package does not queue, retry, or pool connections: SendMail opens
// one connection, sends one message, and closes it, whether it succeeds,
// fails, or times out.
package submit
