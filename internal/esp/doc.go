// Package esp holds the network-facing collaborators of the deliverability
// probe: the SES transport that sends probe messages, and the DNS and SMTP
// checks that gate it.
package esp
