// Package domain holds the values passed between address scoring, the probe,
// health reporting and the HTTP layer: templates, list reports, probe
// requests and results, sent-message records and health windows.
//
// Nothing here reaches a database or the network. The only logic is address
// normalization and window parsing, which every caller needs to agree on.
package domain
