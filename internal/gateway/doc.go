// Package gateway provides the generic wire codecs internal/venue's
// connectors need to actually dial and speak to something. It implements
// venue.OrderEncoder, venue.OrderUpdateParser and venue.MarketDataParser
// against a small JSON frame shape of our own design, not any particular
// exchange's documented API — bit-level exchange wire formats are outside
// this codebase's scope, but the connector/order-manager/quote pipeline
// above still needs a concrete implementation of those seams to run end to
// end. Swapping in a real venue's codec means writing a new implementation
// of these same three interfaces; nothing above internal/gateway changes.
//
// Order-management frames (low frequency, one per operation or update) are
// marshaled with sonic.ConfigFastest the way the teacher's
// internal/order/delegator/btcc package encodes HTTP order bodies. Market
// data frames (high frequency, one per book level) are read field-by-field
// with pkg/scanner, the way the teacher's internal/ingest/btcc and
// internal/ingest/binance codecs avoid allocating on the hot path.
package gateway
