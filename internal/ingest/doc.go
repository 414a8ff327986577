// Package ingest reads the OANDA v20 pricing stream.
//
// Source:
//
//	GET {base}/v3/accounts/{account}/pricing/stream?instruments={list}
//	chunked transfer, one JSON object per line
//
// Classify:
//
//	{"type":"HEARTBEAT",...}   -> heartbeat
//	{"instrument":...,...}     -> price tick
//	anything else              -> unrecognized (kept for diagnostics)
//
// Produce:
//
//	every classified event is pushed into the relay, blocking while it is full.
package ingest
