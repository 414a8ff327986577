package exception

import "errors"

var (
	ErrIngestParseLine       = errors.New("ingest: parse json line")
	ErrIngestDecodeHeartbeat = errors.New("ingest: decode heartbeat")
	ErrIngestDecodePriceTick = errors.New("ingest: decode price tick")
	ErrIngestMissingField    = errors.New("ingest: missing required field")
	ErrIngestNoDiscriminator = errors.New("ingest: unknown message type or missing discriminator")
)
