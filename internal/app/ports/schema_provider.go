package ports

import "context"

// SchemaProvider serves the JSON schemas of the wire formats.
type SchemaProvider interface {
	Index(ctx context.Context) ([]byte, error)
	File(ctx context.Context, path string) ([]byte, error)
}
