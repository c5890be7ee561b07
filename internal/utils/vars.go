package utils

import "errors"

// ChunkSize is the read granularity of the hashing stream writer. The
// digest is updated and the chunk written to disk before the next read.
const ChunkSize = 8192

const ToolUserAgent = "lockmirror/1337"

var ErrUnknownScheme = errors.New("unsupported URL scheme")
