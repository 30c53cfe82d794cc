package codec

import "bytes"

// bytesBufferWriterAdapter gives *bytes.Buffer the Flush method the Writer
// expects; a buffer has nothing to flush.
type bytesBufferWriterAdapter struct{ *bytes.Buffer }

func (w bytesBufferWriterAdapter) Flush() error { return nil }
