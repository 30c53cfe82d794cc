package codec

// DefaultMaxCount bounds the element, entry and code-unit counts a decoder accepts.
const DefaultMaxCount = 1 << 24

type options struct {
	// stringEncoding is used for strings whose Type leaves the encoding as EncodingDefault.
	stringEncoding TextEncoding
	// maxCount is the largest count accepted from the stream.
	maxCount int
}

// Option configures an Encoder, a Decoder or a one-shot call such as Marshal.
type Option func(*options)

// WithStringEncoding sets the encoding of strings that do not pick one themselves.
func WithStringEncoding(enc TextEncoding) Option {
	return func(o *options) { o.stringEncoding = enc }
}

// WithMaxCount limits how many elements, entries or characters a single
// container or string may declare. Values below 1 restore the default.
func WithMaxCount(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultMaxCount
		}
		o.maxCount = n
	}
}

func newOptions(opts []Option) options {
	o := options{stringEncoding: EncodingDefault, maxCount: DefaultMaxCount}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
