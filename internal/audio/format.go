package audio

// Format identifies the sample encoding a device delivers frames in.
// Only F32, S16 and U16 can be normalized; the remaining tags exist so
// an unsupported device format can be reported by name.
type Format int

const (
	FormatUnknown Format = iota
	FormatF32            // 32-bit IEEE float, already in [-1, 1]
	FormatS16            // signed 16-bit integer
	FormatU16            // unsigned 16-bit integer
	FormatU8
	FormatS24
	FormatS32
)

func (f Format) String() string {
	switch f {
	case FormatF32:
		return "f32"
	case FormatS16:
		return "s16"
	case FormatU16:
		return "u16"
	case FormatU8:
		return "u8"
	case FormatS24:
		return "s24"
	case FormatS32:
		return "s32"
	default:
		return "unknown"
	}
}

// StreamConfig is the configuration negotiated with an input device.
type StreamConfig struct {
	Format     Format
	Channels   int
	SampleRate int
}
