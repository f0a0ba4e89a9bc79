package dac

// WritePair is one recorded output update.
type WritePair struct {
	TriggerOut   int16
	IntensityOut int16
}

// FakeWriter records output writes for test assertions.
type FakeWriter struct {
	// Writes contains every pair passed to Write, in order.
	Writes []WritePair

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeWriter creates a FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Write records the pair.
func (f *FakeWriter) Write(triggerOut, intensityOut int16) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, WritePair{TriggerOut: triggerOut, IntensityOut: intensityOut})
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent write, or a zero pair if none occurred.
func (f *FakeWriter) Last() WritePair {
	if len(f.Writes) == 0 {
		return WritePair{}
	}
	return f.Writes[len(f.Writes)-1]
}

// Reset clears recorded writes.
func (f *FakeWriter) Reset() {
	f.Writes = nil
	f.WriteError = nil
	f.Closed = false
}
