package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHelpers(t *testing.T) {
	r := bytes.NewReader([]byte{
		0xAB,                   // uint8
		0x34, 0x12,             // uint16
		0x78, 0x56, 0x34, 0x12, // uint32
		0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01, // uint64
		0xFF, 0xFF, // int16 == -1
	})

	v8, err := ReadUint8(r)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v8)

	v16, err := ReadUint16(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)

	v32, err := ReadUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v32)

	v64, err := ReadUint64(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789ABCDEF), v64)

	i16, err := ReadInt16(r)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), i16)
}

func TestReadTruncated(t *testing.T) {
	tests := []struct {
		name string
		read func(io.Reader) error
		data []byte
	}{
		{"Uint16Empty", func(r io.Reader) error { _, err := ReadUint16(r); return err }, nil},
		{"Uint16OneByte", func(r io.Reader) error { _, err := ReadUint16(r); return err }, []byte{0x01}},
		{"Uint32Short", func(r io.Reader) error { _, err := ReadUint32(r); return err }, []byte{1, 2, 3}},
		{"Uint64Short", func(r io.Reader) error { _, err := ReadUint64(r); return err }, []byte{1, 2, 3, 4, 5, 6, 7}},
		{"SkipShort", func(r io.Reader) error { return Skip(r, 10) }, []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint8(&buf, 0x7F))
	require.NoError(t, WriteUint16(&buf, 0xBEEF))
	require.NoError(t, WriteUint32(&buf, 0xDEADBEEF))
	require.NoError(t, WriteUint64(&buf, 0x0102030405060708))
	require.NoError(t, WriteInt16(&buf, -12345))

	r := bytes.NewReader(buf.Bytes())
	v8, _ := ReadUint8(r)
	v16, _ := ReadUint16(r)
	v32, _ := ReadUint32(r)
	v64, _ := ReadUint64(r)
	i16, _ := ReadInt16(r)

	assert.Equal(t, uint8(0x7F), v8)
	assert.Equal(t, uint16(0xBEEF), v16)
	assert.Equal(t, uint32(0xDEADBEEF), v32)
	assert.Equal(t, uint64(0x0102030405060708), v64)
	assert.Equal(t, int16(-12345), i16)
}

func TestSkipConsumesExactly(t *testing.T) {
	r := bytes.NewReader([]byte{1, 2, 3, 4, 5})
	require.NoError(t, Skip(r, 4))

	next, err := ReadUint8(r)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), next)
}

type fixedPDU struct {
	value   uint16
	declare int // length to declare, for violating the invariant on purpose
}

func (p *fixedPDU) Decode(r io.Reader) error {
	v, err := ReadUint16(r)
	if err != nil {
		return err
	}
	p.value = v
	p.declare = 2
	return nil
}

func (p *fixedPDU) Encode(w io.Writer) error { return WriteUint16(w, p.value) }
func (p *fixedPDU) Length() int              { return p.declare }

func TestGenericDecode(t *testing.T) {
	pdu, err := Decode[fixedPDU](bytes.NewReader([]byte{0x34, 0x12}))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), pdu.value)

	_, err = Decode[fixedPDU](bytes.NewReader([]byte{0x34}))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestEncodeToBytes(t *testing.T) {
	got, err := EncodeToBytes(&fixedPDU{value: 0x1234, declare: 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x34, 0x12}, got)
}

func TestEncodeToBytesLengthMismatch(t *testing.T) {
	_, err := EncodeToBytes(&fixedPDU{value: 0x1234, declare: 3})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTruncated)
}

func TestShortReadKeepsOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadUint16(failingReader{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTruncated)
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
