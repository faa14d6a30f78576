package cliprdr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorbeam/rdpwire/internal/protocol/rdp/wire"
)

func TestParseMonitorReady(t *testing.T) {
	data := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	pdu, err := ParsePDU(data)
	require.NoError(t, err)
	assert.IsType(t, &MonitorReadyPDU{}, pdu)
	assert.Equal(t, TypeMonitorReady, pdu.MessageType())
}

func TestParseFormatList(t *testing.T) {
	data := []byte{
		0x02, 0x00, // msgType = CB_FORMAT_LIST
		0x00, 0x00, // msgFlags
		0x12, 0x00, 0x00, 0x00, // dataLen = 18
		0x0D, 0x00, 0x00, 0x00, // CF_UNICODETEXT
		0x00, 0x00, // empty name
		0x6E, 0x00, 0x00, 0x00, // format 0x6E
		'H', 0x00, 'T', 0x00, 'M', 0x00, 0x00, 0x00, // "HTM"
	}

	pdu, err := ParsePDU(data)
	require.NoError(t, err)

	list, ok := pdu.(*FormatListPDU)
	require.True(t, ok)
	require.Len(t, list.Formats, 2)
	assert.Equal(t, Format{ID: 0x0D, Name: ""}, list.Formats[0])
	assert.Equal(t, Format{ID: 0x6E, Name: "HTM"}, list.Formats[1])
}

func TestFormatListRoundTrip(t *testing.T) {
	pdu := &FormatListPDU{Formats: []Format{
		{ID: 13, Name: ""},
		{ID: 0xC004, Name: "Rich Text Format"},
	}}

	data, err := wire.EncodeToBytes(pdu)
	require.NoError(t, err)
	require.Len(t, data, pdu.Length())

	decoded, err := ParsePDU(data)
	require.NoError(t, err)
	assert.Equal(t, pdu, decoded)
}

func TestParseFormatListASCIIRejected(t *testing.T) {
	data := []byte{
		0x02, 0x00,
		0x04, 0x00, // msgFlags = CB_ASCII_NAMES
		0x00, 0x00, 0x00, 0x00,
	}

	_, err := ParsePDU(data)
	assert.ErrorIs(t, err, ErrASCIINamesNotSupported)
}

func TestParseFormatDataResponseBorrows(t *testing.T) {
	payload := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	data := append([]byte{
		0x05, 0x00, // msgType = CB_FORMAT_DATA_RESPONSE
		0x01, 0x00, // msgFlags = CB_RESPONSE_OK
		0x04, 0x00, 0x00, 0x00,
	}, payload...)

	pdu, err := ParsePDU(data)
	require.NoError(t, err)

	resp, ok := pdu.(*FormatDataResponsePDU)
	require.True(t, ok)
	assert.Equal(t, FlagResponseOK, resp.Flags)
	assert.Equal(t, payload, resp.Data)

	// zero-copy: payload aliases the input buffer
	assert.Same(t, &data[8], &resp.Data[0])
}

func TestParseDataLenAuthoritative(t *testing.T) {
	// header declares 8 payload bytes, only 4 are present
	data := []byte{
		0x05, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00,
		0xCA, 0xFE, 0xBA, 0xBE,
	}

	_, err := ParsePDU(data)
	assert.ErrorIs(t, err, wire.ErrTruncated)
}

func TestParseDataLenMaxValue(t *testing.T) {
	// dataLen = 0xFFFFFFFF overflows int on 32-bit targets; it must be a
	// truncation error everywhere, never a slice-bounds panic
	data := []byte{
		0x05, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
	}

	_, err := ParsePDU(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.ErrTruncated)
}

func TestParseInvalidMessageType(t *testing.T) {
	data := []byte{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	_, err := ParsePDU(data)

	var typeErr *InvalidMessageTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, uint16(0xFF), typeErr.Code)
}

func TestPDURoundTrip(t *testing.T) {
	pdus := []PDU{
		&MonitorReadyPDU{},
		&FormatListResponsePDU{Flags: FlagResponseOK},
		&FormatListResponsePDU{Flags: FlagResponseFail},
		&FormatDataRequestPDU{FormatID: 13},
		&FormatDataResponsePDU{Flags: FlagResponseOK, Data: []byte{1, 2, 3}},
		&LockClipDataPDU{ClipDataID: 99},
		&UnlockClipDataPDU{ClipDataID: 99},
	}

	for _, pdu := range pdus {
		t.Run(pdu.MessageType().String(), func(t *testing.T) {
			data, err := wire.EncodeToBytes(pdu)
			require.NoError(t, err)
			require.Len(t, data, pdu.Length())

			decoded, err := ParsePDU(data)
			require.NoError(t, err)
			assert.Equal(t, pdu, decoded)
			assert.Equal(t, pdu.MessageType(), decoded.MessageType())
		})
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	for n := 0; n < 8; n++ {
		_, err := ParsePDU(make([]byte, n))
		require.Error(t, err, "header prefix of %d bytes parsed", n)
		assert.ErrorIs(t, err, wire.ErrTruncated)
	}
}

func TestTextConverter(t *testing.T) {
	upper := TextConverter(func(text string) ([]byte, error) {
		return []byte(text + "!"), nil
	})

	resp := &FormatDataResponsePDU{Data: []byte("hello")}
	out, err := resp.Convert(upper)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello!"), out)

	resp.Data = []byte{0xFF, 0xFE, 0xFD}
	_, err = resp.Convert(upper)
	assert.ErrorIs(t, err, ErrNotText)
}

func TestConverterErrorPropagates(t *testing.T) {
	boom := errors.New("bad DIB")
	conv := FormatConverter(func([]byte) ([]byte, error) { return nil, boom })

	resp := &FormatDataResponsePDU{Data: []byte{0x42}}
	_, err := resp.Convert(conv)
	assert.ErrorIs(t, err, boom)
}

func FuzzParsePDU(f *testing.F) {
	f.Add([]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0x05, 0x00, 0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0xCA, 0xFE, 0xBA, 0xBE})

	f.Fuzz(func(t *testing.T, data []byte) {
		pdu, err := ParsePDU(data)
		if err != nil {
			return
		}
		out, err := wire.EncodeToBytes(pdu)
		if err != nil {
			t.Fatalf("parsed PDU failed to encode: %v", err)
		}
		again, err := ParsePDU(out)
		if err != nil {
			t.Fatalf("re-encoded PDU failed to parse: %v", err)
		}
		assert.Equal(t, pdu, again)
	})
}
