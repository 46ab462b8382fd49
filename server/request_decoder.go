package server

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// upper bound on a request body, a write never carries more than one address space.
const MAX_BODY_LENGTH = 1 << 20

type request struct {
	opCode byte
	body   []byte
}

func readNBytes(reader io.Reader, N int) ([]byte, error) {

	data := make([]byte, N)

	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, err
	}

	return data, nil
}

func readUint32(reader io.Reader) (int, error) {

	data, err := readNBytes(reader, 4)

	if err != nil {
		return 0, err
	}

	return int(binary.LittleEndian.Uint32(data)), nil
}

// readRequestBody reads the body length followed by the body of a request whose op code has already been read.
func readRequestBody(reader io.Reader, opCode byte) (*request, error) {

	bodyLength, err := readUint32(reader)

	if err != nil {
		return nil, err
	}

	if bodyLength > MAX_BODY_LENGTH {
		return nil, fmt.Errorf("request body too large: %d bytes", bodyLength)
	}

	body, err := readNBytes(reader, bodyLength)

	if err != nil {
		return nil, err
	}

	return &request{opCode: opCode, body: body}, nil
}

func decodePidRequestBody(body []byte) (pid int, err error) {
	return readUint32(bytes.NewReader(body))
}

func decodeCreateRequestBody(body []byte) (size int, err error) {
	return readUint32(bytes.NewReader(body))
}

func decodeReadRequestBody(body []byte) (pid int, addr int, size int, err error) {

	reader := bytes.NewReader(body)

	if pid, err = readUint32(reader); err != nil {
		return 0, 0, 0, err
	}

	if addr, err = readUint32(reader); err != nil {
		return 0, 0, 0, err
	}

	if size, err = readUint32(reader); err != nil {
		return 0, 0, 0, err
	}

	return pid, addr, size, nil
}

func decodeWriteRequestBody(body []byte) (pid int, addr int, data []byte, err error) {

	reader := bytes.NewReader(body)

	if pid, err = readUint32(reader); err != nil {
		return 0, 0, nil, err
	}

	if addr, err = readUint32(reader); err != nil {
		return 0, 0, nil, err
	}

	dataLength, err := readUint32(reader)

	if err != nil {
		return 0, 0, nil, err
	}

	// the length is client supplied, it must be checked before allocating.
	if dataLength > reader.Len() {
		return 0, 0, nil, fmt.Errorf("write data length %d exceeds remaining body of %d bytes", dataLength, reader.Len())
	}

	if data, err = readNBytes(reader, dataLength); err != nil {
		return 0, 0, nil, err
	}

	return pid, addr, data, nil
}
