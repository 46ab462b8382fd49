package server

import "encoding/binary"

func encodeOKResponse() []byte {

	response := make([]byte, 1)

	response[0] = byte('O')

	return response
}

func encodeCreateResponse(pid int) []byte {

	response := make([]byte, 1+4)

	response[0] = byte('O')

	binary.LittleEndian.PutUint32(response[1:5], uint32(pid))

	return response
}

// encodeDataResponse is used for read results and diagnostic dumps.
func encodeDataResponse(data []byte) []byte {

	response := make([]byte, 1+4+len(data))

	pointer := 0
	response[pointer] = byte('O')

	pointer++

	binary.LittleEndian.PutUint32(response[pointer:pointer+4], uint32(len(data)))
	pointer += 4

	copy(response[pointer:], data)

	return response
}

func encodeErrorResponse(err error) []byte {

	message := []byte(err.Error())

	responseLength := 1 + 4 + len(message)

	response := make([]byte, responseLength)

	pointer := 0
	response[pointer] = byte('E')

	pointer++

	binary.LittleEndian.PutUint32(response[pointer:pointer+4], uint32(len(message)))
	pointer += 4

	copy(response[pointer:], message)

	return response
}

func encodeShutdownMessage() []byte {
	return []byte{byte('S')}
}
