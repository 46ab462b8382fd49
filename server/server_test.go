package server

import (
	"encoding/binary"
	"net"
	"path/filepath"
	"testing"

	mm "github.com/Adarsh-Kmt/vmswap/memory_manager"
	"github.com/stretchr/testify/suite"
)

type KernelServerTestSuite struct {
	suite.Suite
	server *Server
	conn   net.Conn
	done   chan struct{}
}

func (test *KernelServerTestSuite) SetupTest() {

	config := mm.DefaultConfig()
	config.SwapFilePath = filepath.Join(test.T().TempDir(), "swap")

	kernel, err := mm.NewKernel(config)
	test.Require().NoError(err)

	server, err := NewServer("127.0.0.1:0", kernel)
	test.Require().NoError(err)

	test.server = server
	test.done = make(chan struct{})

	go func() {
		server.Run()
		close(test.done)
	}()

	conn, err := net.Dial("tcp", server.Addr().String())
	test.Require().NoError(err)

	test.conn = conn
}

func (test *KernelServerTestSuite) TearDownTest() {

	test.server.Shutdown()
	test.conn.Close()
	<-test.done
}

func (test *KernelServerTestSuite) send(opCode byte, body []byte) {

	request := createRequest(opCode, body)

	n, err := test.conn.Write(request)

	test.Require().NoError(err)
	test.Require().Equal(len(request), n)
}

func (test *KernelServerTestSuite) readStatus() string {

	status, err := readNBytes(test.conn, 1)

	test.Require().NoError(err)
	return string(status)
}

func (test *KernelServerTestSuite) readPayload() []byte {

	length, err := readNBytes(test.conn, 4)
	test.Require().NoError(err)

	payload, err := readNBytes(test.conn, int(binary.LittleEndian.Uint32(length)))
	test.Require().NoError(err)

	return payload
}

func (test *KernelServerTestSuite) create(size int) int {

	test.send('N', putUint32s(size))
	test.Require().Equal("O", test.readStatus())

	pid, err := readNBytes(test.conn, 4)
	test.Require().NoError(err)

	return int(binary.LittleEndian.Uint32(pid))
}

func (test *KernelServerTestSuite) TestPing() {

	test.send('P', nil)
	test.Assert().Equal("O", test.readStatus())
}

func (test *KernelServerTestSuite) TestCreateWriteRead() {

	pid := test.create(64)
	test.Assert().Equal(0, pid)

	test.send('W', createWriteRequestBody(pid, 30, []byte("hello")))
	test.Require().Equal("O", test.readStatus())

	test.send('R', putUint32s(pid, 30, 5))
	test.Require().Equal("O", test.readStatus())
	test.Assert().Equal([]byte("hello"), test.readPayload())

	test.send('X', putUint32s(pid))
	test.Assert().Equal("O", test.readStatus())
}

func (test *KernelServerTestSuite) TestKernelErrors() {

	test.send('X', putUint32s(5))
	test.Require().Equal("E", test.readStatus())
	test.Assert().Contains(string(test.readPayload()), mm.ErrInvalidProcess.Error())

	pid := test.create(64)

	test.send('R', putUint32s(pid, 60, 10))
	test.Require().Equal("E", test.readStatus())
	test.Assert().Contains(string(test.readPayload()), mm.ErrOutOfBounds.Error())

	test.send('N', putUint32s(4096))
	test.Require().Equal("E", test.readStatus())
	test.Assert().Contains(string(test.readPayload()), mm.ErrCapacityExceeded.Error())

	// the connection is still usable after errors.
	test.send('P', nil)
	test.Assert().Equal("O", test.readStatus())
}

func (test *KernelServerTestSuite) TestDiagnostics() {

	test.send('F', nil)
	test.Require().Equal("O", test.readStatus())
	test.Assert().Equal("free space: (addr:0, size:256)", string(test.readPayload()))

	pid := test.create(64)

	test.send('W', createWriteRequestBody(pid, 32, []byte{1}))
	test.Require().Equal("O", test.readStatus())

	test.send('L', nil)
	test.Require().Equal("O", test.readStatus())
	test.Assert().Equal("(pid:0, page:1)", string(test.readPayload()))

	test.send('M', putUint32s(pid))
	test.Require().Equal("O", test.readStatus())
	test.Assert().Equal("Memory mappings of process 0\nvirtual page 0: Not present\nvirtual page 1 -> physical page 0\n", string(test.readPayload()))

	test.send('F', nil)
	test.Require().Equal("O", test.readStatus())
	test.Assert().Equal("free space: (addr:32, size:224)", string(test.readPayload()))
}

func (test *KernelServerTestSuite) TestInvalidOpCode() {

	test.send('Z', nil)
	test.Require().Equal("E", test.readStatus())
	test.Assert().Contains(string(test.readPayload()), "invalid op code")
}

func (test *KernelServerTestSuite) TestShutdown() {

	test.send('S', nil)
	test.Assert().Equal("S", test.readStatus())

	<-test.done
}

func (test *KernelServerTestSuite) TestClose() {

	test.send('C', nil)
	test.Assert().Equal("O", test.readStatus())

	_, err := readNBytes(test.conn, 1)
	test.Assert().Error(err)
}

func TestKernelServer(t *testing.T) {

	suite.Run(t, new(KernelServerTestSuite))
}
