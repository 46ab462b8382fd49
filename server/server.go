package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	mm "github.com/Adarsh-Kmt/vmswap/memory_manager"
)

// Server exposes a kernel over a length-prefixed binary TCP protocol.
// Clients are served concurrently, the kernel serializes their operations.
type Server struct {
	addr     string
	listener net.Listener

	kernel *mm.Kernel

	shutdown     chan struct{}
	shutdownOnce *sync.Once
}

func NewServer(addr string, kernel *mm.Kernel) (*Server, error) {

	listener, err := net.Listen("tcp", addr)

	if err != nil {
		return nil, err
	}
	return &Server{
		kernel:       kernel,
		listener:     listener,
		addr:         addr,
		shutdown:     make(chan struct{}),
		shutdownOnce: &sync.Once{},
	}, nil
}

// Addr returns the address the server is listening on.
func (server *Server) Addr() net.Addr {
	return server.listener.Addr()
}

func handleShutdown(conn net.Conn) {

	message := encodeShutdownMessage()

	slog.Info("sending shutdown message", "remote", conn.RemoteAddr().String(), "function", "handleShutdown", "at", "Server")
	if _, err := conn.Write(message); err != nil {
		slog.Error(err.Error(), "msg", "error while sending shutdown message")
	}

	if err := conn.Close(); err != nil {
		slog.Error(err.Error(), "msg", "error while closing connection")
	}

}

func sendErrorResponse(conn net.Conn, err error, message string) {

	slog.Error(err.Error(), "msg", message)
	response := encodeErrorResponse(err)

	if _, err2 := conn.Write(response); err2 != nil {
		slog.Error(err2.Error(), "msg", "error while writing to connection")
	}
}

// readRequest waits a short while for the op code of the next request, so the client loop can notice a shutdown.
// Once an op code has arrived, the rest of the request is read without a deadline.
func readRequest(conn net.Conn) (*request, error) {

	if err := conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond)); err != nil {
		return nil, err
	}

	opCode, err := readNBytes(conn, 1)

	if err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}

	return readRequestBody(conn, opCode[0])
}

// kernelError sends the error to the client, and shuts the server down if the kernel can no longer be used.
func (server *Server) kernelError(conn net.Conn, err error) {

	sendErrorResponse(conn, err, "error occured in kernel")

	if mm.IsFatal(err) {
		slog.Error("kernel failure is fatal, shutting down", "function", "kernelError", "at", "Server")
		server.Shutdown()
	}
}

func (server *Server) write(conn net.Conn, response []byte) {

	if _, err := conn.Write(response); err != nil {
		slog.Error(err.Error(), "msg", "error while writing to conn")
	}
}

// handleRequest executes one request. It returns true if the connection was closed.
func (server *Server) handleRequest(conn net.Conn, request *request) bool {

	// interpret request body based on op code
	switch request.opCode {

	// handle PING request
	case 'P':
		server.write(conn, encodeOKResponse())

	// handle CREATE request
	case 'N':

		size, err := decodeCreateRequestBody(request.body)

		if err != nil {
			sendErrorResponse(conn, err, "error while decoding create request")
			return false
		}

		pid, err := server.kernel.CreateProcess(size)

		if err != nil {
			server.kernelError(conn, err)
			return false
		}

		server.write(conn, encodeCreateResponse(pid))

	// handle EXIT request
	case 'X':

		pid, err := decodePidRequestBody(request.body)

		if err != nil {
			sendErrorResponse(conn, err, "error while decoding exit request")
			return false
		}

		if err = server.kernel.ExitProcess(pid); err != nil {
			server.kernelError(conn, err)
			return false
		}

		server.write(conn, encodeOKResponse())

	// handle READ request
	case 'R':

		pid, addr, size, err := decodeReadRequestBody(request.body)

		if err != nil {
			sendErrorResponse(conn, err, "error while decoding read request")
			return false
		}

		if size > server.kernel.Config().VirtualSpaceSize {
			sendErrorResponse(conn, fmt.Errorf("%w: read of %d bytes", mm.ErrOutOfBounds, size), "read too large")
			return false
		}

		data := make([]byte, size)

		if err = server.kernel.Read(pid, addr, data); err != nil {
			server.kernelError(conn, err)
			return false
		}

		server.write(conn, encodeDataResponse(data))

	// handle WRITE request
	case 'W':

		pid, addr, data, err := decodeWriteRequestBody(request.body)

		if err != nil {
			sendErrorResponse(conn, err, "error while decoding write request")
			return false
		}

		if err = server.kernel.Write(pid, addr, data); err != nil {
			server.kernelError(conn, err)
			return false
		}

		server.write(conn, encodeOKResponse())

	// handle FREE SPACE request
	case 'F':
		server.write(conn, encodeDataResponse([]byte(mm.FormatFreeSpace(server.kernel.FreeSpace()))))

	// handle LRU request
	case 'L':
		server.write(conn, encodeDataResponse([]byte(mm.FormatLRU(server.kernel.LRU()))))

	// handle MAPPINGS request
	case 'M':

		pid, err := decodePidRequestBody(request.body)

		if err != nil {
			sendErrorResponse(conn, err, "error while decoding mappings request")
			return false
		}

		mappings, err := server.kernel.Mappings(pid)

		if err != nil {
			server.kernelError(conn, err)
			return false
		}

		server.write(conn, encodeDataResponse([]byte(mm.FormatMappings(pid, mappings))))

	// handle CLOSE request
	case 'C':

		server.write(conn, encodeOKResponse())

		if err := conn.Close(); err != nil {
			slog.Error(err.Error(), "msg", "error while closing connection")
		}
		return true

	// handle SHUTDOWN request
	case 'S':
		slog.Info("server received shut down message")

		server.Shutdown()

	// handle invalid op code
	default:

		sendErrorResponse(conn, fmt.Errorf("invalid op code %q", request.opCode), "invalid op code")
	}

	return false
}

func (server *Server) handleClient(conn net.Conn, wg *sync.WaitGroup) {

	defer wg.Done()

	for {

		select {

		case <-server.shutdown:
			slog.Info("client exiting...")
			handleShutdown(conn)
			return

		default:
		}

		request, err := readRequest(conn)

		// check for read timeout error
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}

		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			slog.Info("client left", "remote", conn.RemoteAddr().String())
			conn.Close()
			return
		}

		// handle error
		if err != nil {
			sendErrorResponse(conn, err, "error while reading request")
			conn.Close()
			return
		}

		if closed := server.handleRequest(conn, request); closed {
			return
		}
	}

}

func (server *Server) listen(listenerWaitGroup, clientWaitGroup *sync.WaitGroup) {

	defer listenerWaitGroup.Done()

	for {

		conn, err := server.listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			slog.Info("listener closed")
			return
		}
		if err != nil {
			slog.Error(err.Error(), "msg", "error while accepting connection")
			continue
		}
		slog.Info("client joined from " + conn.RemoteAddr().String())
		clientWaitGroup.Add(1)
		go server.handleClient(conn, clientWaitGroup)

	}

}

// Run serves clients until the server is shut down, then waits for every client to exit.
func (server *Server) Run() {

	clientWaitGroup := &sync.WaitGroup{}
	listenerWaitGroup := &sync.WaitGroup{}

	slog.Info("server listening", "addr", server.Addr().String(), "function", "Run", "at", "Server")

	listenerWaitGroup.Add(1)
	go server.listen(listenerWaitGroup, clientWaitGroup)

	slog.Info("waiting for shutdown...")
	listenerWaitGroup.Wait()
	slog.Info("waiting for clients to exit...")
	clientWaitGroup.Wait()
}

// Shutdown stops accepting clients and closes the kernel, which flushes resident pages to the swap file.
func (server *Server) Shutdown() {

	slog.Info("shutdown initiated...")
	server.shutdownOnce.Do(func() {

		server.listener.Close()
		if err := server.kernel.Close(); err != nil {
			slog.Error(err.Error(), "msg", "error while closing kernel")
		}
		close(server.shutdown)

	})

}
