package electrum

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

type request struct {
	ID      uint64        `json:"id"`
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *responseError  `json:"error,omitempty"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *service) connect() error {
	var conn net.Conn
	var err error
	if s.useTLS {
		dialer := &net.Dialer{Timeout: s.timeout}
		conn, err = tls.DialWithDialer(dialer, "tcp", s.addr, &tls.Config{})
	} else {
		conn, err = net.DialTimeout("tcp", s.addr, s.timeout)
	}
	if err != nil {
		return fmt.Errorf("connect to electrum server %s: %w", s.addr, err)
	}

	s.conn = conn
	s.reader = bufio.NewReader(conn)
	return nil
}

func (s *service) disconnect() {
	if s.conn != nil {
		// nolint:errcheck
		s.conn.Close()
		s.conn = nil
		s.reader = nil
	}
}

// call performs a single JSON-RPC round trip. Requests and responses are
// newline-delimited JSON; calls are serialized on the connection and the
// connection is dropped on any transport error so that the next call redials.
func (s *service) call(method string, params ...interface{}) (json.RawMessage, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.conn == nil {
		if err := s.connect(); err != nil {
			return nil, err
		}
	}

	if params == nil {
		params = []interface{}{}
	}
	s.reqID++
	req := request{
		ID:      s.reqID,
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	}

	buf, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	buf = append(buf, '\n')

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		s.disconnect()
		return nil, err
	}
	if _, err := s.conn.Write(buf); err != nil {
		s.disconnect()
		return nil, fmt.Errorf("write request: %w", err)
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		s.disconnect()
		return nil, err
	}
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		s.disconnect()
		return nil, fmt.Errorf("read response: %w", err)
	}

	resp := response{}
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	if resp.ID != req.ID {
		log.WithFields(log.Fields{
			"expected": req.ID,
			"got":      resp.ID,
		}).Debug("electrum: skipping out of band message")
		return nil, fmt.Errorf("response id mismatch")
	}

	return resp.Result, nil
}
