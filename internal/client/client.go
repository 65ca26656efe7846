// Package client provides a Go client for a PredKV server.
//
// A Client owns one TCP connection and issues one request at a time;
// it is not safe for concurrent use. Open one Client per goroutine,
// or serialize access externally.
package client

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/predkv/predkv/internal/core/domain"
	"github.com/predkv/predkv/internal/protocol"
)

// DefaultTimeout bounds a single request/response exchange.
const DefaultTimeout = 30 * time.Second

// Client is a connection to a PredKV server.
type Client struct {
	conn    net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	timeout time.Duration
}

// Dial connects to the server at addr.
func Dial(addr string) (*Client, error) {
	return DialTimeout(addr, DefaultTimeout)
}

// DialTimeout connects to the server at addr with an explicit
// per-request timeout.
func DialTimeout(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{
		conn:    conn,
		br:      bufio.NewReader(conn),
		bw:      bufio.NewWriter(conn),
		timeout: timeout,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Read fetches the entry stored under key.
func (c *Client) Read(key domain.Value) (*domain.Response, error) {
	return c.do(domain.NewRead(key))
}

// Add stores value under key, overwriting any existing entry.
func (c *Client) Add(key, value domain.Value) (*domain.Response, error) {
	return c.do(domain.NewAdd(key, value))
}

// Delete removes the entry stored under key.
func (c *Client) Delete(key domain.Value) (*domain.Response, error) {
	return c.do(domain.NewDelete(key))
}

// Query runs a query string against the store.
func (c *Client) Query(query string) (*domain.Response, error) {
	return c.do(domain.NewQuery(query))
}

func (c *Client) do(req *domain.Request) (*domain.Response, error) {
	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	if err := protocol.WriteRequest(c.bw, req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if err := c.bw.Flush(); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	resp, err := protocol.ReadResponse(c.br)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}
