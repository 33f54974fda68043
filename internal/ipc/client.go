package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client connects a secondary process to the primary instance.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the primary's session socket.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Forward sends this launch's argv and intent to the primary.
func (c *Client) Forward(args []string, intent string) (*ForwardResponse, error) {
	var resp ForwardResponse
	if err := c.client.Call("Parcel.Forward", ForwardRequest{Args: args, Intent: intent}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Compress runs a compress batch inside the primary session and returns its
// success message. Progress is rendered by the session's own event stream.
func (c *Client) Compress(sources []string, destination, kind string) (string, error) {
	var resp CompressResponse
	req := CompressRequest{Sources: sources, Destination: destination, Kind: kind}
	if err := c.client.Call("Surface.Compress", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Decompress runs a decompress batch inside the primary session.
func (c *Client) Decompress(sources []string) (string, error) {
	var resp DecompressResponse
	if err := c.client.Call("Surface.Decompress", DecompressRequest{Sources: sources}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Kinds returns the session's supported compression kind tags.
func (c *Client) Kinds() ([]string, error) {
	var resp KindsResponse
	if err := c.client.Call("Surface.Kinds", KindsRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Kinds, nil
}

// Validate asks the session whether kind accepts this batch.
func (c *Client) Validate(sources []string, kind string) (bool, error) {
	var resp ValidateResponse
	if err := c.client.Call("Surface.Validate", ValidateRequest{Sources: sources, Kind: kind}, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// Acknowledge reports the processed-item count to the session.
func (c *Client) Acknowledge(count int64) error {
	var resp AcknowledgeResponse
	return c.client.Call("Surface.Acknowledge", AcknowledgeRequest{Count: count}, &resp)
}

// OpenFolder asks the session to reveal path in the OS file manager.
func (c *Client) OpenFolder(path string) error {
	var resp OpenFolderResponse
	return c.client.Call("Surface.OpenFolder", OpenFolderRequest{Path: path}, &resp)
}

// CloseApp asks the session to terminate every application instance.
func (c *Client) CloseApp() (int, error) {
	var resp CloseResponse
	if err := c.client.Call("Surface.Close", CloseRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Killed, nil
}
